package core

// RunResult is returned to the caller when a run reaches its terminal state.
// The runtime retains no reference to it afterwards; History is the caller's
// to keep (and, if desired, to feed back into a subsequent run as prior
// context).
type RunResult struct {
	// RunID uniquely identifies the run that produced this result.
	RunID string `json:"run_id"`
	// Agent is the name of the agent active at termination.
	Agent string `json:"agent"`
	// Output is the final answer text.
	Output string `json:"output"`
	// History contains every entry accumulated during the run, in order.
	History []Entry `json:"history"`
	// Steps is the number of decision/dispatch cycles taken.
	Steps int `json:"steps"`
}

// LastEntry returns the final history entry, or a zero Entry when the
// history is empty.
func (r *RunResult) LastEntry() Entry {
	if len(r.History) == 0 {
		return Entry{}
	}
	return r.History[len(r.History)-1]
}
