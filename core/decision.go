package core

import "encoding/json"

// DecisionKind discriminates the Decision variants.
type DecisionKind string

const (
	// DecisionFinalAnswer terminates the run with a textual answer.
	DecisionFinalAnswer DecisionKind = "final_answer"
	// DecisionToolCall requests execution of a named tool.
	DecisionToolCall DecisionKind = "tool_call"
	// DecisionHandoff requests transfer of control to a named agent.
	DecisionHandoff DecisionKind = "handoff"
)

// Decision is the tagged per-step output of a model completion gateway:
// exactly one of a final answer, a tool call, or a handoff. The field
// matching Kind is populated; the others are zero. Gateways produce
// Decisions, the runner consumes them; the runner itself stays fully
// deterministic.
type Decision struct {
	Kind     DecisionKind    `json:"kind"`
	Answer   string          `json:"answer,omitempty"`
	ToolCall *ToolCallRecord `json:"tool_call,omitempty"`
	Target   string          `json:"target,omitempty"`
}

// FinalAnswer constructs a terminating Decision carrying the answer text.
func FinalAnswer(text string) Decision {
	return Decision{Kind: DecisionFinalAnswer, Answer: text}
}

// CallTool constructs a Decision requesting a tool invocation. An ID is
// assigned if the gateway did not supply one.
func CallTool(id, name string, args json.RawMessage) Decision {
	if id == "" {
		id = NewID()
	}
	return Decision{
		Kind:     DecisionToolCall,
		ToolCall: &ToolCallRecord{ID: id, Name: name, Arguments: args},
	}
}

// HandoffTo constructs a Decision requesting transfer to the named agent.
func HandoffTo(target string) Decision {
	return Decision{Kind: DecisionHandoff, Target: target}
}
