// Package runner implements the orchestration runtime: the public Run entry
// point and the per-run turn executor.
//
// A run is a deterministic state machine driven by gateway decisions. Each
// step submits the active agent's instructions, the history so far and the
// agent's capability descriptors to the gateway, then dispatches on the
// returned Decision: a final answer terminates the run, a tool call appends
// its record and result to the history, a handoff replaces the active agent.
// A configurable step cap bounds traversal of cyclic agent graphs.
//
// Each Run invocation owns a fresh executor and history; concurrent runs
// share only the immutable agent/tool configuration and therefore need no
// locking. The gateway call and the tool invocation are the only suspension
// points; caller-initiated cancellation takes effect at the next such
// boundary and is reported as a distinct Cancelled outcome.
package runner
