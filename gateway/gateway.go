// Package gateway defines the model completion gateway interface: the single
// nondeterministic collaborator of the runtime. Given an agent's
// instructions, the conversation so far and the agent's capability
// descriptors, a Gateway returns one Decision per step. Vendor adapters live
// in the openai and anthropic subpackages; Script provides a deterministic
// gateway for tests and examples.
package gateway

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentrelay/core"
)

// TransferFunctionName is the synthetic function name under which handoff
// targets are exposed to vendor models. A model call to this function is
// translated into a Handoff decision and never reaches a tool.
const TransferFunctionName = "transfer_to_agent"

// Request carries everything the gateway needs for one decision: the active
// agent's instructions, the full history so far, and the descriptors of its
// allowed tools and handoff targets.
type Request struct {
	Agent        string                 `json:"agent"`
	Instructions string                 `json:"instructions"`
	History      []core.Entry           `json:"history"`
	Tools        []core.ToolDescriptor  `json:"tools,omitempty"`
	Handoffs     []core.AgentDescriptor `json:"handoffs,omitempty"`
}

// Gateway is the model completion service consumed by the runner. Decide is
// the sole suspension point of a run step; implementations must respect ctx
// cancellation. Retry policy, if any, belongs to the gateway client, not
// the runtime.
type Gateway interface {
	Decide(ctx context.Context, req Request) (core.Decision, error)
}

// Error reports a gateway transport, auth or rate-limit failure. It is
// propagated to the caller of Run unretried.
type Error struct {
	Provider string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("gateway error (%s): %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("gateway error: %s", e.Message)
}

// Unwrap returns the underlying transport error.
func (e *Error) Unwrap() error { return e.Err }

// NewError creates a gateway Error wrapping err.
func NewError(provider string, err error) *Error {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &Error{Provider: provider, Message: msg, Err: err}
}
