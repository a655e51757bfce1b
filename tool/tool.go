// Package tool implements the function calling subsystem: an interface for
// invocable capabilities with declared input schemas, a generic adapter that
// exposes plain Go functions as tools, and a registry resolving tool names
// for agent construction. Tools are stateless and immutable; a single tool
// instance may be shared by every agent that references it.
package tool

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentrelay/internal/util"
)

// Tool is an externally invocable function with a declared schema. The
// runtime invokes tools one at a time per run; implementations must respect
// ctx cancellation if they perform external I/O and should be safe for use
// by concurrent runs.
type Tool interface {
	// Name returns the unique identifier for this tool (snake_case
	// recommended).
	Name() string

	// Description returns guidance text provided to the model so it knows
	// when and how to use the tool.
	Description() string

	// Parameters returns a minimal JSON-Schema-like map describing the
	// expected arguments.
	Parameters() map[string]any

	// Invoke executes the tool and returns its textual result. A returned
	// error is surfaced into the conversation history as text the agent can
	// react to; it never crashes the run.
	Invoke(ctx context.Context, args map[string]any) (string, error)
}

// ValidationError represents parameter validation errors with detailed
// information.
type ValidationError = util.ValidationError

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}
