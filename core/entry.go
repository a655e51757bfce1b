package core

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role categorizes a history entry by its author.
type Role string

const (
	// RoleUser marks the caller-supplied input that starts a run.
	RoleUser Role = "user"
	// RoleAssistant marks agent-authored entries: final answers and
	// tool-call records.
	RoleAssistant Role = "assistant"
	// RoleTool marks tool results (successful output or error text).
	RoleTool Role = "tool"
	// RoleHandoff marks a transfer of active-agent status.
	RoleHandoff Role = "handoff"
)

// ToolCallRecord captures an agent's request to invoke a named tool.
// The ID correlates the request with its eventual ToolResultRecord and is
// preserved so model gateways can rebuild provider message shapes.
type ToolCallRecord struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ToolResultRecord captures the outcome of a tool invocation. Exactly one of
// Output and Error is meaningful; a populated Error means the tool failed and
// its message was surfaced to the conversation.
type ToolResultRecord struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// HandoffRecord captures a transfer of control between two agents.
type HandoffRecord struct {
	From   string `json:"from"`
	Target string `json:"target"`
}

// Entry is one record in a run's conversation history: the user input, an
// agent answer, a tool-call record, a tool result, or a handoff marker.
// Entries are immutable once appended; the history is owned exclusively by
// the run that produced it.
type Entry struct {
	ID         string            `json:"id"`
	Role       Role              `json:"role"`
	Agent      string            `json:"agent,omitempty"` // authoring agent; empty for user input
	Content    string            `json:"content,omitempty"`
	ToolCall   *ToolCallRecord   `json:"tool_call,omitempty"`
	ToolResult *ToolResultRecord `json:"tool_result,omitempty"`
	Handoff    *HandoffRecord    `json:"handoff,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// NewID generates a unique identifier for entries, runs and tool calls.
func NewID() string { return uuid.NewString() }

func newEntry(role Role, agent string) Entry {
	return Entry{
		ID:        NewID(),
		Role:      role,
		Agent:     agent,
		Timestamp: time.Now().UTC(),
	}
}

// NewUserEntry creates the entry holding the caller-supplied input.
func NewUserEntry(input string) Entry {
	e := newEntry(RoleUser, "")
	e.Content = input
	return e
}

// NewFinalAnswerEntry creates the terminal assistant entry of a run.
func NewFinalAnswerEntry(agent, text string) Entry {
	e := newEntry(RoleAssistant, agent)
	e.Content = text
	return e
}

// NewToolCallEntry records an agent's decision to invoke a tool.
func NewToolCallEntry(agent string, call ToolCallRecord) Entry {
	e := newEntry(RoleAssistant, agent)
	e.ToolCall = &call
	e.Content = fmt.Sprintf("%s(%s)", call.Name, string(call.Arguments))
	return e
}

// NewToolResultEntry records the outcome of a tool invocation. On failure
// the error text becomes the entry content so the next decision request can
// react to it.
func NewToolResultEntry(agent string, result ToolResultRecord) Entry {
	e := newEntry(RoleTool, agent)
	e.ToolResult = &result
	if result.Error != "" {
		e.Content = result.Error
	} else {
		e.Content = result.Output
	}
	return e
}

// NewHandoffEntry records a transfer of active-agent status from one agent
// to another.
func NewHandoffEntry(from, target string) Entry {
	e := newEntry(RoleHandoff, from)
	e.Handoff = &HandoffRecord{From: from, Target: target}
	e.Content = fmt.Sprintf("transferring conversation to %s", target)
	return e
}

// IsToolError reports whether the entry is a tool result carrying an error.
func (e Entry) IsToolError() bool {
	return e.ToolResult != nil && e.ToolResult.Error != ""
}
