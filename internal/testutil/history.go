package testutil

import (
	"github.com/hupe1980/agentrelay/core"
)

// Roles projects a history onto its entry roles, preserving order.
func Roles(history []core.Entry) []core.Role {
	roles := make([]core.Role, 0, len(history))
	for _, e := range history {
		roles = append(roles, e.Role)
	}

	return roles
}

// Contents projects a history onto its entry contents, preserving order.
func Contents(history []core.Entry) []string {
	contents := make([]string, 0, len(history))
	for _, e := range history {
		contents = append(contents, e.Content)
	}

	return contents
}

// Agents projects a history onto its entry agent names, preserving order.
func Agents(history []core.Entry) []string {
	agents := make([]string, 0, len(history))
	for _, e := range history {
		agents = append(agents, e.Agent)
	}

	return agents
}

// ToolErrors returns the tool result entries that carry an error.
func ToolErrors(history []core.Entry) []core.Entry {
	var out []core.Entry

	for _, e := range history {
		if e.IsToolError() {
			out = append(out, e)
		}
	}

	return out
}
