// Package agent defines the immutable agent data model: a named behavioral
// profile with bounded tool and handoff capabilities, plus a registry that
// validates the whole agent graph at construction time. Agents carry no
// per-run state, which makes the graph safe to share across concurrent runs
// without locking.
package agent

import (
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/tool"
)

// Definition declares an agent for registry construction: its identity,
// behavioral instructions (opaque to the runtime), the tool names it may
// call and the agent names it may hand off to. Handoffs may form cycles;
// the runner's step cap bounds traversal.
type Definition struct {
	Name         string
	Description  string
	Instructions string
	Tools        []string
	Handoffs     []string
}

// Agent is a validated, immutable agent definition. Construct via
// NewRegistry; never mutated afterwards.
type Agent struct {
	name         string
	description  string
	instructions string
	tools        []tool.Tool
	toolNames    map[string]tool.Tool
	handoffs     []string
	handoffSet   map[string]struct{}
}

// Name returns the agent's unique identity.
func (a *Agent) Name() string { return a.name }

// Description returns the short description advertised to other agents as a
// handoff target.
func (a *Agent) Description() string { return a.description }

// Instructions returns the agent's behavioral instructions.
func (a *Agent) Instructions() string { return a.instructions }

// Tools returns the agent's allowed tools in declaration order.
func (a *Agent) Tools() []tool.Tool {
	tools := make([]tool.Tool, len(a.tools))
	copy(tools, a.tools)
	return tools
}

// Tool returns the named tool if it is in the agent's allowed set.
func (a *Agent) Tool(name string) (tool.Tool, bool) {
	t, ok := a.toolNames[name]
	return t, ok
}

// Handoffs returns the agent names this agent may transfer to, in
// declaration order.
func (a *Agent) Handoffs() []string {
	targets := make([]string, len(a.handoffs))
	copy(targets, a.handoffs)
	return targets
}

// AllowsHandoff reports whether target is in the agent's allowed handoff
// set.
func (a *Agent) AllowsHandoff(target string) bool {
	_, ok := a.handoffSet[target]
	return ok
}

// ToolDescriptors builds the gateway-facing descriptors of the agent's
// allowed tools, preserving declaration order.
func (a *Agent) ToolDescriptors() []core.ToolDescriptor {
	descriptors := make([]core.ToolDescriptor, 0, len(a.tools))
	for _, t := range a.tools {
		descriptors = append(descriptors, core.ToolDescriptor{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return descriptors
}
