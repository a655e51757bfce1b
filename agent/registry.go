package agent

import (
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/tool"
)

// Registry holds the validated agent graph. Construction verifies that
// every tool reference resolves in the tool registry and every handoff
// target resolves among the configured agents; after that the registry is
// read-only.
type Registry struct {
	agents map[string]*Agent
	order  []string
}

// NewRegistry validates defs against tools and builds the agent graph.
// Duplicate agent names, dangling tool references and dangling handoff
// targets fail with a *core.ConfigurationError.
func NewRegistry(tools *tool.Registry, defs ...Definition) (*Registry, error) {
	r := &Registry{agents: make(map[string]*Agent, len(defs))}

	// First pass: identities, so handoff targets can reference agents
	// declared later (or form cycles).
	for _, def := range defs {
		if def.Name == "" {
			return nil, core.NewConfigurationError("agent", "", "agent name must not be empty")
		}
		if _, exists := r.agents[def.Name]; exists {
			return nil, core.NewConfigurationError("agent", def.Name, "duplicate agent name")
		}
		r.agents[def.Name] = &Agent{
			name:         def.Name,
			description:  def.Description,
			instructions: def.Instructions,
			toolNames:    make(map[string]tool.Tool),
			handoffSet:   make(map[string]struct{}),
		}
		r.order = append(r.order, def.Name)
	}

	// Second pass: resolve capability references.
	for _, def := range defs {
		a := r.agents[def.Name]
		for _, toolName := range def.Tools {
			t, ok := tools.Get(toolName)
			if !ok {
				return nil, core.NewConfigurationError("agent", def.Name, "references unknown tool "+toolName)
			}
			if _, dup := a.toolNames[toolName]; dup {
				return nil, core.NewConfigurationError("agent", def.Name, "duplicate tool reference "+toolName)
			}
			a.tools = append(a.tools, t)
			a.toolNames[toolName] = t
		}
		for _, target := range def.Handoffs {
			if _, ok := r.agents[target]; !ok {
				return nil, core.NewConfigurationError("agent", def.Name, "references unknown handoff target "+target)
			}
			if _, dup := a.handoffSet[target]; dup {
				return nil, core.NewConfigurationError("agent", def.Name, "duplicate handoff target "+target)
			}
			a.handoffs = append(a.handoffs, target)
			a.handoffSet[target] = struct{}{}
		}
	}

	return r, nil
}

// Get returns the agent registered under name.
func (r *Registry) Get(name string) (*Agent, bool) {
	a, ok := r.agents[name]
	return a, ok
}

// Names returns all agent names in declaration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// HandoffDescriptors builds the gateway-facing descriptors of an agent's
// allowed handoff targets, preserving declaration order.
func (r *Registry) HandoffDescriptors(a *Agent) []core.AgentDescriptor {
	descriptors := make([]core.AgentDescriptor, 0, len(a.handoffs))
	for _, target := range a.handoffs {
		t := r.agents[target]
		descriptors = append(descriptors, core.AgentDescriptor{
			Name:        t.name,
			Description: t.description,
		})
	}
	return descriptors
}
