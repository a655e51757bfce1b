package tool

import (
	"github.com/hupe1980/agentrelay/core"
)

// Registry resolves tool names to implementations. It is populated once at
// configuration time and read-only afterwards, so it is safe to share
// across concurrent runs without locking.
type Registry struct {
	tools map[string]Tool
	order []string
}

// NewRegistry constructs a registry from the given tools. Duplicate names
// fail with a *core.ConfigurationError.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if t.Name() == "" {
			return nil, core.NewConfigurationError("tool", "", "tool name must not be empty")
		}
		if _, exists := r.tools[t.Name()]; exists {
			return nil, core.NewConfigurationError("tool", t.Name(), "duplicate tool name")
		}
		r.tools[t.Name()] = t
		r.order = append(r.order, t.Name())
	}
	return r, nil
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns all registered tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Descriptor builds the gateway-facing descriptor for the named tool.
func (r *Registry) Descriptor(name string) (core.ToolDescriptor, bool) {
	t, ok := r.tools[name]
	if !ok {
		return core.ToolDescriptor{}, false
	}
	return core.ToolDescriptor{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  t.Parameters(),
	}, true
}
