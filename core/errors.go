package core

import "fmt"

// ConfigurationError reports an invalid agent/tool configuration detected at
// construction time: duplicate names, dangling tool references, dangling
// handoff targets. It is fatal and surfaced before any run can start.
type ConfigurationError struct {
	Kind   string // "agent" or "tool"
	Name   string // offending agent or tool name
	Detail string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error (%s %q): %s", e.Kind, e.Name, e.Detail)
}

// NewConfigurationError creates a ConfigurationError for the named entity.
func NewConfigurationError(kind, name, detail string) *ConfigurationError {
	return &ConfigurationError{Kind: kind, Name: name, Detail: detail}
}
