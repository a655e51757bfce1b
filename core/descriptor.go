package core

// ToolDescriptor advertises a callable tool to a model completion gateway:
// its name, guidance text and a minimal JSON-Schema-like parameter map.
type ToolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// AgentDescriptor advertises a handoff target to a model completion gateway.
type AgentDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
