// Package config loads agent topologies from YAML files. A configuration
// file declares agents with their instructions, tool references and handoff
// targets plus runner limits; referential integrity against the actual tool
// set is still enforced by agent.NewRegistry at construction time.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/agentrelay/agent"
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/tool"
)

// AgentConfig declares a single agent in a configuration file.
type AgentConfig struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Instructions string   `yaml:"instructions"`
	Tools        []string `yaml:"tools,omitempty"`
	Handoffs     []string `yaml:"handoffs,omitempty"`
}

// RunnerConfig declares runner limits.
type RunnerConfig struct {
	MaxSteps          int `yaml:"max_steps,omitempty"`
	MaxConcurrentRuns int `yaml:"max_concurrent_runs,omitempty"`
}

// File is the root of a configuration document.
type File struct {
	Agents []AgentConfig `yaml:"agents"`
	Runner RunnerConfig  `yaml:"runner,omitempty"`
}

// Load reads and parses the YAML file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return f, nil
}

// Parse decodes a YAML configuration document and validates its shape.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	if err := f.validate(); err != nil {
		return nil, err
	}

	return &f, nil
}

func (f *File) validate() error {
	if len(f.Agents) == 0 {
		return core.NewConfigurationError("config", "", "no agents declared")
	}

	for i, a := range f.Agents {
		if a.Name == "" {
			return core.NewConfigurationError("config", fmt.Sprintf("agents[%d]", i), "agent name must not be empty")
		}

		if a.Instructions == "" {
			return core.NewConfigurationError("config", a.Name, "agent instructions must not be empty")
		}
	}

	if f.Runner.MaxSteps < 0 {
		return core.NewConfigurationError("config", "runner", "max_steps must not be negative")
	}

	if f.Runner.MaxConcurrentRuns < 0 {
		return core.NewConfigurationError("config", "runner", "max_concurrent_runs must not be negative")
	}

	return nil
}

// Build resolves the declared agents against the given tool registry and
// returns the validated agent registry. Dangling tool or handoff references
// fail here.
func (f *File) Build(tools *tool.Registry) (*agent.Registry, error) {
	return agent.NewRegistry(tools, f.Definitions()...)
}

// Definitions converts the declared agents into registry definitions.
func (f *File) Definitions() []agent.Definition {
	defs := make([]agent.Definition, 0, len(f.Agents))
	for _, a := range f.Agents {
		defs = append(defs, agent.Definition{
			Name:         a.Name,
			Description:  a.Description,
			Instructions: a.Instructions,
			Tools:        a.Tools,
			Handoffs:     a.Handoffs,
		})
	}

	return defs
}
