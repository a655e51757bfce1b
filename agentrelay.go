// Package agentrelay provides a high-level façade over the agent, tool and
// runner packages enabling rapid construction of multi-agent conversation
// systems. Most applications interact with this package by:
//  1. Creating an AgentRelay via New() with a gateway, tools and agent definitions
//  2. Driving conversations with Run (or RunWithHistory for multi-turn use)
//  3. Inspecting the returned RunResult and its history
//
// The façade delegates orchestration to runner.Runner while keeping setup
// ergonomics concise. Configuration errors (duplicate names, dangling tool or
// handoff references) surface at construction, never mid-run.
package agentrelay

import (
	"context"

	"github.com/hupe1980/agentrelay/agent"
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/gateway"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/runner"
	"github.com/hupe1980/agentrelay/tool"
)

// Options configures the AgentRelay instance.
type Options struct {
	// MaxSteps caps the number of gateway decisions per run. Zero selects
	// runner.DefaultMaxSteps.
	MaxSteps int

	// MaxConcurrentRuns bounds simultaneous runs. Zero means unlimited.
	MaxConcurrentRuns int

	// Logger (defaults to a slog-backed text logger if nil).
	Logger logging.Logger
}

// AgentRelay is the high-level façade aggregating the tool registry, the
// agent registry and the runner.
type AgentRelay struct {
	tools  *tool.Registry
	agents *agent.Registry
	runner *runner.Runner
}

// New validates the tool and agent configuration and creates a ready-to-use
// AgentRelay. All referential integrity checks happen here.
func New(gw gateway.Gateway, tools []tool.Tool, defs []agent.Definition, optFns ...func(o *Options)) (*AgentRelay, error) {
	opts := Options{}

	for _, fn := range optFns {
		fn(&opts)
	}

	toolRegistry, err := tool.NewRegistry(tools...)
	if err != nil {
		return nil, err
	}

	agentRegistry, err := agent.NewRegistry(toolRegistry, defs...)
	if err != nil {
		return nil, err
	}

	r := runner.New(agentRegistry, gw, func(o *runner.Options) {
		o.MaxSteps = opts.MaxSteps
		o.MaxConcurrentRuns = opts.MaxConcurrentRuns
		if opts.Logger != nil {
			o.Logger = opts.Logger
		}
	})

	return &AgentRelay{
		tools:  toolRegistry,
		agents: agentRegistry,
		runner: r,
	}, nil
}

// Run starts a fresh conversation with the named agent.
func (a *AgentRelay) Run(ctx context.Context, startAgent, input string) (*core.RunResult, error) {
	return a.runner.Run(ctx, startAgent, input)
}

// RunWithHistory starts a conversation seeded with prior entries, typically
// the History of an earlier RunResult.
func (a *AgentRelay) RunWithHistory(ctx context.Context, startAgent, input string, prior []core.Entry) (*core.RunResult, error) {
	return a.runner.RunWithHistory(ctx, startAgent, input, prior)
}

// Runner exposes the underlying runner for cancellation and introspection.
func (a *AgentRelay) Runner() *runner.Runner { return a.runner }

// Agents exposes the validated agent registry.
func (a *AgentRelay) Agents() *agent.Registry { return a.agents }

// Tools exposes the shared tool registry.
func (a *AgentRelay) Tools() *tool.Registry { return a.tools }
