package runner

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/hupe1980/agentrelay/agent"
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/gateway"
	"github.com/hupe1980/agentrelay/logging"
)

// DefaultMaxSteps is the step cap applied when Options.MaxSteps is zero.
const DefaultMaxSteps = 12

// Options configures a Runner.
type Options struct {
	// MaxSteps caps the number of gateway decisions per run. Zero selects
	// DefaultMaxSteps.
	MaxSteps int

	// MaxConcurrentRuns bounds the number of runs executing at once. Zero
	// means unlimited; additional runs block in Run until a slot frees or
	// their context is cancelled.
	MaxConcurrentRuns int

	// Logger receives structured run lifecycle events.
	Logger logging.Logger
}

// Runner executes conversations against a configured agent registry. It is
// safe for concurrent use; each Run owns its own executor and history.
type Runner struct {
	agents  *agent.Registry
	gateway gateway.Gateway
	opts    Options

	sem *semaphore.Weighted

	mu     sync.Mutex
	active map[string]context.CancelFunc
}

// New creates a Runner over the given agent registry and decision gateway.
func New(agents *agent.Registry, gw gateway.Gateway, optFns ...func(o *Options)) *Runner {
	opts := Options{
		MaxSteps: DefaultMaxSteps,
		Logger:   logging.NewDefaultSlogLogger(),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	r := &Runner{
		agents:  agents,
		gateway: gw,
		opts:    opts,
		active:  make(map[string]context.CancelFunc),
	}

	if opts.MaxConcurrentRuns > 0 {
		r.sem = semaphore.NewWeighted(int64(opts.MaxConcurrentRuns))
	}

	return r
}

// Run starts a fresh conversation with the named agent and drives it to a
// terminal outcome. On success the result carries the final answer and the
// complete history; on failure the returned error is an *ExecutionError.
func (r *Runner) Run(ctx context.Context, startAgent, input string) (*core.RunResult, error) {
	return r.RunWithHistory(ctx, startAgent, input, nil)
}

// RunWithHistory behaves like Run but seeds the conversation with prior
// entries from an earlier result. The runner never retains history between
// runs; passing it back is the caller's responsibility.
func (r *Runner) RunWithHistory(ctx context.Context, startAgent, input string, prior []core.Entry) (*core.RunResult, error) {
	start, ok := r.agents.Get(startAgent)
	if !ok {
		return nil, core.NewConfigurationError("agent", startAgent, "start agent is not configured")
	}

	if r.sem != nil {
		if err := r.sem.Acquire(ctx, 1); err != nil {
			return nil, &ExecutionError{
				Kind:   KindCancelled,
				Agent:  startAgent,
				Detail: "run cancelled while waiting for a run slot",
				Err:    err,
			}
		}
		defer r.sem.Release(1)
	}

	runID := core.NewID()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.register(runID, cancel)
	defer r.unregister(runID)

	r.opts.Logger.Info(
		"runner.run.start",
		"run", runID,
		"agent", startAgent,
		"prior_entries", len(prior),
	)

	exec := newExecutor(runID, r.agents, r.gateway, start, prior, input, r.opts.MaxSteps, r.opts.Logger)

	return exec.run(runCtx)
}

// Cancel aborts the identified run at its next suspension point. It returns
// false when no run with that id is active.
func (r *Runner) Cancel(runID string) bool {
	r.mu.Lock()
	cancel, ok := r.active[runID]
	r.mu.Unlock()

	if ok {
		cancel()
	}

	return ok
}

// CancelAll aborts every active run.
func (r *Runner) CancelAll() {
	r.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(r.active))
	for _, cancel := range r.active {
		cancels = append(cancels, cancel)
	}
	r.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// ActiveRuns returns the ids of runs currently executing.
func (r *Runner) ActiveRuns() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.active))
	for id := range r.active {
		ids = append(ids, id)
	}

	return ids
}

func (r *Runner) register(runID string, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active[runID] = cancel
}

func (r *Runner) unregister(runID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, runID)
}
