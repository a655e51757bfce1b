package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/agent"
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/gateway"
	"github.com/hupe1980/agentrelay/internal/testutil"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/tool"
)

// newTestRunner wires a triage agent that can hand off to a stock agent
// holding a get_stock_data tool. The invoked flag observes tool execution.
func newTestRunner(t *testing.T, gw gateway.Gateway, optFns ...func(o *Options)) (*Runner, *bool) {
	t.Helper()

	invoked := false

	quote := tool.NewFunctionTool("get_stock_data", "Fetch stock data for a ticker symbol", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"symbol": map[string]any{"type": "string"},
		},
		"required": []string{"symbol"},
	}, func(_ context.Context, args map[string]any) (string, error) {
		invoked = true
		return "NVDA: $1,180.50 (+2.1%)", nil
	})

	failing := tool.NewFunctionTool("flaky_lookup", "Lookup that fails", map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}, func(_ context.Context, _ map[string]any) (string, error) {
		return "", errors.New("upstream timeout")
	})

	tools, err := tool.NewRegistry(quote, failing)
	require.NoError(t, err)

	agents, err := agent.NewRegistry(tools,
		agent.Definition{
			Name:         "triage",
			Description:  "Routes requests to specialists",
			Instructions: "Decide which specialist should handle the request.",
			Handoffs:     []string{"stock_agent"},
		},
		agent.Definition{
			Name:         "stock_agent",
			Description:  "Answers stock questions",
			Instructions: "Use the stock data tool to answer.",
			Tools:        []string{"get_stock_data", "flaky_lookup"},
			Handoffs:     []string{"triage"},
		},
	)
	require.NoError(t, err)

	optFns = append([]func(o *Options){func(o *Options) { o.Logger = logging.NoOpLogger{} }}, optFns...)

	return New(agents, gw, optFns...), &invoked
}

func TestRun_FinalAnswer(t *testing.T) {
	script := gateway.NewScript(gateway.Respond("All good."))
	r, _ := newTestRunner(t, script)

	result, err := r.Run(context.Background(), "triage", "How are things?")
	require.NoError(t, err)

	assert.Equal(t, "All good.", result.Output)
	assert.Equal(t, "triage", result.Agent)
	assert.Equal(t, 1, result.Steps)
	assert.NotEmpty(t, result.RunID)

	assert.Equal(t, []core.Role{core.RoleUser, core.RoleAssistant}, testutil.Roles(result.History))
	assert.Equal(t, "How are things?", result.History[0].Content)
	assert.Equal(t, result.Output, result.LastEntry().Content)
}

func TestRun_ToolCallAccounting(t *testing.T) {
	script := gateway.NewScript(
		gateway.Transfer("stock_agent"),
		gateway.Call("get_stock_data", `{"symbol":"NVDA"}`),
		gateway.Call("get_stock_data", `{"symbol":"AMD"}`),
		gateway.Respond("Both are up today."),
	)
	r, invoked := newTestRunner(t, script)

	result, err := r.Run(context.Background(), "triage", "Compare NVDA and AMD")
	require.NoError(t, err)
	assert.True(t, *invoked)

	// One entry for the user input, one handoff marker, then a call record
	// and a result per tool call, then the final answer.
	assert.Equal(t, []core.Role{
		core.RoleUser,
		core.RoleHandoff,
		core.RoleAssistant, core.RoleTool,
		core.RoleAssistant, core.RoleTool,
		core.RoleAssistant,
	}, testutil.Roles(result.History))

	assert.Equal(t, 4, result.Steps)
	assert.Equal(t, 4, script.Calls())

	// Call and result records share a correlation id.
	call := result.History[2]
	res := result.History[3]
	require.NotNil(t, call.ToolCall)
	require.NotNil(t, res.ToolResult)
	assert.Equal(t, call.ToolCall.ID, res.ToolResult.ID)
	assert.Equal(t, "NVDA: $1,180.50 (+2.1%)", res.ToolResult.Output)
}

func TestRun_InvalidToolReference(t *testing.T) {
	// The triage agent holds no tools at all.
	script := gateway.NewScript(gateway.Call("get_stock_data", `{"symbol":"NVDA"}`))
	r, invoked := newTestRunner(t, script)

	_, err := r.Run(context.Background(), "triage", "Quote NVDA")
	require.Error(t, err)
	assert.False(t, *invoked, "tool outside the agent's set must never execute")

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, KindInvalidReference, execErr.Kind)
	assert.Equal(t, "triage", execErr.Agent)

	// The failure is recorded in the surfaced history.
	last := execErr.History[len(execErr.History)-1]
	require.NotNil(t, last.ToolResult)
	assert.Contains(t, last.ToolResult.Error, "get_stock_data")
}

func TestRun_InvalidHandoffTarget(t *testing.T) {
	// stock_agent may hand back to triage, but triage only knows stock_agent.
	script := gateway.NewScript(gateway.Transfer("spanish_agent"))
	r, _ := newTestRunner(t, script)

	_, err := r.Run(context.Background(), "triage", "Hola")
	require.Error(t, err)
	assert.Equal(t, KindInvalidReference, KindOf(err))
}

func TestRun_HandoffPreservesHistory(t *testing.T) {
	var seen []core.Entry

	script := gateway.NewScript(
		gateway.Transfer("stock_agent"),
		func(req gateway.Request) (core.Decision, error) {
			seen = append([]core.Entry{}, req.History...)
			return core.FinalAnswer("Taken over."), nil
		},
	)
	r, _ := newTestRunner(t, script)

	result, err := r.Run(context.Background(), "triage", "Stock question")
	require.NoError(t, err)
	assert.Equal(t, "stock_agent", result.Agent)

	// The target's first decision request sees the prior history verbatim
	// plus the handoff marker.
	require.Len(t, seen, 2)
	assert.Equal(t, core.RoleUser, seen[0].Role)
	assert.Equal(t, "Stock question", seen[0].Content)
	require.NotNil(t, seen[1].Handoff)
	assert.Equal(t, "triage", seen[1].Handoff.From)
	assert.Equal(t, "stock_agent", seen[1].Handoff.Target)
}

func TestRun_StepLimitOnHandoffCycle(t *testing.T) {
	// triage and stock_agent transfer to each other forever.
	script := gateway.NewScript(
		gateway.Transfer("stock_agent"),
		gateway.Transfer("triage"),
		gateway.Transfer("stock_agent"),
		gateway.Transfer("triage"),
		gateway.Transfer("stock_agent"),
	)
	r, _ := newTestRunner(t, script, func(o *Options) { o.MaxSteps = 4 })

	_, err := r.Run(context.Background(), "triage", "Loop forever")
	require.Error(t, err)
	assert.True(t, IsStepLimit(err))

	// The gateway is consulted exactly cap times before the run fails.
	assert.Equal(t, 4, script.Calls())
}

func TestRun_ToolErrorIsRecoverable(t *testing.T) {
	script := gateway.NewScript(
		gateway.Transfer("stock_agent"),
		gateway.Call("flaky_lookup", `{}`),
		gateway.Respond("The lookup service is unavailable right now."),
	)
	r, _ := newTestRunner(t, script)

	result, err := r.Run(context.Background(), "triage", "Look it up")
	require.NoError(t, err, "a failing tool must not fail the run")

	toolErrs := testutil.ToolErrors(result.History)
	require.Len(t, toolErrs, 1)
	assert.Contains(t, toolErrs[0].ToolResult.Error, "upstream timeout")
	assert.Equal(t, "The lookup service is unavailable right now.", result.Output)
}

func TestRun_GatewayFailure(t *testing.T) {
	script := gateway.NewScript(gateway.Fail(errors.New("rate limited")))
	r, _ := newTestRunner(t, script)

	_, err := r.Run(context.Background(), "triage", "Hello")
	require.Error(t, err)
	assert.Equal(t, KindGateway, KindOf(err))

	var gwErr *gateway.Error
	assert.ErrorAs(t, err, &gwErr)
}

func TestRun_UnknownStartAgent(t *testing.T) {
	r, _ := newTestRunner(t, gateway.NewScript(gateway.Respond("hi")))

	_, err := r.Run(context.Background(), "ghost", "Hello")
	require.Error(t, err)

	var cfgErr *core.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestRun_TriageScenario(t *testing.T) {
	script := gateway.NewScript(
		gateway.Transfer("stock_agent"),
		gateway.Call("get_stock_data", `{"symbol":"NVDA"}`),
		gateway.Respond("NVIDIA trades at $1,180.50, up 2.1% today."),
	)
	r, _ := newTestRunner(t, script)

	result, err := r.Run(context.Background(), "triage", "What is the current price of NVDA?")
	require.NoError(t, err)

	assert.Equal(t, "stock_agent", result.Agent)
	assert.Len(t, result.History, 5)
	assert.Equal(t, []core.Role{
		core.RoleUser,
		core.RoleHandoff,
		core.RoleAssistant,
		core.RoleTool,
		core.RoleAssistant,
	}, testutil.Roles(result.History))
}

func TestRunWithHistory(t *testing.T) {
	var historyLen int

	script := gateway.NewScript(
		gateway.Respond("First answer."),
		func(req gateway.Request) (core.Decision, error) {
			historyLen = len(req.History)
			return core.FinalAnswer("Second answer."), nil
		},
	)
	r, _ := newTestRunner(t, script)

	first, err := r.Run(context.Background(), "triage", "First question")
	require.NoError(t, err)
	require.Len(t, first.History, 2)

	second, err := r.RunWithHistory(context.Background(), "triage", "Follow-up", first.History)
	require.NoError(t, err)

	// Prior entries plus the new user input.
	assert.Equal(t, 3, historyLen)
	assert.Len(t, second.History, 4)
	assert.Equal(t, "First question", second.History[0].Content)
}

// blockingGateway parks every decision until the context is cancelled.
type blockingGateway struct{}

func (blockingGateway) Decide(ctx context.Context, _ gateway.Request) (core.Decision, error) {
	<-ctx.Done()
	return core.Decision{}, ctx.Err()
}

func TestRun_Cancellation(t *testing.T) {
	r, _ := newTestRunner(t, blockingGateway{})

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := r.Run(ctx, "triage", "Hang forever")
		done <- err
	}()

	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.True(t, IsCancelled(err))
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop after cancellation")
	}
}

func TestRunner_CancelByID(t *testing.T) {
	r, _ := newTestRunner(t, blockingGateway{})

	done := make(chan error, 1)
	go func() {
		_, err := r.Run(context.Background(), "triage", "Hang forever")
		done <- err
	}()

	// Wait for the run to register itself.
	var ids []string
	for i := 0; i < 100; i++ {
		ids = r.ActiveRuns()
		if len(ids) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.Len(t, ids, 1)

	assert.True(t, r.Cancel(ids[0]))

	select {
	case err := <-done:
		assert.True(t, IsCancelled(err))
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop after Cancel")
	}

	// The id is gone once the run returns.
	assert.False(t, r.Cancel(ids[0]))
}

func TestRunner_MaxConcurrentRuns(t *testing.T) {
	script := gateway.NewScript(gateway.Respond("done"))
	r, _ := newTestRunner(t, script, func(o *Options) { o.MaxConcurrentRuns = 1 })

	for i := 0; i < 3; i++ {
		_, err := r.Run(context.Background(), "triage", "Quick question")
		require.NoError(t, err)
	}

	assert.Equal(t, 3, script.Calls())
}
