package runner

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hupe1980/agentrelay/agent"
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/gateway"
	"github.com/hupe1980/agentrelay/logging"
)

// executor drives a single run through its decision/dispatch cycles. It is
// created fresh per Run invocation and owns the history exclusively; the
// agent registry and gateway it references are read-only.
type executor struct {
	runID   string
	agents  *agent.Registry
	gateway gateway.Gateway
	active  *agent.Agent
	history []core.Entry
	limiter *core.StepLimiter
	logger  logging.Logger
}

func newExecutor(
	runID string,
	agents *agent.Registry,
	gw gateway.Gateway,
	start *agent.Agent,
	prior []core.Entry,
	input string,
	maxSteps int,
	logger logging.Logger,
) *executor {
	history := make([]core.Entry, 0, len(prior)+8)
	history = append(history, prior...)
	history = append(history, core.NewUserEntry(input))

	return &executor{
		runID:   runID,
		agents:  agents,
		gateway: gw,
		active:  start,
		history: history,
		limiter: core.NewStepLimiter(maxSteps),
		logger:  logger,
	}
}

// run loops until a final answer, a terminal failure or the step cap.
func (e *executor) run(ctx context.Context) (*core.RunResult, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, e.fail(KindCancelled, "run cancelled before next step", err)
		}

		if err := e.limiter.Increment(); err != nil {
			return nil, e.fail(KindStepLimit, err.Error(), nil)
		}

		decision, err := e.decide(ctx)
		if err != nil {
			return nil, err
		}

		switch decision.Kind {
		case core.DecisionFinalAnswer:
			e.history = append(e.history, core.NewFinalAnswerEntry(e.active.Name(), decision.Answer))
			e.logger.Info(
				"runner.run.complete",
				"run", e.runID,
				"agent", e.active.Name(),
				"steps", e.limiter.Count(),
			)
			return &core.RunResult{
				RunID:   e.runID,
				Agent:   e.active.Name(),
				Output:  decision.Answer,
				History: e.history,
				Steps:   e.limiter.Count(),
			}, nil

		case core.DecisionToolCall:
			if err := e.executeToolCall(ctx, decision.ToolCall); err != nil {
				return nil, err
			}

		case core.DecisionHandoff:
			if err := e.handoff(decision.Target); err != nil {
				return nil, err
			}

		default:
			return nil, e.fail(KindGateway, fmt.Sprintf("unknown decision kind %q", decision.Kind), nil)
		}
	}
}

// decide submits the decision request for the active agent. This is the
// primary suspension point of a step.
func (e *executor) decide(ctx context.Context) (core.Decision, error) {
	req := gateway.Request{
		Agent:        e.active.Name(),
		Instructions: e.active.Instructions(),
		History:      e.history,
		Tools:        e.active.ToolDescriptors(),
		Handoffs:     e.agents.HandoffDescriptors(e.active),
	}

	e.logger.Debug(
		"runner.step.decide",
		"run", e.runID,
		"agent", e.active.Name(),
		"step", e.limiter.Count(),
		"history_len", len(e.history),
	)

	decision, err := e.gateway.Decide(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return core.Decision{}, e.fail(KindCancelled, "run cancelled during gateway call", ctx.Err())
		}
		return core.Decision{}, e.fail(KindGateway, err.Error(), err)
	}

	return decision, nil
}

// executeToolCall validates tool membership, invokes the tool and appends
// both the call record and the result to the history. Tool failures are
// recoverable: the error text becomes a history entry the agent's next
// decision can react to.
func (e *executor) executeToolCall(ctx context.Context, call *core.ToolCallRecord) error {
	if call == nil {
		return e.fail(KindGateway, "tool call decision without a tool call record", nil)
	}

	t, ok := e.active.Tool(call.Name)
	if !ok {
		detail := fmt.Sprintf("tool %q is not available to agent %q", call.Name, e.active.Name())
		e.history = append(e.history, core.NewToolResultEntry(e.active.Name(), core.ToolResultRecord{
			ID:    call.ID,
			Name:  call.Name,
			Error: detail,
		}))
		return e.fail(KindInvalidReference, detail, nil)
	}

	e.history = append(e.history, core.NewToolCallEntry(e.active.Name(), *call))

	result := core.ToolResultRecord{ID: call.ID, Name: call.Name}

	args := map[string]any{}
	if len(call.Arguments) > 0 {
		if err := json.Unmarshal(call.Arguments, &args); err != nil {
			result.Error = fmt.Sprintf("malformed tool arguments: %v", err)
		}
	}

	if result.Error == "" {
		output, err := t.Invoke(ctx, args)
		if err != nil {
			if ctx.Err() != nil {
				return e.fail(KindCancelled, "run cancelled during tool invocation", ctx.Err())
			}
			result.Error = err.Error()
			e.logger.Warn(
				"runner.tool.error",
				"run", e.runID,
				"agent", e.active.Name(),
				"tool", call.Name,
				"error", err.Error(),
			)
		} else {
			result.Output = output
			e.logger.Debug(
				"runner.tool.executed",
				"run", e.runID,
				"agent", e.active.Name(),
				"tool", call.Name,
			)
		}
	}

	e.history = append(e.history, core.NewToolResultEntry(e.active.Name(), result))

	return nil
}

// handoff validates the target against the active agent's allowed set, then
// replaces the active agent. The full prior history is preserved verbatim
// so the target's first decision request sees the whole conversation.
func (e *executor) handoff(target string) error {
	if !e.active.AllowsHandoff(target) {
		detail := fmt.Sprintf("agent %q is not a handoff target of agent %q", target, e.active.Name())
		entry := core.NewHandoffEntry(e.active.Name(), target)
		entry.Content = detail
		e.history = append(e.history, entry)
		return e.fail(KindInvalidReference, detail, nil)
	}

	next, ok := e.agents.Get(target)
	if !ok {
		// Registry construction guarantees handoff targets resolve.
		return e.fail(KindInvalidReference, fmt.Sprintf("handoff target %q not configured", target), nil)
	}

	e.history = append(e.history, core.NewHandoffEntry(e.active.Name(), target))
	e.logger.Info(
		"runner.handoff",
		"run", e.runID,
		"from", e.active.Name(),
		"to", target,
	)
	e.active = next

	return nil
}

func (e *executor) fail(kind ErrorKind, detail string, cause error) *ExecutionError {
	e.logger.Error(
		"runner.run.failed",
		"run", e.runID,
		"agent", e.active.Name(),
		"kind", string(kind),
		"detail", detail,
		"steps", e.limiter.Count(),
	)

	return &ExecutionError{
		Kind:    kind,
		Agent:   e.active.Name(),
		Detail:  detail,
		History: e.history,
		Err:     cause,
	}
}
