package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hupe1980/agentrelay/core"
)

// Step produces one scripted decision for an incoming request.
type Step func(req Request) (core.Decision, error)

// Script is a deterministic in-memory Gateway useful for tests and
// examples. It plays back its steps in order; the final step repeats if the
// runner asks for more decisions than were scripted. Safe for concurrent
// use, though each run should normally own its own Script.
type Script struct {
	mu    sync.Mutex
	steps []Step
	calls int
}

// NewScript constructs a Script from the given steps.
func NewScript(steps ...Step) *Script {
	return &Script{steps: steps}
}

// Decide implements Gateway by replaying the scripted steps.
func (s *Script) Decide(_ context.Context, req Request) (core.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.steps) == 0 {
		return core.Decision{}, NewError("script", fmt.Errorf("no scripted steps"))
	}

	idx := s.calls
	if idx >= len(s.steps) {
		idx = len(s.steps) - 1
	}
	s.calls++

	return s.steps[idx](req)
}

// Calls returns how many decisions the script has produced.
func (s *Script) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Respond scripts a final answer.
func Respond(text string) Step {
	return func(Request) (core.Decision, error) {
		return core.FinalAnswer(text), nil
	}
}

// Call scripts a tool call with JSON-encoded arguments.
func Call(tool, args string) Step {
	return func(Request) (core.Decision, error) {
		return core.CallTool("", tool, json.RawMessage(args)), nil
	}
}

// Transfer scripts a handoff to the named agent.
func Transfer(target string) Step {
	return func(Request) (core.Decision, error) {
		return core.HandoffTo(target), nil
	}
}

// Fail scripts a gateway failure.
func Fail(err error) Step {
	return func(Request) (core.Decision, error) {
		return core.Decision{}, NewError("script", err)
	}
}
