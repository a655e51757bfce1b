package core

import (
	"fmt"
	"sync"
)

// StepLimiter bounds the number of decision/dispatch cycles in a run. It is
// the runtime's termination guarantee against tool-call and handoff cycles
// in the agent graph.
type StepLimiter struct {
	max   int
	count int
	mu    sync.Mutex
}

// NewStepLimiter creates a limiter allowing at most max steps. A max of 0
// means unlimited.
func NewStepLimiter(max int) *StepLimiter {
	return &StepLimiter{max: max}
}

// Increment counts one step and returns an error once the cap is exceeded.
func (sl *StepLimiter) Increment() error {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	sl.count++
	if sl.max > 0 && sl.count > sl.max {
		return fmt.Errorf("exceeded max steps: %d", sl.max)
	}

	return nil
}

// Count returns the number of steps taken so far.
func (sl *StepLimiter) Count() int {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	return sl.count
}

// Remaining returns the steps left before the cap, or -1 when unlimited.
func (sl *StepLimiter) Remaining() int {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	if sl.max == 0 {
		return -1
	}

	return sl.max - sl.count
}
