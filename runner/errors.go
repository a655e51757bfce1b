package runner

import (
	"errors"
	"fmt"

	"github.com/hupe1980/agentrelay/core"
)

// ErrorKind classifies terminal run failures so callers can distinguish
// infinite-loop symptoms, capability mismatches, gateway outages and
// cancellation without string matching.
type ErrorKind string

const (
	// KindGateway marks a completion service failure (transport, auth,
	// rate limit). Not retried internally.
	KindGateway ErrorKind = "gateway"
	// KindInvalidReference marks a decision naming a tool or agent outside
	// the active agent's allowed sets. Fail-fast: it indicates a mismatch
	// between declared capabilities and model behavior.
	KindInvalidReference ErrorKind = "invalid_decision_reference"
	// KindStepLimit marks a run that hit the step cap.
	KindStepLimit ErrorKind = "step_limit_exceeded"
	// KindCancelled marks caller-initiated cancellation (including
	// deadline expiry). A distinct terminal outcome, not a defect.
	KindCancelled ErrorKind = "cancelled"
)

// ExecutionError is the structured failure returned by Run. A failed run
// always yields an ExecutionError rather than a partial or ambiguous text
// answer; the caller decides how to render it. History carries the entries
// accumulated up to the failure for diagnosis.
type ExecutionError struct {
	Kind    ErrorKind
	Agent   string // agent active when the run failed
	Detail  string
	History []core.Entry
	Err     error
}

func (e *ExecutionError) Error() string {
	if e.Agent != "" {
		return fmt.Sprintf("run failed (%s, agent %s): %s", e.Kind, e.Agent, e.Detail)
	}
	return fmt.Sprintf("run failed (%s): %s", e.Kind, e.Detail)
}

// Unwrap returns the underlying cause.
func (e *ExecutionError) Unwrap() error { return e.Err }

// KindOf extracts the ErrorKind from err, or "" when err is not an
// ExecutionError.
func KindOf(err error) ErrorKind {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Kind
	}
	return ""
}

// IsCancelled reports whether err is a cancellation outcome.
func IsCancelled(err error) bool { return KindOf(err) == KindCancelled }

// IsStepLimit reports whether err is a step-cap failure.
func IsStepLimit(err error) bool { return KindOf(err) == KindStepLimit }
