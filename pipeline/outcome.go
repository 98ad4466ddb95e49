package pipeline

import (
	"context"
	"errors"
)

// Outcome classifies how a pipeline run ended.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeUnstable
	OutcomeFailed
	OutcomeCanceled
)

// String returns the outcome name as reported in logs and notifications.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeUnstable:
		return "unstable"
	case OutcomeCanceled:
		return "canceled"
	default:
		return "failed"
	}
}

// OutcomeFor maps a pipeline error to its run outcome. Unstable is reserved
// for test failures; cancellation covers platform aborts.
func OutcomeFor(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrUnstable):
		return OutcomeUnstable
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	default:
		return OutcomeFailed
	}
}
