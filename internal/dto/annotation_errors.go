package dto

import (
	"errors"
	"fmt"
	"time"
)

// ErrSessionNotFound: the review session expired or was never opened.
var ErrSessionNotFound = errors.New("review session not found or expired")

// Typed failures of the annotation engine. None are fatal to the process; all
// are scoped to the current question context.

// ReconciliationError: the feature create/patch failed. Generation must not
// proceed on top of it.
type ReconciliationError struct {
	QuestionXPath string
	Action        string
	Err           error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("feature reconciliation failed for (%s, %s): %v", e.QuestionXPath, e.Action, e.Err)
}

func (e *ReconciliationError) Unwrap() error { return e.Err }

// GenerationRequestError: the provider request was rejected, e.g. an invalid
// action/language pairing.
type GenerationRequestError struct {
	Action   string
	Language string
	Err      error
}

func (e *GenerationRequestError) Error() string {
	return fmt.Sprintf("generation request rejected for (%s, %s): %v", e.Action, e.Language, e.Err)
}

func (e *GenerationRequestError) Unwrap() error { return e.Err }

// SaveError: a manual/accept mutation failed. The caller must keep the draft
// so the user can retry.
type SaveError struct {
	Err error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save failed: %v", e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// PollError: the poller gave up after too many consecutive failed refreshes.
// Single failures are retried silently on the next tick.
type PollError struct {
	Consecutive int
	Err         error
}

func (e *PollError) Error() string {
	return fmt.Sprintf("polling stalled after %d consecutive failures: %v", e.Consecutive, e.Err)
}

func (e *PollError) Unwrap() error { return e.Err }

// LimitExceededError blocks automatic generation when the organization's
// monthly quota is spent.
type LimitExceededError struct {
	Limit      int
	Used       int
	ResetAfter time.Time
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("usage limit exceeded: %d/%d, resets at %s", e.Used, e.Limit, e.ResetAfter.Format(time.RFC3339))
}
