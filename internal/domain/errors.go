package domain

import (
	"errors"
	"fmt"
)

// Caller-error taxonomy. Services return these (wrapped with context) so the
// API layer can map each kind to a distinct response without string matching.
var (
	ErrNotFound           = errors.New("not found")
	ErrPermission         = errors.New("permission denied")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrAlreadyDecided     = errors.New("decision already recorded")
	ErrAlreadyCompleted   = errors.New("evaluation already completed")
	ErrAlreadyResponded   = errors.New("acceptance already responded to")
	ErrCompetitiveFunding = errors.New("applications with competitive funding cannot be rejected")
	ErrValidation         = errors.New("validation failed")
	ErrDeadlinePassed     = errors.New("acceptance deadline has passed")
)

// InvalidTransitionError carries the offending edge. It matches
// ErrInvalidTransition under errors.Is.
type InvalidTransitionError struct {
	From ApplicationStatus
	To   ApplicationStatus
}

func (e *InvalidTransitionError) Error() string {
	next := NextStatuses(e.From)
	if len(next) == 0 {
		return fmt.Sprintf("invalid status transition from %q to %q: %q is a terminal status", e.From, e.To, e.From)
	}
	return fmt.Sprintf("invalid status transition from %q to %q: valid next statuses are %v", e.From, e.To, next)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
