package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for infrastructure and workflow facts. Stores and managers
// return these (optionally wrapped) so callers can match with errors.Is.
var (
	// ErrSessionNotFound is returned when a session ID is absent from the
	// store. The workflow engine recovers from it by creating a fresh
	// session; it is never surfaced to end users.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidTransition signals a state change outside the transition
	// table. It indicates a workflow bug and must be raised, not clamped.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrSchemeNotFound is user-facing and recoverable: the named scheme is
	// not in the catalog.
	ErrSchemeNotFound = errors.New("scheme not found")

	// ErrBulkUnsupported is returned by TTL-keyed stores for LoadAll/SaveAll;
	// full-table operations are disallowed at scale.
	ErrBulkUnsupported = errors.New("bulk session operations unsupported")
)

// InvalidTransitionError carries the rejected pair. It unwraps to
// ErrInvalidTransition.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition %q -> %q", e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }
