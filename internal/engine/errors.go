package engine

import (
	"errors"
	"fmt"
)

// Sentinel errors the HTTP boundary maps to status codes.
var (
	// ErrInvalidInput marks malformed input: bad kind, non-positive
	// duration, malformed task reference.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks a missing entity. A session that exists but is
	// already completed also maps here; the two cases present one
	// externally-visible outcome.
	ErrNotFound = errors.New("not found")
)

// Not-found reasons, kept for diagnostics only.
const (
	ReasonMissing      = "missing"
	ReasonAlreadyEnded = "already_ended"
)

// NotFoundError carries the entity and an internal reason while matching
// ErrNotFound for the boundary's errors.Is checks.
type NotFoundError struct {
	Entity string
	Reason string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s", e.Entity, ErrNotFound)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
