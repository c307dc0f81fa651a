package model

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when a deal, firm or session does not exist
	ErrNotFound = errors.New("not found")
	// ErrStoreUnavailable is returned when a backing store cannot be reached
	// or is missing required tables.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrProcedureUnavailable is returned when the enhanced tracking
	// procedure is not deployed. Basic inserts may still work.
	ErrProcedureUnavailable = errors.New("procedure unavailable")
)

// ValidationError describes a malformed field
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
