package types

import (
	"errors"
	"fmt"
	"strings"
)

// Record and ledger operation errors.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("record not found")
	ErrConflict          = errors.New("record id already present")
	ErrStorageCorrupt    = errors.New("stored value is not a JSON array")
	ErrUnknownKind       = errors.New("unknown record kind")
	ErrUnknownCollection = errors.New("unknown collection")
	ErrInvalidSortKey    = errors.New("invalid sort key")
	ErrInvalidData       = errors.New("invalid record data")
)

// Medium errors.
var (
	ErrKeyNotFound = errors.New("key not found")
)

// Shelf lifecycle errors.
var (
	ErrShelfDetached   = errors.New("shelf is detached")
	ErrAlreadyAttached = errors.New("shelf is already attached")
)

// ValidationError reports the fields of a record that failed validation.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Kind    Kind
	Missing []string // json names of required fields left empty
	Invalid []string // json names of fields holding a disallowed value
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid fields: "+strings.Join(e.Invalid, ", "))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, ErrValidation)
	}
	return fmt.Sprintf("%s: %s", e.Kind, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError reports an id absent from a collection or the trash ledger.
// It matches ErrNotFound with errors.Is.
type NotFoundError struct {
	Collection string
	ID         int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: id %d: %s", e.Collection, e.ID, ErrNotFound)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }
