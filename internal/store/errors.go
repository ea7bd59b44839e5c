package store

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownClass is returned when a class is not in the store's schema.
	ErrUnknownClass = errors.New("unknown class")

	// ErrEntityNotFound is returned when a handle or ID names no stored row.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrEntityReferenced is returned by Delete while other entities still
	// link to the target.
	ErrEntityReferenced = errors.New("entity is still referenced")

	// ErrSchemaChanged is returned by Open when the store was written with a
	// different class table.
	ErrSchemaChanged = errors.New("store was written with a different schema")

	// ErrTxDone is returned by Tx methods after Commit or Rollback.
	ErrTxDone = errors.New("write scope already closed")
)

// FieldError reports a field value the store refuses to write: an undeclared
// name, a value whose runtime type is not the declared one, or a missing
// non-nullable field.
type FieldError struct {
	Class    string
	Property string
	Message  string
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("%s.%s: %s", e.Class, e.Property, e.Message)
}
