package collection

import (
	"errors"
	"fmt"
)

// ErrElementTypeMismatch is matched by every *ElementTypeMismatchError.
var ErrElementTypeMismatch = errors.New("element type mismatch")

// ErrUninitialized is returned when adding to a zero Collection that was
// never created through New.
var ErrUninitialized = errors.New("collection has no element class")

// ElementTypeMismatchError reports an Add whose entity is not of the
// collection's element class. The collection is unchanged.
type ElementTypeMismatchError struct {
	Expected string // collection element class
	Actual   string // class of the rejected entity, empty for nil
	EntityID string
}

// Error implements the error interface.
func (e *ElementTypeMismatchError) Error() string {
	if e.Actual == "" {
		return fmt.Sprintf("collection of %s: cannot add nil entity", e.Expected)
	}
	return fmt.Sprintf("collection of %s: cannot add %s entity %s", e.Expected, e.Actual, e.EntityID)
}

// Is makes errors.Is(err, ErrElementTypeMismatch) hold.
func (e *ElementTypeMismatchError) Is(target error) bool {
	return target == ErrElementTypeMismatch
}
