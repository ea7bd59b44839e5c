package collection

import (
	"iter"
	"slices"

	"github.com/roach88/schemata/internal/ir"
)

// State is the lifecycle position of a Collection.
type State int

const (
	Uninitialized State = iota // zero value, no element class
	TypedEmpty                 // element class fixed, no elements
	TypedNonEmpty              // at least one element
)

// String returns a human-readable representation of the State.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case TypedEmpty:
		return "typed-empty"
	case TypedNonEmpty:
		return "typed-non-empty"
	default:
		return "unknown"
	}
}

// Collection is an ordered sequence of entities of one class.
type Collection struct {
	elementClass string
	items        []*ir.Entity
}

// New creates an empty collection whose elements must be of elementClass.
func New(elementClass string) *Collection {
	return &Collection{elementClass: elementClass}
}

// FromEntities creates a collection and adds each entity in order.
// It fails on the first entity of another class, returning no collection.
func FromEntities(elementClass string, entities ...*ir.Entity) (*Collection, error) {
	c := New(elementClass)
	for _, e := range entities {
		if err := c.Add(e); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ElementClass returns the class fixed at creation.
func (c *Collection) ElementClass() string {
	return c.elementClass
}

// State reports where the collection is in its lifecycle.
func (c *Collection) State() State {
	switch {
	case c.elementClass == "":
		return Uninitialized
	case len(c.items) == 0:
		return TypedEmpty
	default:
		return TypedNonEmpty
	}
}

// Len returns the number of elements.
func (c *Collection) Len() int {
	return len(c.items)
}

// Add appends e. The entity's concrete class must equal the element class;
// otherwise an *ElementTypeMismatchError is returned and nothing changes.
func (c *Collection) Add(e *ir.Entity) error {
	if c.elementClass == "" {
		return ErrUninitialized
	}
	if e == nil {
		return &ElementTypeMismatchError{Expected: c.elementClass}
	}
	if e.Class != c.elementClass {
		return &ElementTypeMismatchError{Expected: c.elementClass, Actual: e.Class, EntityID: e.ID}
	}
	c.items = append(c.items, e)
	return nil
}

// IndexOf returns the position of the first element with the same identity
// as e, in insertion order. Linear scan.
func (c *Collection) IndexOf(e *ir.Entity) (int, bool) {
	if e == nil {
		return 0, false
	}
	i := slices.IndexFunc(c.items, func(item *ir.Entity) bool {
		return ir.SameEntity(item, e)
	})
	return i, i >= 0
}

// Contains reports whether an element with the identity of e is present.
func (c *Collection) Contains(e *ir.Entity) bool {
	_, ok := c.IndexOf(e)
	return ok
}

// At returns the element at position i. It panics when i is out of range,
// like a slice index.
func (c *Collection) At(i int) *ir.Entity {
	return c.items[i]
}

// All returns the elements in insertion order.
//
// The sequence is a snapshot taken when All is called: it can be ranged over
// any number of times and always yields the same elements, regardless of
// later Add calls.
func (c *Collection) All() iter.Seq[*ir.Entity] {
	snapshot := slices.Clone(c.items)
	return func(yield func(*ir.Entity) bool) {
		for _, e := range snapshot {
			if !yield(e) {
				return
			}
		}
	}
}

// Slice returns a copy of the elements in insertion order.
func (c *Collection) Slice() []*ir.Entity {
	return slices.Clone(c.items)
}

// IDs returns the element IDs in insertion order.
func (c *Collection) IDs() []string {
	ids := make([]string, len(c.items))
	for i, e := range c.items {
		ids[i] = e.ID
	}
	return ids
}
