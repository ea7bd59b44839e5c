package sanitize

import (
	"context"
	"log/slog"

	"github.com/roach88/schemata/internal/ir"
	"github.com/roach88/schemata/internal/schema"
)

// DefaultMaxDepth bounds how deeply keyed descriptions may nest.
const DefaultMaxDepth = 32

// StoreContext creates entities inside the caller's write scope and resolves
// the stored class of existing handles. *store.Tx implements it.
type StoreContext interface {
	Create(ctx context.Context, class string, fields map[string]any) (*ir.Entity, error)
	ClassOf(ctx context.Context, e *ir.Entity) (string, error)
}

// Sanitizer converts raw values for the properties of one schema.
// A Sanitizer holds no per-call state and may be shared; calls against the
// same StoreContext must not run concurrently.
type Sanitizer struct {
	schema   *schema.Schema
	maxDepth int
	logger   *slog.Logger
}

// Option configures a Sanitizer.
type Option func(*Sanitizer)

// WithMaxDepth sets the nesting limit for keyed descriptions.
// Values below 1 are ignored.
func WithMaxDepth(n int) Option {
	return func(s *Sanitizer) {
		if n > 0 {
			s.maxDepth = n
		}
	}
}

// WithLogger sets the logger for debug records of created entities.
func WithLogger(l *slog.Logger) Option {
	return func(s *Sanitizer) {
		s.logger = l
	}
}

// New creates a Sanitizer for sch.
func New(sch *schema.Schema, opts ...Option) *Sanitizer {
	s := &Sanitizer{
		schema:   sch,
		maxDepth: DefaultMaxDepth,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schema returns the class table the sanitizer checks against.
func (s *Sanitizer) Schema() *schema.Schema {
	return s.schema
}

// Sanitize converts raw into the value property of class requires.
//
// Sanitizing a sanitized value returns it unchanged. Dates count as
// sanitized only in UTC; a time.Time in another zone comes back converted.
//
// Keyed descriptions given for link or list properties become new entities,
// created through sc after the whole input has been checked. On an *Error
// nothing has been created. Other errors come from sc and leave whatever
// was created before the failure in the caller's scope, to be rolled back.
func (s *Sanitizer) Sanitize(ctx context.Context, raw any, class, property string, sc StoreContext) (any, error) {
	w := s.newWalker(ctx, sc)
	p, err := w.property(class, property, raw, property, 0)
	if err != nil {
		return nil, err
	}
	return p.apply(ctx, s, sc)
}

// Build creates an entity of class from a keyed description: a map from
// property names to raw values. Omitted properties are null, or empty for
// list properties; omitting a non-nullable property is an error.
func (s *Sanitizer) Build(ctx context.Context, class string, raw any, sc StoreContext) (*ir.Entity, error) {
	w := s.newWalker(ctx, sc)
	n, err := w.root(class, raw)
	if err != nil {
		return nil, err
	}
	return n.create(ctx, s, sc)
}

func (s *Sanitizer) newWalker(ctx context.Context, sc StoreContext) *walker {
	return &walker{
		ctx:    ctx,
		s:      s,
		sc:     sc,
		active: make(map[uintptr]bool),
	}
}
