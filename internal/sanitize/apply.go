package sanitize

import (
	"context"
	"fmt"

	"github.com/roach88/schemata/internal/collection"
	"github.com/roach88/schemata/internal/ir"
)

// plan is a checked value waiting to be materialized.
type plan interface {
	apply(ctx context.Context, s *Sanitizer, sc StoreContext) (any, error)
}

// final is a value that needs no store writes.
type final struct {
	value any
}

func (f final) apply(context.Context, *Sanitizer, StoreContext) (any, error) {
	return f.value, nil
}

// pendingEntity is an entity to create once its own fields are applied.
type pendingEntity struct {
	class  string
	path   string
	names  []string // declaration order
	fields map[string]plan
}

func (n *pendingEntity) apply(ctx context.Context, s *Sanitizer, sc StoreContext) (any, error) {
	return n.create(ctx, s, sc)
}

func (n *pendingEntity) create(ctx context.Context, s *Sanitizer, sc StoreContext) (*ir.Entity, error) {
	fields := make(map[string]any, len(n.names))
	for _, name := range n.names {
		v, err := n.fields[name].apply(ctx, s, sc)
		if err != nil {
			return nil, err
		}
		fields[name] = v
	}

	e, err := sc.Create(ctx, n.class, fields)
	if err != nil {
		if n.path == "" {
			return nil, fmt.Errorf("create %s: %w", n.class, err)
		}
		return nil, fmt.Errorf("create %s at %s: %w", n.class, n.path, err)
	}
	s.logger.Debug("entity created", "class", e.Class, "id", e.ID, "path", n.path)
	return e, nil
}

// pendingList is a new collection whose members may still be pending.
type pendingList struct {
	target string
	items  []plan
}

func (l *pendingList) apply(ctx context.Context, s *Sanitizer, sc StoreContext) (any, error) {
	c := collection.New(l.target)
	for _, item := range l.items {
		v, err := item.apply(ctx, s, sc)
		if err != nil {
			return nil, err
		}
		e, _ := v.(*ir.Entity)
		if err := c.Add(e); err != nil {
			return nil, err
		}
	}
	return c, nil
}
