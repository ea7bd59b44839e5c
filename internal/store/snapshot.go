package store

import (
	"context"
	"fmt"

	"github.com/roach88/schemata/internal/ir"
)

// Document renders an entity as a canonical document:
//
//	{"class": ..., "id": ..., "seq": ..., "fields": {...}, "content_hash": ...}
//
// Fields use their stored form: dates as RFC 3339 strings, data as base64,
// links as {"ref": id} and lists as arrays of member IDs.
func (s *Store) Document(e *ir.Entity) (ir.IRObject, error) {
	spec, ok := s.schema.Class(e.Class)
	if !ok {
		return nil, fmt.Errorf("document %s: %w: %q", e.ID, ErrUnknownClass, e.Class)
	}
	enc, err := encodeFields(spec, e.Fields)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", e.ID, err)
	}
	fields := hashFields(enc)
	hash, err := ir.ContentHash(e.Class, fields)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", e.ID, err)
	}
	return ir.IRObject{
		"class":        ir.IRString(e.Class),
		"id":           ir.IRString(e.ID),
		"seq":          ir.IRInt(e.Seq),
		"fields":       fields,
		"content_hash": ir.IRString(hash),
	}, nil
}

// Snapshot returns the documents of every committed entity of classes, or of
// all classes when none are given. Classes are visited in the order given
// (sorted when defaulted); entities within a class in creation order.
func (s *Store) Snapshot(ctx context.Context, classes ...string) (ir.IRArray, error) {
	if len(classes) == 0 {
		classes = s.schema.Classes()
	}

	out := ir.IRArray{}
	for _, class := range classes {
		entities, err := s.List(ctx, class)
		if err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}
		for _, e := range entities {
			doc, err := s.Document(e)
			if err != nil {
				return nil, fmt.Errorf("snapshot: %w", err)
			}
			out = append(out, doc)
		}
	}
	return out, nil
}
