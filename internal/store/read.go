package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/schemata/internal/ir"
	"github.com/roach88/schemata/internal/schema"
)

// querier is the read surface shared by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Get returns the committed entity with id, fields loaded.
func (s *Store) Get(ctx context.Context, id string) (*ir.Entity, error) {
	return get(ctx, s.db, s.schema, id)
}

// List returns the committed entities of class in creation order.
// Ties are impossible (seq is unique); id breaks them anyway for stability
// across store copies.
func (s *Store) List(ctx context.Context, class string) ([]*ir.Entity, error) {
	if !s.schema.HasClass(class) {
		return nil, fmt.Errorf("list: %w: %q", ErrUnknownClass, class)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, class, seq, fields
		FROM entities
		WHERE class = ?
		ORDER BY seq ASC, id ASC COLLATE BINARY
	`, class)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", class, err)
	}

	var rowsRead []storedRow
	for rows.Next() {
		var r storedRow
		if err := rows.Scan(&r.id, &r.class, &r.seq, &r.fields); err != nil {
			rows.Close()
			return nil, fmt.Errorf("list %s: scan: %w", class, err)
		}
		rowsRead = append(rowsRead, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("list %s: %w", class, err)
	}
	rows.Close()

	// Members are loaded after the cursor is closed; the store runs on a
	// single connection.
	out := make([]*ir.Entity, 0, len(rowsRead))
	for _, r := range rowsRead {
		e, err := r.load(ctx, s.db, s.schema)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Count returns the number of committed entities of class.
func (s *Store) Count(ctx context.Context, class string) (int, error) {
	if !s.schema.HasClass(class) {
		return 0, fmt.Errorf("count: %w: %q", ErrUnknownClass, class)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entities WHERE class = ?`, class).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", class, err)
	}
	return n, nil
}

// FindByPrimaryKey returns the committed entity of class whose primary key
// equals key. The second result is false when none exists.
func (s *Store) FindByPrimaryKey(ctx context.Context, class string, key any) (*ir.Entity, bool, error) {
	return findByPrimaryKey(ctx, s.db, s.schema, class, key)
}

type storedRow struct {
	id     string
	class  string
	seq    int64
	fields string
}

func (r storedRow) load(ctx context.Context, q querier, sch *schema.Schema) (*ir.Entity, error) {
	spec, ok := sch.Class(r.class)
	if !ok {
		return nil, fmt.Errorf("load %s: %w: %q", r.id, ErrUnknownClass, r.class)
	}

	var stored ir.IRObject
	if err := stored.UnmarshalJSON([]byte(r.fields)); err != nil {
		return nil, fmt.Errorf("load %s: parse fields: %w", r.id, err)
	}
	lists, err := loadLists(ctx, q, spec, r.id)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", r.id, err)
	}
	fields, err := decodeFields(spec, stored, lists)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", r.id, err)
	}
	return &ir.Entity{ID: r.id, Class: r.class, Seq: r.seq, Fields: fields}, nil
}

func get(ctx context.Context, q querier, sch *schema.Schema, id string) (*ir.Entity, error) {
	var r storedRow
	err := q.QueryRowContext(ctx, `
		SELECT id, class, seq, fields FROM entities WHERE id = ?
	`, id).Scan(&r.id, &r.class, &r.seq, &r.fields)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %s: %w", id, ErrEntityNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", id, err)
	}
	return r.load(ctx, q, sch)
}

// loadLists reads list members of owner, ordered by position. Member handles
// carry the declared target class.
func loadLists(ctx context.Context, q querier, spec ir.ClassSpec, ownerID string) (map[string][]*ir.Entity, error) {
	targets := make(map[string]string)
	for _, p := range spec.Properties {
		if p.Type == ir.TypeList {
			targets[p.Name] = p.Target
		}
	}
	if len(targets) == 0 {
		return nil, nil
	}

	rows, err := q.QueryContext(ctx, `
		SELECT ci.property, ci.entity_id, e.seq
		FROM collection_items ci
		JOIN entities e ON e.id = ci.entity_id
		WHERE ci.owner_id = ?
		ORDER BY ci.property ASC, ci.position ASC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load lists: %w", err)
	}
	defer rows.Close()

	lists := make(map[string][]*ir.Entity, len(targets))
	for rows.Next() {
		var prop string
		m := &ir.Entity{}
		if err := rows.Scan(&prop, &m.ID, &m.Seq); err != nil {
			return nil, fmt.Errorf("load lists: scan: %w", err)
		}
		target, ok := targets[prop]
		if !ok {
			return nil, fmt.Errorf("load lists: %s.%s is not a list property", spec.Name, prop)
		}
		m.Class = target
		lists[prop] = append(lists[prop], m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load lists: %w", err)
	}
	return lists, nil
}

func classOf(ctx context.Context, q querier, id string) (string, error) {
	var class string
	err := q.QueryRowContext(ctx, `SELECT class FROM entities WHERE id = ?`, id).Scan(&class)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("entity %s: %w", id, ErrEntityNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("entity %s: %w", id, err)
	}
	return class, nil
}

func findByPrimaryKey(ctx context.Context, q querier, sch *schema.Schema, class string, key any) (*ir.Entity, bool, error) {
	spec, ok := sch.Class(class)
	if !ok {
		return nil, false, fmt.Errorf("find by primary key: %w: %q", ErrUnknownClass, class)
	}
	if spec.PrimaryKey == "" {
		return nil, false, fmt.Errorf("find by primary key: class %s has no primary key", class)
	}

	var keyValue ir.IRValue
	switch k := key.(type) {
	case string:
		keyValue = ir.IRString(k)
	case int64:
		keyValue = ir.IRInt(k)
	case int:
		keyValue = ir.IRInt(int64(k))
	default:
		return nil, false, fmt.Errorf("find by primary key: %s key must be string or int64, got %T", class, key)
	}
	keyJSON, err := ir.MarshalCanonical(keyValue)
	if err != nil {
		return nil, false, fmt.Errorf("find by primary key: %w", err)
	}

	var id string
	err = q.QueryRowContext(ctx, `
		SELECT id FROM entities WHERE class = ? AND pk = ?
	`, class, string(keyJSON)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find by primary key: %w", err)
	}

	e, err := get(ctx, q, sch, id)
	if err != nil {
		return nil, false, err
	}
	return e, true, nil
}
