package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/schemata/internal/ir"
)

// Tx is a write scope. Entities created through a Tx become visible to other
// readers only after Commit; Rollback discards all of them.
//
// A Tx is not safe for concurrent use.
type Tx struct {
	tx    *sql.Tx
	store *Store
	done  bool
}

// Commit makes every write of the scope durable.
func (t *Tx) Commit() error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit write scope: %w", err)
	}
	return nil
}

// Rollback discards every write of the scope. Calling it after Commit or a
// previous Rollback is a no-op.
func (t *Tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	if err := t.tx.Rollback(); err != nil {
		return fmt.Errorf("rollback write scope: %w", err)
	}
	return nil
}

// Create persists a new entity of class with already-sanitized field values.
//
// Every key of fields must be a declared property and every value must have
// the property's exact sanitized type. Omitted nullable properties are stored
// as null and omitted list properties as empty lists; omitting a non-nullable
// property is a *FieldError. Link targets and list members must already exist
// in the store with the declared target class.
//
// For a class with a primary key, an existing entity with the same key is
// updated in place and its identity returned. Only the properties present in
// fields change; omitted ones keep their stored values.
func (t *Tx) Create(ctx context.Context, class string, fields map[string]any) (*ir.Entity, error) {
	if t.done {
		return nil, ErrTxDone
	}
	spec, ok := t.store.schema.Class(class)
	if !ok {
		return nil, fmt.Errorf("create: %w: %q", ErrUnknownClass, class)
	}

	enc, err := encodeFields(spec, fields)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", class, err)
	}

	var pk sql.NullString
	if spec.PrimaryKey != "" {
		keyJSON, err := ir.MarshalCanonical(enc.fields[spec.PrimaryKey])
		if err != nil {
			return nil, fmt.Errorf("create %s: marshal primary key: %w", class, err)
		}
		pk = sql.NullString{String: string(keyJSON), Valid: true}

		existing, err := t.lookupPrimaryKey(ctx, class, pk.String)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", class, err)
		}
		if existing != nil {
			return t.update(ctx, spec, existing, fields)
		}
	}

	fieldsJSON, hash, err := t.prepare(ctx, spec, enc)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", class, err)
	}

	seq, err := t.nextSeq(ctx)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", class, err)
	}
	id := t.store.ids.Generate()

	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO entities (id, class, seq, pk, fields, content_hash)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, class, seq, pk, fieldsJSON, hash)
	if err != nil {
		return nil, fmt.Errorf("create %s: insert: %w", class, err)
	}
	if err := t.writeLists(ctx, id, enc.lists); err != nil {
		return nil, fmt.Errorf("create %s: %w", class, err)
	}

	t.store.logger.Debug("entity created", "class", class, "id", id, "seq", seq)
	return &ir.Entity{ID: id, Class: class, Seq: seq, Fields: enc.values}, nil
}

// prepare checks references and renders the stored fields and content hash.
func (t *Tx) prepare(ctx context.Context, spec ir.ClassSpec, enc *encoded) (string, string, error) {
	if err := t.checkReferences(ctx, spec, enc); err != nil {
		return "", "", err
	}
	fieldsJSON, err := ir.MarshalCanonical(enc.fields)
	if err != nil {
		return "", "", fmt.Errorf("marshal fields: %w", err)
	}
	hash, err := ir.ContentHash(spec.Name, hashFields(enc))
	if err != nil {
		return "", "", err
	}
	return string(fieldsJSON), hash, nil
}

// update merges fields into the stored entity existing. Properties absent
// from fields keep their stored values; an explicit nil clears a nullable one.
func (t *Tx) update(ctx context.Context, spec ir.ClassSpec, existing *ir.Entity, fields map[string]any) (*ir.Entity, error) {
	stored, err := get(ctx, t.tx, t.store.schema, existing.ID)
	if err != nil {
		return nil, fmt.Errorf("update %s %s: %w", existing.Class, existing.ID, err)
	}
	merged := make(map[string]any, len(spec.Properties))
	for name, v := range stored.Fields {
		merged[name] = v
	}
	for name, v := range fields {
		merged[name] = v
	}

	enc, err := encodeFields(spec, merged)
	if err != nil {
		return nil, fmt.Errorf("update %s %s: %w", existing.Class, existing.ID, err)
	}
	fieldsJSON, hash, err := t.prepare(ctx, spec, enc)
	if err != nil {
		return nil, fmt.Errorf("update %s %s: %w", existing.Class, existing.ID, err)
	}

	_, err = t.tx.ExecContext(ctx, `
		UPDATE entities SET fields = ?, content_hash = ? WHERE id = ?
	`, fieldsJSON, hash, existing.ID)
	if err != nil {
		return nil, fmt.Errorf("update %s %s: %w", existing.Class, existing.ID, err)
	}
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM collection_items WHERE owner_id = ?`, existing.ID); err != nil {
		return nil, fmt.Errorf("update %s %s: clear lists: %w", existing.Class, existing.ID, err)
	}
	if err := t.writeLists(ctx, existing.ID, enc.lists); err != nil {
		return nil, fmt.Errorf("update %s %s: %w", existing.Class, existing.ID, err)
	}

	t.store.logger.Debug("entity updated", "class", existing.Class, "id", existing.ID, "seq", existing.Seq)
	existing.Fields = enc.values
	return existing, nil
}

// checkReferences verifies every link target and list member exists with
// the declared target class.
func (t *Tx) checkReferences(ctx context.Context, spec ir.ClassSpec, enc *encoded) error {
	check := func(prop string, e *ir.Entity) error {
		class, err := classOf(ctx, t.tx, e.ID)
		if err != nil {
			return &FieldError{Class: spec.Name, Property: prop, Message: err.Error()}
		}
		if class != e.Class {
			return &FieldError{Class: spec.Name, Property: prop,
				Message: fmt.Sprintf("entity %s is stored as %s, not %s", e.ID, class, e.Class)}
		}
		return nil
	}
	for prop, e := range enc.links {
		if err := check(prop, e); err != nil {
			return err
		}
	}
	for prop, members := range enc.lists {
		for _, m := range members {
			if err := check(prop, m); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *Tx) writeLists(ctx context.Context, ownerID string, lists map[string][]*ir.Entity) error {
	for prop, members := range lists {
		for pos, m := range members {
			_, err := t.tx.ExecContext(ctx, `
				INSERT INTO collection_items (owner_id, property, position, entity_id)
				VALUES (?, ?, ?, ?)
			`, ownerID, prop, pos, m.ID)
			if err != nil {
				return fmt.Errorf("write list %s[%d]: %w", prop, pos, err)
			}
		}
	}
	return nil
}

func (t *Tx) nextSeq(ctx context.Context) (int64, error) {
	var seq int64
	if err := t.tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM entities`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next seq: %w", err)
	}
	return seq, nil
}

func (t *Tx) lookupPrimaryKey(ctx context.Context, class, keyJSON string) (*ir.Entity, error) {
	e := &ir.Entity{Class: class}
	err := t.tx.QueryRowContext(ctx, `
		SELECT id, seq FROM entities WHERE class = ? AND pk = ?
	`, class, keyJSON).Scan(&e.ID, &e.Seq)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup primary key: %w", err)
	}
	return e, nil
}

// ClassOf resolves the stored class of an entity handle. The class recorded
// in the handle itself is not trusted.
func (t *Tx) ClassOf(ctx context.Context, e *ir.Entity) (string, error) {
	if t.done {
		return "", ErrTxDone
	}
	if e == nil {
		return "", fmt.Errorf("class of nil handle: %w", ErrEntityNotFound)
	}
	return classOf(ctx, t.tx, e.ID)
}

// FindByPrimaryKey returns the entity of class whose primary key equals key
// (a string or int64). The second result is false when none exists.
func (t *Tx) FindByPrimaryKey(ctx context.Context, class string, key any) (*ir.Entity, bool, error) {
	if t.done {
		return nil, false, ErrTxDone
	}
	return findByPrimaryKey(ctx, t.tx, t.store.schema, class, key)
}

// Get reads an entity inside the scope, seeing the scope's own writes.
func (t *Tx) Get(ctx context.Context, id string) (*ir.Entity, error) {
	if t.done {
		return nil, ErrTxDone
	}
	return get(ctx, t.tx, t.store.schema, id)
}

// Delete removes an entity and its own list memberships. It fails with
// ErrEntityReferenced while another entity links to it; list memberships
// of the entity in other entities' lists are dropped.
func (t *Tx) Delete(ctx context.Context, e *ir.Entity) error {
	if t.done {
		return ErrTxDone
	}
	if e == nil {
		return fmt.Errorf("delete nil handle: %w", ErrEntityNotFound)
	}

	var referrer string
	err := t.tx.QueryRowContext(ctx, `
		SELECT e.id FROM entities e, json_each(e.fields) f
		WHERE f.type = 'object' AND json_extract(f.value, '$.ref') = ? AND e.id <> ?
		ORDER BY e.seq ASC
		LIMIT 1
	`, e.ID, e.ID).Scan(&referrer)
	switch {
	case err == nil:
		return fmt.Errorf("delete %s %s: %w by %s", e.Class, e.ID, ErrEntityReferenced, referrer)
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("delete %s %s: find referrers: %w", e.Class, e.ID, err)
	}

	if _, err := t.tx.ExecContext(ctx, `DELETE FROM collection_items WHERE entity_id = ?`, e.ID); err != nil {
		return fmt.Errorf("delete %s %s: drop memberships: %w", e.Class, e.ID, err)
	}
	res, err := t.tx.ExecContext(ctx, `DELETE FROM entities WHERE id = ?`, e.ID)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", e.Class, e.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s %s: rows affected: %w", e.Class, e.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s %s: %w", e.Class, e.ID, ErrEntityNotFound)
	}

	t.store.logger.Debug("entity deleted", "class", e.Class, "id", e.ID)
	return nil
}
