package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/schemata/internal/ir"
	"github.com/roach88/schemata/internal/schema"
	"github.com/roach88/schemata/internal/testutil"
)

// createTestStore opens a fresh store over the film classes with
// predictable IDs.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, schema.MustNew(testutil.FilmClasses()),
		WithIDGenerator(testutil.NewSequentialIDs("e")))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// mustCreate creates an entity in its own committed scope.
func mustCreate(t *testing.T, s *Store, class string, fields map[string]any) *ir.Entity {
	t.Helper()
	var e *ir.Entity
	err := s.WithTx(context.Background(), func(tx *Tx) error {
		var err error
		e, err = tx.Create(context.Background(), class, fields)
		return err
	})
	if err != nil {
		t.Fatalf("Create(%s) failed: %v", class, err)
	}
	return e
}
