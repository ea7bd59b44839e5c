package sanitize

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/schemata/internal/ir"
	"github.com/roach88/schemata/internal/schema"
	"github.com/roach88/schemata/internal/store"
	"github.com/roach88/schemata/internal/testutil"
)

// recordingStore is an in-memory StoreContext that remembers every Create.
type recordingStore struct {
	created []*ir.Entity
	classes map[string]string
	failOn  string // class whose Create fails
}

func newRecordingStore() *recordingStore {
	return &recordingStore{classes: make(map[string]string)}
}

func (r *recordingStore) Create(_ context.Context, class string, fields map[string]any) (*ir.Entity, error) {
	if class == r.failOn {
		return nil, fmt.Errorf("create %s refused", class)
	}
	e := &ir.Entity{
		ID:     fmt.Sprintf("r-%d", len(r.created)+1),
		Class:  class,
		Seq:    int64(len(r.created) + 1),
		Fields: fields,
	}
	r.classes[e.ID] = class
	r.created = append(r.created, e)
	return e, nil
}

func (r *recordingStore) ClassOf(_ context.Context, e *ir.Entity) (string, error) {
	class, ok := r.classes[e.ID]
	if !ok {
		return "", fmt.Errorf("entity %s not found", e.ID)
	}
	return class, nil
}

// seed registers an existing entity without recording a Create.
func (r *recordingStore) seed(id, class string) *ir.Entity {
	r.classes[id] = class
	return &ir.Entity{ID: id, Class: class}
}

func newTestSanitizer(opts ...Option) *Sanitizer {
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return New(schema.MustNew(testutil.FilmClasses()), opts...)
}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := store.Open(path, schema.MustNew(testutil.FilmClasses()),
		store.WithIDGenerator(testutil.NewSequentialIDs("e")),
		store.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}
