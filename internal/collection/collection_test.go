package collection

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/schemata/internal/ir"
)

func film(id string) *ir.Entity {
	return &ir.Entity{ID: id, Class: "Film"}
}

func TestNew_TypedEmpty(t *testing.T) {
	c := New("Film")

	assert.Equal(t, "Film", c.ElementClass())
	assert.Equal(t, TypedEmpty, c.State())
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, slices.Collect(c.All()))
}

func TestZeroCollection_Uninitialized(t *testing.T) {
	var c Collection
	assert.Equal(t, Uninitialized, c.State())

	err := c.Add(film("f1"))
	assert.ErrorIs(t, err, ErrUninitialized)
	assert.Equal(t, 0, c.Len())
}

func TestAdd_TransitionsToNonEmpty(t *testing.T) {
	c := New("Film")
	require.NoError(t, c.Add(film("f1")))

	assert.Equal(t, TypedNonEmpty, c.State())
	assert.Equal(t, "typed-non-empty", c.State().String())
}

func TestAdd_RejectsOtherClass(t *testing.T) {
	c := New("Film")
	require.NoError(t, c.Add(film("f1")))

	err := c.Add(&ir.Entity{ID: "s1", Class: "Screening"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrElementTypeMismatch)

	var mismatch *ElementTypeMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "Film", mismatch.Expected)
	assert.Equal(t, "Screening", mismatch.Actual)
	assert.Equal(t, "s1", mismatch.EntityID)
	assert.Contains(t, err.Error(), "cannot add Screening entity s1")

	assert.Equal(t, 1, c.Len(), "length unchanged after failed add")
	assert.Equal(t, []string{"f1"}, c.IDs())
}

func TestAdd_RejectsNil(t *testing.T) {
	c := New("Film")
	err := c.Add(nil)
	assert.ErrorIs(t, err, ErrElementTypeMismatch)
	assert.Contains(t, err.Error(), "nil entity")
	assert.Equal(t, TypedEmpty, c.State())
}

// Scenario: a Film collection rejects a non-Film and indexes the first Film at 0.
func TestFilmCollectionScenario(t *testing.T) {
	c := New("Film")
	assert.Equal(t, TypedEmpty, c.State())

	err := c.Add(&ir.Entity{ID: "p1", Class: "Person"})
	assert.ErrorIs(t, err, ErrElementTypeMismatch)

	f := film("f1")
	require.NoError(t, c.Add(f))

	i, ok := c.IndexOf(f)
	require.True(t, ok)
	assert.Equal(t, 0, i)
}

func TestAppendIndexConsistency(t *testing.T) {
	c := New("Film")
	var added []*ir.Entity
	for i := 0; i < 25; i++ {
		e := film(fmt.Sprintf("f%02d", i))
		require.NoError(t, c.Add(e))
		added = append(added, e)
	}

	for i, e := range added {
		got, ok := c.IndexOf(e)
		require.True(t, ok)
		assert.Equal(t, i, got)
		assert.Same(t, e, c.At(i))
	}
	assert.Equal(t, added, slices.Collect(c.All()))
	assert.Equal(t, added, c.Slice())
}

func TestIndexOf_Identity(t *testing.T) {
	c := New("Film")
	a := &ir.Entity{ID: "f1", Class: "Film", Fields: map[string]any{"title": "A New Hope"}}
	b := &ir.Entity{ID: "f2", Class: "Film", Fields: map[string]any{"title": "A New Hope"}}
	require.NoError(t, c.Add(a))

	_, ok := c.IndexOf(b)
	assert.False(t, ok, "equal fields do not make equal entities")

	i, ok := c.IndexOf(a.Ref())
	assert.True(t, ok, "a fresh handle to the same row matches")
	assert.Equal(t, 0, i)

	_, ok = c.IndexOf(nil)
	assert.False(t, ok)
	assert.False(t, c.Contains(&ir.Entity{ID: "f1", Class: "Person"}))
}

func TestIndexOf_FirstOccurrence(t *testing.T) {
	c := New("Film")
	f := film("f1")
	require.NoError(t, c.Add(film("f0")))
	require.NoError(t, c.Add(f))
	require.NoError(t, c.Add(f))

	i, ok := c.IndexOf(f)
	require.True(t, ok)
	assert.Equal(t, 1, i)
	assert.Equal(t, 3, c.Len())
}

func TestAll_IsSnapshot(t *testing.T) {
	c := New("Film")
	require.NoError(t, c.Add(film("f1")))

	seq := c.All()
	require.NoError(t, c.Add(film("f2")))

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	assert.Equal(t, []string{"f1"}, ids(first), "later adds are not visible")
	assert.Equal(t, first, second, "sequence is restartable")

	assert.Equal(t, []string{"f1", "f2"}, ids(slices.Collect(c.All())))
}

func TestAll_StopsEarly(t *testing.T) {
	c := New("Film")
	for i := 0; i < 5; i++ {
		require.NoError(t, c.Add(film(fmt.Sprint(i))))
	}
	n := 0
	for range c.All() {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestSlice_IsCopy(t *testing.T) {
	c := New("Film")
	require.NoError(t, c.Add(film("f1")))

	s := c.Slice()
	s[0] = film("other")
	assert.Equal(t, "f1", c.At(0).ID)
}

func TestFromEntities(t *testing.T) {
	c, err := FromEntities("Film", film("f1"), film("f2"))
	require.NoError(t, err)
	assert.Equal(t, []string{"f1", "f2"}, c.IDs())

	_, err = FromEntities("Film", film("f1"), &ir.Entity{ID: "x", Class: "Person"})
	assert.ErrorIs(t, err, ErrElementTypeMismatch)
}

func ids(es []*ir.Entity) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.ID
	}
	return out
}
