package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequentialIDs(t *testing.T) {
	g := NewSequentialIDs("film")
	assert.Equal(t, "film-0001", g.Generate())
	assert.Equal(t, "film-0002", g.Generate())

	g.Reset()
	assert.Equal(t, "film-0001", g.Generate())
}

func TestSequentialIDs_DefaultPrefix(t *testing.T) {
	assert.Equal(t, "id-0001", NewSequentialIDs("").Generate())
}

func TestSequentialIDs_Concurrent(t *testing.T) {
	g := NewSequentialIDs("c")
	seen := sync.Map{}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, dup := seen.LoadOrStore(g.Generate(), true)
			assert.False(t, dup)
		}()
	}
	wg.Wait()
}
