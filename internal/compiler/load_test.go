package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "film.cue", `package films

class: Film: {
	primary_key: "remoteId"
	property: remoteId: "string"
}
`)
	writeFile(t, dir, "screening.cue", `package films

class: Screening: property: relatedFilm: { type: "link", target: "Film", nullable: true }
`)

	result, errs := LoadDir(dir, LoadModeFailFast)
	require.Empty(t, errs)
	assert.Equal(t, 2, result.FileCount)
	require.Len(t, result.Classes, 2)
	assert.Empty(t, Validate(result.Classes))
}

func TestLoadDirErrors(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		_, errs := LoadDir(filepath.Join(t.TempDir(), "nope"), LoadModeFailFast)
		require.Len(t, errs, 1)
		assert.Equal(t, ErrCodeNotFound, errs[0].(*LoadError).Code)
	})

	t.Run("no cue files", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "README.md", "# nothing")
		_, errs := LoadDir(dir, LoadModeFailFast)
		require.Len(t, errs, 1)
		assert.Equal(t, ErrCodeNoFiles, errs[0].(*LoadError).Code)
	})

	t.Run("syntax error", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "bad.cue", `class: Film: {`)
		_, errs := LoadDir(dir, LoadModeFailFast)
		require.Len(t, errs, 1)
	})

	t.Run("no classes", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "other.cue", `studio: Lucasfilm: {}`)
		_, errs := LoadDir(dir, LoadModeFailFast)
		require.Len(t, errs, 1)
		assert.Equal(t, ErrCodeGeneric, errs[0].(*LoadError).Code)
	})
}
