package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loadedDB loads films.yaml into a fresh store and returns its path.
func loadedDB(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "films.db")
	_, err := execute(t, loadCommand("text"), schemaDir, filmsFixture, "--db", db)
	require.NoError(t, err)
	return db
}

func TestDumpGolden(t *testing.T) {
	out, err := execute(t, NewDumpCommand(&RootOptions{Format: "text"}), schemaDir, "--db", loadedDB(t))
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "dump_films", []byte(out))
}

func TestDumpIsStable(t *testing.T) {
	first, err := execute(t, NewDumpCommand(&RootOptions{Format: "text"}), schemaDir, "--db", loadedDB(t))
	require.NoError(t, err)
	second, err := execute(t, NewDumpCommand(&RootOptions{Format: "text"}), schemaDir, "--db", loadedDB(t))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDumpClassFilter(t *testing.T) {
	out, err := execute(t, NewDumpCommand(&RootOptions{Format: "text"}), schemaDir,
		"--db", loadedDB(t), "--class", "Screening")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], `{"class":"Screening",`))
}

func TestDumpJSON(t *testing.T) {
	out, err := execute(t, NewDumpCommand(&RootOptions{Format: "json"}), schemaDir, "--db", loadedDB(t))
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "Film", resp.Data[0]["class"])
	assert.Nil(t, resp.Data[0]["fields"].(map[string]any)["releaseDate"])
}

func TestDumpUnknownClass(t *testing.T) {
	out, err := execute(t, NewDumpCommand(&RootOptions{Format: "text"}), schemaDir,
		"--db", loadedDB(t), "--class", "Studio")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNoSuchClass)
}
