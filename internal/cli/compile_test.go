package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileSchema(t *testing.T) {
	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), schemaDir)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Compiled 2 class(es)")
	assert.Contains(t, out, "Film: 4 property(ies), 0 relationship(s), primary key remoteId")
	assert.Contains(t, out, "Screening: 3 property(ies), 1 relationship(s)")
	assert.Contains(t, out, "Schema hash: ")
}

func TestCompileSchemaJSON(t *testing.T) {
	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "json"}), schemaDir)
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   CompilationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Classes, 2)
	assert.Equal(t, "Film", resp.Data.Classes[0].Name)
	assert.Len(t, resp.Data.SchemaHash, 64)
}

func TestCompileOutputFile(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "classes.json")

	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), schemaDir, "-o", outFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote class table to")

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var result CompilationResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Len(t, result.Classes, 2)
}

func TestCompileErrors(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		out, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), "/nonexistent/schema")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, out, "E005")
	})

	t.Run("collects every validation error", func(t *testing.T) {
		dir := writeSchema(t, map[string]string{"bad.cue": `package films

class: Film: property: {
	rating:  "float"
	sequel:  {type: "link"}
}
`})
		out, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), dir)
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, out, "Compilation failed with 2 error(s)")
		assert.Contains(t, out, "E105")
		assert.Contains(t, out, "E106")
	})
}
