package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectClass(t *testing.T) {
	out, err := execute(t, NewInspectCommand(&RootOptions{Format: "text"}), schemaDir, "Film")
	require.NoError(t, err)

	assert.Contains(t, out, "Film (primary key remoteId)")
	assert.Contains(t, out, "  remoteId: string\n")
	assert.Contains(t, out, "  episode: int?\n")
}

func TestInspectProperty(t *testing.T) {
	t.Run("relationship", func(t *testing.T) {
		out, err := execute(t, NewInspectCommand(&RootOptions{Format: "json"}), schemaDir, "Screening", "relatedFilm")
		require.NoError(t, err)

		var resp struct {
			Data InspectResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		require.NotNil(t, resp.Data.Property)
		assert.Equal(t, "link", string(resp.Data.Property.Type))
		assert.True(t, resp.Data.Property.Nullable)
		assert.Equal(t, "relationship", resp.Data.Kind)
		assert.Equal(t, "Film", resp.Data.Descriptor)
		assert.Nil(t, resp.Data.Answer)
	})

	t.Run("scalar has no descriptor", func(t *testing.T) {
		out, err := execute(t, NewInspectCommand(&RootOptions{Format: "text"}), schemaDir, "Screening", "seats")
		require.NoError(t, err)
		assert.Contains(t, out, "Screening.seats: int")
		assert.Contains(t, out, "kind: scalar")
		assert.NotContains(t, out, "descriptor")
	})
}

func TestInspectQueries(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want bool
	}{
		{"type matches", []string{"Film", "title", "--type", "string"}, true},
		{"type differs", []string{"Film", "title", "--type", "int"}, false},
		{"target matches", []string{"Screening", "relatedFilm", "--target", "Film"}, true},
		{"target differs", []string{"Screening", "relatedFilm", "--target", "Screening"}, false},
		{"scalar is no relationship", []string{"Screening", "venue", "--target", "Film"}, false},
		{"both must hold", []string{"Screening", "relatedFilm", "--type", "link", "--target", "Film"}, true},
		{"list is not link", []string{"Screening", "relatedFilm", "--type", "list"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{schemaDir}, tt.args...)
			out, err := execute(t, NewInspectCommand(&RootOptions{Format: "text"}), args...)
			if tt.want {
				require.NoError(t, err)
				assert.Contains(t, out, "✓ yes")
			} else {
				require.Error(t, err)
				assert.Equal(t, ExitFailure, GetExitCode(err))
				assert.Contains(t, out, "✗ no")
			}
		})
	}
}

func TestInspectErrors(t *testing.T) {
	t.Run("unknown class", func(t *testing.T) {
		out, err := execute(t, NewInspectCommand(&RootOptions{Format: "text"}), schemaDir, "Studio")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, out, ErrCodeNoSuchClass)
	})

	t.Run("unknown property", func(t *testing.T) {
		out, err := execute(t, NewInspectCommand(&RootOptions{Format: "text"}), schemaDir, "Film", "budget")
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, out, "no property")
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := execute(t, NewInspectCommand(&RootOptions{Format: "text"}), schemaDir, "Film", "title", "--type", "float")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})

	t.Run("query without property", func(t *testing.T) {
		_, err := execute(t, NewInspectCommand(&RootOptions{Format: "text"}), schemaDir, "Film", "--type", "string")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})
}
