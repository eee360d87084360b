package safeio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanRelPath(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
		wantErr  bool
	}{
		{"simple", "agents/skills", "agents/skills", false},
		{"cleans dot segments", "agents/./skills", "agents/skills", false},
		{"cleans trailing slash", "agents/", "agents", false},
		{"rejects absolute", "/etc/passwd", "", true},
		{"rejects parent", "..", "", true},
		{"rejects traversal prefix", "../outside", "", true},
		{"rejects embedded traversal", "agents/../../outside", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := CleanRelPath(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestContained(t *testing.T) {
	base := t.TempDir()

	ok, err := Contained(base, filepath.Join(base, "agents", "skills"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Contained(base, filepath.Join(base, "..", "elsewhere"))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = Contained(base, base)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWriteFilePreservePerms(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))

	require.NoError(t, WriteFilePreservePerms(path, []byte("new")))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(body))

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
}

func TestWriteFilePreservePermsNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	require.NoError(t, WriteFilePreservePerms(path, []byte("data")))

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), fi.Mode().Perm())
}
