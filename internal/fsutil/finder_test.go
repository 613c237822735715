package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtension(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a/App.slnhcl", "b/c/Other.SLNHCL", "b/readme.md"} {
		p := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, nil, 0o600))
	}

	files, err := FindFilesByExtension(root, ".slnhcl")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "a/App.slnhcl"),
		filepath.Join(root, "b/c/Other.SLNHCL"),
	}, files)

	assert.Panics(t, func() { _, _ = FindFilesByExtension(root, "") })
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "x.csproj")
	require.NoError(t, os.WriteFile(file, []byte("project {}"), 0o600))

	ok, err := FileExists(file)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = FileExists(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = FileExists(dir)
	require.NoError(t, err)
	assert.False(t, ok, "directories are not files")

	assert.True(t, IsDir(dir))
	assert.False(t, IsDir(file))
}
