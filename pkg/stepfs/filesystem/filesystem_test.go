package filesystem_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/stepfs/pkg/stepfs/filesystem"
)

func TestTestFileSystem(t *testing.T) {
	tfs := filesystem.NewTestFileSystem()

	t.Run("WriteFile needs parent", func(t *testing.T) {
		err := tfs.WriteFile("src/a.js", []byte("a"), 0644)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("MkdirAll then WriteFile", func(t *testing.T) {
		require.NoError(t, tfs.MkdirAll("src/lib", 0755))
		require.NoError(t, tfs.WriteFile("src/lib/a.js", []byte("a"), 0644))

		data, err := tfs.ReadFile("src/lib/a.js")
		require.NoError(t, err)
		assert.Equal(t, "a", string(data))

		info, err := tfs.Stat("src")
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("MkdirAll over file fails", func(t *testing.T) {
		err := tfs.MkdirAll("src/lib/a.js/x", 0755)
		assert.ErrorIs(t, err, fs.ErrExist)
	})

	t.Run("Paths", func(t *testing.T) {
		paths := tfs.Paths()
		sort.Strings(paths)
		assert.Equal(t, []string{"src", "src/lib", "src/lib/a.js"}, paths)
	})

	t.Run("Invalid paths", func(t *testing.T) {
		assert.ErrorIs(t, tfs.WriteFile("../escape", nil, 0644), fs.ErrInvalid)
		assert.ErrorIs(t, tfs.MkdirAll("/abs", 0755), fs.ErrInvalid)
	})
}

func TestOSFileSystem(t *testing.T) {
	root := t.TempDir()
	osfs := filesystem.NewOSFileSystem(root)

	require.NoError(t, osfs.MkdirAll("src/components", 0755))
	require.NoError(t, osfs.WriteFile("src/components/App.tsx", []byte("app"), 0644))

	data, err := os.ReadFile(filepath.Join(root, "src", "components", "App.tsx"))
	require.NoError(t, err)
	assert.Equal(t, "app", string(data))

	info, err := osfs.Stat("src")
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = osfs.Stat("missing")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = osfs.Open("../outside")
	assert.ErrorIs(t, err, fs.ErrInvalid)
}
