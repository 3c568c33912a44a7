package sandbox_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/stepfs/pkg/stepfs/filesystem"
	"github.com/arthur-debert/stepfs/pkg/stepfs/mount"
	"github.com/arthur-debert/stepfs/pkg/stepfs/sandbox"
	"github.com/arthur-debert/stepfs/pkg/stepfs/tree"
)

func sampleDescriptor() mount.Descriptor {
	return mount.Serialize(tree.New(
		tree.NewFile("package.json", "package.json", `{"name":"app"}`),
		tree.NewFolder("src", "src",
			tree.NewFolder("components", "src/components",
				tree.NewFile("App.tsx", "src/components/App.tsx", "export default App"),
			),
			tree.NewFile("main.tsx", "src/main.tsx", "import App from './components/App'"),
		),
		tree.NewFolder("public", "public"),
	))
}

func TestPlan_DirectoriesFirst(t *testing.T) {
	plan, err := sandbox.Plan(sampleDescriptor())
	require.NoError(t, err)
	require.Len(t, plan, 6)

	position := make(map[string]int, len(plan))
	for i, rec := range plan {
		position[rec.Path] = i
	}

	assert.Less(t, position["src"], position["src/components"])
	assert.Less(t, position["src"], position["src/main.tsx"])
	assert.Less(t, position["src/components"], position["src/components/App.tsx"])
	assert.Contains(t, position, "public")
	assert.Contains(t, position, "package.json")
}

func TestPlan_Empty(t *testing.T) {
	plan, err := sandbox.Plan(mount.Descriptor{})
	require.NoError(t, err)
	assert.Empty(t, plan)
}

func TestDirSandbox_Mount(t *testing.T) {
	tfs := filesystem.NewTestFileSystem()
	sb := sandbox.NewDirSandbox(tfs, nil)

	require.NoError(t, sb.Mount(context.Background(), sampleDescriptor()))

	data, err := tfs.ReadFile("src/components/App.tsx")
	require.NoError(t, err)
	assert.Equal(t, "export default App", string(data))

	info, err := tfs.Stat("public")
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// remounting overwrites contents and keeps other entries
	next := mount.Serialize(tree.New(tree.NewFile("package.json", "package.json", "{}")))
	require.NoError(t, sb.Mount(context.Background(), next))

	data, err = tfs.ReadFile("package.json")
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
	_, err = tfs.Stat("src/main.tsx")
	assert.NoError(t, err)
}

func TestDirSandbox_MountCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sandbox.NewDirSandbox(filesystem.NewTestFileSystem(), nil).Mount(ctx, sampleDescriptor())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDirSandbox_OSFileSystem(t *testing.T) {
	root := t.TempDir()
	sb := sandbox.NewDirSandbox(filesystem.NewOSFileSystem(root), nil)

	require.NoError(t, sb.Mount(context.Background(), sampleDescriptor()))

	info, err := filesystem.NewOSFileSystem(root).Stat("src/components/App.tsx")
	require.NoError(t, err)
	assert.False(t, info.IsDir())
}

func TestPlan_ParentsFirstForAnyOrder(t *testing.T) {
	var files []*tree.Node
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		files = append(files, tree.NewFolder(name, name,
			tree.NewFolder("inner", name+"/inner",
				tree.NewFile("leaf.txt", name+"/inner/leaf.txt", name),
			),
		))
	}
	d := mount.Serialize(tree.New(files...))

	for run := 0; run < 20; run++ {
		plan, err := sandbox.Plan(d)
		require.NoError(t, err)
		require.Len(t, plan, 24)

		seen := make(map[string]bool, len(plan))
		for _, rec := range plan {
			if rec.Parent != "" {
				assert.True(t, seen[rec.Parent], "%s planned before its parent %s", rec.Path, rec.Parent)
			}
			seen[rec.Path] = true
		}
	}
}

func TestDirSandbox_MountSkipsInvalidPaths(t *testing.T) {
	d := mount.Serialize(tree.New(
		tree.NewFolder(".", ".",
			tree.NewFile("notes.txt", "./notes.txt", "notes"),
		),
		tree.NewFolder("..", "..",
			tree.NewFile("x", "../x", "x"),
		),
		tree.NewFile("index.html", "index.html", "<h1>hi</h1>"),
	))

	t.Run("test filesystem", func(t *testing.T) {
		tfs := filesystem.NewTestFileSystem()
		sb := sandbox.NewDirSandbox(tfs, nil)

		require.NoError(t, sb.Mount(context.Background(), d))
		// a later mount of the same tree still succeeds
		require.NoError(t, sb.Mount(context.Background(), d))

		data, err := tfs.ReadFile("index.html")
		require.NoError(t, err)
		assert.Equal(t, "<h1>hi</h1>", string(data))
		assert.ElementsMatch(t, []string{"index.html"}, tfs.Paths())
	})

	t.Run("os filesystem", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "sandbox")
		sb := sandbox.NewDirSandbox(filesystem.NewOSFileSystem(root), nil)

		require.NoError(t, sb.Mount(context.Background(), d))

		data, err := os.ReadFile(filepath.Join(root, "index.html"))
		require.NoError(t, err)
		assert.Equal(t, "<h1>hi</h1>", string(data))
		_, err = os.Stat(filepath.Join(filepath.Dir(root), "x"))
		assert.True(t, os.IsNotExist(err))
	})
}
