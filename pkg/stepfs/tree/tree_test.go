package tree_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/stepfs/pkg/stepfs/tree"
)

func sampleTree() *tree.Tree {
	return tree.New(
		tree.NewFolder("src", "src",
			tree.NewFile("index.js", "src/index.js", "import x from 'x'"),
			tree.NewFolder("styles", "src/styles",
				tree.NewFile("main.css", "src/styles/main.css", "body{}"),
			),
		),
		tree.NewFile("index.html", "index.html", "<h1>hi</h1>"),
		tree.NewFolder("empty", "empty"),
	)
}

func TestSplitPath(t *testing.T) {
	testCases := []struct {
		path string
		want []string
	}{
		{"src/components/App.tsx", []string{"src", "components", "App.tsx"}},
		{"index.html", []string{"index.html"}},
		{"", nil},
		{"a//b", []string{"a", "", "b"}},
		{"./a/../b", []string{".", "a", "..", "b"}},
		{"/root", []string{"", "root"}},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.want, tree.SplitPath(tc.path))
		})
	}
}

func TestPrefixAt(t *testing.T) {
	segments := tree.SplitPath("src/components/App.tsx")
	assert.Equal(t, "src", tree.PrefixAt(segments, 0))
	assert.Equal(t, "src/components", tree.PrefixAt(segments, 1))
	assert.Equal(t, "src/components/App.tsx", tree.PrefixAt(segments, 2))
}

func TestFlatten(t *testing.T) {
	files := tree.Flatten(sampleTree())

	var paths []string
	for _, f := range files {
		assert.False(t, f.IsFolder())
		paths = append(paths, f.Path())
	}
	assert.Equal(t, []string{"src/index.js", "src/styles/main.css", "index.html"}, paths)
}

func TestFlatten_Empty(t *testing.T) {
	assert.Empty(t, tree.Flatten(nil))
	assert.NotNil(t, tree.Flatten(tree.New()))
}

func TestFlatten_Pure(t *testing.T) {
	tr := sampleTree()
	assert.Equal(t, tree.Flatten(tr), tree.Flatten(tr))
}

func TestTreeFind(t *testing.T) {
	tr := sampleTree()

	require.NotNil(t, tr.Find("src/styles/main.css"))
	assert.Equal(t, "body{}", tr.Find("src/styles/main.css").Content())
	assert.True(t, tr.Find("src/styles").IsFolder())
	assert.Nil(t, tr.Find("src/missing.js"))
	assert.Nil(t, tr.Find(""))
	assert.Nil(t, (*tree.Tree)(nil).Find("src"))
}

func TestCountNodes(t *testing.T) {
	assert.Equal(t, 6, tree.CountNodes(sampleTree()))
	assert.Equal(t, 0, tree.CountNodes(nil))
}

func TestNodeChildrenIsCopy(t *testing.T) {
	tr := sampleTree()
	children := tr.Find("src").Children()
	children[0] = nil

	assert.NotNil(t, tr.Find("src").Children()[0])
}

func TestTreeMarshalJSON(t *testing.T) {
	data, err := json.Marshal(tree.New(
		tree.NewFolder("empty", "empty"),
		tree.NewFile("a.txt", "a.txt", ""),
	))
	require.NoError(t, err)

	assert.JSONEq(t, `[
		{"name":"empty","type":"folder","path":"empty","children":[]},
		{"name":"a.txt","type":"file","path":"a.txt","content":""}
	]`, string(data))

	data, err = json.Marshal(tree.New())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
