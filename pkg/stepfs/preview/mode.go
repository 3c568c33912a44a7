// Package preview decides how a file tree is previewed and assembles the
// single-document preview for plain static sites.
package preview

import (
	"strings"

	"github.com/arthur-debert/stepfs/pkg/stepfs/tree"
)

// Mode is the preview strategy for a tree.
type Mode string

const (
	// ModeNone means there is nothing to preview.
	ModeNone Mode = "none"
	// ModeStatic renders the tree as one self-contained document.
	ModeStatic Mode = "static"
	// ModeSandboxed hands the tree to a sandbox that installs dependencies
	// and runs a dev server.
	ModeSandboxed Mode = "sandboxed"
)

// ManifestName is the file whose presence marks a project that needs installing.
const ManifestName = "package.json"

// moduleMarkers are substrings that indicate module-system usage.
var moduleMarkers = []string{"import ", "require("}

// SelectMode classifies t. A tree without a package manifest and without any
// file mentioning "import " or "require(" is a static document; anything else
// needs the sandbox. This is a substring heuristic, so a comment containing
// "import " is enough to pick the sandbox.
func SelectMode(t *tree.Tree) Mode {
	if t.IsEmpty() {
		return ModeNone
	}
	for _, f := range tree.Flatten(t) {
		if f.Name() == ManifestName || usesModules(f.Content()) {
			return ModeSandboxed
		}
	}
	return ModeStatic
}

func usesModules(content string) bool {
	for _, marker := range moduleMarkers {
		if strings.Contains(content, marker) {
			return true
		}
	}
	return false
}
