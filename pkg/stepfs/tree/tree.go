package tree

import "encoding/json"

// Tree is an immutable, ordered list of root nodes. The zero value and a nil
// *Tree are both empty trees.
type Tree struct {
	roots []*Node
}

// New returns a tree with the given roots.
func New(roots ...*Node) *Tree {
	return &Tree{roots: roots}
}

// Roots returns a copy of the root-level node list.
func (t *Tree) Roots() []*Node {
	if t == nil || len(t.roots) == 0 {
		return nil
	}
	out := make([]*Node, len(t.roots))
	copy(out, t.roots)
	return out
}

// Len returns the number of root-level nodes.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.roots)
}

// IsEmpty reports whether the tree has no nodes.
func (t *Tree) IsEmpty() bool { return t.Len() == 0 }

// Find returns the node at path, or nil.
func (t *Tree) Find(path string) *Node {
	if t == nil {
		return nil
	}
	segments := SplitPath(path)
	nodes := t.roots
	var found *Node
	for i := range segments {
		found = nil
		prefix := PrefixAt(segments, i)
		if idx := indexOf(nodes, prefix); idx >= 0 {
			found = nodes[idx]
		}
		if found == nil {
			return nil
		}
		nodes = found.children
	}
	return found
}

// CountNodes counts files and folders in the tree.
func CountNodes(t *Tree) int {
	if t == nil {
		return 0
	}
	return countNodes(t.roots)
}

func countNodes(nodes []*Node) int {
	count := 0
	for _, n := range nodes {
		count++
		count += countNodes(n.children)
	}
	return count
}

// MarshalJSON encodes the tree as its root list.
func (t *Tree) MarshalJSON() ([]byte, error) {
	roots := t.Roots()
	if roots == nil {
		roots = []*Node{}
	}
	return json.Marshal(roots)
}

func indexOf(nodes []*Node, path string) int {
	for i, n := range nodes {
		if n.path == path {
			return i
		}
	}
	return -1
}
