package tree

// Flatten returns every file in the tree in depth-first order, keeping the
// tree's child ordering. Folders are dropped.
func Flatten(t *Tree) []*Node {
	files := make([]*Node, 0)
	if t == nil {
		return files
	}
	return flattenInto(files, t.roots)
}

func flattenInto(files []*Node, nodes []*Node) []*Node {
	for _, n := range nodes {
		if n.IsFolder() {
			files = flattenInto(files, n.children)
			continue
		}
		files = append(files, n)
	}
	return files
}
