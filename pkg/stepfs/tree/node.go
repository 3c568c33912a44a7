package tree

import "encoding/json"

// Kind distinguishes the two node variants
type Kind int

const (
	KindFile Kind = iota
	KindFolder
)

// String returns the string representation of the Kind
func (k Kind) String() string {
	if k == KindFolder {
		return "folder"
	}
	return "file"
}

// Node is a file or a folder in a Tree. A node reachable from a published
// Tree is never modified; reconciliation copies it instead.
type Node struct {
	kind     Kind
	name     string
	path     string
	content  string
	children []*Node
}

// NewFile returns a file node.
func NewFile(name, path, content string) *Node {
	return &Node{kind: KindFile, name: name, path: path, content: content}
}

// NewFolder returns a folder node holding the given children in order.
func NewFolder(name, path string, children ...*Node) *Node {
	return &Node{kind: KindFolder, name: name, path: path, children: children}
}

func (n *Node) Kind() Kind      { return n.kind }
func (n *Node) Name() string    { return n.name }
func (n *Node) Path() string    { return n.path }
func (n *Node) IsFolder() bool  { return n.kind == KindFolder }
func (n *Node) Content() string { return n.content }

// Children returns a copy of the folder's child list. Files have none.
func (n *Node) Children() []*Node {
	if len(n.children) == 0 {
		return nil
	}
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

func (n *Node) clone() *Node {
	c := *n
	if n.children != nil {
		c.children = append([]*Node(nil), n.children...)
	}
	return &c
}

type nodeJSON struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Path     string  `json:"path"`
	Content  *string `json:"content,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// MarshalJSON encodes the node in the file item shape used by the step source.
func (n *Node) MarshalJSON() ([]byte, error) {
	out := nodeJSON{Name: n.name, Type: n.kind.String(), Path: n.path}
	if n.kind == KindFolder {
		out.Children = n.children
		if out.Children == nil {
			out.Children = []*Node{}
		}
	} else {
		content := n.content
		out.Content = &content
	}
	return json.Marshal(out)
}
