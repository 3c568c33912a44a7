// Package mount projects a file tree into the nested directory/file
// descriptor accepted by sandbox mount operations.
package mount

import (
	"encoding/json"

	"github.com/arthur-debert/stepfs/pkg/stepfs/tree"
)

// Descriptor maps node names to their entries.
type Descriptor map[string]Entry

// Entry is either a directory or a file; exactly one of the fields is set.
type Entry struct {
	Directory Descriptor
	File      *File
}

// File holds the contents of a file entry.
type File struct {
	Contents string `json:"contents" yaml:"contents"`
}

// IsDir reports whether the entry describes a directory.
func (e Entry) IsDir() bool { return e.File == nil }

// Serialize projects t into a Descriptor. It never fails; an empty tree
// yields an empty descriptor.
func Serialize(t *tree.Tree) Descriptor {
	return serializeNodes(t.Roots())
}

func serializeNodes(nodes []*tree.Node) Descriptor {
	d := make(Descriptor, len(nodes))
	for _, n := range nodes {
		d[n.Name()] = serializeNode(n)
	}
	return d
}

func serializeNode(n *tree.Node) Entry {
	if n.IsFolder() {
		return Entry{Directory: serializeNodes(n.Children())}
	}
	return Entry{File: &File{Contents: n.Content()}}
}

// MarshalJSON encodes a nil descriptor as an empty object.
func (d Descriptor) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]Entry(d))
}

// MarshalJSON encodes the entry as {"file": {...}} or {"directory": {...}}.
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.File != nil {
		return json.Marshal(struct {
			File *File `json:"file"`
		}{e.File})
	}
	return json.Marshal(struct {
		Directory Descriptor `json:"directory"`
	}{e.Directory})
}

// MarshalYAML implements yaml.Marshaler.
func (d Descriptor) MarshalYAML() (interface{}, error) {
	if d == nil {
		return map[string]Entry{}, nil
	}
	return map[string]Entry(d), nil
}

// MarshalYAML implements yaml.Marshaler with the same shape as MarshalJSON.
func (e Entry) MarshalYAML() (interface{}, error) {
	if e.File != nil {
		return map[string]*File{"file": e.File}, nil
	}
	return map[string]Descriptor{"directory": e.Directory}, nil
}

// Record is one entry of a descriptor with its full path. Parent is the path
// of the enclosing directory, empty for top-level entries.
type Record struct {
	Path     string
	Parent   string
	IsDir    bool
	Contents string
}

// Records lists every entry of d in no particular order. Callers that need
// directories before their contents order by Parent.
func Records(d Descriptor) []Record {
	return appendRecords(nil, "", d)
}

func appendRecords(records []Record, parent string, d Descriptor) []Record {
	for name, entry := range d {
		p := name
		if parent != "" {
			p = parent + "/" + name
		}
		if entry.IsDir() {
			records = append(records, Record{Path: p, Parent: parent, IsDir: true})
			records = appendRecords(records, p, entry.Directory)
			continue
		}
		records = append(records, Record{Path: p, Parent: parent, Contents: entry.File.Contents})
	}
	return records
}
