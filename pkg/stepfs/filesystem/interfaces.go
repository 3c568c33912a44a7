package filesystem

import (
	"io/fs"
)

// ReadFS is an alias for fs.FS, representing a read-only file system.
type ReadFS = fs.FS

// WriteFS defines the write operations a sandbox needs to materialise a tree.
type WriteFS interface {
	WriteFile(name string, data []byte, perm fs.FileMode) error
	MkdirAll(path string, perm fs.FileMode) error
}

// FileSystem combines read, stat and write operations.
type FileSystem interface {
	ReadFS
	WriteFS
	Stat(name string) (fs.FileInfo, error)
}
