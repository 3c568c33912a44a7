package filesystem

import (
	"io/fs"
	"sync"
	"testing/fstest"
)

// TestFileSystem is an in-memory FileSystem built on fstest.MapFS.
type TestFileSystem struct {
	mu    sync.Mutex
	files fstest.MapFS
}

// NewTestFileSystem creates an empty in-memory filesystem.
func NewTestFileSystem() *TestFileSystem {
	return &TestFileSystem{files: make(fstest.MapFS)}
}

// Open implements fs.FS
func (tfs *TestFileSystem) Open(name string) (fs.File, error) {
	tfs.mu.Lock()
	defer tfs.mu.Unlock()
	return tfs.files.Open(name)
}

// Stat implements FileSystem
func (tfs *TestFileSystem) Stat(name string) (fs.FileInfo, error) {
	tfs.mu.Lock()
	defer tfs.mu.Unlock()
	return tfs.files.Stat(name)
}

// ReadFile returns the data of a file written earlier.
func (tfs *TestFileSystem) ReadFile(name string) ([]byte, error) {
	tfs.mu.Lock()
	defer tfs.mu.Unlock()
	return tfs.files.ReadFile(name)
}

// Paths returns every path stored, files and directories.
func (tfs *TestFileSystem) Paths() []string {
	tfs.mu.Lock()
	defer tfs.mu.Unlock()
	paths := make([]string, 0, len(tfs.files))
	for p := range tfs.files {
		paths = append(paths, p)
	}
	return paths
}

// WriteFile implements WriteFS. The parent directory must exist.
func (tfs *TestFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	if !fs.ValidPath(name) || name == "." {
		return &fs.PathError{Op: "writefile", Path: name, Err: fs.ErrInvalid}
	}
	tfs.mu.Lock()
	defer tfs.mu.Unlock()
	if parent := parentOf(name); parent != "." {
		if dir, ok := tfs.files[parent]; !ok || !dir.Mode.IsDir() {
			return &fs.PathError{Op: "writefile", Path: name, Err: fs.ErrNotExist}
		}
	}
	tfs.files[name] = &fstest.MapFile{Data: append([]byte(nil), data...), Mode: perm}
	return nil
}

// MkdirAll implements WriteFS
func (tfs *TestFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	if !fs.ValidPath(path) {
		return &fs.PathError{Op: "mkdirall", Path: path, Err: fs.ErrInvalid}
	}
	if path == "." {
		return nil
	}
	tfs.mu.Lock()
	defer tfs.mu.Unlock()
	var missing []string
	for p := path; p != "."; p = parentOf(p) {
		if existing, ok := tfs.files[p]; ok {
			if !existing.Mode.IsDir() {
				return &fs.PathError{Op: "mkdirall", Path: p, Err: fs.ErrExist}
			}
			continue
		}
		missing = append(missing, p)
	}
	for _, p := range missing {
		tfs.files[p] = &fstest.MapFile{Mode: perm | fs.ModeDir}
	}
	return nil
}

func parentOf(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '/' {
			return name[:i]
		}
	}
	return "."
}

var _ FileSystem = (*TestFileSystem)(nil)
