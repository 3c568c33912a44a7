package sandbox

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/gammazero/toposort"

	"github.com/arthur-debert/stepfs/pkg/stepfs/core"
	"github.com/arthur-debert/stepfs/pkg/stepfs/filesystem"
	"github.com/arthur-debert/stepfs/pkg/stepfs/mount"
)

const (
	dirMode  fs.FileMode = 0755
	fileMode fs.FileMode = 0644
)

// DirSandbox writes mount descriptors to a filesystem. Mounting overlays the
// descriptor on what is already there; nothing is removed.
type DirSandbox struct {
	fsys   filesystem.FileSystem
	logger core.Logger
}

// NewDirSandbox creates a sandbox that materialises descriptors into fsys.
func NewDirSandbox(fsys filesystem.FileSystem, logger core.Logger) *DirSandbox {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &DirSandbox{fsys: fsys, logger: logger}
}

// Mount implements Sandbox. Entries whose path is not a valid io/fs path,
// such as those under a "." or ".." folder, are skipped with a warning and the
// rest of the descriptor is still written.
func (s *DirSandbox) Mount(ctx context.Context, d mount.Descriptor) error {
	plan, err := Plan(d)
	if err != nil {
		return err
	}
	if err := s.fsys.MkdirAll(".", dirMode); err != nil {
		return fmt.Errorf("failed to create sandbox root: %w", err)
	}

	written := 0
	for _, rec := range plan {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !fs.ValidPath(rec.Path) {
			s.logger.Warn().
				Str("path", rec.Path).
				Msg("skipping mount entry with invalid path")
			continue
		}
		if rec.IsDir {
			if err := s.fsys.MkdirAll(rec.Path, dirMode); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", rec.Path, err)
			}
		} else if err := s.fsys.WriteFile(rec.Path, []byte(rec.Contents), fileMode); err != nil {
			return fmt.Errorf("failed to write file %s: %w", rec.Path, err)
		}
		written++
	}

	s.logger.Info().
		Int("entries", written).
		Int("skipped", len(plan)-written).
		Msg("mounted descriptor")
	return nil
}

// planRoot stands for the sandbox root in the ordering graph.
type planRoot struct{}

// Plan orders the entries of d so that every directory comes before its
// contents.
func Plan(d mount.Descriptor) ([]mount.Record, error) {
	records := mount.Records(d)
	index := make(map[string]int, len(records))
	edges := make([]toposort.Edge, 0, len(records))
	for i, rec := range records {
		index[rec.Path] = i
		var parent interface{} = planRoot{}
		if rec.Parent != "" {
			parent = rec.Parent
		}
		edges = append(edges, toposort.Edge{parent, rec.Path})
	}

	sorted, err := toposort.Toposort(edges)
	if err != nil {
		return nil, fmt.Errorf("failed to order mount entries: %w", err)
	}

	plan := make([]mount.Record, 0, len(records))
	for _, item := range sorted {
		if _, ok := item.(planRoot); ok {
			continue
		}
		p, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected type in topological sort result: %T", item)
		}
		if i, exists := index[p]; exists {
			plan = append(plan, records[i])
		}
	}
	return plan, nil
}
