// Package sandbox holds the collaborators that receive mount descriptors and
// run the previewed project.
package sandbox

import (
	"context"
	"sync"

	"github.com/arthur-debert/stepfs/pkg/stepfs/core"
	"github.com/arthur-debert/stepfs/pkg/stepfs/mount"
)

// Sandbox accepts mount descriptors. Mount is called every time the published
// tree changes.
type Sandbox interface {
	Mount(ctx context.Context, d mount.Descriptor) error
}

// ReadyNotifier is implemented by sandboxes that report when their dev
// server is listening.
type ReadyNotifier interface {
	OnServerReady(fn func(core.ServerReady))
}

// readyHub fans a readiness notification out to registered handlers. A
// handler registered after the notification is called immediately.
type readyHub struct {
	mu       sync.Mutex
	handlers []func(core.ServerReady)
	ready    *core.ServerReady
}

func (h *readyHub) add(fn func(core.ServerReady)) {
	h.mu.Lock()
	h.handlers = append(h.handlers, fn)
	ready := h.ready
	h.mu.Unlock()
	if ready != nil {
		fn(*ready)
	}
}

func (h *readyHub) notify(r core.ServerReady) {
	h.mu.Lock()
	h.ready = &r
	handlers := append([]func(core.ServerReady){}, h.handlers...)
	h.mu.Unlock()
	for _, fn := range handlers {
		fn(r)
	}
}

// Local is a sandbox on the local machine: descriptors are written to a
// directory and the dev server runs there.
type Local struct {
	*DirSandbox
	*DevServer
}

// NewLocal combines a directory sandbox and the dev server running in it.
func NewLocal(dir *DirSandbox, dev *DevServer) *Local {
	return &Local{DirSandbox: dir, DevServer: dev}
}

var (
	_ Sandbox       = (*Local)(nil)
	_ ReadyNotifier = (*Local)(nil)
)
