package stepfs

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/stepfs/pkg/stepfs/core"
	"github.com/arthur-debert/stepfs/pkg/stepfs/mount"
	"github.com/arthur-debert/stepfs/pkg/stepfs/preview"
	"github.com/arthur-debert/stepfs/pkg/stepfs/sandbox"
	"github.com/arthur-debert/stepfs/pkg/stepfs/steps"
	"github.com/arthur-debert/stepfs/pkg/stepfs/tree"
)

// Workspace owns a step log and the file tree built from it. Readers always
// see the tree of the last completed reconciliation; a pass builds its tree
// privately and publishes it with one atomic swap.
type Workspace struct {
	passMu  sync.Mutex
	stepsMu sync.RWMutex
	steps   []core.BuildStep

	published atomic.Pointer[tree.Tree]
	ready     atomic.Pointer[core.ServerReady]

	builder *tree.Builder
	sandbox sandbox.Sandbox
	bus     core.EventBus
	idGen   steps.IDGenerator
	logger  zerolog.Logger
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithSandbox sets the sandbox that receives a mount descriptor whenever the
// published tree changes.
func WithSandbox(sb sandbox.Sandbox) Option {
	return func(ws *Workspace) { ws.sandbox = sb }
}

// WithLogger sets the workspace logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(ws *Workspace) { ws.logger = logger }
}

// WithEventBus sets the bus workspace events are published on.
func WithEventBus(bus core.EventBus) Option {
	return func(ws *Workspace) { ws.bus = bus }
}

// WithIDGenerator sets the generator used for steps that arrive without an ID.
func WithIDGenerator(gen steps.IDGenerator) Option {
	return func(ws *Workspace) { ws.idGen = gen }
}

// NewWorkspace creates a workspace with an empty tree and step log.
func NewWorkspace(opts ...Option) *Workspace {
	ws := &Workspace{
		logger: zerolog.Nop(),
		idGen:  steps.UUIDGenerator,
	}
	for _, opt := range opts {
		opt(ws)
	}

	adapter := NewLoggerAdapter(&ws.logger)
	if ws.bus == nil {
		ws.bus = core.NewMemoryEventBus(adapter)
	}
	ws.builder = tree.NewBuilder(adapter)
	ws.published.Store(tree.New())

	if notifier, ok := ws.sandbox.(sandbox.ReadyNotifier); ok {
		notifier.OnServerReady(ws.reportReady)
	}
	return ws
}

// Result describes one reconciliation pass.
type Result struct {
	// Applied lists the steps consumed by the pass, in order.
	Applied []core.StepID
	// Changed is true when a new tree was published.
	Changed bool
	// Tree is the tree published after the pass.
	Tree *tree.Tree
}

// Append adds steps to the end of the step log and returns their IDs. Steps
// without a status are pending; steps without an ID get a generated one.
func (ws *Workspace) Append(newSteps ...core.BuildStep) []core.StepID {
	ws.stepsMu.Lock()
	defer ws.stepsMu.Unlock()

	ids := make([]core.StepID, 0, len(newSteps))
	for _, step := range newSteps {
		if step.Status == "" {
			step.Status = core.StatusPending
		}
		if step.ID == "" {
			step.ID = ws.idGen(step)
		}
		ws.steps = append(ws.steps, step)
		ids = append(ids, step.ID)
	}

	ws.logger.Debug().
		Int("appended", len(newSteps)).
		Int("total", len(ws.steps)).
		Msg("appended build steps")
	return ids
}

// Reconcile applies the pending steps of the log to the published tree.
// Passes never overlap. When the tree changed it is published and then
// mounted in the sandbox; a mount failure is returned as a *SandboxError and
// does not undo the publication.
func (ws *Workspace) Reconcile(ctx context.Context) (Result, error) {
	ws.passMu.Lock()
	defer ws.passMu.Unlock()

	current := ws.published.Load()

	ws.stepsMu.Lock()
	next, applied := ws.builder.Reconcile(current, ws.steps)
	ws.stepsMu.Unlock()

	result := Result{Applied: applied, Changed: next != current, Tree: next}
	if !result.Changed {
		if len(applied) > 0 {
			ws.logger.Debug().Int("applied", len(applied)).Msg("build steps consumed without tree change")
		}
		return result, nil
	}

	ws.published.Store(next)
	ws.logger.Info().
		Int("applied", len(applied)).
		Int("nodes", tree.CountNodes(next)).
		Msg("published file tree")
	ws.publish(ctx, core.EventTreePublished, core.TreePublishedData{
		Applied: applied,
		Nodes:   tree.CountNodes(next),
	})

	if ws.sandbox == nil {
		return result, nil
	}
	if err := ws.sandbox.Mount(ctx, mount.Serialize(next)); err != nil {
		ws.logger.Error().Err(err).Msg("sandbox mount failed")
		ws.publish(ctx, core.EventSandboxMountFailed, core.MountFailedData{Err: err})
		return result, &SandboxError{Op: "mount", Cause: err}
	}
	ws.publish(ctx, core.EventSandboxMounted, nil)
	return result, nil
}

// Apply appends steps and runs a reconciliation pass.
func (ws *Workspace) Apply(ctx context.Context, newSteps ...core.BuildStep) (Result, error) {
	ws.Append(newSteps...)
	return ws.Reconcile(ctx)
}

// Tree returns the published tree.
func (ws *Workspace) Tree() *tree.Tree {
	return ws.published.Load()
}

// Steps returns a copy of the step log.
func (ws *Workspace) Steps() []core.BuildStep {
	ws.stepsMu.RLock()
	defer ws.stepsMu.RUnlock()
	out := make([]core.BuildStep, len(ws.steps))
	copy(out, ws.steps)
	return out
}

// MountDescriptor serializes the published tree.
func (ws *Workspace) MountDescriptor() mount.Descriptor {
	return mount.Serialize(ws.Tree())
}

// FlattenedFiles lists the files of the published tree depth-first.
func (ws *Workspace) FlattenedFiles() []*tree.Node {
	return tree.Flatten(ws.Tree())
}

// PreviewMode classifies the published tree.
func (ws *Workspace) PreviewMode() preview.Mode {
	return preview.SelectMode(ws.Tree())
}

// StaticDocument assembles the single-document preview of the published tree.
// It reports false when the tree has no .html file.
func (ws *Workspace) StaticDocument() (string, bool) {
	return preview.AssembleStaticDocument(ws.FlattenedFiles())
}

// ServerReady returns the sandbox readiness notification, if one arrived.
func (ws *Workspace) ServerReady() (core.ServerReady, bool) {
	r := ws.ready.Load()
	if r == nil {
		return core.ServerReady{}, false
	}
	return *r, true
}

// Events returns the bus workspace events are published on.
func (ws *Workspace) Events() core.EventBus {
	return ws.bus
}

func (ws *Workspace) reportReady(r core.ServerReady) {
	ws.ready.Store(&r)
	ws.logger.Info().
		Str("host", r.Host).
		Int("port", r.Port).
		Str("url", r.URL).
		Msg("sandbox ready")
	ws.publish(context.Background(), core.EventSandboxReady, r)
}

func (ws *Workspace) publish(ctx context.Context, eventType string, data interface{}) {
	if err := ws.bus.Publish(ctx, core.NewBaseEvent(eventType, data)); err != nil {
		ws.logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to publish event")
	}
}
