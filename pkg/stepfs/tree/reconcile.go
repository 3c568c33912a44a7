package tree

import (
	"github.com/arthur-debert/stepfs/pkg/stepfs/core"
)

// Builder applies build steps to trees.
type Builder struct {
	logger core.Logger
}

// NewBuilder creates a Builder that reports absorbed steps to logger.
func NewBuilder(logger core.Logger) *Builder {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &Builder{logger: logger}
}

// Reconcile applies steps with a Builder that does not log.
func Reconcile(t *Tree, steps []core.BuildStep) (*Tree, []core.StepID) {
	return NewBuilder(nil).Reconcile(t, steps)
}

// Reconcile applies every pending CreateFile step, in slice order, to a
// private copy of t and returns the result together with the IDs of the
// consumed steps. Consumed steps are marked completed in place; steps of any
// other type or status are left alone.
//
// Later steps for the same path overwrite earlier ones. Steps whose path is
// malformed, or which would put a file where a folder is (or the reverse), are
// consumed without changing the tree.
//
// t is never modified. When no step changes the tree the same *Tree is
// returned, so callers can compare pointers to detect a change.
func (b *Builder) Reconcile(t *Tree, steps []core.BuildStep) (*Tree, []core.StepID) {
	var applied []core.StepID
	p := &pass{
		fresh:  make(map[*Node]struct{}),
		logger: b.logger,
	}
	roots := t.Roots()

	for i := range steps {
		step := &steps[i]
		if !step.IsPending() || step.Type != core.StepCreateFile {
			continue
		}

		segments := SplitPath(step.Path)
		switch {
		case !wellFormed(segments):
			b.logger.Warn().
				Str("step_id", string(step.ID)).
				Str("path", step.Path).
				Msg("skipping build step with malformed path")
		case clashes(roots, segments):
			b.logger.Warn().
				Str("step_id", string(step.ID)).
				Str("path", step.Path).
				Msg("skipping build step that conflicts with an existing node")
		default:
			roots = p.place(roots, segments, 0, step.Code)
			p.changed = true
			b.logger.Debug().
				Str("step_id", string(step.ID)).
				Str("path", step.Path).
				Int("content_size", len(step.Code)).
				Msg("applied build step")
		}

		step.Status = core.StatusCompleted
		applied = append(applied, step.ID)
	}

	if !p.changed {
		return t, applied
	}
	return &Tree{roots: roots}, applied
}

// pass holds the state of one reconciliation. Nodes in fresh were created
// during this pass and are not reachable from any published tree, so they
// may be changed in place.
type pass struct {
	fresh   map[*Node]struct{}
	changed bool
	logger  core.Logger
}

func (p *pass) own(n *Node) *Node {
	if _, ok := p.fresh[n]; ok {
		return n
	}
	c := n.clone()
	p.fresh[c] = struct{}{}
	return c
}

func (p *pass) create(n *Node) *Node {
	p.fresh[n] = struct{}{}
	return n
}

// place writes content at segments below nodes and returns the updated list.
// nodes must be owned by the pass.
func (p *pass) place(nodes []*Node, segments []string, depth int, content string) []*Node {
	prefix := PrefixAt(segments, depth)
	name := segments[depth]
	idx := indexOf(nodes, prefix)

	if depth == len(segments)-1 {
		if idx < 0 {
			return append(nodes, p.create(NewFile(name, prefix, content)))
		}
		file := p.own(nodes[idx])
		file.content = content
		nodes[idx] = file
		return nodes
	}

	var folder *Node
	if idx < 0 {
		folder = p.create(NewFolder(name, prefix))
		nodes = append(nodes, folder)
		idx = len(nodes) - 1
	} else {
		folder = p.own(nodes[idx])
		nodes[idx] = folder
	}
	folder.children = p.place(folder.children, segments, depth+1, content)
	return nodes
}

// clashes reports whether placing a file at segments would need a file to
// act as a folder or would overwrite a folder.
func clashes(nodes []*Node, segments []string) bool {
	for i := range segments {
		idx := indexOf(nodes, PrefixAt(segments, i))
		if idx < 0 {
			return false
		}
		n := nodes[idx]
		last := i == len(segments)-1
		if last {
			return n.IsFolder()
		}
		if !n.IsFolder() {
			return true
		}
		nodes = n.children
	}
	return false
}
