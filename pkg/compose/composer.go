package compose

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-loom/loom/pkg/errors"
	"github.com/go-loom/loom/pkg/telemetry"
)

// Composer owns a tree of scopes and drives its composition. The first
// call to ComposeOnce performs a full depth-first build in pre-order;
// subsequent calls apply queued state writes and drain the dirty scheduler
// in position order, recomposing only the scopes whose inputs changed.
//
// Composition is single-threaded and cooperative: the Composer's methods
// must be called from one goroutine, and within a pass scopes are visited
// strictly one at a time. State cell setters may be called from any
// goroutine; their writes land through a synchronized queue at the start
// of the next pass.
type Composer struct {
	rt   *runtime
	root *node

	// OnNeedsPass is called when new work is scheduled while no pass is
	// running, signalling the host that ComposeOnce should be called
	// again. Useful for on-demand frame scheduling.
	OnNeedsPass func()

	started bool
	inPass  bool

	passStart  time.Time
	recomposed int
}

// New creates a Composer for the given root composable. The root scope is
// built eagerly; children are not composed until the first ComposeOnce.
func New(root Composable) *Composer {
	rt := newRuntime()
	c := &Composer{rt: rt}
	rt.onNeedsPass = func() {
		if c.OnNeedsPass != nil {
			c.OnNeedsPass()
		}
	}
	c.root = c.mount(nil, 0, childSpec{content: root})
	return c
}

// SetExecutor replaces the executor used by UseTask. It must be called
// before the first ComposeOnce.
func (c *Composer) SetExecutor(e Executor) {
	if e != nil {
		c.rt.executor = e
	}
}

// SetLogger replaces the runtime's logger. The default discards all output.
func (c *Composer) SetLogger(l *telemetry.Logger) {
	if l != nil {
		c.rt.log = l.NewComponentLogger("compose")
	}
}

// NeedsWork reports whether there are pending state writes or scheduled
// scopes, i.e. whether ComposeOnce would do anything.
func (c *Composer) NeedsWork() bool {
	return !c.started || c.rt.pendingUpdates() > 0 || c.rt.sched.len() > 0
}

// ComposeOnce runs one full composition pass: the initial build on the
// first call, an incremental drain of the dirty scheduler afterwards.
// It returns the first CompositionError that no Catch boundary absorbed,
// leaving the failing subtree in its last-known-good state.
func (c *Composer) ComposeOnce() error {
	var firstErr error
	for {
		more, err := c.Step()
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if !more {
			return firstErr
		}
	}
}

// Step composes exactly one pending scope, beginning a new pass if none is
// in progress. It returns false when the pass has completed, after queued
// effects and local tasks have run. Hosts may stop after any step and
// resume later without losing progress.
func (c *Composer) Step() (bool, error) {
	if !c.inPass {
		c.beginPass()
	}

	n := c.rt.sched.popMin()
	for n != nil && !n.mounted {
		n = c.rt.sched.popMin()
	}
	if n == nil {
		c.finishPass()
		return false, nil
	}
	return true, c.composeNode(n)
}

// Close destroys the whole tree, cancelling all tasks and running every
// scope's cleanup. The Composer must not be used afterwards.
func (c *Composer) Close() {
	if c.root != nil {
		c.unmount(c.root)
		c.root = nil
	}
}

func (c *Composer) beginPass() {
	c.inPass = true
	c.passStart = time.Now()
	c.recomposed = 0
	c.rt.pass++

	if !c.started {
		c.started = true
		c.rt.sched.schedule(c.root)
		return
	}
	c.rt.drainUpdates()
}

func (c *Composer) finishPass() {
	c.inPass = false

	c.runLocalTasks()
	c.runEffects()

	telemetry.RecordPass(time.Since(c.passStart), c.recomposed)
	c.rt.log.Debug().
		Uint64("pass", c.rt.pass).
		Int("recomposed", c.recomposed).
		Dur("elapsed", time.Since(c.passStart)).
		Msg("composition pass complete")
}

// runEffects executes effects queued during the pass, after all tree
// mutations have been applied.
func (c *Composer) runEffects() {
	effects := c.rt.effects
	c.rt.effects = nil
	for _, fn := range effects {
		func() {
			defer errors.Recover("compose.runEffects")
			fn()
		}()
	}
}

// runLocalTasks executes thread-pinned tasks on the composing goroutine,
// between passes, never concurrently with composition.
func (c *Composer) runLocalTasks() {
	tasks := c.rt.localTasks
	c.rt.localTasks = nil
	for _, t := range tasks {
		if t.ctx.Err() != nil {
			continue
		}
		func() {
			defer errors.Recover("compose.runLocalTasks")
			t.fn(t.ctx)
		}()
	}
}

// composeNode recomposes a single scope: it re-runs the composable's body
// against the existing scope, verifies the hook discipline, and reconciles
// the produced children against the previous child list.
func (c *Composer) composeNode(n *node) error {
	if n.composing {
		panic(fmt.Sprintf("compose: re-entrant composition of scope %s at %s (aliasing violation)",
			n.name(), n.position))
	}
	if n.composedPass == c.rt.pass {
		// Already composed this drain; duplicate entries collapse.
		return nil
	}
	n.composedPass = c.rt.pass
	n.composing = true
	defer func() { n.composing = false }()

	sc := n.scope
	sc.beginCompose()
	c.recomposed++
	telemetry.RecordRecomposition()

	c.rt.log.Trace().
		Str("scope", n.name()).
		Stringer("position", n.position).
		Uint64("generation", sc.generation).
		Msg("composing scope")

	content, cerr := c.safeCompose(n)
	if cerr != nil {
		return c.dispatchError(n, cerr)
	}
	sc.finishCompose()

	if sc.skipChildren {
		sc.skipChildren = false
		return nil
	}
	c.reconcile(n, content)
	return nil
}

// safeCompose runs the composable body with panic recovery, converting
// panics and Fail reports into CompositionErrors. HookError panics are
// programmer errors and propagate unchanged.
func (c *Composer) safeCompose(n *node) (content Composable, cerr *errors.CompositionError) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(*errors.HookError); ok {
				panic(r)
			}
			content = nil
			cerr = &errors.CompositionError{
				Composable: n.name(),
				Recovered:  r,
				StackTrace: errors.CaptureStack(),
				Timestamp:  time.Now(),
			}
		}
	}()

	content = n.composable.Compose(n.scope)
	if n.scope.failure != nil {
		cerr = &errors.CompositionError{
			Composable: n.name(),
			Err:        n.scope.failure,
			Timestamp:  time.Now(),
		}
		n.scope.failure = nil
		content = nil
	}
	return content, cerr
}

// dispatchError routes a composition error to the nearest ancestor Catch
// boundary. Absorbed errors return nil; otherwise the error is reported to
// the global handler and returned as a pass-level failure. Either way the
// failing scope's children are left as they were.
func (c *Composer) dispatchError(n *node, cerr *errors.CompositionError) error {
	handlerType := reflect.TypeOf((*catchHandler)(nil))
	for anc := n.parent; anc != nil; anc = anc.parent {
		if v, ok := anc.scope.providers[handlerType]; ok {
			c.rt.log.Debug().
				Str("scope", n.name()).
				Str("boundary", anc.name()).
				Err(cerr).
				Msg("composition error absorbed by boundary")
			v.(*catchHandler).fn(cerr)
			return nil
		}
	}
	errors.Report(cerr)
	return cerr
}

// reconcile matches the produced child list against the previous one by
// position: same type identity and key update the existing node in place,
// preserving its scope; anything else destroys the old scope and mounts a
// fresh one. Updated and new children are scheduled into the current pass.
func (c *Composer) reconcile(n *node, content Composable) {
	specs := flatten(nil, content)

	for i, spec := range specs {
		if i < len(n.children) {
			child := n.children[i]
			if canUpdate(child, spec) {
				child.composable = spec.content
				c.rt.sched.schedule(child)
				continue
			}
			c.unmount(child)
			child = c.mount(n, i, spec)
			n.children[i] = child
			c.rt.sched.schedule(child)
			continue
		}
		child := c.mount(n, i, spec)
		n.children = append(n.children, child)
		c.rt.sched.schedule(child)
	}

	for i := len(specs); i < len(n.children); i++ {
		c.unmount(n.children[i])
	}
	n.children = n.children[:len(specs)]
}

// mount creates a node and a fresh scope for content appearing at the
// given child index.
func (c *Composer) mount(parent *node, idx int, spec childSpec) *node {
	n := &node{
		composable: spec.content,
		typeID:     reflect.TypeOf(spec.content),
		key:        spec.key,
		parent:     parent,
		mounted:    true,
	}
	if parent != nil {
		n.position = parent.position.child(idx)
		n.depth = parent.depth + 1
	}
	n.scope = newScope(n, c.rt)

	telemetry.RecordScopeMounted()
	c.rt.log.Trace().
		Str("scope", n.name()).
		Stringer("position", n.position).
		Msg("scope mounted")
	return n
}

// unmount destroys a subtree: children first, then the node's own scope,
// cancelling its tasks and running cleanup.
func (c *Composer) unmount(n *node) {
	n.mounted = false
	for _, child := range n.children {
		c.unmount(child)
	}
	n.children = nil
	n.scope.destroy()

	telemetry.RecordScopeUnmounted()
	c.rt.log.Trace().
		Str("scope", n.name()).
		Stringer("position", n.position).
		Msg("scope destroyed")
}

// String renders a deterministic textual dump of the current tree
// structure, e.g. "A(B, C)".
func (c *Composer) String() string {
	if c.root == nil {
		return ""
	}
	var sb strings.Builder
	writeNode(&sb, c.root)
	return sb.String()
}

func writeNode(sb *strings.Builder, n *node) {
	sb.WriteString(n.name())
	if len(n.children) == 0 {
		return
	}
	sb.WriteByte('(')
	for i, child := range n.children {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeNode(sb, child)
	}
	sb.WriteByte(')')
}

// ScopeSnapshot is a point-in-time structural view of one scope, used for
// diagnostics and inspection.
type ScopeSnapshot struct {
	Name       string
	Position   string
	Generation uint64
	Children   []*ScopeSnapshot
}

// Inspect captures a snapshot of the current tree. It must be called from
// the composing goroutine, between passes.
func (c *Composer) Inspect() *ScopeSnapshot {
	if c.root == nil {
		return nil
	}
	return snapshotNode(c.root)
}

func snapshotNode(n *node) *ScopeSnapshot {
	snap := &ScopeSnapshot{
		Name:       n.name(),
		Position:   n.position.String(),
		Generation: n.scope.generation,
	}
	for _, child := range n.children {
		snap.Children = append(snap.Children, snapshotNode(child))
	}
	return snap
}
