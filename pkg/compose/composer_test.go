package compose

import (
	"testing"

	"github.com/go-loom/loom/pkg/errors"
)

// silentHandler keeps reported errors out of test output while recording
// them for assertions.
type silentHandler struct {
	compositions []*errors.CompositionError
	panics       []*errors.PanicError
}

func (h *silentHandler) HandleError(err *errors.CompositionError) {
	h.compositions = append(h.compositions, err)
}

func (h *silentHandler) HandlePanic(err *errors.PanicError) {
	h.panics = append(h.panics, err)
}

func quietErrors(t *testing.T) *silentHandler {
	t.Helper()
	h := &silentHandler{}
	errors.SetHandler(h)
	t.Cleanup(func() { errors.SetHandler(nil) })
	return h
}

// Fixture composables shared across the package tests.

type A struct{}

func (A) Compose(*Scope) Composable { return Group(B{}, C{}) }

type B struct{}

func (B) Compose(*Scope) Composable { return nil }

type C struct{}

func (C) Compose(*Scope) Composable { return nil }

type leafBind struct {
	set func(int)
	got int
}

// statefulLeaf owns one int cell and exposes its setter and last-seen
// value through the bind.
type statefulLeaf struct {
	bind *leafBind
}

func (l statefulLeaf) Compose(cx *Scope) Composable {
	v, set := UseState(cx, 0)
	l.bind.set = set
	l.bind.got = v
	return nil
}

type pair struct {
	x, y *leafBind
}

func (p pair) Compose(*Scope) Composable {
	return Group(statefulLeaf{bind: p.x}, statefulLeaf{bind: p.y})
}

type dropBind struct {
	dropped int
}

// droppy registers a drop handler so tests can observe destruction.
type droppy struct {
	bind *dropBind
}

func (d droppy) Compose(cx *Scope) Composable {
	UseDrop(cx, func() { d.bind.dropped++ })
	return nil
}

type toggleBind struct {
	set func(bool)
}

type toggleApp struct {
	bind *toggleBind
	drop *dropBind
}

func (a toggleApp) Compose(cx *Scope) Composable {
	show, set := UseState(cx, true)
	a.bind.set = set
	if show {
		return Group(B{}, droppy{bind: a.drop})
	}
	return Group(B{})
}

func compose(t *testing.T, c *Composer) {
	t.Helper()
	if err := c.ComposeOnce(); err != nil {
		t.Fatalf("ComposeOnce: %v", err)
	}
}

func TestInitialComposition(t *testing.T) {
	c := New(A{})
	compose(t, c)

	if got := c.String(); got != "A(B, C)" {
		t.Errorf("dump = %q, want %q", got, "A(B, C)")
	}
}

func TestNeedsWork(t *testing.T) {
	x, y := &leafBind{}, &leafBind{}
	c := New(pair{x: x, y: y})

	if !c.NeedsWork() {
		t.Error("a fresh composer should need its initial pass")
	}
	compose(t, c)
	if c.NeedsWork() {
		t.Error("no work should remain after the initial pass")
	}

	x.set(1)
	if !c.NeedsWork() {
		t.Error("a queued state write should register as pending work")
	}
	compose(t, c)
	if c.NeedsWork() {
		t.Error("no work should remain after the incremental pass")
	}
}

func TestNoOpPassLeavesGenerationsAlone(t *testing.T) {
	c := New(A{})
	compose(t, c)

	before := c.Inspect()
	compose(t, c)
	after := c.Inspect()

	assertSameGenerations(t, before, after)
}

func assertSameGenerations(t *testing.T, a, b *ScopeSnapshot) {
	t.Helper()
	if a.Generation != b.Generation {
		t.Errorf("scope %s at %s: generation changed %d -> %d",
			a.Name, a.Position, a.Generation, b.Generation)
	}
	if len(a.Children) != len(b.Children) {
		t.Fatalf("scope %s: child count changed %d -> %d", a.Name, len(a.Children), len(b.Children))
	}
	for i := range a.Children {
		assertSameGenerations(t, a.Children[i], b.Children[i])
	}
}

func TestIncrementalRecomposition(t *testing.T) {
	x, y := &leafBind{}, &leafBind{}
	c := New(pair{x: x, y: y})
	compose(t, c)

	x.set(41)
	compose(t, c)

	if x.got != 41 {
		t.Errorf("x saw %d, want 41", x.got)
	}
	if y.got != 0 {
		t.Errorf("y saw %d, want 0", y.got)
	}

	snap := c.Inspect()
	if snap.Generation != 1 {
		t.Errorf("root generation = %d, want 1 (parent must not recompose for a child write)", snap.Generation)
	}
	if got := snap.Children[0].Generation; got != 2 {
		t.Errorf("x generation = %d, want 2", got)
	}
	if got := snap.Children[1].Generation; got != 1 {
		t.Errorf("y generation = %d, want 1 (sibling must stay untouched)", got)
	}
}

func TestStateVisibleNextPassOnly(t *testing.T) {
	x, y := &leafBind{}, &leafBind{}
	c := New(pair{x: x, y: y})
	compose(t, c)

	x.set(7)
	// Not yet applied: writes land at the start of the next pass.
	if x.got != 0 {
		t.Errorf("write applied immediately, got %d", x.got)
	}
	compose(t, c)
	if x.got != 7 {
		t.Errorf("x saw %d after the pass, want 7", x.got)
	}
}

func TestMultipleWritesCoalesce(t *testing.T) {
	x, y := &leafBind{}, &leafBind{}
	c := New(pair{x: x, y: y})
	compose(t, c)

	x.set(1)
	x.set(2)
	x.set(3)
	compose(t, c)

	if x.got != 3 {
		t.Errorf("x saw %d, want the last write 3", x.got)
	}
	snap := c.Inspect()
	if got := snap.Children[0].Generation; got != 2 {
		t.Errorf("x generation = %d, want 2 (one recomposition for three writes)", got)
	}
}

func TestUnmountRunsDropHandlers(t *testing.T) {
	tb := &toggleBind{}
	db := &dropBind{}
	c := New(toggleApp{bind: tb, drop: db})
	compose(t, c)

	if got := c.String(); got != "toggleApp(B, droppy)" {
		t.Fatalf("dump = %q", got)
	}

	tb.set(false)
	compose(t, c)

	if got := c.String(); got != "toggleApp(B)" {
		t.Errorf("dump = %q, want %q", got, "toggleApp(B)")
	}
	if db.dropped != 1 {
		t.Errorf("drop handler ran %d times, want 1", db.dropped)
	}
}

func TestCloseDestroysTree(t *testing.T) {
	tb := &toggleBind{}
	db := &dropBind{}
	c := New(toggleApp{bind: tb, drop: db})
	compose(t, c)

	c.Close()
	if db.dropped != 1 {
		t.Errorf("drop handler ran %d times after Close, want 1", db.dropped)
	}
	if got := c.String(); got != "" {
		t.Errorf("dump after Close = %q, want empty", got)
	}
}

func TestStepDrivesOneScopeAtATime(t *testing.T) {
	c := New(A{})

	steps := 0
	for {
		more, err := c.Step()
		if err != nil {
			t.Fatalf("Step: %v", err)
		}
		if !more {
			break
		}
		steps++
	}
	// Root plus its two children.
	if steps != 3 {
		t.Errorf("initial build took %d steps, want 3", steps)
	}
	if got := c.String(); got != "A(B, C)" {
		t.Errorf("dump = %q, want %q", got, "A(B, C)")
	}
}

func TestOnNeedsPass(t *testing.T) {
	x, y := &leafBind{}, &leafBind{}
	c := New(pair{x: x, y: y})

	notified := 0
	c.OnNeedsPass = func() { notified++ }
	compose(t, c)

	x.set(1)
	if notified == 0 {
		t.Error("a queued write should notify the host")
	}
}

func TestReentrantCompositionPanics(t *testing.T) {
	c := New(A{})
	compose(t, c)

	c.root.composing = true
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for re-entrant composition")
		}
	}()
	c.rt.sched.schedule(c.root)
	c.beginPass()
	_ = c.composeNode(c.root)
}
