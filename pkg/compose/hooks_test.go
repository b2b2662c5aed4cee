package compose

import (
	"testing"

	"github.com/go-loom/loom/pkg/errors"
)

type hookBind struct {
	poke func()

	ref      *int
	computes int
	memoGot  int
	effects  int

	extraHook bool
	swapHook  bool
	dep       int
}

// hookLeaf exercises one hook per configuration flag. The first cell
// exists so tests can trigger recompositions.
type hookLeaf struct {
	bind *hookBind
}

func (h hookLeaf) Compose(cx *Scope) Composable {
	tick := UseCell(cx, func() int { return 0 })
	h.bind.poke = func() { tick.Update(func(v int) int { return v + 1 }) }

	h.bind.ref = UseRef(cx, func() int { return 100 })

	h.bind.memoGot = UseMemo(cx, h.bind.dep, func() int {
		h.bind.computes++
		return h.bind.dep * 10
	})

	UseEffect(cx, h.bind.dep, func() { h.bind.effects++ })

	if h.bind.extraHook {
		UseRef(cx, func() int { return 0 })
	}
	if h.bind.swapHook {
		// Occupies the slot the extra int ref claimed on the first
		// composition, but with a different element type.
		_ = UseRef(cx, func() string { return "" })
	}
	return nil
}

func newHookComposer(t *testing.T) (*Composer, *hookBind) {
	t.Helper()
	b := &hookBind{}
	c := New(hookLeaf{bind: b})
	compose(t, c)
	return c, b
}

func TestUseRefSurvivesRecomposition(t *testing.T) {
	c, b := newHookComposer(t)

	first := b.ref
	*b.ref = 42

	b.poke()
	compose(t, c)

	if b.ref != first {
		t.Error("ref identity must be stable across recompositions")
	}
	if *b.ref != 42 {
		t.Errorf("ref value = %d, want 42 (mutations must survive)", *b.ref)
	}
}

func TestUseRefMutationDoesNotSchedule(t *testing.T) {
	c, b := newHookComposer(t)

	*b.ref = 7
	if c.NeedsWork() {
		t.Error("mutating a ref must not schedule a recomposition")
	}
}

func TestUseMemoRecomputesOnlyOnDepChange(t *testing.T) {
	c, b := newHookComposer(t)

	if b.computes != 1 {
		t.Fatalf("computes = %d after first composition, want 1", b.computes)
	}

	b.poke()
	compose(t, c)
	if b.computes != 1 {
		t.Errorf("computes = %d after unrelated recomposition, want 1", b.computes)
	}

	b.dep = 5
	b.poke()
	compose(t, c)
	if b.computes != 2 {
		t.Errorf("computes = %d after dep change, want 2", b.computes)
	}
	if b.memoGot != 50 {
		t.Errorf("memo value = %d, want 50", b.memoGot)
	}
}

func TestUseEffectRunsAfterPass(t *testing.T) {
	b := &hookBind{}
	c := New(hookLeaf{bind: b})

	// Drive the pass step by step: the effect must not fire mid-pass.
	for {
		more, err := c.Step()
		if err != nil {
			t.Fatalf("Step: %v", err)
		}
		if more && b.effects != 0 {
			t.Fatal("effect ran before the pass completed")
		}
		if !more {
			break
		}
	}
	if b.effects != 1 {
		t.Errorf("effects = %d after first pass, want 1", b.effects)
	}
}

func TestUseEffectDepGating(t *testing.T) {
	c, b := newHookComposer(t)
	if b.effects != 1 {
		t.Fatalf("effects = %d after first pass, want 1", b.effects)
	}

	b.poke()
	compose(t, c)
	if b.effects != 1 {
		t.Errorf("effects = %d after unrelated recomposition, want 1", b.effects)
	}

	b.dep = 3
	b.poke()
	compose(t, c)
	if b.effects != 2 {
		t.Errorf("effects = %d after dep change, want 2", b.effects)
	}
}

func expectHookPanic(t *testing.T, fn func()) *errors.HookError {
	t.Helper()
	var hookErr *errors.HookError
	func() {
		defer func() {
			r := recover()
			if r == nil {
				t.Fatal("expected a hook discipline panic")
			}
			he, ok := r.(*errors.HookError)
			if !ok {
				t.Fatalf("expected *errors.HookError, got %T: %v", r, r)
			}
			hookErr = he
		}()
		fn()
	}()
	return hookErr
}

func TestNewHookAfterFirstCompositionPanics(t *testing.T) {
	c, b := newHookComposer(t)

	b.extraHook = true
	b.poke()
	expectHookPanic(t, func() { _ = c.ComposeOnce() })
}

func TestFewerHooksPanics(t *testing.T) {
	b := &hookBind{extraHook: true}
	c := New(hookLeaf{bind: b})
	compose(t, c)

	b.extraHook = false
	b.poke()
	expectHookPanic(t, func() { _ = c.ComposeOnce() })
}

func TestHookTypeMismatchPanics(t *testing.T) {
	b := &hookBind{extraHook: true}
	c := New(hookLeaf{bind: b})
	compose(t, c)

	b.extraHook = false
	b.swapHook = true
	b.poke()
	he := expectHookPanic(t, func() { _ = c.ComposeOnce() })
	if he.Composable != "hookLeaf" {
		t.Errorf("hook error names %q, want hookLeaf", he.Composable)
	}
}

func TestUseDropOrderIsLIFO(t *testing.T) {
	var order []string
	c := New(FromFn("root", func(cx *Scope) Composable {
		UseDrop(cx, func() { order = append(order, "first") })
		UseDrop(cx, func() { order = append(order, "second") })
		return nil
	}))
	compose(t, c)
	c.Close()

	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Errorf("drop order = %v, want [second first]", order)
	}
}
