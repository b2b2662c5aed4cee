package compose

import "reflect"

// depEqual is the comparison used for hook dependencies. DeepEqual covers
// comparable values, slices, and small structs alike; callers with
// expensive dependencies should pass a change witness (Version) instead.
func depEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

type refSlot[T any] struct {
	value T
}

// UseRef returns a stable mutable reference that survives recomposition
// without ever triggering one. Mutations are invisible to the scheduler;
// use a Cell when changes should recompose.
func UseRef[T any](cx *Scope, init func() T) *T {
	s := useSlot(cx, func() *refSlot[T] {
		return &refSlot[T]{value: init()}
	})
	return &s.value
}

type memoSlot[T any] struct {
	dep   any
	value T
}

// UseMemo returns compute()'s result, re-running it only when dep differs
// from the previous composition's dep.
func UseMemo[T any](cx *Scope, dep any, compute func() T) T {
	first := false
	s := useSlot(cx, func() *memoSlot[T] {
		first = true
		return &memoSlot[T]{dep: dep}
	})
	if first {
		s.value = compute()
		return s.value
	}
	if !depEqual(s.dep, dep) {
		s.dep = dep
		s.value = compute()
	}
	return s.value
}

type effectSlot struct {
	dep any
	ran bool
}

// UseEffect queues fn to run after the current pass completes, on the
// composing goroutine, whenever dep differs from the previous
// composition's dep. Effects run after all tree mutations of the pass have
// been applied.
func UseEffect(cx *Scope, dep any, fn func()) {
	s := useSlot(cx, func() *effectSlot {
		return &effectSlot{dep: dep}
	})
	if !s.ran || !depEqual(s.dep, dep) {
		s.ran = true
		s.dep = dep
		cx.rt.queueEffect(fn)
	}
}

// UseDrop registers fn to run when the scope is destroyed. Registration
// happens once, on first composition; handlers run in reverse order of
// registration.
func UseDrop(cx *Scope, fn func()) {
	useSlot(cx, func() *struct{} {
		cx.onDrop(fn)
		return &struct{}{}
	})
}
