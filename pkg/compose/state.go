package compose

import "sync/atomic"

var cellID uint64

// Cell is a piece of state owned by one scope. Reads happen during
// composition on the composing goroutine; writes may come from any
// goroutine and are applied through the runtime's update queue at the
// start of the next pass, marking the owning scope for recomposition.
//
// Writes to a cell whose scope has been destroyed are silently dropped.
type Cell[T any] struct {
	id         uint64
	value      T
	generation uint64
	owner      *node
	rt         *runtime
}

// Get returns the current value. Valid only during composition.
func (c *Cell[T]) Get() T { return c.value }

// Set queues a write of v. The value becomes visible at the start of the
// next pass. Safe to call from any goroutine.
func (c *Cell[T]) Set(v T) {
	c.rt.enqueueUpdate(c.owner, func() {
		c.value = v
		c.generation++
	})
}

// Update queues a read-modify-write. fn runs at the start of the next pass
// on the composing goroutine, against the then-current value.
func (c *Cell[T]) Update(fn func(T) T) {
	c.rt.enqueueUpdate(c.owner, func() {
		c.value = fn(c.value)
		c.generation++
	})
}

// Generation counts applied writes. It changes exactly when the value
// does, so it serves as a cheap change witness for Memo.
func (c *Cell[T]) Generation() uint64 { return c.generation }

// Version is a comparable witness of a cell's state at a point in time.
// Two Versions are equal iff they refer to the same cell and no write has
// been applied between them.
type Version struct {
	Cell       uint64
	Generation uint64
}

// Version returns the cell's current change witness, suitable as a Memo
// dependency for values that are themselves expensive or non-comparable.
func (c *Cell[T]) Version() Version {
	return Version{Cell: c.id, Generation: c.generation}
}

// UseCell returns a state cell scoped to the calling scope, initialized
// with init on first composition. The same slot returns the same cell on
// every recomposition.
func UseCell[T any](cx *Scope, init func() T) *Cell[T] {
	return useSlot(cx, func() *Cell[T] {
		return &Cell[T]{
			id:    atomic.AddUint64(&cellID, 1),
			value: init(),
			owner: cx.node,
			rt:    cx.rt,
		}
	})
}

// UseState returns the current value of a scope-owned cell and a setter
// for it. Shorthand for UseCell when only value-and-set is needed.
func UseState[T any](cx *Scope, initial T) (T, func(T)) {
	cell := UseCell(cx, func() T { return initial })
	return cell.Get(), cell.Set
}
