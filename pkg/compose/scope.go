package compose

import (
	"fmt"
	"reflect"

	"github.com/go-loom/loom/pkg/errors"
)

// Scope is the persistent per-instance state container for a composable:
// its hook slots, provided context values, registered cleanup functions,
// and a link to its position in the tree. A Scope is created when its
// composable first appears at a position, rebound on every recomposition
// at that position, and destroyed when the position disappears from the
// tree; destruction cancels owned tasks and runs cleanup in reverse
// registration order.
type Scope struct {
	node *node
	rt   *runtime

	slots   []any
	slotIdx int

	// generation increments on every recomposition of this scope. It is
	// monotonic for the scope's lifetime and never reset.
	generation uint64

	providers map[reflect.Type]any
	drops     []func()

	// failure holds an error reported via Fail during the current
	// composition of this scope.
	failure error

	// skipChildren is set by Memo when its dependency is unchanged; the
	// composer then leaves the scope's children completely untouched.
	skipChildren bool

	composed bool
}

func newScope(n *node, rt *runtime) *Scope {
	return &Scope{node: n, rt: rt}
}

// Name returns the diagnostic name of the composable bound to this scope.
func (cx *Scope) Name() string {
	return cx.node.name()
}

// Position returns the scope's tree position. The returned slice must not
// be modified.
func (cx *Scope) Position() Position {
	return cx.node.position
}

// Generation returns the number of times this scope has been composed.
func (cx *Scope) Generation() uint64 {
	return cx.generation
}

// Fail reports a composition failure for this scope. The current pass
// routes the error to the nearest Catch boundary, or surfaces it from
// ComposeOnce when no boundary absorbs it. Children returned alongside a
// failure are not reconciled.
func (cx *Scope) Fail(err error) {
	if cx.failure == nil {
		cx.failure = err
	}
}

// onDrop registers a cleanup function to run when the scope is destroyed.
// Cleanup runs in reverse registration order.
func (cx *Scope) onDrop(fn func()) {
	cx.drops = append(cx.drops, fn)
}

// beginCompose resets the per-composition cursor state and bumps the
// scope generation.
func (cx *Scope) beginCompose() {
	cx.slotIdx = 0
	cx.generation++
	cx.skipChildren = false
	cx.failure = nil
}

// finishCompose verifies the hook-slot discipline: every recomposition
// must consume exactly the slots the first composition created.
func (cx *Scope) finishCompose() {
	if cx.composed && cx.slotIdx != len(cx.slots) {
		panic(&errors.HookError{
			Composable: cx.Name(),
			Slot:       cx.slotIdx,
			Got:        fmt.Sprintf("%d hooks this recomposition, %d previously", cx.slotIdx, len(cx.slots)),
		})
	}
	cx.composed = true
}

// destroy runs the scope's cleanup functions in LIFO order. After destroy
// the scope must never be read or written again; queued state updates for
// a destroyed scope are dropped by the runtime.
func (cx *Scope) destroy() {
	for i := len(cx.drops) - 1; i >= 0; i-- {
		cx.drops[i]()
	}
	cx.drops = nil
	cx.slots = nil
	cx.providers = nil
}

// useSlot returns the hook slot at the current cursor, creating it with
// init on the scope's first composition. Slots are positional: accessing a
// slot of a different type, or introducing a new slot after the first
// composition, is a programmer error and panics with a HookError.
func useSlot[S any](cx *Scope, init func() *S) *S {
	idx := cx.slotIdx
	cx.slotIdx++

	if idx < len(cx.slots) {
		s, ok := cx.slots[idx].(*S)
		if !ok {
			panic(&errors.HookError{
				Composable: cx.Name(),
				Slot:       idx,
				Want:       fmt.Sprintf("%T", cx.slots[idx]),
				Got:        fmt.Sprintf("%T", (*S)(nil)),
			})
		}
		return s
	}
	if cx.composed {
		panic(&errors.HookError{
			Composable: cx.Name(),
			Slot:       idx,
			Got:        "a hook not present on the first composition",
		})
	}
	s := init()
	cx.slots = append(cx.slots, s)
	return s
}
