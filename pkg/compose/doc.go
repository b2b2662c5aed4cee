// Package compose provides the incremental composition runtime.
//
// This package defines the foundational types for building reactive trees:
// Composable, Scope, and Composer. It follows a declarative model where
// composables describe what the tree should look like, and the runtime
// recomposes only the scopes whose inputs actually changed.
//
// # Core Types
//
// Composable is a declarative unit that, given its Scope, produces zero or
// more children. Composables are lightweight values that can be created
// frequently without performance concerns.
//
// Scope is the persistent record attached to one composable instance at a
// particular position in the tree. It holds the instance's hook slots,
// provided context values, and background tasks, and survives across
// recompositions as long as the composable's concrete type at that position
// is unchanged.
//
// Composer owns the tree. The first call to ComposeOnce performs a full
// depth-first build; subsequent calls drain the dirty scheduler, visiting
// pending scopes in tree order so ancestors are always recomposed before
// descendants and no scope is composed twice in one pass.
//
// # Hooks
//
// Functions that begin with Use are hooks. Hooks bind persistent state to a
// scope by call order: the same hooks must run in the same order on every
// recomposition of a scope. Don't call hooks inside conditions or loops;
// the runtime panics with a HookError when it detects a mismatch rather
// than silently corrupting state.
//
//	type Counter struct{}
//
//	func (Counter) Compose(cx *compose.Scope) compose.Composable {
//	    count, setCount := compose.UseState(cx, 0)
//	    compose.UseEffect(cx, count, func() {
//	        fmt.Println("count is now", count)
//	    })
//	    _ = setCount // call from event handlers or tasks
//	    return nil
//	}
//
// # State and Scheduling
//
// UseState returns the cell's current value and a setter. The setter never
// recomposes synchronously: it enqueues a write that is applied at the start
// of the next pass, bumping the cell's generation and marking the owning
// scope dirty. Setters are safe to call from any goroutine.
//
// # Memoization
//
// Memo wraps a subtree behind a dependency check and leaves the subtree
// completely untouched while the dependency compares equal. Cell.Version
// offers a cheap generation-based dependency for callers who want to avoid
// deep comparison.
package compose
