package compose

import (
	"reflect"

	"github.com/go-loom/loom/pkg/errors"
)

// UseProvider makes value available to this scope and all its descendants
// under the type T. Nested providers of the same type shadow outer ones.
// The value is captured on first composition; providing a different value
// for the same slot later has no effect.
func UseProvider[T any](cx *Scope, value T) {
	useSlot(cx, func() *struct{} {
		if cx.providers == nil {
			cx.providers = make(map[reflect.Type]any, 1)
		}
		cx.providers[reflect.TypeOf((*T)(nil)).Elem()] = value
		return &struct{}{}
	})
}

// UseContext resolves the nearest provided value of type T, searching from
// the calling scope upward. A ContextError is returned when no ancestor
// provides T.
func UseContext[T any](cx *Scope) (T, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for n := cx.node; n != nil; n = n.parent {
		if v, ok := n.scope.providers[t]; ok {
			return v.(T), nil
		}
	}
	var zero T
	return zero, &errors.ContextError{Type: t.String()}
}
