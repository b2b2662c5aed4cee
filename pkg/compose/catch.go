package compose

import (
	"reflect"

	"github.com/go-loom/loom/pkg/errors"
)

// catchHandler is the provider payload a boundary installs for its
// descendants. The callback is refreshed on every recomposition so it sees
// current captures.
type catchHandler struct {
	fn func(*errors.CompositionError)
}

type catch struct {
	onError func(*errors.CompositionError)
	content Composable
}

func (c catch) Name() string { return "Catch" }

func (c catch) Compose(cx *Scope) Composable {
	h := useSlot(cx, func() *catchHandler {
		handler := &catchHandler{}
		if cx.providers == nil {
			cx.providers = make(map[reflect.Type]any, 1)
		}
		cx.providers[reflect.TypeOf(handler)] = handler
		return handler
	})
	h.fn = c.onError
	return c.content
}

// Catch installs an error boundary around content. Composition errors
// raised anywhere in the subtree are routed to the nearest enclosing
// boundary's onError instead of failing the pass; the failing scope's
// children keep their last good state.
func Catch(onError func(*errors.CompositionError), content Composable) Composable {
	return catch{onError: onError, content: content}
}

// throw fails its own composition with a fixed error.
type throw struct {
	err error
}

func (t throw) Name() string { return "Throw" }

func (t throw) Compose(cx *Scope) Composable {
	cx.Fail(t.err)
	return nil
}

// Throw is a composable that raises err every time it composes. Mainly
// useful for surfacing validation failures to an enclosing Catch.
func Throw(err error) Composable {
	return throw{err: err}
}
