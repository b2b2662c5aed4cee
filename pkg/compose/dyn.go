package compose

type dyn struct {
	content Composable
}

func (dyn) Name() string { return "Dyn" }

func (d dyn) Compose(*Scope) Composable { return d.content }

// Dyn wraps content whose concrete type varies at runtime, e.g. a branch
// that yields different composables per mode. The wrapper gives the
// varying content a stable position: when the inner type stays the same
// across recompositions the child scope is updated in place, and when it
// changes the old child is destroyed and a fresh one mounted.
func Dyn(content Composable) Composable {
	return dyn{content: content}
}
