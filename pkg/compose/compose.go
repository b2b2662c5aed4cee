package compose

// Composable is content that can participate in the tree. Compose runs the
// body against the scope and returns the children; it is re-run on every
// recomposition of the owning scope, so it must be cheap and free of side
// effects outside the hook primitives.
//
// Return nil for a leaf with no children.
type Composable interface {
	Compose(cx *Scope) Composable
}

// Named overrides the display name used in dumps and logs. Composables
// that don't implement it are named after their Go type.
type Named interface {
	Name() string
}

// Keyed carries an explicit reconciliation key. Two children at the same
// position with the same type but different keys are treated as different
// content: the old scope is destroyed and a fresh one mounted.
type Keyed interface {
	ComposeKey() any
}

// group splices its members into the parent's child list without
// introducing a scope of its own.
type group []Composable

func (group) Compose(*Scope) Composable { return nil }

// Group combines several composables into one value. Members are spliced
// flat into the surrounding child list; nils are skipped.
func Group(children ...Composable) Composable {
	return group(children)
}

// keyed attaches a reconciliation key to content. It is transparent like
// group: the key applies to the wrapped content's own position.
type keyed struct {
	key     any
	content Composable
}

func (keyed) Compose(*Scope) Composable { return nil }

// WithKey tags content with an explicit identity for reconciliation.
// When the key at a position changes the old scope is destroyed rather
// than reused, so state never bleeds between logically different items
// that happen to share a type.
func WithKey(key any, content Composable) Composable {
	return keyed{key: key, content: content}
}

// ForEach maps a slice into a keyed group. The key function must return a
// stable, comparable identity for each item.
func ForEach[T any](items []T, key func(T) any, body func(T) Composable) Composable {
	g := make(group, 0, len(items))
	for _, item := range items {
		g = append(g, keyed{key: key(item), content: body(item)})
	}
	return g
}

// fromFn adapts a plain function into a Composable.
type fromFn struct {
	name string
	fn   func(cx *Scope) Composable
}

func (f fromFn) Compose(cx *Scope) Composable { return f.fn(cx) }

func (f fromFn) Name() string {
	if f.name != "" {
		return f.name
	}
	return "FromFn"
}

// FromFn wraps a function as a Composable with the given display name.
//
// Note: every FromFn shares one Go type, so reconciliation treats two
// FromFn values at the same position as the same content and updates in
// place. Wrap with WithKey when that is not wanted.
func FromFn(name string, fn func(cx *Scope) Composable) Composable {
	return fromFn{name: name, fn: fn}
}
