package compose

import (
	"reflect"
	"strings"
)

// node is the internal tree entry for one composable instance: the current
// composable value, its runtime type identity, the persistent Scope, and
// links to its parent and children. A node's scope survives reconciliation
// as long as the type identity (and key, if any) at its position is
// unchanged.
type node struct {
	composable Composable
	typeID     reflect.Type
	key        any

	scope    *Scope
	parent   *node
	children []*node

	position Position
	depth    int

	mounted bool
	// composing guards against two live activations of the same erased
	// node; re-entrant composition is a fatal aliasing violation.
	composing    bool
	composedPass uint64
}

func (n *node) name() string {
	return composableName(n.composable)
}

// composableName derives a short diagnostic name for a composable:
// the Named override if present, otherwise the bare type name with
// package path, pointer markers, and type parameters stripped.
func composableName(v Composable) string {
	if named, ok := v.(Named); ok {
		return named.Name()
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := t.Name()
	if name == "" {
		name = t.String()
	}
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return name
}

// childSpec is one reconciliation entry produced by flattening the content
// a composable returned: the child composable plus an optional identity key.
type childSpec struct {
	content Composable
	key     any
}

// flatten expands returned content into the child list for reconciliation.
// nil content contributes nothing, groups are spliced in place, and WithKey
// wrappers are unwrapped into keyed entries.
func flatten(dst []childSpec, content Composable) []childSpec {
	if isNilComposable(content) {
		return dst
	}
	switch c := content.(type) {
	case group:
		for _, item := range c {
			dst = flatten(dst, item)
		}
		return dst
	case keyed:
		specs := flatten(nil, c.content)
		for _, spec := range specs {
			if spec.key == nil {
				spec.key = c.key
			}
			dst = append(dst, spec)
		}
		return dst
	}
	spec := childSpec{content: content}
	if k, ok := content.(Keyed); ok {
		spec.key = k.ComposeKey()
	}
	return append(dst, spec)
}

// isNilComposable reports whether content is nil, including a typed nil
// pointer stored in the interface.
func isNilComposable(content Composable) bool {
	if content == nil {
		return true
	}
	v := reflect.ValueOf(content)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// canUpdate reports whether the existing node can absorb the new content
// in place, preserving its scope: the runtime type identity must match and
// the keys must compare equal.
func canUpdate(existing *node, spec childSpec) bool {
	if reflect.TypeOf(spec.content) != existing.typeID {
		return false
	}
	return reflect.DeepEqual(existing.key, spec.key)
}
