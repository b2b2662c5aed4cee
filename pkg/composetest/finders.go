package composetest

import (
	"fmt"
	"strings"

	"github.com/go-loom/loom/pkg/compose"
)

// Finder locates scopes in a composition snapshot.
type Finder interface {
	// Evaluate returns all matching scopes under root in pre-order.
	Evaluate(root *compose.ScopeSnapshot) []*compose.ScopeSnapshot
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	scopes []*compose.ScopeSnapshot
	finder Finder
}

// First returns the first match. Panics if there are none.
func (r FinderResult) First() *compose.ScopeSnapshot {
	if len(r.scopes) == 0 {
		panic(fmt.Sprintf("finder found no scopes: %s", r.describe()))
	}
	return r.scopes[0]
}

// FirstOrNil returns the first match, or nil if none.
func (r FinderResult) FirstOrNil() *compose.ScopeSnapshot {
	if len(r.scopes) == 0 {
		return nil
	}
	return r.scopes[0]
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.scopes)
}

// All returns every match in pre-order.
func (r FinderResult) All() []*compose.ScopeSnapshot {
	return r.scopes
}

func (r FinderResult) describe() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

// Find evaluates a finder against the tester's current tree.
func (t *Tester) Find(f Finder) FinderResult {
	snap := t.composer.Inspect()
	var scopes []*compose.ScopeSnapshot
	if snap != nil {
		scopes = f.Evaluate(snap)
	}
	return FinderResult{scopes: scopes, finder: f}
}

// ByName matches scopes by their display name.
func ByName(name string) Finder {
	return byName{name: name}
}

type byName struct {
	name string
}

func (f byName) Evaluate(root *compose.ScopeSnapshot) []*compose.ScopeSnapshot {
	var out []*compose.ScopeSnapshot
	walk(root, func(s *compose.ScopeSnapshot) {
		if s.Name == f.name {
			out = append(out, s)
		}
	})
	return out
}

func (f byName) Description() string {
	return fmt.Sprintf("scope named %q", f.name)
}

// ByNamePrefix matches scopes whose display name starts with prefix.
func ByNamePrefix(prefix string) Finder {
	return byNamePrefix{prefix: prefix}
}

type byNamePrefix struct {
	prefix string
}

func (f byNamePrefix) Evaluate(root *compose.ScopeSnapshot) []*compose.ScopeSnapshot {
	var out []*compose.ScopeSnapshot
	walk(root, func(s *compose.ScopeSnapshot) {
		if strings.HasPrefix(s.Name, f.prefix) {
			out = append(out, s)
		}
	})
	return out
}

func (f byNamePrefix) Description() string {
	return fmt.Sprintf("scope with name prefix %q", f.prefix)
}

// ByPosition matches the scope at an exact tree position, e.g. "0.1".
func ByPosition(position string) Finder {
	return byPosition{position: position}
}

type byPosition struct {
	position string
}

func (f byPosition) Evaluate(root *compose.ScopeSnapshot) []*compose.ScopeSnapshot {
	var out []*compose.ScopeSnapshot
	walk(root, func(s *compose.ScopeSnapshot) {
		if s.Position == f.position {
			out = append(out, s)
		}
	})
	return out
}

func (f byPosition) Description() string {
	return fmt.Sprintf("scope at position %s", f.position)
}

func walk(s *compose.ScopeSnapshot, visit func(*compose.ScopeSnapshot)) {
	visit(s)
	for _, child := range s.Children {
		walk(child, visit)
	}
}
