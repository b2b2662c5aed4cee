// Package inspector renders composition trees as YAML for debugging and
// golden-file tests. Snapshots are taken between passes and carry the
// structural facts a scope exposes: name, position, and generation.
package inspector

import (
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/go-loom/loom/pkg/compose"
)

// snapshotCounter provides monotonic snapshot IDs.
var snapshotCounter atomic.Uint64

// TreeSnapshot captures the scope tree from a single point between passes.
type TreeSnapshot struct {
	SnapshotID uint64 `yaml:"snapshotId"`
	Root       *Node  `yaml:"root"`
}

// Node holds the inspectable facts for one scope.
type Node struct {
	Name       string  `yaml:"name"`
	Position   string  `yaml:"position"`
	Generation uint64  `yaml:"generation"`
	Children   []*Node `yaml:"children,omitempty"`
}

// Capture snapshots the composer's current tree. Call between passes, on
// the composing goroutine.
func Capture(c *compose.Composer) *TreeSnapshot {
	return &TreeSnapshot{
		SnapshotID: snapshotCounter.Add(1),
		Root:       fromScope(c.Inspect()),
	}
}

func fromScope(s *compose.ScopeSnapshot) *Node {
	if s == nil {
		return nil
	}
	n := &Node{
		Name:       s.Name,
		Position:   s.Position,
		Generation: s.Generation,
	}
	for _, child := range s.Children {
		n.Children = append(n.Children, fromScope(child))
	}
	return n
}

// YAML renders the snapshot as a YAML document.
func (t *TreeSnapshot) YAML() ([]byte, error) {
	return yaml.Marshal(t)
}

// Find returns the first node in pre-order whose name matches, or nil.
func (t *TreeSnapshot) Find(name string) *Node {
	return findNode(t.Root, name)
}

func findNode(n *Node, name string) *Node {
	if n == nil {
		return nil
	}
	if n.Name == name {
		return n
	}
	for _, child := range n.Children {
		if found := findNode(child, name); found != nil {
			return found
		}
	}
	return nil
}

// Count returns the number of scopes in the snapshot.
func (t *TreeSnapshot) Count() int {
	return countNodes(t.Root)
}

func countNodes(n *Node) int {
	if n == nil {
		return 0
	}
	total := 1
	for _, child := range n.Children {
		total += countNodes(child)
	}
	return total
}
