package compose

import (
	"sort"
	"sync"
)

// scheduler is the dirty scheduler: an order-preserving set of scopes
// pending recomposition, keyed by tree position. Insertion collapses
// duplicates, and popMin removes the lowest position so ancestors are
// always drained before descendants.
type scheduler struct {
	mu         sync.Mutex
	pending    []*node
	pendingSet map[*node]bool
}

// schedule inserts a node into the pending set. It reports whether the
// node was newly added; duplicate insertions within a pass collapse.
func (s *scheduler) schedule(n *node) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pendingSet[n] {
		return false
	}
	if s.pendingSet == nil {
		s.pendingSet = make(map[*node]bool)
	}
	s.pendingSet[n] = true

	idx := sort.Search(len(s.pending), func(i int) bool {
		return s.pending[i].position.Compare(n.position) >= 0
	})
	s.pending = append(s.pending, nil)
	copy(s.pending[idx+1:], s.pending[idx:])
	s.pending[idx] = n
	return true
}

// popMin removes and returns the pending node with the lowest position,
// or nil when the set is empty.
func (s *scheduler) popMin() *node {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return nil
	}
	n := s.pending[0]
	copy(s.pending, s.pending[1:])
	s.pending = s.pending[:len(s.pending)-1]
	delete(s.pendingSet, n)
	return n
}

// len reports the number of pending scopes.
func (s *scheduler) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
