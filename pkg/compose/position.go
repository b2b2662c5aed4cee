package compose

import (
	"strconv"
	"strings"
)

// Position identifies a scope's location in the tree as the path of child
// indices from the root. Positions order scopes in pre-order: a parent is a
// strict prefix of its descendants and therefore sorts before them, and
// siblings sort by index. Because positions are hierarchical rather than
// flat pre-order numbers, inserting a sibling never renumbers existing
// scopes.
type Position []int

// Compare orders positions in pre-order traversal order. It returns a
// negative value when p sorts before q, zero when equal, and a positive
// value otherwise.
func (p Position) Compare(q Position) int {
	for i := 0; i < len(p) && i < len(q); i++ {
		if p[i] != q[i] {
			return p[i] - q[i]
		}
	}
	// The shorter path is an ancestor and sorts first.
	return len(p) - len(q)
}

// IsAncestorOf reports whether p is a strict ancestor position of q.
func (p Position) IsAncestorOf(q Position) bool {
	if len(p) >= len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// child derives the position for the child at the given index.
func (p Position) child(idx int) Position {
	out := make(Position, len(p)+1)
	copy(out, p)
	out[len(p)] = idx
	return out
}

// String renders the position as dot-separated indices; the root is "/".
func (p Position) String() string {
	if len(p) == 0 {
		return "/"
	}
	var sb strings.Builder
	for i, seg := range p {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(strconv.Itoa(seg))
	}
	return sb.String()
}
