package compose

type memo struct {
	dep     any
	content Composable
}

func (memo) Name() string { return "Memo" }

func (m memo) Compose(cx *Scope) Composable {
	s := useSlot(cx, func() *memoSlot[struct{}] {
		return &memoSlot[struct{}]{dep: m.dep}
	})
	if cx.composed && depEqual(s.dep, m.dep) {
		cx.skipChildren = true
		return nil
	}
	s.dep = m.dep
	return m.content
}

// Memo composes content only when dep differs from the previous
// composition's dep. While the dependency is unchanged the entire subtree
// below the Memo is left untouched: not recomposed, not reconciled,
// scopes and generations intact. State writes inside the subtree still
// schedule their own scopes directly and bypass the gate.
//
// dep is compared with reflect.DeepEqual. For dependencies that are
// expensive or not meaningfully comparable, pass a change witness such as
// Cell.Version.
func Memo(dep any, content Composable) Composable {
	return memo{dep: dep, content: content}
}
