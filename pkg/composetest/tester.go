// Package composetest provides an isolated harness for testing
// composables: it drives passes against an in-memory composer and offers
// finders over the resulting scope tree, without a real host loop.
package composetest

import (
	"errors"
	"testing"

	"github.com/go-loom/loom/pkg/compose"
)

// DefaultSettleLimit bounds PumpAndSettle: a composition that queues new
// work for this many consecutive passes is considered unsettled.
const DefaultSettleLimit = 100

// ErrSettleTimeout is returned when PumpAndSettle exceeds its pass limit.
var ErrSettleTimeout = errors.New("PumpAndSettle exceeded its pass limit: composition did not settle")

// Tester drives a composition without a host. Tasks run on a synchronous
// executor so background work is deterministic.
type Tester struct {
	composer    *compose.Composer
	settleLimit int
}

// NewTester creates a tester for the given root. Call Cleanup when done,
// or use NewTesterWithT instead.
func NewTester(root compose.Composable) *Tester {
	c := compose.New(root)
	c.SetExecutor(syncExecutor{})
	return &Tester{composer: c, settleLimit: DefaultSettleLimit}
}

// NewTesterWithT creates a tester that closes itself via t.Cleanup.
// This is the recommended constructor for tests.
func NewTesterWithT(t *testing.T, root compose.Composable) *Tester {
	tester := NewTester(root)
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup destroys the tree, cancelling tasks and running drop handlers.
func (t *Tester) Cleanup() {
	t.composer.Close()
}

// Composer exposes the underlying composer for direct driving.
func (t *Tester) Composer() *compose.Composer {
	return t.composer
}

// SetSettleLimit overrides the PumpAndSettle pass limit.
func (t *Tester) SetSettleLimit(n int) {
	t.settleLimit = n
}

// Pump runs exactly one composition pass.
func (t *Tester) Pump() error {
	return t.composer.ComposeOnce()
}

// PumpAndSettle runs passes until no work remains. Compositions that
// keep scheduling themselves (an effect writing state every pass) hit
// the settle limit and return ErrSettleTimeout.
func (t *Tester) PumpAndSettle() error {
	for i := 0; i < t.settleLimit; i++ {
		if err := t.composer.ComposeOnce(); err != nil {
			return err
		}
		if !t.composer.NeedsWork() {
			return nil
		}
	}
	return ErrSettleTimeout
}

// Dump returns the textual tree dump, e.g. "A(B, C)".
func (t *Tester) Dump() string {
	return t.composer.String()
}

// ExpectDump fails the test when the tree dump differs from want.
func (t *Tester) ExpectDump(tb *testing.T, want string) {
	tb.Helper()
	if got := t.composer.String(); got != want {
		tb.Errorf("tree dump = %q, want %q", got, want)
	}
}

// syncExecutor runs spawned tasks inline on the composing goroutine.
type syncExecutor struct{}

func (syncExecutor) Spawn(fn func()) { fn() }
