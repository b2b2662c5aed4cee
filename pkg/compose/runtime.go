package compose

import (
	"context"
	"sync"

	"github.com/go-loom/loom/pkg/telemetry"
)

// update is a queued mutation originating from a state cell setter,
// possibly on another goroutine. Updates are applied on the composing
// goroutine at the start of the next pass; updates whose owning scope has
// been destroyed in the meantime are dropped, which is what makes it
// structurally impossible for a cancelled task to write into a dead scope.
type update struct {
	owner *node
	apply func()
}

type localTask struct {
	id  string
	ctx context.Context
	fn  func(context.Context)
}

// runtime carries the shared machinery behind a Composer: the dirty
// scheduler, the synchronized update queue, the executor for background
// tasks, and the pass epoch used to guarantee each scope composes at most
// once per drain.
type runtime struct {
	sched scheduler

	mu      sync.Mutex
	updates []update

	// effects and localTasks are only touched on the composing goroutine.
	effects    []func()
	localTasks []localTask

	executor Executor
	log      *telemetry.Logger

	pass uint64

	// onNeedsPass signals the host that new work is pending.
	onNeedsPass func()
}

func newRuntime() *runtime {
	return &runtime{
		executor: GoExecutor{},
		log:      telemetry.Nop(),
	}
}

// enqueueUpdate queues a state write for the start of the next pass.
// Safe to call from any goroutine.
func (rt *runtime) enqueueUpdate(owner *node, apply func()) {
	rt.mu.Lock()
	rt.updates = append(rt.updates, update{owner: owner, apply: apply})
	notify := rt.onNeedsPass
	rt.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// drainUpdates applies all queued writes on the composing goroutine and
// schedules the owning scopes. Writes for destroyed scopes are dropped.
func (rt *runtime) drainUpdates() {
	rt.mu.Lock()
	updates := rt.updates
	rt.updates = nil
	rt.mu.Unlock()

	for _, u := range updates {
		if !u.owner.mounted {
			rt.log.Trace().
				Str("scope", u.owner.name()).
				Stringer("position", u.owner.position).
				Msg("dropping update for destroyed scope")
			continue
		}
		u.apply()
		rt.sched.schedule(u.owner)
	}
}

func (rt *runtime) pendingUpdates() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return len(rt.updates)
}

func (rt *runtime) queueEffect(fn func()) {
	rt.effects = append(rt.effects, fn)
}

func (rt *runtime) queueLocalTask(t localTask) {
	rt.localTasks = append(rt.localTasks, t)
}
