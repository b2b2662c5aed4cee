package compose

import (
	"context"

	"github.com/google/uuid"

	"github.com/go-loom/loom/pkg/errors"
	"github.com/go-loom/loom/pkg/telemetry"
)

// Executor runs background work spawned by UseTask. The default executor
// starts one goroutine per task; hosts with pooling or scheduling needs
// can install their own via Composer.SetExecutor.
type Executor interface {
	Spawn(fn func())
}

// GoExecutor runs each task on its own goroutine.
type GoExecutor struct{}

func (GoExecutor) Spawn(fn func()) { go fn() }

type taskSlot struct {
	id     string
	cancel context.CancelFunc
}

// UseTask spawns fn once, on the scope's first composition, via the
// runtime's executor. The context is cancelled when the scope is
// destroyed; fn should watch ctx and stop promptly. State writes made
// after destruction are dropped by the update queue, so a task that loses
// the race only wastes the one write.
func UseTask(cx *Scope, fn func(ctx context.Context)) {
	useSlot(cx, func() *taskSlot {
		ctx, cancel := context.WithCancel(context.Background())
		s := &taskSlot{id: uuid.NewString(), cancel: cancel}
		cx.onDrop(cancel)

		scope := cx.Name()
		cx.rt.executor.Spawn(func() {
			defer errors.Recover("compose.UseTask(" + scope + ")")
			fn(ctx)
		})
		telemetry.RecordTaskSpawned()
		cx.rt.log.Debug().
			Str("scope", scope).
			Str("task", s.id).
			Msg("task spawned")
		return s
	})
}

// UseLocalTask queues fn to run on the composing goroutine after the
// current pass completes. Unlike UseTask the body may touch composition
// state directly, since it never runs concurrently with a pass. It is
// queued once, on first composition, and skipped if the scope is destroyed
// before it runs.
func UseLocalTask(cx *Scope, fn func(ctx context.Context)) {
	useSlot(cx, func() *taskSlot {
		ctx, cancel := context.WithCancel(context.Background())
		s := &taskSlot{id: uuid.NewString(), cancel: cancel}
		cx.onDrop(cancel)
		cx.rt.queueLocalTask(localTask{id: s.id, ctx: ctx, fn: fn})
		return s
	})
}
