package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/recall/internal/worker"
)

type funcJob struct {
	name string
	fn   func(context.Context) error
}

func (j funcJob) Name() string                  { return j.name }
func (j funcJob) Run(ctx context.Context) error { return j.fn(ctx) }

func TestPool_RunsSubmittedJobs(t *testing.T) {
	p := worker.NewPool(3, 10)
	p.Start(context.Background())

	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		require.NoError(t, p.Submit(funcJob{name: "count", fn: func(context.Context) error {
			ran.Add(1)
			return nil
		}}))
	}
	p.Stop()
	assert.Equal(t, int32(10), ran.Load())
}

func TestPool_FailingAndPanickingJobsDoNotKillWorkers(t *testing.T) {
	p := worker.NewPool(1, 4)
	p.Start(context.Background())

	var ran atomic.Int32
	require.NoError(t, p.Submit(funcJob{name: "fail", fn: func(context.Context) error { return errors.New("nope") }}))
	require.NoError(t, p.Submit(funcJob{name: "panic", fn: func(context.Context) error { panic("boom") }}))
	require.NoError(t, p.Submit(funcJob{name: "ok", fn: func(context.Context) error {
		ran.Add(1)
		return nil
	}}))
	p.Stop()
	assert.Equal(t, int32(1), ran.Load())
}

func TestPool_SubmitDoesNotBlockWhenFull(t *testing.T) {
	p := worker.NewPool(1, 1)
	release := make(chan struct{})
	started := make(chan struct{})
	p.Start(context.Background())

	require.NoError(t, p.Submit(funcJob{name: "hold", fn: func(context.Context) error {
		close(started)
		<-release
		return nil
	}}))
	<-started
	require.NoError(t, p.Submit(funcJob{name: "queued", fn: func(context.Context) error { return nil }}))

	done := make(chan error, 1)
	go func() {
		done <- p.Submit(funcJob{name: "overflow", fn: func(context.Context) error { return nil }})
	}()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, worker.ErrQueueFull)
	case <-time.After(time.Second):
		t.Fatal("Submit blocked on a full queue")
	}

	close(release)
	p.Stop()
}

func TestPool_SubmitAfterStop(t *testing.T) {
	p := worker.NewPool(1, 1)
	p.Start(context.Background())
	p.Stop()
	p.Stop()

	err := p.Submit(funcJob{name: "late", fn: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, worker.ErrStopped)
}

func TestPool_StopDrainsQueueAfterParentCancelled(t *testing.T) {
	for round := 0; round < 20; round++ {
		p := worker.NewPool(2, 32)
		ctx, cancel := context.WithCancel(context.Background())

		var ran, live atomic.Int32
		for i := 0; i < 32; i++ {
			require.NoError(t, p.Submit(funcJob{name: "purge_stats", fn: func(ctx context.Context) error {
				ran.Add(1)
				if ctx.Err() == nil {
					live.Add(1)
				}
				return ctx.Err()
			}}))
		}
		cancel()
		p.Start(ctx)
		p.Stop()

		assert.Equal(t, int32(32), ran.Load(), "round %d", round)
		assert.Equal(t, int32(32), live.Load(), "round %d", round)
	}
}

func TestPool_JobContextCancelledAfterStop(t *testing.T) {
	p := worker.NewPool(1, 1)
	p.Start(context.Background())

	jobCtx := make(chan context.Context, 1)
	require.NoError(t, p.Submit(funcJob{name: "capture", fn: func(ctx context.Context) error {
		jobCtx <- ctx
		return nil
	}}))
	p.Stop()

	ctx := <-jobCtx
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
