package jobs_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/recall/internal/jobs"
	"github.com/vytor/recall/internal/testutil/mocks"
	"github.com/vytor/recall/internal/worker"
)

type flushFunc func(ctx context.Context) error

func (f flushFunc) Flush(ctx context.Context) error { return f(ctx) }

func TestWorkerQueue_StatsPurgeRunsOnPool(t *testing.T) {
	reviews := new(mocks.MockReviewRepository)
	purged := make(chan string, 1)
	reviews.On("DeleteByItem", mock.Anything, "uid-1").
		Run(func(args mock.Arguments) { purged <- args.String(1) }).
		Return(int64(3), nil)

	pool := worker.NewPool(1, 4)
	pool.Start(context.Background())
	defer pool.Stop()

	q := jobs.NewWorkerQueue(pool, reviews, nil)
	require.NoError(t, q.EnqueueStatsPurge("uid-1"))
	assert.Equal(t, "uid-1", <-purged)
}

func TestWorkerQueue_SaveUsesSaver(t *testing.T) {
	saved := make(chan struct{}, 1)
	saver := flushFunc(func(context.Context) error {
		saved <- struct{}{}
		return nil
	})

	pool := worker.NewPool(1, 4)
	pool.Start(context.Background())
	defer pool.Stop()

	q := jobs.NewWorkerQueue(pool, new(mocks.MockReviewRepository), saver)
	require.NoError(t, q.EnqueueSave())
	<-saved
}

func TestWorkerQueue_SaveWithoutSaver(t *testing.T) {
	pool := worker.NewPool(1, 1)
	q := jobs.NewWorkerQueue(pool, new(mocks.MockReviewRepository), nil)

	assert.ErrorIs(t, q.EnqueueSave(), jobs.ErrNoSaver)
}

func TestWorkerQueue_StoppedPool(t *testing.T) {
	pool := worker.NewPool(1, 1)
	pool.Start(context.Background())
	pool.Stop()

	q := jobs.NewWorkerQueue(pool, new(mocks.MockReviewRepository), nil)
	err := q.EnqueueStatsPurge("uid-1")
	assert.True(t, errors.Is(err, worker.ErrStopped))
}
