package jobs

import (
	"errors"

	"github.com/vytor/recall/internal/repository"
	"github.com/vytor/recall/internal/worker"
)

// ErrNoSaver is returned by EnqueueSave when the queue was built without a saver.
var ErrNoSaver = errors.New("jobs: no saver configured")

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	pool    *worker.Pool
	reviews repository.ReviewRepository
	saver   worker.Flusher
}

// NewWorkerQueue creates a new WorkerQueue implementation. saver may be nil when
// the collection is not persisted.
func NewWorkerQueue(pool *worker.Pool, reviews repository.ReviewRepository, saver worker.Flusher) JobQueue {
	return &WorkerQueue{
		pool:    pool,
		reviews: reviews,
		saver:   saver,
	}
}

func (q *WorkerQueue) EnqueueStatsPurge(uid string) error {
	return q.pool.Submit(&worker.PurgeStatsJob{
		Reviews: q.reviews,
		UID:     uid,
	})
}

func (q *WorkerQueue) EnqueueSave() error {
	if q.saver == nil {
		return ErrNoSaver
	}
	return q.pool.Submit(&worker.SaveJob{Saver: q.saver})
}
