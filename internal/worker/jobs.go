package worker

import (
	"context"

	"github.com/vytor/recall/internal/logger"
	"github.com/vytor/recall/internal/repository"
)

// PurgeStatsJob deletes the review history of an item that left the collection.
type PurgeStatsJob struct {
	Reviews repository.ReviewRepository
	UID     string
}

func (j *PurgeStatsJob) Name() string { return "purge_stats" }

func (j *PurgeStatsJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("item_uid", j.UID)
	n, err := j.Reviews.DeleteByItem(ctx, j.UID)
	if err != nil {
		return err
	}
	log.Info("purged %d review records", n)
	return nil
}

// Flusher writes pending in-memory state to durable storage.
type Flusher interface {
	Flush(ctx context.Context) error
}

// SaveJob persists the collection outside the regular autosave cadence.
type SaveJob struct {
	Saver Flusher
}

func (j *SaveJob) Name() string { return "save_collection" }

func (j *SaveJob) Run(ctx context.Context) error {
	return j.Saver.Flush(ctx)
}
