// Package persist keeps the durable copy of the collection in step with the
// in-memory store.
package persist

import (
	"context"
	"sync"
	"time"

	"github.com/vytor/recall/internal/collection"
	"github.com/vytor/recall/internal/logger"
	"github.com/vytor/recall/internal/repository"
)

// Autosaver writes a snapshot of the store to the item repository whenever the
// store version has moved since the last successful save.
type Autosaver struct {
	store    *collection.Store
	repo     repository.ItemRepository
	interval time.Duration
	log      *logger.Logger

	mu    sync.Mutex
	saved uint64
}

// NewAutosaver treats the store's current version as already saved, so it must be
// created after the store has been loaded from repo.
func NewAutosaver(store *collection.Store, repo repository.ItemRepository, interval time.Duration) *Autosaver {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Autosaver{
		store:    store,
		repo:     repo,
		interval: interval,
		log:      logger.Default().WithPrefix("autosave"),
		saved:    store.Version(),
	}
}

// Run saves on every tick until ctx is cancelled. Save failures are logged and
// retried on the next tick.
func (a *Autosaver) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	a.log.Info("autosaving every %v", a.interval)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := a.Flush(ctx); err != nil {
				a.log.Error("autosave failed, will retry: %v", err)
			}
		}
	}
}

// Flush saves now if anything changed.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	v := a.store.Version()
	if v == a.saved {
		return nil
	}
	items := a.store.Snapshot()
	start := time.Now()
	if err := a.repo.ReplaceAll(logger.NewContext(ctx, a.log), items); err != nil {
		return err
	}
	a.saved = v
	a.log.Debug("saved %d items (version %d) in %v", len(items), v, time.Since(start))
	return nil
}

// Dirty reports whether the store has changes not yet saved.
func (a *Autosaver) Dirty() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.Version() != a.saved
}
