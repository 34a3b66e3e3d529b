// Package notify tells the user when the collection goes from nothing due to
// something due.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/vytor/recall/internal/logger"
	"github.com/vytor/recall/internal/models"
	"github.com/vytor/recall/internal/srs"
)

// Notifier delivers a "reviews are due" message.
type Notifier interface {
	NotifyDue(ctx context.Context, item *models.Item) error
}

// LogNotifier writes the notification to the log.
type LogNotifier struct {
	Log *logger.Logger
}

func (n LogNotifier) NotifyDue(ctx context.Context, item *models.Item) error {
	log := n.Log
	if log == nil {
		log = logger.FromContext(ctx)
	}
	log.WithFields(map[string]any{"item_uid": item.UID, "due": item.NextReview.Format(time.RFC3339)}).
		Info("review due: %s", item.Name)
	return nil
}

// Source returns the current items to inspect.
type Source func() []*models.Item

// Watcher polls the collection and fires the notifier on each rising edge of
// "something is due".
type Watcher struct {
	items    Source
	selector *srs.Selector
	notifier Notifier
	interval time.Duration
	log      *logger.Logger

	mu     sync.Mutex
	hasDue bool
}

func NewWatcher(items Source, selector *srs.Selector, notifier Notifier, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Watcher{
		items:    items,
		selector: selector,
		notifier: notifier,
		interval: interval,
		log:      logger.Default().WithPrefix("notify"),
	}
}

// Run checks once immediately, then on every tick until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	w.log.Info("checking for due items every %v", w.interval)

	w.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.Check(ctx)
		}
	}
}

// Check polls once and reports whether a notification was sent.
func (w *Watcher) Check(ctx context.Context) bool {
	next := w.selector.SelectNext(w.items())

	w.mu.Lock()
	rising := next != nil && !w.hasDue
	w.hasDue = next != nil
	w.mu.Unlock()

	if !rising {
		return false
	}
	if err := w.notifier.NotifyDue(logger.NewContext(ctx, w.log), next); err != nil {
		w.log.Warn("notification failed: %v", err)
	}
	return true
}
