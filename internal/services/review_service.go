package services

import (
	"context"
	"time"

	"github.com/vytor/recall/internal/collection"
	"github.com/vytor/recall/internal/errors"
	"github.com/vytor/recall/internal/logger"
	"github.com/vytor/recall/internal/models"
	"github.com/vytor/recall/internal/repository"
	"github.com/vytor/recall/internal/srs"
)

// NextReview is the answer to "what should I study now".
// Item is nil when nothing is due; NextDueAt then tells when something will be.
type NextReview struct {
	Item      *models.Item `json:"item"`
	Remaining int          `json:"remaining"`
	NextDueAt *time.Time   `json:"next_due_at,omitempty"`
}

// ReviewService drives review sessions over the collection
type ReviewService interface {
	Next(ctx context.Context) (*NextReview, error)
	Queue(ctx context.Context, limit int) ([]*models.Item, error)
	Preview(ctx context.Context, uid string) (map[srs.Grade]time.Time, error)
	Review(ctx context.Context, uid string, grade srs.Grade, elapsed time.Duration) (*models.Item, error)
	History(ctx context.Context, uid string, limit int) ([]models.ReviewRecord, error)
}

type reviewService struct {
	store      *collection.Store
	scheduler  *srs.Scheduler
	selector   *srs.Selector
	reviewRepo repository.ReviewRepository
	now        srs.Clock
}

// NewReviewService creates a new ReviewService. scheduler, selector and clock
// should share the same time source.
func NewReviewService(store *collection.Store, scheduler *srs.Scheduler, selector *srs.Selector, reviewRepo repository.ReviewRepository, clock srs.Clock) ReviewService {
	return &reviewService{
		store:      store,
		scheduler:  scheduler,
		selector:   selector,
		reviewRepo: reviewRepo,
		now:        clockOrNow(clock),
	}
}

func (s *reviewService) Next(ctx context.Context) (*NextReview, error) {
	log := logger.FromContext(ctx)

	items := s.store.Snapshot()
	if next := s.selector.SelectNext(items); next != nil {
		remaining := countDue(items, s.now())
		log.Debug("next item: uid=%s, %d due", next.UID, remaining)
		return &NextReview{Item: next, Remaining: remaining}, nil
	}

	res := &NextReview{}
	if upcoming := s.selector.NextInFuture(items); upcoming != nil {
		at := upcoming.NextReview
		res.NextDueAt = &at
	}
	log.Debug("nothing due")
	return res, nil
}

func countDue(items []*models.Item, now time.Time) int {
	n := 0
	for _, it := range items {
		if srs.IsDue(it, now) {
			n++
		}
	}
	return n
}

func (s *reviewService) Queue(ctx context.Context, limit int) ([]*models.Item, error) {
	due := s.selector.DueQueue(s.store.Snapshot())
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	if due == nil {
		due = []*models.Item{}
	}
	return due, nil
}

func (s *reviewService) Preview(ctx context.Context, uid string) (map[srs.Grade]time.Time, error) {
	item, err := s.store.Get(uid)
	if err != nil {
		return nil, storeError(err, uid)
	}
	return s.scheduler.Preview(item), nil
}

func (s *reviewService) Review(ctx context.Context, uid string, grade srs.Grade, elapsed time.Duration) (*models.Item, error) {
	log := logger.FromContext(ctx)
	log.Debug("reviewing item: uid=%s, grade=%s", uid, grade)

	if !grade.Valid() {
		return nil, errors.NewValidationError("grade", "must be one of again, hard, good, easy")
	}
	if elapsed < 0 {
		return nil, errors.NewValidationError("duration", "cannot be negative")
	}

	item, err := s.store.Update(uid, func(it *models.Item) error {
		s.scheduler.Grade(it, grade)
		return nil
	})
	if err != nil {
		return nil, storeError(err, uid)
	}
	log.Debug("graded %s, next review at %s (interval %s, ease %.2f)", uid, item.NextReview.Format(time.RFC3339), item.Interval, item.Ease)

	reviewedAt := s.now()
	if item.LastReview != nil {
		reviewedAt = *item.LastReview
	}
	rec := models.ReviewRecord{
		ItemUID:         uid,
		Grade:           grade.String(),
		ReviewedAt:      reviewedAt,
		IntervalSeconds: int64(item.Interval / time.Second),
		DurationSeconds: elapsed.Seconds(),
	}
	if _, err := s.reviewRepo.Insert(ctx, rec); err != nil {
		log.Warn("failed to store review history: %v", err)
	}
	return item, nil
}

func (s *reviewService) History(ctx context.Context, uid string, limit int) ([]models.ReviewRecord, error) {
	log := logger.FromContext(ctx)

	recs, err := s.reviewRepo.ListByItem(ctx, uid, limit)
	if err != nil {
		log.Error("failed to load review history: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if recs == nil {
		recs = []models.ReviewRecord{}
	}
	return recs, nil
}
