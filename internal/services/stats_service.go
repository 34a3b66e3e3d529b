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

// DueSoonWindow is how far ahead CollectionStats looks for "due soon".
const DueSoonWindow = 24 * time.Hour

// StatsService summarizes the collection and its review history
type StatsService interface {
	CollectionStats(ctx context.Context) (*models.CollectionStat, error)
	ItemStats(ctx context.Context, uid string) (*models.ItemStat, error)
}

type statsService struct {
	store      *collection.Store
	selector   *srs.Selector
	reviewRepo repository.ReviewRepository
	now        srs.Clock
}

// NewStatsService creates a new StatsService
func NewStatsService(store *collection.Store, selector *srs.Selector, reviewRepo repository.ReviewRepository, clock srs.Clock) StatsService {
	return &statsService{store: store, selector: selector, reviewRepo: reviewRepo, now: clockOrNow(clock)}
}

func (s *statsService) CollectionStats(ctx context.Context) (*models.CollectionStat, error) {
	log := logger.FromContext(ctx)
	log.Debug("computing collection stats")

	now := s.now()
	items := s.store.Snapshot()
	stat := &models.CollectionStat{
		TotalItems: len(items),
		ByKind:     make(map[models.Kind]int),
	}

	var easeSum, intervalSum float64
	var graded int
	for _, it := range items {
		stat.ByKind[it.Kind()]++
		switch srs.StatusOf(it, now) {
		case srs.StatusNew:
			stat.NewItems++
		case srs.StatusDue:
			stat.DueItems++
		case srs.StatusScheduled:
			stat.ScheduledItems++
			if it.NextReview.Sub(now) <= DueSoonWindow {
				stat.DueSoon++
			}
		}
		if !it.IsNew() {
			graded++
			easeSum += it.Ease
			intervalSum += it.Interval.Hours() / 24
		}
	}
	if graded > 0 {
		stat.AvgEase = easeSum / float64(graded)
		stat.AvgIntervalDays = intervalSum / float64(graded)
	}
	if next := s.selector.NextInFuture(items); next != nil {
		at := next.NextReview
		stat.NextDueAt = &at
	}

	n, err := s.reviewRepo.CountSince(ctx, now.Add(-24*time.Hour))
	if err != nil {
		log.Warn("failed to count recent reviews: %v", err)
	} else {
		stat.ReviewsLast24h = n
	}
	return stat, nil
}

func (s *statsService) ItemStats(ctx context.Context, uid string) (*models.ItemStat, error) {
	log := logger.FromContext(ctx)
	log.Debug("computing item stats: uid=%s", uid)

	if !s.store.Contains(uid) {
		return nil, errors.NewNotFoundError("item", uid)
	}
	stat, err := s.reviewRepo.ItemStats(ctx, uid)
	if err != nil {
		log.Error("failed to load item stats: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return stat, nil
}
