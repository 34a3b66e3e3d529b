package services

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/vytor/recall/internal/collection"
	"github.com/vytor/recall/internal/errors"
	"github.com/vytor/recall/internal/jobs"
	"github.com/vytor/recall/internal/logger"
	"github.com/vytor/recall/internal/models"
	"github.com/vytor/recall/internal/srs"
)

// NewItemInput is what a caller supplies to create an item.
type NewItemInput struct {
	Name     string
	Payload  models.Payload
	Priority *int
	Tags     []string
}

// ItemPatch lists the fields a caller may change. Nil fields are left alone.
type ItemPatch struct {
	Name     *string
	Priority *int
	Tags     *[]string
}

// ItemQuery narrows List. Zero values match everything.
type ItemQuery struct {
	Kind   models.Kind
	Tag    string
	Status srs.Status
	Limit  int
	Offset int
}

// ItemService manages collection membership and item metadata
type ItemService interface {
	Add(ctx context.Context, in NewItemInput) (*models.Item, error)
	Get(ctx context.Context, uid string) (*models.Item, error)
	List(ctx context.Context, q ItemQuery) ([]*models.Item, int, error)
	Update(ctx context.Context, uid string, patch ItemPatch) (*models.Item, error)
	Remove(ctx context.Context, uid string) error
}

type itemService struct {
	store    *collection.Store
	jobQueue jobs.JobQueue
	now      srs.Clock
}

// NewItemService creates a new ItemService
func NewItemService(store *collection.Store, jobQueue jobs.JobQueue, clock srs.Clock) ItemService {
	return &itemService{store: store, jobQueue: jobQueue, now: clockOrNow(clock)}
}

func (s *itemService) Add(ctx context.Context, in NewItemInput) (*models.Item, error) {
	log := logger.FromContext(ctx)
	log.Debug("adding item: name=%s", in.Name)

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errors.NewValidationError("name", "cannot be empty")
	}
	if in.Payload == nil {
		return nil, errors.NewValidationError("payload", "is required")
	}

	item := models.NewItem(name, in.Payload, s.now())
	if in.Priority != nil {
		item.Priority = models.ClampPriority(*in.Priority)
	}
	item.Tags = models.NormalizeTags(in.Tags)

	if err := s.store.Add(item); err != nil {
		log.Error("failed to add item: %v", err)
		return nil, storeError(err, item.UID)
	}
	log.Info("item added: uid=%s, kind=%s", item.UID, item.Kind())
	return item, nil
}

func (s *itemService) Get(ctx context.Context, uid string) (*models.Item, error) {
	logger.FromContext(ctx).Debug("getting item: uid=%s", uid)

	item, err := s.store.Get(uid)
	if err != nil {
		return nil, storeError(err, uid)
	}
	return item, nil
}

func (s *itemService) List(ctx context.Context, q ItemQuery) ([]*models.Item, int, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing items: kind=%s, tag=%s, status=%s", q.Kind, q.Tag, q.Status)

	if q.Kind != models.KindUnknown && !q.Kind.Valid() {
		return nil, 0, errors.NewValidationError("kind", "unknown item kind")
	}
	switch q.Status {
	case "", srs.StatusNew, srs.StatusDue, srs.StatusScheduled:
	default:
		return nil, 0, errors.NewValidationError("status", "must be new, due or scheduled")
	}

	now := s.now()
	var out []*models.Item
	for _, it := range s.store.Snapshot() {
		if q.Kind != models.KindUnknown && it.Kind() != q.Kind {
			continue
		}
		if q.Tag != "" && !it.HasTag(q.Tag) {
			continue
		}
		if q.Status != "" && srs.StatusOf(it, now) != q.Status {
			continue
		}
		out = append(out, it)
	}
	srs.SortByDue(out)

	total := len(out)
	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return []*models.Item{}, total, nil
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, total, nil
}

func (s *itemService) Update(ctx context.Context, uid string, patch ItemPatch) (*models.Item, error) {
	log := logger.FromContext(ctx)
	log.Debug("updating item: uid=%s", uid)

	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, errors.NewValidationError("name", "cannot be empty")
	}

	item, err := s.store.Update(uid, func(it *models.Item) error {
		if patch.Name != nil {
			it.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Priority != nil {
			it.Priority = models.ClampPriority(*patch.Priority)
		}
		if patch.Tags != nil {
			it.Tags = models.NormalizeTags(*patch.Tags)
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err, uid)
	}
	return item, nil
}

func (s *itemService) Remove(ctx context.Context, uid string) error {
	log := logger.FromContext(ctx)
	log.Debug("removing item: uid=%s", uid)

	if _, err := s.store.Remove(uid); err != nil {
		return storeError(err, uid)
	}
	log.Info("item removed: uid=%s", uid)

	if err := s.jobQueue.EnqueueStatsPurge(uid); err != nil {
		log.Warn("failed to queue stats purge for %s: %v", uid, err)
	}
	return nil
}

func storeError(err error, uid string) error {
	switch {
	case stderrors.Is(err, collection.ErrNotFound):
		return errors.NewNotFoundError("item", uid)
	case stderrors.Is(err, collection.ErrDuplicate):
		return errors.NewConflictError("item", uid)
	case stderrors.Is(err, collection.ErrInvalidItem):
		return errors.NewValidationError("uid", "must be a valid UUID")
	}
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return errors.NewInternalError(err)
}

func clockOrNow(c srs.Clock) srs.Clock {
	if c == nil {
		return time.Now
	}
	return c
}
