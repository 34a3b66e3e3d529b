package services

import (
	"context"
	"io"

	"github.com/vytor/recall/internal/collection"
	"github.com/vytor/recall/internal/deckfile"
	"github.com/vytor/recall/internal/errors"
	"github.com/vytor/recall/internal/jobs"
	"github.com/vytor/recall/internal/logger"
	"github.com/vytor/recall/internal/srs"
)

// ImportResult counts what an import did to the collection.
type ImportResult struct {
	Added    int `json:"added"`
	Replaced int `json:"replaced"`
}

// DeckService moves whole collections in and out as deck files
type DeckService interface {
	Export(ctx context.Context, w io.Writer, format deckfile.Format) (int, error)
	Import(ctx context.Context, r io.Reader, format deckfile.Format) (*ImportResult, error)
}

type deckService struct {
	store    *collection.Store
	jobQueue jobs.JobQueue
	now      srs.Clock
}

// NewDeckService creates a new DeckService
func NewDeckService(store *collection.Store, jobQueue jobs.JobQueue, clock srs.Clock) DeckService {
	return &deckService{store: store, jobQueue: jobQueue, now: clockOrNow(clock)}
}

func (s *deckService) Export(ctx context.Context, w io.Writer, format deckfile.Format) (int, error) {
	log := logger.FromContext(ctx)

	items := s.store.Snapshot()
	srs.SortByDue(items)
	if err := deckfile.Encode(w, format, items, s.now()); err != nil {
		log.Error("failed to export deck: %v", err)
		return 0, errors.NewInternalError(err)
	}
	log.Info("exported %d items as %s", len(items), format)
	return len(items), nil
}

// Import merges the deck into the collection by UID: unknown UIDs are added,
// known ones are replaced. Nothing is changed when the document is invalid.
func (s *deckService) Import(ctx context.Context, r io.Reader, format deckfile.Format) (*ImportResult, error) {
	log := logger.FromContext(ctx)

	deck, err := deckfile.Decode(r, format)
	if err != nil {
		log.Warn("rejected deck import: %v", err)
		appErr := errors.NewBadRequestError(err.Error())
		appErr.Err = err
		return nil, appErr
	}

	res := &ImportResult{}
	for _, it := range deck.Items {
		existed, err := s.store.Put(it)
		if err != nil {
			return res, storeError(err, it.UID)
		}
		if existed {
			res.Replaced++
		} else {
			res.Added++
		}
	}
	log.Info("imported deck: %d added, %d replaced", res.Added, res.Replaced)

	if res.Added+res.Replaced > 0 {
		if err := s.jobQueue.EnqueueSave(); err != nil {
			log.Warn("failed to queue save after import: %v", err)
		}
	}
	return res, nil
}
