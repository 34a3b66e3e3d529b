package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/vytor/recall/internal/models"
)

// ErrNotFound is returned by Get-style lookups that match no row.
var ErrNotFound = sql.ErrNoRows

// ItemRepository persists learnable items.
type ItemRepository interface {
	Get(ctx context.Context, uid string) (*models.Item, error)
	List(ctx context.Context, filter models.ItemFilter) ([]*models.Item, error)
	Count(ctx context.Context, filter models.ItemFilter) (int, error)
	Upsert(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, uid string) error
	// ReplaceAll makes the stored set equal to items in a single transaction.
	ReplaceAll(ctx context.Context, items []*models.Item) error
}

// ReviewRepository stores graded-review history for the statistics view.
type ReviewRepository interface {
	Insert(ctx context.Context, rec models.ReviewRecord) (int64, error)
	ListByItem(ctx context.Context, uid string, limit int) ([]models.ReviewRecord, error)
	DeleteByItem(ctx context.Context, uid string) (int64, error)
	// DeleteOrphans removes history whose item is no longer stored.
	DeleteOrphans(ctx context.Context) (int64, error)
	ItemStats(ctx context.Context, uid string) (*models.ItemStat, error)
	// CountSince returns the number of reviews recorded at or after since.
	CountSince(ctx context.Context, since time.Time) (int, error)
}
