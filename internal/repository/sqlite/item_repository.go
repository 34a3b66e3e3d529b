package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/recall/internal/logger"
	"github.com/vytor/recall/internal/models"
	"github.com/vytor/recall/internal/repository"
)

var itemColumns = []string{
	"uid", "name", "kind", "priority", "next_review", "interval_seconds",
	"ease", "reviews", "lapses", "last_review", "created_at", "payload",
}

type itemRepository struct {
	db *sql.DB
}

// NewItemRepository creates a new ItemRepository implementation
func NewItemRepository(db *sql.DB) repository.ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Get(ctx context.Context, uid string) (*models.Item, error) {
	log := logger.FromContext(ctx).WithPrefix("item_repo")
	log.Debug("getting item: uid=%s", uid)

	items, err := r.query(ctx, r.db, sqlBuilder.Select(itemColumns...).From("items").Where(squirrel.Eq{"uid": uid}))
	if err != nil {
		log.Error("failed to get item: %v", err)
		return nil, err
	}
	if len(items) == 0 {
		log.Debug("item not found: uid=%s", uid)
		return nil, repository.ErrNotFound
	}
	return items[0], nil
}

func (r *itemRepository) List(ctx context.Context, filter models.ItemFilter) ([]*models.Item, error) {
	log := logger.FromContext(ctx).WithPrefix("item_repo")
	log.Debug("listing items with filter: kind=%s, tag=%s, limit=%d, offset=%d",
		filter.Kind, filter.Tag, filter.Limit, filter.Offset)

	query := applyItemFilter(sqlBuilder.Select(itemColumns...).From("items"), filter).
		OrderBy("next_review_ns ASC", "priority DESC", "name ASC", "uid ASC")

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			query = query.Limit(uint64(1<<63 - 1))
		}
		query = query.Offset(uint64(filter.Offset))
	}

	items, err := r.query(ctx, r.db, query)
	if err != nil {
		log.Error("failed to list items: %v", err)
		return nil, err
	}
	log.Debug("found %d items", len(items))
	return items, nil
}

func (r *itemRepository) Count(ctx context.Context, filter models.ItemFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("item_repo")

	query, args, err := applyItemFilter(sqlBuilder.Select("COUNT(*)").From("items"), filter).ToSql()
	if err != nil {
		log.Error("failed to build count query: %v", err)
		return 0, err
	}
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		log.Error("failed to count items: %v", err)
		return 0, err
	}
	return count, nil
}

func applyItemFilter(q squirrel.SelectBuilder, filter models.ItemFilter) squirrel.SelectBuilder {
	if filter.Kind != models.KindUnknown {
		q = q.Where(squirrel.Eq{"kind": string(filter.Kind)})
	}
	if tag := strings.ToLower(strings.TrimSpace(filter.Tag)); tag != "" {
		q = q.Where(squirrel.Expr("uid IN (SELECT item_uid FROM item_tags WHERE tag = ?)", tag))
	}
	if filter.DueBefore != nil {
		q = q.Where(squirrel.LtOrEq{"next_review_ns": timeKey(*filter.DueBefore)})
	}
	return q
}

func (r *itemRepository) Upsert(ctx context.Context, item *models.Item) error {
	log := logger.FromContext(ctx).WithPrefix("item_repo")
	log.Debug("upserting item: uid=%s", item.UID)

	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		return upsertItem(ctx, tx, item)
	})
	if err != nil {
		log.Error("failed to upsert item %s: %v", item.UID, err)
	}
	return err
}

func (r *itemRepository) Delete(ctx context.Context, uid string) error {
	log := logger.FromContext(ctx).WithPrefix("item_repo")
	log.Debug("deleting item: uid=%s", uid)

	res, err := exec(ctx, r.db, sqlBuilder.Delete("items").Where(squirrel.Eq{"uid": uid}))
	if err != nil {
		log.Error("failed to delete item: %v", err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *itemRepository) ReplaceAll(ctx context.Context, items []*models.Item) error {
	log := logger.FromContext(ctx).WithPrefix("item_repo")
	log.Debug("replacing stored collection with %d items", len(items))

	keep := make(map[string]struct{}, len(items))
	for _, it := range items {
		keep[it.UID] = struct{}{}
	}

	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		for _, it := range items {
			if err := upsertItem(ctx, tx, it); err != nil {
				return err
			}
		}

		rows, err := tx.QueryContext(ctx, `SELECT uid FROM items`)
		if err != nil {
			return err
		}
		var stale []string
		for rows.Next() {
			var uid string
			if err := rows.Scan(&uid); err != nil {
				rows.Close()
				return err
			}
			if _, ok := keep[uid]; !ok {
				stale = append(stale, uid)
			}
		}
		if err := rows.Close(); err != nil {
			return err
		}
		if err := rows.Err(); err != nil {
			return err
		}

		for _, batch := range chunk(stale, maxBatchParams) {
			if _, err := exec(ctx, tx, sqlBuilder.Delete("items").Where(squirrel.Eq{"uid": batch})); err != nil {
				return err
			}
		}
		if len(stale) > 0 {
			log.Debug("deleted %d stale items", len(stale))
		}
		return nil
	})
	if err != nil {
		log.Error("failed to replace items: %v", err)
	}
	return err
}

func upsertItem(ctx context.Context, e execer, item *models.Item) error {
	payload := []byte("{}")
	if item.Payload != nil {
		raw, err := json.Marshal(item.Payload)
		if err != nil {
			return fmt.Errorf("encode payload for %s: %w", item.UID, err)
		}
		payload = raw
	}

	var lastReview any
	if item.LastReview != nil {
		lastReview = formatTime(*item.LastReview)
	}

	insert := sqlBuilder.Insert("items").
		Columns("uid", "name", "kind", "priority", "next_review", "next_review_ns", "interval_seconds",
			"ease", "reviews", "lapses", "last_review", "created_at", "payload").
		Values(item.UID, item.Name, string(item.Kind()), item.Priority, formatTime(item.NextReview), timeKey(item.NextReview),
			int64(item.Interval/time.Second), item.Ease, item.Reviews, item.Lapses, lastReview, formatTime(item.CreatedAt), string(payload)).
		Suffix(`ON CONFLICT(uid) DO UPDATE SET
    name = excluded.name,
    kind = excluded.kind,
    priority = excluded.priority,
    next_review = excluded.next_review,
    next_review_ns = excluded.next_review_ns,
    interval_seconds = excluded.interval_seconds,
    ease = excluded.ease,
    reviews = excluded.reviews,
    lapses = excluded.lapses,
    last_review = excluded.last_review,
    payload = excluded.payload`)
	if _, err := exec(ctx, e, insert); err != nil {
		return fmt.Errorf("upsert item %s: %w", item.UID, err)
	}

	if _, err := exec(ctx, e, sqlBuilder.Delete("item_tags").Where(squirrel.Eq{"item_uid": item.UID})); err != nil {
		return fmt.Errorf("clear tags for %s: %w", item.UID, err)
	}
	tags := models.NormalizeTags(item.Tags)
	if len(tags) == 0 {
		return nil
	}
	ins := sqlBuilder.Insert("item_tags").Columns("item_uid", "tag")
	for _, tag := range tags {
		ins = ins.Values(item.UID, tag)
	}
	if _, err := exec(ctx, e, ins); err != nil {
		return fmt.Errorf("insert tags for %s: %w", item.UID, err)
	}
	return nil
}

func (r *itemRepository) query(ctx context.Context, q querier, b squirrel.SelectBuilder) ([]*models.Item, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.Item
	byUID := make(map[string]*models.Item)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
		byUID[it.UID] = it
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := r.loadTags(ctx, q, byUID); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *itemRepository) loadTags(ctx context.Context, q querier, byUID map[string]*models.Item) error {
	if len(byUID) == 0 {
		return nil
	}
	uids := make([]string, 0, len(byUID))
	for uid := range byUID {
		uids = append(uids, uid)
	}

	for _, batch := range chunk(uids, maxBatchParams) {
		query, args, err := sqlBuilder.Select("item_uid", "tag").From("item_tags").
			Where(squirrel.Eq{"item_uid": batch}).OrderBy("item_uid", "tag").ToSql()
		if err != nil {
			return err
		}
		rows, err := q.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		for rows.Next() {
			var uid, tag string
			if err := rows.Scan(&uid, &tag); err != nil {
				rows.Close()
				return err
			}
			if it := byUID[uid]; it != nil {
				it.Tags = append(it.Tags, tag)
			}
		}
		if err := rows.Close(); err != nil {
			return err
		}
		if err := rows.Err(); err != nil {
			return err
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	var (
		it              models.Item
		kind            string
		nextReview      string
		intervalSeconds int64
		lastReview      sql.NullString
		createdAt       string
		payload         string
	)
	if err := row.Scan(&it.UID, &it.Name, &kind, &it.Priority, &nextReview, &intervalSeconds,
		&it.Ease, &it.Reviews, &it.Lapses, &lastReview, &createdAt, &payload); err != nil {
		return nil, err
	}

	var err error
	if it.NextReview, err = parseTime(nextReview); err != nil {
		return nil, fmt.Errorf("item %s next_review: %w", it.UID, err)
	}
	if it.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("item %s created_at: %w", it.UID, err)
	}
	if lastReview.Valid {
		lr, err := parseTime(lastReview.String)
		if err != nil {
			return nil, fmt.Errorf("item %s last_review: %w", it.UID, err)
		}
		it.LastReview = &lr
	}
	it.Interval = models.IntervalFromSeconds(intervalSeconds)

	if models.Kind(kind) != models.KindUnknown {
		p, err := models.DecodePayload(models.Kind(kind), []byte(payload))
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", it.UID, err)
		}
		it.Payload = p
	}
	return &it, nil
}
