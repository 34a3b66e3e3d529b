package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/recall/internal/logger"
	"github.com/vytor/recall/internal/models"
	"github.com/vytor/recall/internal/repository"
)

type reviewRepository struct {
	db *sql.DB
}

// NewReviewRepository creates a new ReviewRepository implementation
func NewReviewRepository(db *sql.DB) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Insert(ctx context.Context, rec models.ReviewRecord) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("inserting review history: item_uid=%s, grade=%s, time=%.2fs", rec.ItemUID, rec.Grade, rec.DurationSeconds)

	res, err := exec(ctx, r.db, sqlBuilder.Insert("review_history").
		Columns("item_uid", "grade", "reviewed_at", "reviewed_at_ns", "interval_seconds", "duration_seconds").
		Values(rec.ItemUID, rec.Grade, formatTime(rec.ReviewedAt), timeKey(rec.ReviewedAt), rec.IntervalSeconds, rec.DurationSeconds))
	if err != nil {
		log.Error("failed to insert review history: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get review id: %v", err)
		return 0, err
	}
	return id, nil
}

func (r *reviewRepository) ListByItem(ctx context.Context, uid string, limit int) ([]models.ReviewRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("listing review history: item_uid=%s, limit=%d", uid, limit)

	q := sqlBuilder.Select("id", "item_uid", "grade", "reviewed_at", "interval_seconds", "duration_seconds").
		From("review_history").
		Where(squirrel.Eq{"item_uid": uid}).
		OrderBy("reviewed_at_ns DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query review history: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.ReviewRecord
	for rows.Next() {
		var rec models.ReviewRecord
		var reviewedAt string
		if err := rows.Scan(&rec.ID, &rec.ItemUID, &rec.Grade, &reviewedAt, &rec.IntervalSeconds, &rec.DurationSeconds); err != nil {
			log.Error("failed to scan review row: %v", err)
			return nil, err
		}
		if rec.ReviewedAt, err = parseTime(reviewedAt); err != nil {
			return nil, fmt.Errorf("review %d reviewed_at: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *reviewRepository) DeleteByItem(ctx context.Context, uid string) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("purging review history: item_uid=%s", uid)

	res, err := exec(ctx, r.db, sqlBuilder.Delete("review_history").Where(squirrel.Eq{"item_uid": uid}))
	if err != nil {
		log.Error("failed to purge review history: %v", err)
		return 0, err
	}
	return res.RowsAffected()
}

func (r *reviewRepository) DeleteOrphans(ctx context.Context) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("purging orphaned review history")

	res, err := exec(ctx, r.db, sqlBuilder.Delete("review_history").
		Where("item_uid NOT IN (SELECT uid FROM items)"))
	if err != nil {
		log.Error("failed to purge orphaned review history: %v", err)
		return 0, err
	}
	return res.RowsAffected()
}

func (r *reviewRepository) ItemStats(ctx context.Context, uid string) (*models.ItemStat, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("computing item stats: item_uid=%s", uid)

	query, args, err := sqlBuilder.Select(
		"COUNT(*)",
		"COALESCE(SUM(CASE WHEN grade = 'again' THEN 1 ELSE 0 END), 0)",
		"COALESCE(SUM(CASE WHEN grade = 'hard' THEN 1 ELSE 0 END), 0)",
		"COALESCE(SUM(CASE WHEN grade = 'good' THEN 1 ELSE 0 END), 0)",
		"COALESCE(SUM(CASE WHEN grade = 'easy' THEN 1 ELSE 0 END), 0)",
		"COALESCE(AVG(duration_seconds), 0)",
	).From("review_history").Where(squirrel.Eq{"item_uid": uid}).ToSql()
	if err != nil {
		return nil, err
	}

	stat := &models.ItemStat{ItemUID: uid}
	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&stat.TotalReviews, &stat.AgainCount, &stat.HardCount, &stat.GoodCount, &stat.EasyCount, &stat.AvgTimeSeconds)
	if err != nil {
		log.Error("failed to compute item stats: %v", err)
		return nil, err
	}
	if stat.TotalReviews == 0 {
		return stat, nil
	}
	stat.Accuracy = float64(stat.TotalReviews-stat.AgainCount) / float64(stat.TotalReviews) * 100

	var last string
	err = r.db.QueryRowContext(ctx,
		`SELECT reviewed_at FROM review_history WHERE item_uid = ? ORDER BY reviewed_at_ns DESC, id DESC LIMIT 1`, uid).Scan(&last)
	if err != nil {
		log.Error("failed to load last review time: %v", err)
		return nil, err
	}
	t, err := parseTime(last)
	if err != nil {
		return nil, err
	}
	stat.LastReviewedAt = &t
	return stat, nil
}

func (r *reviewRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")

	query, args, err := sqlBuilder.Select("COUNT(*)").From("review_history").
		Where(squirrel.GtOrEq{"reviewed_at_ns": timeKey(since)}).ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		log.Error("failed to count reviews: %v", err)
		return 0, err
	}
	return n, nil
}
