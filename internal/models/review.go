package models

import "time"

// ReviewRecord is one graded review, keyed by the item's UID.
type ReviewRecord struct {
	ID              int64     `json:"id"`
	ItemUID         string    `json:"item_uid"`
	Grade           string    `json:"grade"`
	ReviewedAt      time.Time `json:"reviewed_at"`
	IntervalSeconds int64     `json:"interval_seconds"`
	DurationSeconds float64   `json:"duration_seconds"`
}

// ItemFilter narrows item listings.
type ItemFilter struct {
	Kind      Kind
	Tag       string
	DueBefore *time.Time
	Limit     int
	Offset    int
}

type ItemStat struct {
	ItemUID        string     `json:"item_uid"`
	TotalReviews   int        `json:"total_reviews"`
	AgainCount     int        `json:"again_count"`
	HardCount      int        `json:"hard_count"`
	GoodCount      int        `json:"good_count"`
	EasyCount      int        `json:"easy_count"`
	Accuracy       float64    `json:"accuracy"`
	AvgTimeSeconds float64    `json:"avg_time_seconds"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
}

type CollectionStat struct {
	TotalItems      int          `json:"total_items"`
	NewItems        int          `json:"new_items"`
	DueItems        int          `json:"due_items"`
	ScheduledItems  int          `json:"scheduled_items"`
	DueSoon         int          `json:"due_soon"`
	AvgEase         float64      `json:"avg_ease"`
	AvgIntervalDays float64      `json:"avg_interval_days"`
	ReviewsLast24h  int          `json:"reviews_last_24h"`
	ByKind          map[Kind]int `json:"by_kind"`
	NextDueAt       *time.Time   `json:"next_due_at,omitempty"`
}
