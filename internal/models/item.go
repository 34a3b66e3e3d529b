package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Priority bounds. Higher is more important.
const (
	MinPriority     = 0
	MaxPriority     = 1_000_000_000
	DefaultPriority = 500_000_000
)

// DefaultEase is the ease factor a never-graded item starts with.
const DefaultEase = 2.5

// MaxInterval is the longest review interval an item can carry.
const MaxInterval = 36500 * 24 * time.Hour

// Item is the scheduling-relevant record shared by every learnable item variant.
// The scheduler and selector only read and write these fields; Payload is opaque to them.
type Item struct {
	UID        string
	Name       string
	Priority   int
	NextReview time.Time
	Tags       []string

	// Scheduling state, owned by the scheduler.
	Interval   time.Duration
	Ease       float64
	Reviews    int
	Lapses     int
	LastReview *time.Time

	CreatedAt time.Time
	Payload   Payload
}

// NewItem creates an immediately-due item with a fresh UID and the default priority.
func NewItem(name string, payload Payload, now time.Time) *Item {
	return &Item{
		UID:        uuid.NewString(),
		Name:       name,
		Priority:   DefaultPriority,
		NextReview: now,
		Ease:       DefaultEase,
		CreatedAt:  now,
		Payload:    payload,
	}
}

// ValidUID reports whether s is a well-formed item identifier.
func ValidUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// Kind returns the payload variant, or KindUnknown when no payload is attached.
func (it *Item) Kind() Kind {
	if it.Payload == nil {
		return KindUnknown
	}
	return it.Payload.Kind()
}

// IsNew reports whether the item has never been graded.
func (it *Item) IsNew() bool {
	return it.Reviews == 0 && it.LastReview == nil
}

// Clone returns a deep copy of the item.
func (it *Item) Clone() *Item {
	if it == nil {
		return nil
	}
	c := *it
	if it.Tags != nil {
		c.Tags = append([]string(nil), it.Tags...)
	}
	if it.LastReview != nil {
		lr := *it.LastReview
		c.LastReview = &lr
	}
	if it.Payload != nil {
		c.Payload = it.Payload.clonePayload()
	}
	return &c
}

// ClampPriority forces p into [MinPriority, MaxPriority].
func ClampPriority(p int) int {
	if p < MinPriority {
		return MinPriority
	}
	if p > MaxPriority {
		return MaxPriority
	}
	return p
}

// IntervalFromSeconds converts a stored interval, clamping it into [0, MaxInterval].
func IntervalFromSeconds(sec int64) time.Duration {
	if sec <= 0 {
		return 0
	}
	if sec > int64(MaxInterval/time.Second) {
		return MaxInterval
	}
	return time.Duration(sec) * time.Second
}

// NormalizeTags trims, lowercases, deduplicates and sorts tags. Empty tags are dropped.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

// HasTag reports whether the item carries tag (after normalization).
func (it *Item) HasTag(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, t := range it.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

type itemJSON struct {
	UID             string          `json:"uid"`
	Name            string          `json:"name"`
	Kind            Kind            `json:"kind"`
	Priority        int             `json:"priority"`
	NextReview      time.Time       `json:"next_review"`
	Tags            []string        `json:"tags"`
	IntervalSeconds int64           `json:"interval_seconds"`
	Ease            float64         `json:"ease"`
	Reviews         int             `json:"reviews"`
	Lapses          int             `json:"lapses"`
	LastReview      *time.Time      `json:"last_review,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	Payload         json.RawMessage `json:"payload,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (it Item) MarshalJSON() ([]byte, error) {
	var payload json.RawMessage
	if it.Payload != nil {
		raw, err := json.Marshal(it.Payload)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		payload = raw
	}
	tags := it.Tags
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(itemJSON{
		UID:             it.UID,
		Name:            it.Name,
		Kind:            it.Kind(),
		Priority:        it.Priority,
		NextReview:      it.NextReview,
		Tags:            tags,
		IntervalSeconds: int64(it.Interval / time.Second),
		Ease:            it.Ease,
		Reviews:         it.Reviews,
		Lapses:          it.Lapses,
		LastReview:      it.LastReview,
		CreatedAt:       it.CreatedAt,
		Payload:         payload,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (it *Item) UnmarshalJSON(data []byte) error {
	var v itemJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	var payload Payload
	if len(v.Payload) > 0 && string(v.Payload) != "null" {
		p, err := DecodePayload(v.Kind, v.Payload)
		if err != nil {
			return err
		}
		payload = p
	}
	*it = Item{
		UID:        v.UID,
		Name:       v.Name,
		Priority:   v.Priority,
		NextReview: v.NextReview,
		Tags:       NormalizeTags(v.Tags),
		Interval:   IntervalFromSeconds(v.IntervalSeconds),
		Ease:       v.Ease,
		Reviews:    v.Reviews,
		Lapses:     v.Lapses,
		LastReview: v.LastReview,
		CreatedAt:  v.CreatedAt,
		Payload:    payload,
	}
	return nil
}
