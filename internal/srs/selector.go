package srs

import (
	"sort"
	"time"

	"github.com/vytor/recall/internal/models"
)

// Status is an item's scheduling state at a point in time.
type Status string

const (
	StatusNew       Status = "new"
	StatusDue       Status = "due"
	StatusScheduled Status = "scheduled"
)

// StatusOf classifies item at now. A never-graded item is New whatever its due time.
func StatusOf(item *models.Item, now time.Time) Status {
	if item.IsNew() {
		return StatusNew
	}
	if IsDue(item, now) {
		return StatusDue
	}
	return StatusScheduled
}

// IsDue reports whether item may be reviewed at now. An unset NextReview counts as due.
func IsDue(item *models.Item, now time.Time) bool {
	return item.NextReview.IsZero() || !item.NextReview.After(now)
}

// Selector picks the next item to present. It keeps no state between calls.
type Selector struct {
	now Clock
}

// NewSelector returns a selector reading the time from clock (time.Now when nil).
func NewSelector(clock Clock) *Selector {
	if clock == nil {
		clock = time.Now
	}
	return &Selector{now: clock}
}

// SelectNext returns the most overdue due item, or nil when nothing is due.
func (s *Selector) SelectNext(items []*models.Item) *models.Item {
	return first(items, dueAt(s.now()))
}

// NextInFuture returns the scheduled item that becomes due soonest, or nil.
func (s *Selector) NextInFuture(items []*models.Item) *models.Item {
	return first(items, notDueAt(s.now()))
}

// DueQueue returns every due item in presentation order.
func (s *Selector) DueQueue(items []*models.Item) []*models.Item {
	now := s.now()
	var out []*models.Item
	for _, it := range items {
		if it != nil && IsDue(it, now) {
			out = append(out, it)
		}
	}
	SortByDue(out)
	return out
}

// SortByDue orders items in place the way SelectNext ranks them.
func SortByDue(items []*models.Item) {
	sort.SliceStable(items, func(i, j int) bool { return before(items[i], items[j]) })
}

func dueAt(now time.Time) func(*models.Item) bool {
	return func(it *models.Item) bool { return IsDue(it, now) }
}

func notDueAt(now time.Time) func(*models.Item) bool {
	return func(it *models.Item) bool { return !IsDue(it, now) }
}

// first does a single pass keeping the best candidate; no sorting, no allocation.
func first(items []*models.Item, keep func(*models.Item) bool) *models.Item {
	var best *models.Item
	for _, it := range items {
		if it == nil || !keep(it) {
			continue
		}
		if best == nil || before(it, best) {
			best = it
		}
	}
	return best
}

// before orders by soonest NextReview, then highest Priority, then Name, then UID.
func before(a, b *models.Item) bool {
	if !a.NextReview.Equal(b.NextReview) {
		return a.NextReview.Before(b.NextReview)
	}
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.UID < b.UID
}
