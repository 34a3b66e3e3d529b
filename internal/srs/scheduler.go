package srs

import (
	"time"

	"github.com/vytor/recall/internal/models"
)

// Clock returns the current time.
type Clock func() time.Time

// Scheduler computes when an item is due again after it has been graded.
type Scheduler struct {
	policy Policy
	now    Clock
}

// NewScheduler returns a scheduler applying policy. A nil clock means time.Now.
func NewScheduler(policy Policy, clock Clock) (*Scheduler, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = time.Now
	}
	return &Scheduler{policy: policy, now: clock}, nil
}

// DefaultScheduler returns a scheduler using DefaultPolicy.
func DefaultScheduler(clock Clock) *Scheduler {
	s, err := NewScheduler(DefaultPolicy(), clock)
	if err != nil {
		panic(err)
	}
	return s
}

// Policy returns the table in use.
func (s *Scheduler) Policy() Policy {
	return s.policy
}

type plan struct {
	interval [Easy + 1]time.Duration
	ease     [Easy + 1]float64
}

// Grade applies grade to item in place: its interval, ease, counters, LastReview and
// NextReview are updated. The new NextReview is always after the current time.
func (s *Scheduler) Grade(item *models.Item, grade Grade) {
	if !grade.Valid() {
		panic("srs: Grade called with " + grade.String())
	}
	now := s.now()
	p := s.plan(item)
	wasNew := isNew(item)

	item.Interval = p.interval[grade]
	item.Ease = p.ease[grade]
	item.Reviews++
	if grade == Again && !wasNew {
		item.Lapses++
	}
	item.LastReview = &now
	item.NextReview = now.Add(item.Interval)
}

// Preview reports the NextReview each grade would produce, without touching item.
func (s *Scheduler) Preview(item *models.Item) map[Grade]time.Time {
	now := s.now()
	out := make(map[Grade]time.Time, len(Grades))
	for g, d := range s.intervals(item) {
		out[g] = now.Add(d)
	}
	return out
}

func (s *Scheduler) intervals(item *models.Item) map[Grade]time.Duration {
	p := s.plan(item)
	out := make(map[Grade]time.Duration, len(Grades))
	for _, g := range Grades {
		out[g] = p.interval[g]
	}
	return out
}

func isNew(item *models.Item) bool {
	return item.IsNew() || item.Interval <= 0
}

func (s *Scheduler) plan(item *models.Item) plan {
	pol := s.policy
	ease := item.Ease
	if ease <= 0 {
		ease = models.DefaultEase
	}
	ease = pol.clampEase(ease)

	var p plan
	for _, g := range Grades {
		p.ease[g] = pol.clampEase(ease + pol.EaseAdjust[g])
	}

	if isNew(item) {
		for _, g := range Grades {
			p.interval[g] = pol.clampInterval(pol.FirstIntervals[g])
		}
		return p
	}

	prev := item.Interval

	again := s.scale(prev, pol.LapseFactor)
	if again < pol.AgainMinimum {
		again = pol.AgainMinimum
	}
	if again > prev {
		again = prev
	}
	p.interval[Again] = again
	p.interval[Hard] = s.scale(prev, pol.HardFactor)
	p.interval[Good] = s.scale(prev, p.ease[Good])
	p.interval[Easy] = s.scale(prev, p.ease[Easy]*pol.EasyBonus)

	for i := Hard; i <= Easy; i++ {
		if p.interval[i] < p.interval[i-1] {
			p.interval[i] = p.interval[i-1]
		}
	}
	return p
}

// scale multiplies d by f, rounds to whole seconds and caps at MaxInterval.
func (s *Scheduler) scale(d time.Duration, f float64) time.Duration {
	v := float64(d) * f
	if v >= float64(s.policy.MaxInterval) {
		return s.policy.MaxInterval
	}
	out := time.Duration(v).Round(time.Second)
	if out < time.Second {
		out = time.Second
	}
	return out
}
