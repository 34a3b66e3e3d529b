package srs

import (
	"fmt"
	"time"

	"github.com/vytor/recall/internal/models"
)

// Policy is the interval-multiplier table the scheduler applies.
type Policy struct {
	// FirstIntervals is used for the very first grading of an item.
	FirstIntervals map[Grade]time.Duration

	// AgainMinimum is the shortest interval a failed item is given.
	AgainMinimum time.Duration
	// LapseFactor shrinks the previous interval after Again.
	LapseFactor float64
	// HardFactor multiplies the previous interval after Hard.
	HardFactor float64
	// EasyBonus multiplies the Easy ease on top of the ease factor.
	EasyBonus float64

	// EaseAdjust is added to an item's ease per grade before the interval is computed.
	EaseAdjust map[Grade]float64
	MinEase    float64
	MaxEase    float64

	MaxInterval time.Duration
}

// DefaultPolicy returns the stock table:
//
//	first review   again 10m, hard 12h, good 1d, easy 4d
//	again          max(10m, prev*0.2), capped at prev
//	hard           prev*1.2
//	good           prev*ease
//	easy           prev*ease*1.3
//	ease           2.5 start, again -0.20, hard -0.15, easy +0.15, clamped to [1.3, 3.0]
func DefaultPolicy() Policy {
	return Policy{
		FirstIntervals: map[Grade]time.Duration{
			Again: 10 * time.Minute,
			Hard:  12 * time.Hour,
			Good:  24 * time.Hour,
			Easy:  4 * 24 * time.Hour,
		},
		AgainMinimum: 10 * time.Minute,
		LapseFactor:  0.2,
		HardFactor:   1.2,
		EasyBonus:    1.3,
		EaseAdjust: map[Grade]float64{
			Again: -0.20,
			Hard:  -0.15,
			Good:  0,
			Easy:  0.15,
		},
		MinEase:     1.3,
		MaxEase:     3.0,
		MaxInterval: models.MaxInterval,
	}
}

// Validate checks the table is usable and keeps Again <= Hard <= Good <= Easy.
func (p Policy) Validate() error {
	var prev time.Duration
	for _, g := range Grades {
		d, ok := p.FirstIntervals[g]
		if !ok || d <= 0 {
			return fmt.Errorf("srs: first interval for %s must be positive", g)
		}
		if d < prev {
			return fmt.Errorf("srs: first interval for %s (%s) is shorter than the previous grade (%s)", g, d, prev)
		}
		prev = d
	}
	if p.AgainMinimum <= 0 {
		return fmt.Errorf("srs: again minimum must be positive")
	}
	if p.LapseFactor < 0 || p.LapseFactor >= 1 {
		return fmt.Errorf("srs: lapse factor %.2f must be in [0, 1)", p.LapseFactor)
	}
	if p.HardFactor <= 1 {
		return fmt.Errorf("srs: hard factor %.2f must be greater than 1", p.HardFactor)
	}
	if p.EasyBonus < 1 {
		return fmt.Errorf("srs: easy bonus %.2f must be at least 1", p.EasyBonus)
	}
	if p.MinEase <= 0 || p.MinEase > p.MaxEase {
		return fmt.Errorf("srs: ease bounds [%.2f, %.2f] are invalid", p.MinEase, p.MaxEase)
	}
	if p.MinEase < p.HardFactor {
		return fmt.Errorf("srs: min ease %.2f must not be below hard factor %.2f", p.MinEase, p.HardFactor)
	}
	if p.MaxInterval < p.FirstIntervals[Easy] {
		return fmt.Errorf("srs: max interval %s is shorter than the first easy interval", p.MaxInterval)
	}
	return nil
}

func (p Policy) clampEase(e float64) float64 {
	if e < p.MinEase {
		return p.MinEase
	}
	if e > p.MaxEase {
		return p.MaxEase
	}
	return e
}

func (p Policy) clampInterval(d time.Duration) time.Duration {
	if d > p.MaxInterval {
		return p.MaxInterval
	}
	return d
}
