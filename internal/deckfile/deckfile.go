// Package deckfile reads and writes whole collections as YAML or JSON documents.
package deckfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/vytor/recall/internal/models"
)

// Version is the only deck layout this package reads and writes.
const Version = 1

// Format selects the document encoding.
type Format string

const (
	YAML Format = "yaml"
	JSON Format = "json"
)

var ErrUnsupportedFormat = errors.New("deckfile: unsupported format")

// ParseFormat accepts "yaml", "yml" or "json". Empty means YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "yaml", "yml":
		return YAML, nil
	case "json":
		return JSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ContentType returns the MIME type to serve f with.
func (f Format) ContentType() string {
	if f == JSON {
		return "application/json"
	}
	return "application/yaml"
}

// Deck is a decoded document.
type Deck struct {
	Version    int
	ExportedAt time.Time
	Items      []*models.Item
}

type document struct {
	Version    int     `json:"version" yaml:"version"`
	ExportedAt string  `json:"exported_at" yaml:"exported_at"`
	Items      []entry `json:"items" yaml:"items"`
}

type entry struct {
	UID             string         `json:"uid,omitempty" yaml:"uid,omitempty" validate:"omitempty,uuid"`
	Name            string         `json:"name" yaml:"name" validate:"required"`
	Kind            string         `json:"kind,omitempty" yaml:"kind,omitempty" validate:"omitempty,oneof=flashcard cloze image_cloze quiz file"`
	Priority        *int           `json:"priority,omitempty" yaml:"priority,omitempty"`
	NextReview      string         `json:"next_review,omitempty" yaml:"next_review,omitempty"`
	Tags            []string       `json:"tags,omitempty" yaml:"tags,omitempty"`
	IntervalSeconds int64          `json:"interval_seconds,omitempty" yaml:"interval_seconds,omitempty" validate:"gte=0"`
	Ease            float64        `json:"ease,omitempty" yaml:"ease,omitempty" validate:"gte=0"`
	Reviews         int            `json:"reviews,omitempty" yaml:"reviews,omitempty" validate:"gte=0"`
	Lapses          int            `json:"lapses,omitempty" yaml:"lapses,omitempty" validate:"gte=0"`
	LastReview      string         `json:"last_review,omitempty" yaml:"last_review,omitempty"`
	CreatedAt       string         `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	Payload         map[string]any `json:"payload,omitempty" yaml:"payload,omitempty"`
}

var validate = validator.New()

// Encode writes items as a deck document.
func Encode(w io.Writer, f Format, items []*models.Item, exportedAt time.Time) error {
	doc := document{
		Version:    Version,
		ExportedAt: exportedAt.Format(time.RFC3339Nano),
		Items:      make([]entry, 0, len(items)),
	}
	for _, it := range items {
		e, err := toEntry(it)
		if err != nil {
			return err
		}
		doc.Items = append(doc.Items, e)
	}

	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

// Decode reads a deck document. Entries without a UID get a fresh one; entries
// without next_review are due immediately.
func Decode(r io.Reader, f Format) (*Deck, error) {
	var doc document
	switch f {
	case JSON:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode json deck: %w", err)
		}
	case YAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode yaml deck: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}

	if doc.Version != Version {
		return nil, fmt.Errorf("deckfile: unsupported version %d", doc.Version)
	}
	deck := &Deck{Version: doc.Version, Items: make([]*models.Item, 0, len(doc.Items))}
	if doc.ExportedAt != "" {
		t, err := time.Parse(time.RFC3339Nano, doc.ExportedAt)
		if err != nil {
			return nil, fmt.Errorf("deckfile: exported_at: %w", err)
		}
		deck.ExportedAt = t
	}

	seen := make(map[string]int, len(doc.Items))
	for i, e := range doc.Items {
		it, err := fromEntry(e)
		if err != nil {
			return nil, fmt.Errorf("deckfile: item %d: %w", i, err)
		}
		if prev, dup := seen[it.UID]; dup {
			return nil, fmt.Errorf("deckfile: item %d repeats uid of item %d", i, prev)
		}
		seen[it.UID] = i
		deck.Items = append(deck.Items, it)
	}
	return deck, nil
}

func toEntry(it *models.Item) (entry, error) {
	e := entry{
		UID:             it.UID,
		Name:            it.Name,
		Kind:            string(it.Kind()),
		NextReview:      formatTime(it.NextReview),
		Tags:            it.Tags,
		IntervalSeconds: int64(it.Interval / time.Second),
		Ease:            it.Ease,
		Reviews:         it.Reviews,
		Lapses:          it.Lapses,
		CreatedAt:       formatTime(it.CreatedAt),
	}
	p := it.Priority
	e.Priority = &p
	if it.LastReview != nil {
		e.LastReview = formatTime(*it.LastReview)
	}
	if it.Payload != nil {
		raw, err := json.Marshal(it.Payload)
		if err != nil {
			return entry{}, fmt.Errorf("encode payload of %s: %w", it.UID, err)
		}
		if err := json.Unmarshal(raw, &e.Payload); err != nil {
			return entry{}, err
		}
	}
	return e, nil
}

func fromEntry(e entry) (*models.Item, error) {
	if err := validate.Struct(e); err != nil {
		return nil, err
	}

	it := &models.Item{
		UID:      e.UID,
		Name:     e.Name,
		Priority: models.DefaultPriority,
		Tags:     models.NormalizeTags(e.Tags),
		Interval: models.IntervalFromSeconds(e.IntervalSeconds),
		Ease:     e.Ease,
		Reviews:  e.Reviews,
		Lapses:   e.Lapses,
	}
	if it.UID == "" {
		it.UID = uuid.NewString()
	}
	if e.Priority != nil {
		it.Priority = models.ClampPriority(*e.Priority)
	}
	if it.Ease == 0 {
		it.Ease = models.DefaultEase
	}

	var err error
	if it.NextReview, err = parseTime(e.NextReview); err != nil {
		return nil, fmt.Errorf("next_review: %w", err)
	}
	if it.CreatedAt, err = parseTime(e.CreatedAt); err != nil {
		return nil, fmt.Errorf("created_at: %w", err)
	}
	if e.LastReview != "" {
		lr, err := parseTime(e.LastReview)
		if err != nil {
			return nil, fmt.Errorf("last_review: %w", err)
		}
		it.LastReview = &lr
	}

	if e.Kind != "" {
		raw, err := json.Marshal(e.Payload)
		if err != nil {
			return nil, err
		}
		if e.Payload == nil {
			raw = []byte("{}")
		}
		if it.Payload, err = models.DecodePayload(models.Kind(e.Kind), raw); err != nil {
			return nil, err
		}
	}
	return it, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
