package deckfile_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/recall/internal/deckfile"
	"github.com/vytor/recall/internal/models"
)

var exportedAt = time.Date(2024, 7, 4, 18, 30, 0, 0, time.FixedZone("CEST", 2*3600))

func sampleItems() []*models.Item {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(2024, 7, 1, 12, 0, 0, 500, time.FixedZone("", -5*3600))

	card := models.NewItem("photosynthesis", models.Flashcard{Front: "Where?", Back: "Chloroplasts"}, created)
	card.NextReview = time.Date(2024, 7, 10, 9, 15, 30, 250_000_000, time.FixedZone("", 9*3600))
	card.Priority = 42
	card.Tags = []string{"bio", "plants"}
	card.Interval = 9 * 24 * time.Hour
	card.Ease = 2.65
	card.Reviews = 4
	card.LastReview = &last

	img := models.NewItem("skull", models.ImageCloze{
		ImagePath: "img/skull.png",
		Areas:     []models.Area{{X: 1, Y: 2, Width: 30, Height: 40}},
	}, created)

	quiz := models.NewItem("capital", models.Quiz{Question: "Capital of Chile?", Answers: []string{"Lima", "Santiago"}, Correct: 1}, created)
	return []*models.Item{card, img, quiz}
}

func TestRoundTrip(t *testing.T) {
	for _, f := range []deckfile.Format{deckfile.YAML, deckfile.JSON} {
		t.Run(string(f), func(t *testing.T) {
			items := sampleItems()
			var buf bytes.Buffer
			require.NoError(t, deckfile.Encode(&buf, f, items, exportedAt))

			deck, err := deckfile.Decode(&buf, f)
			require.NoError(t, err)
			assert.Equal(t, deckfile.Version, deck.Version)
			assert.True(t, exportedAt.Equal(deck.ExportedAt))
			require.Len(t, deck.Items, len(items))

			for i, want := range items {
				got := deck.Items[i]
				assert.Equal(t, want.UID, got.UID)
				assert.Equal(t, want.Name, got.Name)
				assert.Equal(t, want.Priority, got.Priority)
				assert.True(t, want.NextReview.Equal(got.NextReview), "%s: %s != %s", want.Name, want.NextReview, got.NextReview)
				_, wantOff := want.NextReview.Zone()
				_, gotOff := got.NextReview.Zone()
				assert.Equal(t, wantOff, gotOff)
				assert.Equal(t, want.Tags, got.Tags)
				assert.Equal(t, want.Interval, got.Interval)
				assert.Equal(t, want.Ease, got.Ease)
				assert.Equal(t, want.Reviews, got.Reviews)
				assert.Equal(t, want.Payload, got.Payload)
				if want.LastReview != nil {
					require.NotNil(t, got.LastReview)
					assert.True(t, want.LastReview.Equal(*got.LastReview))
				}
			}
		})
	}
}

func TestDecode_HandWrittenYAML(t *testing.T) {
	doc := `
version: 1
items:
  - name: Pythagoras
    kind: flashcard
    tags: [Math, geometry, math]
    payload:
      front: a² + b² = ?
      back: c²
  - name: Read the paper
    kind: file
    priority: 2000000000
    next_review: 2030-01-01T00:00:00Z
    payload:
      path: papers/attention.pdf
`
	deck, err := deckfile.Decode(strings.NewReader(doc), deckfile.YAML)
	require.NoError(t, err)
	require.Len(t, deck.Items, 2)

	first := deck.Items[0]
	assert.True(t, models.ValidUID(first.UID))
	assert.True(t, first.NextReview.IsZero(), "no next_review means due now")
	assert.Equal(t, []string{"geometry", "math"}, first.Tags)
	assert.Equal(t, models.DefaultPriority, first.Priority)
	assert.Equal(t, models.DefaultEase, first.Ease)
	assert.Equal(t, models.Flashcard{Front: "a² + b² = ?", Back: "c²"}, first.Payload)

	second := deck.Items[1]
	assert.Equal(t, models.MaxPriority, second.Priority)
	assert.Equal(t, models.FileReference{Path: "papers/attention.pdf"}, second.Payload)
	assert.Equal(t, 2030, second.NextReview.Year())
}

func TestDecode_ClampsHugeInterval(t *testing.T) {
	doc := `{"version": 1, "items": [{"name": "x", "interval_seconds": 9223372036854775807}]}`

	deck, err := deckfile.Decode(strings.NewReader(doc), deckfile.JSON)
	require.NoError(t, err)
	require.Len(t, deck.Items, 1)
	assert.Equal(t, models.MaxInterval, deck.Items[0].Interval)
	assert.Positive(t, deck.Items[0].Interval)
}

func TestDecode_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"wrong version", `{"version": 2, "items": []}`},
		{"missing name", `{"version": 1, "items": [{"kind": "flashcard"}]}`},
		{"bad uid", `{"version": 1, "items": [{"uid": "nope", "name": "x"}]}`},
		{"unknown kind", `{"version": 1, "items": [{"name": "x", "kind": "video"}]}`},
		{"bad time", `{"version": 1, "items": [{"name": "x", "next_review": "tomorrow"}]}`},
		{"negative reviews", `{"version": 1, "items": [{"name": "x", "reviews": -1}]}`},
		{"duplicate uid", `{"version": 1, "items": [
			{"uid": "0b7cbd0e-5f43-4b8b-a7c1-0e5b3c6f1f11", "name": "a"},
			{"uid": "0b7cbd0e-5f43-4b8b-a7c1-0e5b3c6f1f11", "name": "b"}]}`},
		{"not json", `version: 1`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := deckfile.Decode(strings.NewReader(tt.doc), deckfile.JSON)
			assert.Error(t, err)
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := deckfile.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, deckfile.YAML, f)

	f, err = deckfile.ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, deckfile.JSON, f)
	assert.Equal(t, "application/json", f.ContentType())

	_, err = deckfile.ParseFormat("csv")
	assert.ErrorIs(t, err, deckfile.ErrUnsupportedFormat)
}
