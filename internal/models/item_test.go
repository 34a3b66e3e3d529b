package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/recall/internal/models"
)

func TestNewItem_Defaults(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.FixedZone("CEST", 2*3600))
	item := models.NewItem("capital of peru", models.Flashcard{Front: "Peru", Back: "Lima"}, now)

	assert.True(t, models.ValidUID(item.UID))
	assert.Equal(t, models.DefaultPriority, item.Priority)
	assert.Equal(t, now, item.NextReview, "new items are due immediately")
	assert.Equal(t, models.DefaultEase, item.Ease)
	assert.True(t, item.IsNew())
	assert.Equal(t, models.KindFlashcard, item.Kind())
}

func TestNewItem_UniqueUIDs(t *testing.T) {
	now := time.Now()
	a := models.NewItem("a", nil, now)
	b := models.NewItem("b", nil, now)
	assert.NotEqual(t, a.UID, b.UID)
	assert.Equal(t, models.KindUnknown, a.Kind())
}

func TestClampPriority(t *testing.T) {
	assert.Equal(t, models.MinPriority, models.ClampPriority(-5))
	assert.Equal(t, models.MaxPriority, models.ClampPriority(models.MaxPriority+1))
	assert.Equal(t, 42, models.ClampPriority(42))
}

func TestNormalizeTags(t *testing.T) {
	got := models.NormalizeTags([]string{" Spanish", "verbs", "spanish", "", "  "})
	assert.Equal(t, []string{"spanish", "verbs"}, got)
	assert.Nil(t, models.NormalizeTags(nil))
	assert.Nil(t, models.NormalizeTags([]string{" "}))
}

func TestClone_IsDeep(t *testing.T) {
	reviewed := time.Now()
	item := models.NewItem("quiz", models.Quiz{Question: "2+2", Answers: []string{"3", "4"}, Correct: 1}, time.Now())
	item.Tags = []string{"math"}
	item.LastReview = &reviewed

	c := item.Clone()
	c.Tags[0] = "changed"
	*c.LastReview = reviewed.Add(time.Hour)
	c.Payload.(models.Quiz).Answers[0] = "five"

	assert.Equal(t, "math", item.Tags[0])
	assert.Equal(t, reviewed, *item.LastReview)
	assert.Equal(t, "3", item.Payload.(models.Quiz).Answers[0])
}

func TestItemJSON_PreservesSchedulingFields(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*3600)
	last := time.Date(2024, 1, 2, 3, 4, 5, 0, loc)
	item := &models.Item{
		UID:        "0b8f5c38-4a9e-4d4e-9a1f-3b1f7f0f9a11",
		Name:       "hola",
		Priority:   123,
		NextReview: time.Date(2024, 1, 5, 3, 4, 5, 0, loc),
		Tags:       []string{"es", "greetings"},
		Interval:   72 * time.Hour,
		Ease:       2.35,
		Reviews:    3,
		Lapses:     1,
		LastReview: &last,
		CreatedAt:  time.Date(2023, 12, 30, 0, 0, 0, 0, loc),
		Payload:    models.Cloze{Text: "hola mundo", Deletions: []string{"mundo"}},
	}

	data, err := json.Marshal(item)
	require.NoError(t, err)

	var decoded models.Item
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, item.UID, decoded.UID)
	assert.Equal(t, item.Priority, decoded.Priority)
	assert.True(t, item.NextReview.Equal(decoded.NextReview))
	_, offset := decoded.NextReview.Zone()
	assert.Equal(t, -3*3600, offset)
	assert.Equal(t, item.Tags, decoded.Tags)
	assert.Equal(t, item.Interval, decoded.Interval)
	assert.Equal(t, item.Payload, decoded.Payload)
}

func TestItemJSON_ClampsHugeInterval(t *testing.T) {
	data := []byte(`{"uid":"0b8f5c38-4a9e-4d4e-9a1f-3b1f7f0f9a11","name":"x","interval_seconds":9223372036854775807}`)

	var decoded models.Item
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, models.MaxInterval, decoded.Interval)
}

func TestIntervalFromSeconds(t *testing.T) {
	assert.Equal(t, time.Duration(0), models.IntervalFromSeconds(-5))
	assert.Equal(t, 90*time.Second, models.IntervalFromSeconds(90))
	assert.Equal(t, models.MaxInterval, models.IntervalFromSeconds(int64(models.MaxInterval/time.Second)+1))
	assert.Equal(t, models.MaxInterval, models.IntervalFromSeconds(1<<62))
}

func TestDecodePayload_UnknownKind(t *testing.T) {
	_, err := models.DecodePayload("video", []byte(`{}`))
	assert.Error(t, err)
	assert.False(t, models.Kind("video").Valid())
	assert.True(t, models.KindImageCloze.Valid())
}
