package notify_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/vytor/recall/internal/logger"
	"github.com/vytor/recall/internal/models"
	"github.com/vytor/recall/internal/notify"
	"github.com/vytor/recall/internal/srs"
	"github.com/vytor/recall/internal/testutil/mocks"
)

var t0 = time.Date(2024, 9, 1, 7, 0, 0, 0, time.UTC)

func TestCheck_NotifiesOnRisingEdgeOnly(t *testing.T) {
	now := t0
	sel := srs.NewSelector(func() time.Time { return now })

	item := models.NewItem("due tomorrow", nil, t0)
	item.NextReview = t0.Add(24 * time.Hour)
	items := []*models.Item{item}

	n := new(mocks.MockNotifier)
	n.On("NotifyDue", mock.Anything, mock.MatchedBy(func(it *models.Item) bool { return it.UID == item.UID })).
		Return(nil).Twice()

	w := notify.NewWatcher(func() []*models.Item { return items }, sel, n, time.Minute)
	ctx := context.Background()

	assert.False(t, w.Check(ctx), "nothing due yet")

	now = t0.Add(24 * time.Hour)
	assert.True(t, w.Check(ctx), "became due")
	assert.False(t, w.Check(ctx), "still due, no repeat")

	item.NextReview = now.Add(time.Hour)
	assert.False(t, w.Check(ctx), "reviewed, nothing due")

	now = now.Add(time.Hour)
	assert.True(t, w.Check(ctx), "due again")
	n.AssertExpectations(t)
}

func TestCheck_NotifierErrorIsNotFatal(t *testing.T) {
	sel := srs.NewSelector(func() time.Time { return t0 })
	items := []*models.Item{models.NewItem("now", nil, t0)}

	n := new(mocks.MockNotifier)
	n.On("NotifyDue", mock.Anything, mock.Anything).Return(errors.New("no display"))

	w := notify.NewWatcher(func() []*models.Item { return items }, sel, n, time.Minute)
	assert.True(t, w.Check(context.Background()))
	assert.False(t, w.Check(context.Background()))
}

func TestLogNotifier_WritesItem(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithLevel(logger.INFO))
	item := models.NewItem("ohm's law", nil, t0)

	err := notify.LogNotifier{Log: log}.NotifyDue(context.Background(), item)
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "review due: ohm's law")
	assert.Contains(t, buf.String(), item.UID)
}

func TestRun_StopsOnCancel(t *testing.T) {
	sel := srs.NewSelector(func() time.Time { return t0 })
	n := new(mocks.MockNotifier)
	w := notify.NewWatcher(func() []*models.Item { return nil }, sel, n, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
	n.AssertNotCalled(t, "NotifyDue", mock.Anything, mock.Anything)
}
