package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/recall/internal/models"
	"github.com/vytor/recall/internal/repository"
	"github.com/vytor/recall/internal/repository/sqlite"
	"github.com/vytor/recall/internal/testutil"
)

var baseTime = time.Date(2024, 5, 20, 9, 30, 15, 123456789, time.FixedZone("BRT", -3*3600))

type ItemRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.ItemRepository
}

func (s *ItemRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewItemRepository(s.db)
}

func (s *ItemRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *ItemRepositorySuite) newItem(name string, due time.Time, tags ...string) *models.Item {
	item := models.NewItem(name, models.Flashcard{Front: name, Back: "answer"}, baseTime)
	item.NextReview = due
	item.Tags = models.NormalizeTags(tags)
	return item
}

func (s *ItemRepositorySuite) TestUpsertAndGetRoundTrip() {
	ctx := context.Background()
	last := baseTime.Add(-48 * time.Hour)
	item := s.newItem("capital of france", baseTime.Add(36*time.Hour), "geo", "europe")
	item.Priority = 123_456_789
	item.Interval = 36 * time.Hour
	item.Ease = 2.35
	item.Reviews = 3
	item.Lapses = 1
	item.LastReview = &last

	s.Require().NoError(s.repo.Upsert(ctx, item))

	got, err := s.repo.Get(ctx, item.UID)
	s.Require().NoError(err)
	s.Assert().Equal(item.UID, got.UID)
	s.Assert().Equal(item.Name, got.Name)
	s.Assert().Equal(item.Priority, got.Priority)
	s.Assert().True(item.NextReview.Equal(got.NextReview), "next review %s != %s", item.NextReview, got.NextReview)
	_, offset := got.NextReview.Zone()
	s.Assert().Equal(-3*3600, offset)
	s.Assert().Equal([]string{"europe", "geo"}, got.Tags)
	s.Assert().Equal(item.Interval, got.Interval)
	s.Assert().Equal(item.Ease, got.Ease)
	s.Assert().Equal(3, got.Reviews)
	s.Assert().Equal(1, got.Lapses)
	s.Require().NotNil(got.LastReview)
	s.Assert().True(last.Equal(*got.LastReview))
	s.Assert().Equal(models.Flashcard{Front: "capital of france", Back: "answer"}, got.Payload)
}

func (s *ItemRepositorySuite) TestUpsertReplacesFieldsAndTags() {
	ctx := context.Background()
	item := s.newItem("v1", baseTime, "old", "shared")
	s.Require().NoError(s.repo.Upsert(ctx, item))

	item.Name = "v2"
	item.Tags = []string{"shared", "new"}
	item.Payload = models.Cloze{Text: "The {{c1}} is blue", Deletions: []string{"sky"}}
	s.Require().NoError(s.repo.Upsert(ctx, item))

	got, err := s.repo.Get(ctx, item.UID)
	s.Require().NoError(err)
	s.Assert().Equal("v2", got.Name)
	s.Assert().Equal([]string{"new", "shared"}, got.Tags)
	s.Assert().Equal(models.KindCloze, got.Kind())
}

func (s *ItemRepositorySuite) TestGetMissing() {
	_, err := s.repo.Get(context.Background(), "8a0f5b39-7b5c-4d56-9d41-0c7f1c6f2a11")
	s.Assert().ErrorIs(err, repository.ErrNotFound)
}

func (s *ItemRepositorySuite) TestListFilters() {
	ctx := context.Background()
	due := s.newItem("due", baseTime.Add(-time.Hour), "math")
	later := s.newItem("later", baseTime.Add(72*time.Hour), "math", "hard")
	quiz := models.NewItem("quiz", models.Quiz{Question: "2+2?", Answers: []string{"3", "4"}, Correct: 1}, baseTime)
	quiz.NextReview = baseTime.Add(time.Hour)
	for _, it := range []*models.Item{due, later, quiz} {
		s.Require().NoError(s.repo.Upsert(ctx, it))
	}

	all, err := s.repo.List(ctx, models.ItemFilter{})
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Assert().Equal([]string{"due", "quiz", "later"}, names(all))

	byTag, err := s.repo.List(ctx, models.ItemFilter{Tag: " MATH "})
	s.Require().NoError(err)
	s.Assert().Equal([]string{"due", "later"}, names(byTag))

	byKind, err := s.repo.List(ctx, models.ItemFilter{Kind: models.KindQuiz})
	s.Require().NoError(err)
	s.Assert().Equal([]string{"quiz"}, names(byKind))

	cutoff := baseTime.Add(2 * time.Hour)
	dueBefore, err := s.repo.List(ctx, models.ItemFilter{DueBefore: &cutoff})
	s.Require().NoError(err)
	s.Assert().Equal([]string{"due", "quiz"}, names(dueBefore))

	page, err := s.repo.List(ctx, models.ItemFilter{Limit: 1, Offset: 1})
	s.Require().NoError(err)
	s.Assert().Equal([]string{"quiz"}, names(page))

	skipped, err := s.repo.List(ctx, models.ItemFilter{Offset: 2})
	s.Require().NoError(err)
	s.Assert().Equal([]string{"later"}, names(skipped))

	n, err := s.repo.Count(ctx, models.ItemFilter{Tag: "math"})
	s.Require().NoError(err)
	s.Assert().Equal(2, n)
}

func (s *ItemRepositorySuite) TestListOrdersLikeSelector() {
	ctx := context.Background()
	a := s.newItem("b-name", baseTime)
	a.Priority = 10
	b := s.newItem("a-name", baseTime)
	b.Priority = 10
	c := s.newItem("z-important", baseTime)
	c.Priority = 20
	for _, it := range []*models.Item{a, b, c} {
		s.Require().NoError(s.repo.Upsert(ctx, it))
	}

	got, err := s.repo.List(ctx, models.ItemFilter{})
	s.Require().NoError(err)
	s.Assert().Equal([]string{"z-important", "a-name", "b-name"}, names(got))
}

func (s *ItemRepositorySuite) TestDelete() {
	ctx := context.Background()
	item := s.newItem("gone", baseTime, "tagged")
	s.Require().NoError(s.repo.Upsert(ctx, item))

	s.Require().NoError(s.repo.Delete(ctx, item.UID))
	_, err := s.repo.Get(ctx, item.UID)
	s.Assert().ErrorIs(err, repository.ErrNotFound)

	var tags int
	s.Require().NoError(s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM item_tags`).Scan(&tags))
	s.Assert().Zero(tags, "tags cascade with the item")

	s.Assert().ErrorIs(s.repo.Delete(ctx, item.UID), repository.ErrNotFound)
}

func (s *ItemRepositorySuite) TestReplaceAll() {
	ctx := context.Background()
	keep := s.newItem("keep", baseTime)
	drop := s.newItem("drop", baseTime)
	s.Require().NoError(s.repo.Upsert(ctx, keep))
	s.Require().NoError(s.repo.Upsert(ctx, drop))

	keep.Name = "keep renamed"
	added := s.newItem("added", baseTime.Add(time.Minute))
	s.Require().NoError(s.repo.ReplaceAll(ctx, []*models.Item{keep, added}))

	got, err := s.repo.List(ctx, models.ItemFilter{})
	s.Require().NoError(err)
	s.Assert().ElementsMatch([]string{"keep renamed", "added"}, names(got))

	s.Require().NoError(s.repo.ReplaceAll(ctx, nil))
	n, err := s.repo.Count(ctx, models.ItemFilter{})
	s.Require().NoError(err)
	s.Assert().Zero(n)
}

func (s *ItemRepositorySuite) TestZeroNextReviewSortsFirst() {
	ctx := context.Background()
	unset := s.newItem("unset", time.Time{})
	dated := s.newItem("dated", baseTime.Add(-24*time.Hour))
	s.Require().NoError(s.repo.Upsert(ctx, dated))
	s.Require().NoError(s.repo.Upsert(ctx, unset))

	got, err := s.repo.List(ctx, models.ItemFilter{})
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Assert().Equal("unset", got[0].Name)
	s.Assert().True(got[0].NextReview.IsZero())
}

func names(items []*models.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func TestItemRepositorySuite(t *testing.T) {
	suite.Run(t, new(ItemRepositorySuite))
}
