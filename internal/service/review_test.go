package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aliskhannn/flashcards-bot/internal/domain/entities"
	"github.com/aliskhannn/flashcards-bot/internal/repository"
)

func testLesson() *entities.Lesson {
	return &entities.Lesson{
		ID:         "go-basics",
		CourseID:   "go",
		Title:      "Go basics",
		Flashcards: cards("a", "b", "c", "d"),
	}
}

func newTestReviewService(repo *memReviewRepo) *ReviewService {
	svc := NewReviewService(newLessonRepo(testLesson()), repo, time.Second, zap.NewNop())
	svc.now = fixedClock()
	return svc
}

func TestReviewService_StartSession(t *testing.T) {
	ctx := context.Background()
	repo := newMemReviewRepo()
	repo.data[repoKey(7, "go-basics")] = &entities.ReviewData{
		UserID:   7,
		LessonID: "go-basics",
		Entries: []entities.ReviewEntry{
			entryDueAt("c", testNow.Add(-time.Hour)),
			entryDueAt("b", testNow.AddDate(0, 0, 2)),
		},
	}
	svc := newTestReviewService(repo)

	s, err := svc.StartSession(ctx, 7, "go-basics", false)
	require.NoError(t, err)
	assert.Equal(t, int64(7), s.UserID())
	assert.Equal(t, "go-basics", s.LessonID())
	assert.Equal(t, 1, s.DueCount())
	assert.Equal(t, 2, s.NewCount())

	card, ok := s.CurrentCard()
	require.True(t, ok)
	assert.Equal(t, "c", card.ID)

	require.NoError(t, s.RateCard(ctx, entities.QualityGood))
	saved := repo.lastSaved()
	require.NotNil(t, saved)
	assert.Len(t, saved.Entries, 2)

	t.Run("cram", func(t *testing.T) {
		s, err := svc.StartSession(ctx, 7, "go-basics", true)
		require.NoError(t, err)
		assert.Equal(t, 4, s.Len())
		assert.Zero(t, s.DueCount())
	})
}

func TestReviewService_StartSessionErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown lesson", func(t *testing.T) {
		svc := newTestReviewService(newMemReviewRepo())
		_, err := svc.StartSession(ctx, 1, "missing", false)
		assert.ErrorIs(t, err, repository.ErrLessonNotFound)
	})

	t.Run("malformed data starts from scratch", func(t *testing.T) {
		repo := newMemReviewRepo()
		repo.loadErr = fmt.Errorf("decode: %w", repository.ErrMalformedReviewData)
		svc := newTestReviewService(repo)

		s, err := svc.StartSession(ctx, 1, "go-basics", false)
		require.NoError(t, err)
		assert.Equal(t, 4, s.NewCount())
	})

	t.Run("storage failure", func(t *testing.T) {
		repo := newMemReviewRepo()
		repo.loadErr = errors.New("connection refused")
		svc := newTestReviewService(repo)

		_, err := svc.StartSession(ctx, 1, "go-basics", false)
		assert.ErrorIs(t, err, repo.loadErr)
	})
}

func TestReviewService_GetStats(t *testing.T) {
	repo := newMemReviewRepo()
	repo.data[repoKey(1, "go-basics")] = &entities.ReviewData{
		UserID:   1,
		LessonID: "go-basics",
		Entries: []entities.ReviewEntry{
			{
				ItemID: "a", Repetitions: 2, EaseFactor: 2.5, Interval: 6,
				LastReviewedAt: testNow.AddDate(0, 0, -7),
				NextReviewAt:   testNow.AddDate(0, 0, -1),
			},
			{
				ItemID: "b", Repetitions: 5, EaseFactor: 2.8, Interval: 40,
				LastReviewedAt: testNow.Add(-time.Hour),
				NextReviewAt:   testNow.AddDate(0, 0, 40),
			},
			{
				ItemID: "c", Repetitions: 1, EaseFactor: 2.5, Interval: 1,
				LastReviewedAt: testNow.AddDate(0, 0, -1),
				NextReviewAt:   testNow.AddDate(0, 0, 3),
			},
		},
	}
	svc := newTestReviewService(repo)

	stats, err := svc.GetStats(context.Background(), 1, "go-basics")
	require.NoError(t, err)

	assert.Equal(t, "go-basics", stats.LessonID)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.Due)
	assert.Equal(t, 1, stats.New)
	assert.Equal(t, 1, stats.ReviewedToday)
	assert.Equal(t, 1, stats.Mastered)
	assert.Equal(t, 8, stats.TotalReviews)
	assert.Equal(t, 2, stats.StreakDays)
	require.NotNil(t, stats.NextDueAt)
	assert.Equal(t, testNow.AddDate(0, 0, 3), *stats.NextDueAt)
}

func TestReviewService_GetStatsEmpty(t *testing.T) {
	svc := newTestReviewService(newMemReviewRepo())

	stats, err := svc.GetStats(context.Background(), 1, "go-basics")
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 4, stats.New)
	assert.Zero(t, stats.Due)
	assert.Zero(t, stats.StreakDays)
	assert.Nil(t, stats.NextDueAt)
}

func TestCalculateStreak(t *testing.T) {
	today := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	day := func(offset int) string {
		return today.AddDate(0, 0, offset).Format(time.DateOnly)
	}

	tests := []struct {
		name  string
		dates []string
		want  int
	}{
		{"no reviews", nil, 0},
		{"today only", []string{day(0)}, 1},
		{"ending yesterday", []string{day(-1), day(-2)}, 2},
		{"gap breaks streak", []string{day(0), day(-1), day(-3)}, 2},
		{"too old", []string{day(-2), day(-3)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := make(map[string]bool)
			for _, d := range tt.dates {
				set[d] = true
			}
			assert.Equal(t, tt.want, calculateStreak(set, today))
		})
	}
}

func TestReviewService_Plan(t *testing.T) {
	repo := newMemReviewRepo()
	repo.data[repoKey(1, "go-basics")] = &entities.ReviewData{
		UserID:   1,
		LessonID: "go-basics",
		Entries:  []entities.ReviewEntry{entryDueAt("d", testNow.Add(-time.Minute))},
	}
	svc := newTestReviewService(repo)

	plan, data, err := svc.Plan(context.Background(), 1, "go-basics", false)
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Equal(t, []string{"d", "a", "b", "c"}, ids(plan.Cards))
	assert.Equal(t, 1, plan.DueCount)
	assert.Equal(t, 3, plan.NewCount)

	// Planning alone never writes.
	assert.Zero(t, repo.saveCount())
}
