package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/flashcards-bot/internal/domain/entities"
)

func fixedClock() func() time.Time {
	return func() time.Time { return testNow }
}

func newTestSession(repo *memReviewRepo, plan SessionPlan, data *entities.ReviewData, opts ...SessionOption) *ReviewSession {
	opts = append([]SessionOption{WithClock(fixedClock())}, opts...)
	return NewReviewSession(1, "lesson", plan, data, repo, opts...)
}

func TestReviewSession_EmptyPlanIsComplete(t *testing.T) {
	repo := newMemReviewRepo()
	s := newTestSession(repo, SessionPlan{}, nil)

	assert.True(t, s.IsComplete())
	_, ok := s.CurrentCard()
	assert.False(t, ok)

	require.NoError(t, s.RateCard(context.Background(), entities.QualityGood))
	assert.Zero(t, repo.saveCount())
	assert.Zero(t, s.Position())
}

func TestReviewSession_RateAdvancesAndCompletes(t *testing.T) {
	ctx := context.Background()
	repo := newMemReviewRepo()
	s := newTestSession(repo, SessionPlan{Cards: cards("a", "b"), NewCount: 2}, nil)

	card, ok := s.CurrentCard()
	require.True(t, ok)
	assert.Equal(t, "a", card.ID)
	assert.NotEmpty(t, s.ID())

	require.NoError(t, s.RateCard(ctx, entities.QualityPerfect))
	assert.False(t, s.IsComplete())
	card, _ = s.CurrentCard()
	assert.Equal(t, "b", card.ID)

	require.NoError(t, s.RateCard(ctx, entities.QualityBlackout))
	assert.True(t, s.IsComplete())
	_, ok = s.CurrentCard()
	assert.False(t, ok)
	assert.Equal(t, 2, s.Reviewed())
	assert.Equal(t, 2, repo.saveCount())

	saved := repo.lastSaved()
	require.NotNil(t, saved)
	assert.Equal(t, int64(1), saved.UserID)
	assert.Equal(t, "lesson", saved.LessonID)
	require.Len(t, saved.Entries, 2)

	a, ok := s.Entry("a")
	require.True(t, ok)
	assert.Equal(t, 1, a.Repetitions)
	assert.InDelta(t, 2.6, a.EaseFactor, 1e-9)
	assert.Equal(t, testNow, a.LastReviewedAt)

	b, _ := s.Entry("b")
	assert.Equal(t, 0, b.Repetitions)
	assert.Equal(t, entities.DefaultEaseFactor, b.EaseFactor)
}

func TestReviewSession_SaveIncludesEntriesOutsideSession(t *testing.T) {
	repo := newMemReviewRepo()
	data := &entities.ReviewData{
		UserID:   1,
		LessonID: "lesson",
		Entries:  []entities.ReviewEntry{entryDueAt("later", testNow.AddDate(0, 0, 5))},
	}
	s := newTestSession(repo, SessionPlan{Cards: cards("a"), NewCount: 1}, data)

	require.NoError(t, s.RateCard(context.Background(), entities.QualityGood))

	saved := repo.lastSaved().EntriesByItem()
	assert.Len(t, saved, 2)
	assert.Contains(t, saved, "later")
	assert.Contains(t, saved, "a")
}

func TestReviewSession_ResetKeepsEntries(t *testing.T) {
	ctx := context.Background()
	repo := newMemReviewRepo()
	s := newTestSession(repo, SessionPlan{Cards: cards("a"), NewCount: 1}, nil)

	require.NoError(t, s.RateCard(ctx, entities.QualityPerfect))
	require.True(t, s.IsComplete())

	s.Reset()
	assert.Zero(t, s.Position())
	assert.Zero(t, s.Reviewed())
	assert.False(t, s.IsComplete())

	require.NoError(t, s.RateCard(ctx, entities.QualityPerfect))

	a, ok := s.Entry("a")
	require.True(t, ok)
	assert.Equal(t, 2, a.Repetitions)
	assert.Equal(t, 6, a.Interval)
	assert.InDelta(t, 2.7, a.EaseFactor, 1e-9)
}

func TestReviewSession_DropsRatingWhileSaving(t *testing.T) {
	repo := newMemReviewRepo()
	repo.block = make(chan struct{})
	repo.started = make(chan struct{}, 1)
	s := newTestSession(repo, SessionPlan{Cards: cards("a", "b", "c"), NewCount: 3}, nil)

	done := make(chan error, 1)
	go func() {
		done <- s.RateCard(context.Background(), entities.QualityGood)
	}()

	select {
	case <-repo.started:
	case <-time.After(time.Second):
		t.Fatal("save was not started")
	}

	// The position moved before the save settled.
	assert.True(t, s.IsSaving())
	assert.Equal(t, 1, s.Position())

	require.NoError(t, s.RateCard(context.Background(), entities.QualityGood))
	assert.Equal(t, 1, repo.saveCount())
	assert.Equal(t, 1, s.Position())
	_, rated := s.Entry("b")
	assert.False(t, rated)

	close(repo.block)
	require.NoError(t, <-done)
	assert.False(t, s.IsSaving())

	require.NoError(t, s.RateCard(context.Background(), entities.QualityGood))
	assert.Equal(t, 2, repo.saveCount())
	assert.Equal(t, 2, s.Position())
}

func TestReviewSession_SaveFailure(t *testing.T) {
	ctx := context.Background()
	repo := newMemReviewRepo()
	repo.saveErr = errors.New("disk full")
	s := newTestSession(repo, SessionPlan{Cards: cards("a", "b"), NewCount: 2}, nil)

	err := s.RateCard(ctx, entities.QualityGood)
	require.Error(t, err)
	assert.ErrorIs(t, err, repo.saveErr)

	// No rollback, and the next rating is accepted.
	assert.Equal(t, 1, s.Position())
	assert.False(t, s.IsSaving())
	_, ok := s.Entry("a")
	assert.True(t, ok)

	repo.mu.Lock()
	repo.saveErr = nil
	repo.mu.Unlock()

	require.NoError(t, s.RateCard(ctx, entities.QualityGood))
	assert.True(t, s.IsComplete())
	assert.Equal(t, 2, repo.saveCount())
}

func TestReviewSession_SaveTimeout(t *testing.T) {
	repo := newMemReviewRepo()
	repo.block = make(chan struct{})
	s := newTestSession(repo, SessionPlan{Cards: cards("a", "b"), NewCount: 2}, nil,
		WithSaveTimeout(20*time.Millisecond))

	err := s.RateCard(context.Background(), entities.QualityGood)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, s.IsSaving())
	assert.Equal(t, 1, s.Position())
}

func TestReviewSession_InvalidQuality(t *testing.T) {
	repo := newMemReviewRepo()
	s := newTestSession(repo, SessionPlan{Cards: cards("a"), NewCount: 1}, nil)

	for _, q := range []entities.Quality{-1, 6, 42} {
		err := s.RateCard(context.Background(), q)
		assert.ErrorIs(t, err, ErrInvalidQuality)
	}

	assert.Zero(t, s.Position())
	assert.Zero(t, repo.saveCount())
	_, ok := s.Entry("a")
	assert.False(t, ok)
}

func TestReviewSession_RateCardAtRejectsStalePosition(t *testing.T) {
	ctx := context.Background()
	repo := newMemReviewRepo()
	s := newTestSession(repo, SessionPlan{Cards: cards("a", "b"), NewCount: 2}, nil)

	require.NoError(t, s.RateCardAt(ctx, 0, entities.QualityPerfect))
	assert.Equal(t, 1, s.Position())

	// The same rating delivered twice must not touch card b.
	err := s.RateCardAt(ctx, 0, entities.QualityPerfect)
	assert.ErrorIs(t, err, ErrCardNotCurrent)
	assert.Equal(t, 1, s.Position())
	assert.Equal(t, 1, repo.saveCount())
	_, rated := s.Entry("b")
	assert.False(t, rated)

	assert.ErrorIs(t, s.RateCardAt(ctx, 5, entities.QualityGood), ErrCardNotCurrent)
	assert.ErrorIs(t, s.RateCardAt(ctx, -1, entities.QualityGood), ErrCardNotCurrent)

	require.NoError(t, s.RateCardAt(ctx, 1, entities.QualityGood))
	assert.True(t, s.IsComplete())
	assert.Equal(t, 2, repo.saveCount())

	// Past the end the position no longer matches anything.
	assert.ErrorIs(t, s.RateCardAt(ctx, 1, entities.QualityGood), ErrCardNotCurrent)
}
