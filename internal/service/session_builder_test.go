package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/flashcards-bot/internal/domain/entities"
)

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func cards(ids ...string) []entities.Flashcard {
	out := make([]entities.Flashcard, 0, len(ids))
	for _, id := range ids {
		out = append(out, entities.Flashcard{ID: id, Question: "q-" + id, Answer: "a-" + id})
	}
	return out
}

func entryDueAt(id string, next time.Time) entities.ReviewEntry {
	return entities.ReviewEntry{
		ItemID:         id,
		Repetitions:    1,
		EaseFactor:     2.5,
		Interval:       1,
		LastReviewedAt: next.Add(-24 * time.Hour),
		NextReviewAt:   next,
	}
}

func ids(cs []entities.Flashcard) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}

func TestBuildSession_DueThenNew(t *testing.T) {
	data := &entities.ReviewData{
		LessonID: "l",
		Entries: []entities.ReviewEntry{
			entryDueAt("a", testNow.Add(-24*time.Hour)),
			entryDueAt("b", testNow),
			entryDueAt("c", testNow.AddDate(0, 0, 30)),
		},
	}

	plan := BuildSession(cards("a", "b", "c", "d"), data, testNow, false)

	assert.Equal(t, []string{"a", "b", "d"}, ids(plan.Cards))
	assert.Equal(t, 2, plan.DueCount)
	assert.Equal(t, 1, plan.NewCount)
}

func TestBuildSession_SortsDueByNextReview(t *testing.T) {
	data := &entities.ReviewData{
		Entries: []entities.ReviewEntry{
			entryDueAt("late", testNow.Add(-time.Hour)),
			entryDueAt("tie-1", testNow.Add(-48*time.Hour)),
			entryDueAt("early", testNow.Add(-72*time.Hour)),
			entryDueAt("tie-2", testNow.Add(-48*time.Hour)),
			entryDueAt("future", testNow.Add(time.Minute)),
		},
	}

	plan := BuildSession(cards("new-1", "late", "tie-1", "future", "early", "tie-2", "new-2"), data, testNow, false)

	assert.Equal(t, []string{"early", "tie-1", "tie-2", "late", "new-1", "new-2"}, ids(plan.Cards))

	entries := data.EntriesByItem()
	for i := 0; i < plan.DueCount; i++ {
		e := entries[plan.Cards[i].ID]
		require.False(t, e.NextReviewAt.After(testNow))
		if i > 0 {
			require.False(t, e.NextReviewAt.Before(entries[plan.Cards[i-1].ID].NextReviewAt))
		}
	}
	assert.NotContains(t, ids(plan.Cards), "future")
}

func TestBuildSession_ForceAll(t *testing.T) {
	data := &entities.ReviewData{
		Entries: []entities.ReviewEntry{
			entryDueAt("b", testNow.AddDate(0, 0, 10)),
			entryDueAt("c", testNow.Add(-time.Hour)),
		},
	}

	input := cards("a", "b", "c")
	plan := BuildSession(input, data, testNow, true)

	assert.Equal(t, []string{"a", "b", "c"}, ids(plan.Cards))
	assert.Equal(t, 0, plan.DueCount)
	assert.Equal(t, 3, plan.NewCount)

	// The plan does not alias the caller's slice.
	plan.Cards[0].ID = "changed"
	assert.Equal(t, "a", input[0].ID)
}

func TestBuildSession_EmptyResults(t *testing.T) {
	t.Run("no cards", func(t *testing.T) {
		plan := BuildSession(nil, nil, testNow, false)
		assert.True(t, plan.IsEmpty())
		assert.Zero(t, plan.DueCount)
		assert.Zero(t, plan.NewCount)
	})

	t.Run("nothing due", func(t *testing.T) {
		data := &entities.ReviewData{
			Entries: []entities.ReviewEntry{entryDueAt("a", testNow.Add(time.Hour))},
		}
		plan := BuildSession(cards("a"), data, testNow, false)
		assert.True(t, plan.IsEmpty())
	})

	t.Run("no review data", func(t *testing.T) {
		plan := BuildSession(cards("a", "b"), nil, testNow, false)
		assert.Equal(t, []string{"a", "b"}, ids(plan.Cards))
		assert.Equal(t, 2, plan.NewCount)
	})
}
