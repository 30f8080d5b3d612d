package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/flashcards-bot/internal/service"
)

func TestSessionStorage(t *testing.T) {
	s := NewSessionStorage()

	_, ok := s.Get(1)
	assert.False(t, ok)

	first := service.NewReviewSession(7, "lesson", service.SessionPlan{}, nil, nil)
	second := service.NewReviewSession(7, "lesson", service.SessionPlan{}, nil, nil)
	require.NotEqual(t, first.ID(), second.ID())

	s.Store(1, first)
	got, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, first.ID(), got.ID())

	s.Store(1, second)
	got, _ = s.Get(1)
	assert.Equal(t, second.ID(), got.ID())

	s.Delete(1)
	_, ok = s.Get(1)
	assert.False(t, ok)
}
