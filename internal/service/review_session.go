package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/aliskhannn/flashcards-bot/internal/domain/entities"
)

var (
	ErrInvalidQuality  = errors.New("quality must be between 0 and 5")
	ErrSessionNotFound = errors.New("review session not found")
	ErrCardNotCurrent  = errors.New("card is no longer current")
)

// ReviewSaver durably stores a review data snapshot.
type ReviewSaver interface {
	Save(ctx context.Context, data *entities.ReviewData) error
}

// SessionOption configures a ReviewSession.
type SessionOption func(*ReviewSession)

// WithSaveTimeout bounds every save. Zero leaves saves unbounded.
func WithSaveTimeout(d time.Duration) SessionOption {
	return func(s *ReviewSession) {
		s.saveTimeout = d
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) SessionOption {
	return func(s *ReviewSession) {
		s.now = now
	}
}

// ReviewSession drives a single pass over a SessionPlan.
//
// The session is complete once the position reaches the number of cards. A
// rating advances the position before its save settles; while a save is in
// flight further ratings are dropped.
type ReviewSession struct {
	id       string
	userID   int64
	lessonID string

	cards    []entities.Flashcard
	dueCount int
	newCount int
	saver    ReviewSaver

	saveTimeout time.Duration
	now         func() time.Time

	mu       sync.Mutex
	index    int
	reviewed int
	entries  map[string]entities.ReviewEntry
	saving   bool
}

// NewReviewSession creates a session over plan. data seeds the working entries
// and may be nil.
func NewReviewSession(
	userID int64,
	lessonID string,
	plan SessionPlan,
	data *entities.ReviewData,
	saver ReviewSaver,
	opts ...SessionOption,
) *ReviewSession {
	s := &ReviewSession{
		id:       shortuuid.New(),
		userID:   userID,
		lessonID: lessonID,
		cards:    plan.Cards,
		dueCount: plan.DueCount,
		newCount: plan.NewCount,
		saver:    saver,
		now:      time.Now,
		entries:  data.EntriesByItem(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ID returns a short random id used to detect stale callbacks.
func (s *ReviewSession) ID() string { return s.id }

func (s *ReviewSession) UserID() int64 { return s.userID }

func (s *ReviewSession) LessonID() string { return s.lessonID }

// Len returns the number of cards in the session.
func (s *ReviewSession) Len() int { return len(s.cards) }

func (s *ReviewSession) DueCount() int { return s.dueCount }

func (s *ReviewSession) NewCount() int { return s.newCount }

// Position returns the index of the current card.
func (s *ReviewSession) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Reviewed returns how many cards were rated since the session started or was reset.
func (s *ReviewSession) Reviewed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reviewed
}

// IsComplete reports whether every card of the pass has been rated.
func (s *ReviewSession) IsComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index >= len(s.cards)
}

// IsSaving reports whether a save is in flight.
func (s *ReviewSession) IsSaving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving
}

// CurrentCard returns the card under review, or false once the session is complete.
func (s *ReviewSession) CurrentCard() (entities.Flashcard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index >= len(s.cards) {
		return entities.Flashcard{}, false
	}
	return s.cards[s.index], true
}

// Entry returns the working review entry of an item.
func (s *ReviewSession) Entry(itemID string) (entities.ReviewEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[itemID]
	return e, ok
}

// RateCard records a rating of the current card and persists all entries.
//
// It does nothing when the session is complete or a previous save has not
// settled yet. A save error is returned; the position is not rolled back.
func (s *ReviewSession) RateCard(ctx context.Context, quality entities.Quality) error {
	return s.rate(ctx, -1, quality)
}

// RateCardAt rates the card at position, which must be the current one.
// Otherwise it returns ErrCardNotCurrent and nothing changes, so a repeated
// or stale rating never lands on the next card.
func (s *ReviewSession) RateCardAt(ctx context.Context, position int, quality entities.Quality) error {
	if position < 0 {
		return fmt.Errorf("%w: position %d", ErrCardNotCurrent, position)
	}
	return s.rate(ctx, position, quality)
}

// rate applies quality to the current card. A negative position skips the
// position check.
func (s *ReviewSession) rate(ctx context.Context, position int, quality entities.Quality) error {
	if !quality.Valid() {
		return fmt.Errorf("%w: got %d", ErrInvalidQuality, quality)
	}

	s.mu.Lock()
	if position >= 0 && position != s.index {
		s.mu.Unlock()
		return fmt.Errorf("%w: position %d, current %d", ErrCardNotCurrent, position, s.index)
	}
	if s.saving || s.index >= len(s.cards) {
		s.mu.Unlock()
		return nil
	}

	card := s.cards[s.index]

	var prev *entities.ReviewEntry
	if e, ok := s.entries[card.ID]; ok {
		prev = &e
	}
	s.entries[card.ID] = entities.ApplySM2(prev, quality, card.ID, s.now())

	s.index++
	s.reviewed++
	s.saving = true
	data := entities.NewReviewData(s.userID, s.lessonID, s.entries)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.saving = false
		s.mu.Unlock()
	}()

	if s.saveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.saveTimeout)
		defer cancel()
	}

	if err := s.saver.Save(ctx, data); err != nil {
		return fmt.Errorf("save review data: %w", err)
	}

	return nil
}

// Reset rewinds the session to its first card. Entries rated so far are kept,
// so the next pass schedules from the updated state.
func (s *ReviewSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.index = 0
	s.reviewed = 0
}
