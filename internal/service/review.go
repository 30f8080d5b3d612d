package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/flashcards-bot/internal/domain/entities"
	"github.com/aliskhannn/flashcards-bot/internal/repository"
)

// ReviewService starts review sessions and reports review progress.
type ReviewService struct {
	lessonRepo  LessonRepository
	reviewRepo  ReviewRepository
	saveTimeout time.Duration
	now         func() time.Time
	logger      *zap.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	lessonRepo LessonRepository,
	reviewRepo ReviewRepository,
	saveTimeout time.Duration,
	logger *zap.Logger,
) *ReviewService {
	return &ReviewService{
		lessonRepo:  lessonRepo,
		reviewRepo:  reviewRepo,
		saveTimeout: saveTimeout,
		now:         time.Now,
		logger:      logger,
	}
}

// StartSession builds a review session of a lesson for a learner.
// With forceAll every card of the lesson is reviewed regardless of schedule.
func (s *ReviewService) StartSession(
	ctx context.Context, userID int64, lessonID string, forceAll bool,
) (*ReviewSession, error) {
	plan, data, err := s.Plan(ctx, userID, lessonID, forceAll)
	if err != nil {
		return nil, err
	}

	s.logger.Info("review session started",
		zap.Int64("user_id", userID),
		zap.String("lesson_id", lessonID),
		zap.Bool("force_all", forceAll),
		zap.Int("due", plan.DueCount),
		zap.Int("new", plan.NewCount),
	)

	return NewReviewSession(
		userID,
		lessonID,
		plan,
		data,
		s.reviewRepo,
		WithSaveTimeout(s.saveTimeout),
		WithClock(s.now),
	), nil
}

// Plan orders the cards of a lesson for review without starting a session.
// It also returns the review data the plan was built from, nil if none.
func (s *ReviewService) Plan(
	ctx context.Context, userID int64, lessonID string, forceAll bool,
) (SessionPlan, *entities.ReviewData, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return SessionPlan{}, nil, fmt.Errorf("get lesson: %w", err)
	}

	data, err := s.loadReviewData(ctx, userID, lessonID)
	if err != nil {
		return SessionPlan{}, nil, err
	}

	return BuildSession(lesson.Flashcards, data, s.now(), forceAll), data, nil
}

// GetStats summarises a learner's progress through a lesson.
func (s *ReviewService) GetStats(ctx context.Context, userID int64, lessonID string) (*entities.ReviewStats, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("get lesson: %w", err)
	}

	data, err := s.loadReviewData(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	plan := BuildSession(lesson.Flashcards, data, now, false)
	entries := data.EntriesByItem()

	stats := &entities.ReviewStats{
		LessonID: lessonID,
		Total:    len(lesson.Flashcards),
		Due:      plan.DueCount,
		New:      plan.NewCount,
	}

	reviewDates := make(map[string]bool)
	for _, card := range lesson.Flashcards {
		e, ok := entries[card.ID]
		if !ok {
			continue
		}

		if !e.LastReviewedAt.Before(today) {
			stats.ReviewedToday++
		}
		if e.Interval > entities.MasteredInterval {
			stats.Mastered++
		}
		if e.NextReviewAt.After(now) && (stats.NextDueAt == nil || e.NextReviewAt.Before(*stats.NextDueAt)) {
			next := e.NextReviewAt
			stats.NextDueAt = &next
		}

		stats.TotalReviews += e.Repetitions
		if !e.LastReviewedAt.IsZero() {
			reviewDates[e.LastReviewedAt.In(now.Location()).Format(time.DateOnly)] = true
		}
	}

	stats.StreakDays = calculateStreak(reviewDates, today)

	return stats, nil
}

// loadReviewData returns stored review data, or nil when there is none yet.
// Unreadable data is treated as empty so the learner can keep studying.
func (s *ReviewService) loadReviewData(ctx context.Context, userID int64, lessonID string) (*entities.ReviewData, error) {
	data, err := s.reviewRepo.Load(ctx, userID, lessonID)
	switch {
	case err == nil:
		return data, nil
	case errors.Is(err, repository.ErrReviewDataNotFound):
		return nil, nil
	case errors.Is(err, repository.ErrMalformedReviewData):
		s.logger.Warn("malformed review data, starting from scratch",
			zap.Int64("user_id", userID),
			zap.String("lesson_id", lessonID),
			zap.Error(err),
		)
		return nil, nil
	default:
		return nil, fmt.Errorf("load review data: %w", err)
	}
}

// calculateStreak counts consecutive days with reviews ending today or yesterday.
func calculateStreak(reviewDates map[string]bool, today time.Time) int {
	checkDate := today

	if !reviewDates[checkDate.Format(time.DateOnly)] {
		checkDate = checkDate.AddDate(0, 0, -1)
		if !reviewDates[checkDate.Format(time.DateOnly)] {
			return 0
		}
	}

	streak := 0
	for reviewDates[checkDate.Format(time.DateOnly)] {
		streak++
		checkDate = checkDate.AddDate(0, 0, -1)
	}

	return streak
}
