package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/aliskhannn/flashcards-bot/internal/domain/entities"
)

// reminderCooldown is the minimum gap between two reminders to the same user.
const reminderCooldown = 6 * time.Hour

var ErrNotifierNotSet = errors.New("notifier not initialized")

// ReminderService notifies subscribed learners when a lesson has due cards.
type ReminderService struct {
	store      ReminderStore
	stats      StatsProvider
	lessonRepo LessonRepository
	notifier   ReminderNotifier
	schedule   string
	now        func() time.Time
	logger     *zap.Logger
}

// NewReminderService creates a new reminder service running on a cron schedule.
func NewReminderService(
	store ReminderStore,
	stats StatsProvider,
	lessonRepo LessonRepository,
	schedule string,
	logger *zap.Logger,
) *ReminderService {
	return &ReminderService{
		store:      store,
		stats:      stats,
		lessonRepo: lessonRepo,
		schedule:   schedule,
		now:        time.Now,
		logger:     logger,
	}
}

// SetNotifier sets the notifier (called after handler is created).
func (s *ReminderService) SetNotifier(notifier ReminderNotifier) {
	s.notifier = notifier
}

// Subscribe enables reminders of a lesson for a learner, replacing any
// previous subscription of that learner.
func (s *ReminderService) Subscribe(ctx context.Context, userID, chatID int64, lessonID string) error {
	if _, err := s.lessonRepo.GetByID(ctx, lessonID); err != nil {
		return fmt.Errorf("get lesson: %w", err)
	}

	if err := s.store.Subscribe(ctx, entities.NewReminderSubscription(userID, chatID, lessonID)); err != nil {
		return fmt.Errorf("save subscription: %w", err)
	}
	s.logger.Info("reminders enabled",
		zap.Int64("user_id", userID),
		zap.String("lesson_id", lessonID),
	)
	return nil
}

// Unsubscribe disables reminders for a learner. It reports whether a
// subscription existed.
func (s *ReminderService) Unsubscribe(ctx context.Context, userID int64) (bool, error) {
	removed, err := s.store.Unsubscribe(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("remove subscription: %w", err)
	}
	if removed {
		s.logger.Info("reminders disabled", zap.Int64("user_id", userID))
	}
	return removed, nil
}

// Subscription returns the learner's current subscription, or
// repository.ErrReminderNotFound.
func (s *ReminderService) Subscription(ctx context.Context, userID int64) (*entities.ReminderSubscription, error) {
	return s.store.Get(ctx, userID)
}

// Start runs the cron scheduler until ctx is done.
func (s *ReminderService) Start(ctx context.Context) error {
	c := cron.New(cron.WithLocation(time.UTC))

	_, err := c.AddFunc(s.schedule, func() {
		s.logger.Info("cron triggered: processing reminders")
		sent, err := s.SendDueReminders(ctx)
		if err != nil {
			s.logger.Error("failed to send reminders", zap.Error(err))
			return
		}
		s.logger.Info("reminders processed", zap.Int("total_sent", sent))
	})
	if err != nil {
		return fmt.Errorf("add cron job %q: %w", s.schedule, err)
	}

	c.Start()
	s.logger.Info("reminder service started", zap.String("schedule", s.schedule))

	<-ctx.Done()

	<-c.Stop().Done()
	s.logger.Info("reminder service stopped")

	return nil
}

// SendDueReminders notifies every subscriber whose lesson has due cards and
// returns the number of reminders sent.
func (s *ReminderService) SendDueReminders(ctx context.Context) (int, error) {
	if s.notifier == nil {
		return 0, ErrNotifierNotSet
	}

	const batchSize = 100
	subs, err := s.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list subscriptions: %w", err)
	}
	now := s.now()
	totalSent := 0

	for start := 0; start < len(subs); start += batchSize {
		if err := ctx.Err(); err != nil {
			return totalSent, err
		}

		end := min(start+batchSize, len(subs))
		totalSent += s.processBatch(ctx, subs[start:end], now)
	}

	return totalSent, nil
}

// processBatch processes a batch of subscriptions concurrently.
func (s *ReminderService) processBatch(ctx context.Context, subs []*entities.ReminderSubscription, now time.Time) int {
	const maxConcurrent = 10
	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup
	var mu sync.Mutex
	sent := 0

	for _, sub := range subs {
		wg.Add(1)
		sem <- struct{}{} // Acquire

		go func() {
			defer wg.Done()
			defer func() { <-sem }() // Release

			ok, err := s.processReminder(ctx, sub, now)
			if err != nil {
				s.logger.Error("failed to process reminder",
					zap.Int64("user_id", sub.UserID),
					zap.String("lesson_id", sub.LessonID),
					zap.Error(err))
				return
			}
			if ok {
				mu.Lock()
				sent++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	return sent
}

// processReminder sends a single reminder if the lesson has due cards.
func (s *ReminderService) processReminder(
	ctx context.Context,
	sub *entities.ReminderSubscription,
	now time.Time,
) (bool, error) {
	if sub.LastSentAt != nil && now.Sub(*sub.LastSentAt) < reminderCooldown {
		return false, nil
	}

	stats, err := s.stats.GetStats(ctx, sub.UserID, sub.LessonID)
	if err != nil {
		return false, fmt.Errorf("get stats: %w", err)
	}

	if stats.Due == 0 {
		s.logger.Debug("nothing due", zap.Int64("user_id", sub.UserID))
		return false, nil
	}

	lesson, err := s.lessonRepo.GetByID(ctx, sub.LessonID)
	if err != nil {
		return false, fmt.Errorf("get lesson: %w", err)
	}

	payload := entities.ReminderPayload{
		UserID:      sub.UserID,
		LessonID:    lesson.ID,
		LessonTitle: lesson.Title,
		Due:         stats.Due,
		New:         stats.New,
	}

	if err = s.notifier.SendReminder(ctx, sub.ChatID, payload); err != nil {
		return false, fmt.Errorf("send notification: %w", err)
	}

	if err = s.store.MarkSent(ctx, sub.UserID, now); err != nil {
		// The reminder already went out; a lost mark only shortens the cooldown.
		s.logger.Warn("failed to mark reminder as sent",
			zap.Int64("user_id", sub.UserID),
			zap.Error(err))
	}

	s.logger.Info("reminder sent successfully",
		zap.Int64("user_id", sub.UserID),
		zap.String("lesson_id", sub.LessonID),
		zap.Int("due", stats.Due),
	)

	return true, nil
}
