package service

import (
	"context"
	"time"

	"github.com/aliskhannn/flashcards-bot/internal/domain/entities"
)

type LessonRepository interface {
	GetByID(ctx context.Context, id string) (*entities.Lesson, error)
	GetAll(ctx context.Context) ([]*entities.Lesson, error)
}

// ReviewRepository loads and durably saves review data.
// Load returns repository.ErrReviewDataNotFound when nothing was saved yet.
type ReviewRepository interface {
	Load(ctx context.Context, userID int64, lessonID string) (*entities.ReviewData, error)
	Save(ctx context.Context, data *entities.ReviewData) error
}

// ReminderStore keeps reminder subscriptions.
// Get and MarkSent return repository.ErrReminderNotFound for unknown users.
type ReminderStore interface {
	Subscribe(ctx context.Context, sub *entities.ReminderSubscription) error
	Unsubscribe(ctx context.Context, userID int64) (bool, error)
	Get(ctx context.Context, userID int64) (*entities.ReminderSubscription, error)
	List(ctx context.Context) ([]*entities.ReminderSubscription, error)
	MarkSent(ctx context.Context, userID int64, sentAt time.Time) error
}

// ReminderNotifier sends reminder notifications to users.
type ReminderNotifier interface {
	SendReminder(ctx context.Context, chatID int64, payload entities.ReminderPayload) error
}

// StatsProvider reports review progress of a lesson.
type StatsProvider interface {
	GetStats(ctx context.Context, userID int64, lessonID string) (*entities.ReviewStats, error)
}
