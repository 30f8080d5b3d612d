package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/flashcards-bot/internal/domain/entities"
	"github.com/aliskhannn/flashcards-bot/internal/service"
	"github.com/aliskhannn/flashcards-bot/internal/storage"
)

// Bot is the part of the Telegram Bot API the handler uses.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type LessonService interface {
	GetByID(ctx context.Context, id string) (*entities.Lesson, error)
	GetAll(ctx context.Context) ([]*entities.Lesson, error)
}

type ReviewService interface {
	StartSession(ctx context.Context, userID int64, lessonID string, forceAll bool) (*service.ReviewSession, error)
	GetStats(ctx context.Context, userID int64, lessonID string) (*entities.ReviewStats, error)
}

type ReminderService interface {
	Subscribe(ctx context.Context, userID, chatID int64, lessonID string) error
	Unsubscribe(ctx context.Context, userID int64) (bool, error)
	Subscription(ctx context.Context, userID int64) (*entities.ReminderSubscription, error)
}

// SessionStorage keeps the active review session of each chat.
type SessionStorage interface {
	Store(chatID int64, session *service.ReviewSession)
	Get(chatID int64) (*service.ReviewSession, bool)
	Delete(chatID int64)
}

// ReminderMessageStore remembers the last reminder message of each user.
type ReminderMessageStore interface {
	UpsertAndGetPrev(userID, chatID int64, messageID int) (storage.ReminderMessage, bool)
}
