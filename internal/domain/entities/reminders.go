package entities

import "time"

// ReminderSubscription asks for a reminder whenever a lesson has due cards.
type ReminderSubscription struct {
	UserID       int64
	ChatID       int64
	LessonID     string
	SubscribedAt time.Time
	LastSentAt   *time.Time // nil until the first reminder
}

// NewReminderSubscription creates a subscription for a learner's chat.
func NewReminderSubscription(userID, chatID int64, lessonID string) *ReminderSubscription {
	return &ReminderSubscription{
		UserID:       userID,
		ChatID:       chatID,
		LessonID:     lessonID,
		SubscribedAt: time.Now(),
	}
}

// ReminderPayload carries what a reminder message shows.
type ReminderPayload struct {
	UserID      int64
	LessonID    string
	LessonTitle string
	Due         int // cards due now
	New         int // cards never rated
}
