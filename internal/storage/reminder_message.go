package storage

import (
	"sync"
	"time"
)

type ReminderMessage struct {
	ChatID    int64
	MessageID int
	SentAt    time.Time
}

// ReminderMessages remembers the last reminder message sent to each user so
// the next reminder can replace it.
type ReminderMessages struct {
	mu       sync.Mutex
	messages map[int64]ReminderMessage
}

func NewReminderMessages() *ReminderMessages {
	return &ReminderMessages{
		messages: make(map[int64]ReminderMessage),
	}
}

func (s *ReminderMessages) UpsertAndGetPrev(userID int64, chatID int64, messageID int) (prev ReminderMessage, hadPrev bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, hadPrev = s.messages[userID]

	s.messages[userID] = ReminderMessage{
		ChatID:    chatID,
		MessageID: messageID,
		SentAt:    time.Now(),
	}

	return prev, hadPrev
}
