package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aliskhannn/flashcards-bot/internal/domain/entities"
	"github.com/aliskhannn/flashcards-bot/internal/repository"
)

// ReminderStorage keeps reminder subscriptions in memory. It backs the file
// storage driver; database drivers persist subscriptions instead.
type ReminderStorage struct {
	mu            sync.RWMutex
	subscriptions map[int64]entities.ReminderSubscription
}

func NewReminderStorage() *ReminderStorage {
	return &ReminderStorage{
		subscriptions: make(map[int64]entities.ReminderSubscription),
	}
}

func (s *ReminderStorage) Subscribe(_ context.Context, sub *entities.ReminderSubscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subscriptions[sub.UserID] = *sub
	return nil
}

func (s *ReminderStorage) Unsubscribe(_ context.Context, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.subscriptions[userID]
	delete(s.subscriptions, userID)
	return ok, nil
}

func (s *ReminderStorage) Get(_ context.Context, userID int64) (*entities.ReminderSubscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subscriptions[userID]
	if !ok {
		return nil, repository.ErrReminderNotFound
	}
	return &sub, nil
}

// List returns copies of all subscriptions ordered by user ID.
func (s *ReminderStorage) List(_ context.Context) ([]*entities.ReminderSubscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subs := make([]*entities.ReminderSubscription, 0, len(s.subscriptions))
	for _, sub := range s.subscriptions {
		subs = append(subs, &sub)
	}
	sort.Slice(subs, func(i, j int) bool {
		return subs[i].UserID < subs[j].UserID
	})

	return subs, nil
}

func (s *ReminderStorage) MarkSent(_ context.Context, userID int64, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subscriptions[userID]
	if !ok {
		return repository.ErrReminderNotFound
	}
	sub.LastSentAt = &sentAt
	s.subscriptions[userID] = sub
	return nil
}
