package storage

import (
	"sync"

	"github.com/aliskhannn/flashcards-bot/internal/service"
)

// SessionStorage provides in-memory storage for active review sessions by chat ID.
type SessionStorage struct {
	mu       sync.RWMutex
	sessions map[int64]*service.ReviewSession
}

// NewSessionStorage creates a new SessionStorage.
func NewSessionStorage() *SessionStorage {
	return &SessionStorage{
		sessions: make(map[int64]*service.ReviewSession),
	}
}

// Store saves the active session of a chat, replacing the previous one.
func (s *SessionStorage) Store(chatID int64, session *service.ReviewSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[chatID] = session
}

// Get retrieves the active session of a chat.
func (s *SessionStorage) Get(chatID int64) (*service.ReviewSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[chatID]
	return session, ok
}

// Delete removes the active session of a chat.
func (s *SessionStorage) Delete(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatID)
}
