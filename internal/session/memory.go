package session

import (
	"context"
	"sync"
	"time"

	"bengkel-bot/internal/models"
)

// MemoryStore keeps sessions in process memory. Values are copied on the way
// in and out so callers never alias stored state.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]*models.Session
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[int64]*models.Session),
		now:      time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, chatID int64) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[chatID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.Clone(), nil
}

func (m *MemoryStore) Put(_ context.Context, s *models.Session) error {
	stored := s.Clone()
	stored.UpdatedAt = m.now()

	m.mu.Lock()
	m.sessions[s.ChatID] = stored
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, chatID int64) error {
	m.mu.Lock()
	delete(m.sessions, chatID)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
