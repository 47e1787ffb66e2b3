package session

import (
	"context"
	"errors"

	"bengkel-bot/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// Store persists per-chat conversation state. Get returns ErrSessionNotFound
// for chats without a session; Delete of a missing session is not an error.
type Store interface {
	Get(ctx context.Context, chatID int64) (*models.Session, error)
	Put(ctx context.Context, s *models.Session) error
	Delete(ctx context.Context, chatID int64) error
}
