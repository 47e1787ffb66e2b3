package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"bengkel-bot/internal/models"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// RedisStore keeps each session as a JSON value with a sliding TTL: every Get
// and Put pushes the expiry back, so only chats that go quiet expire.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(chatID int64) string {
	return keyPrefix + strconv.FormatInt(chatID, 10)
}

func (r *RedisStore) Get(ctx context.Context, chatID int64) (*models.Session, error) {
	var cmd *redis.StringCmd
	if r.ttl > 0 {
		// GETEX with a zero expiration would PERSIST the key.
		cmd = r.client.GetEx(ctx, sessionKey(chatID), r.ttl)
	} else {
		cmd = r.client.Get(ctx, sessionKey(chatID))
	}
	raw, err := cmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var s models.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if s.Fields == nil {
		s.Fields = map[string]string{}
	}
	return &s, nil
}

func (r *RedisStore) Put(ctx context.Context, s *models.Session) error {
	stored := s.Clone()
	stored.UpdatedAt = time.Now().UTC()

	raw, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(s.ChatID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, chatID int64) error {
	if err := r.client.Del(ctx, sessionKey(chatID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
