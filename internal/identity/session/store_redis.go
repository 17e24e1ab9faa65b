package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	id "careergate/pkg/domain"
	"careergate/pkg/platform/sentinel"
)

const keyPrefix = "session:"

// RedisStore persists sessions in Redis with the key's TTL mirroring the
// session expiry, so lapsed sessions disappear without a cleanup job.
type RedisStore struct {
	client goredis.UniversalClient
}

func NewRedisStore(client goredis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

type redisSession struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"created_at"`
	RefreshedAt time.Time `json:"refreshed_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (s *RedisStore) Create(ctx context.Context, sess *Session) error {
	payload, err := json.Marshal(redisSession{
		UserID:      sess.UserID.String(),
		Email:       sess.Email,
		CreatedAt:   sess.CreatedAt,
		RefreshedAt: sess.RefreshedAt,
		ExpiresAt:   sess.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return sentinel.ErrExpired
	}

	ok, err := s.client.SetNX(ctx, keyPrefix+sess.Token, payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	if !ok {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *RedisStore) FindByToken(ctx context.Context, token string) (*Session, error) {
	raw, err := s.client.Get(ctx, keyPrefix+token).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}

	var stored redisSession
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	userID, err := parseStoredUserID(stored.UserID)
	if err != nil {
		return nil, err
	}

	return &Session{
		Token:       token,
		UserID:      userID,
		Email:       stored.Email,
		CreatedAt:   stored.CreatedAt,
		RefreshedAt: stored.RefreshedAt,
		ExpiresAt:   stored.ExpiresAt,
	}, nil
}

func (s *RedisStore) Refresh(ctx context.Context, token string, refreshedAt, expiresAt time.Time) error {
	sess, err := s.FindByToken(ctx, token)
	if err != nil {
		return err
	}

	sess.RefreshedAt = refreshedAt
	sess.ExpiresAt = expiresAt

	payload, err := json.Marshal(redisSession{
		UserID:      sess.UserID.String(),
		Email:       sess.Email,
		CreatedAt:   sess.CreatedAt,
		RefreshedAt: sess.RefreshedAt,
		ExpiresAt:   sess.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return sentinel.ErrExpired
	}

	// XX: only rewrite sessions that still exist; a concurrent sign-out wins.
	ok, err := s.client.SetXX(ctx, keyPrefix+token, payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("refresh session: %w", err)
	}
	if !ok {
		return sentinel.ErrNotFound
	}
	return nil
}

func parseStoredUserID(s string) (id.UserID, error) {
	userID, err := id.ParseUserID(s)
	if err != nil {
		return id.UserID{}, fmt.Errorf("corrupt session user id %q: %w", s, err)
	}
	return userID, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	deleted, err := s.client.Del(ctx, keyPrefix+token).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if deleted == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
