// Package session implements first-party browser sessions: the cookie
// credential source for the identity resolver. Sessions live in Redis in
// production and in memory for tests, with a sliding-TTL refresh that
// rewrites the cookie expiry as users stay active.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	id "careergate/pkg/domain"
)

// Session is one browser session bound to an account.
type Session struct {
	Token       string
	UserID      id.UserID
	Email       string
	CreatedAt   time.Time
	RefreshedAt time.Time
	ExpiresAt   time.Time
}

// Expired reports whether the session is past its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store persists sessions keyed by their opaque token.
// Implementations return sentinel.ErrNotFound for unknown or lapsed tokens.
type Store interface {
	Create(ctx context.Context, sess *Session) error
	FindByToken(ctx context.Context, token string) (*Session, error)
	// Refresh extends a session in place; used by the sliding-TTL refresh.
	Refresh(ctx context.Context, token string, refreshedAt, expiresAt time.Time) error
	Delete(ctx context.Context, token string) error
}

// NewToken returns an opaque 256-bit session token.
func NewToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
