// Package session stores application sessions established after a
// successful OpenAM login. These are the application's own sessions,
// distinct from the OpenAM token cookie the handshake consumes.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/alesium/go-openam/pkg/openam"
)

// ErrNotFound is returned when a session ID is unknown or expired.
var ErrNotFound = errors.New("session not found")

// Session is one established application session.
type Session struct {
	ID        string          `json:"id"`
	Token     string          `json:"token"` // OpenAM session token it was minted from
	Profile   *openam.Profile `json:"profile,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Expired reports whether the session has passed its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// New mints a session with a fresh random ID and the given lifetime.
func New(token string, profile *openam.Profile, ttl time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.NewString(),
		Token:     token,
		Profile:   profile,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Store persists sessions. Implementations must treat expired sessions as
// absent.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}
