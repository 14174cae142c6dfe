package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mindful-journal/journal-backend/internal/store"
	"github.com/mindful-journal/journal-backend/pkg/utils"
)

// DefaultSessionTTL is how long a session survives without use.
const DefaultSessionTTL = 24 * time.Hour

// SessionService issues and checks opaque session tokens. A session only
// authenticates while its user still exists.
type SessionService struct {
	sessions store.SessionStore
	users    store.UserStore
	ttl      time.Duration
}

func NewSessionService(sessions store.SessionStore, users store.UserStore, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionService{sessions: sessions, users: users, ttl: ttl}
}

// TTL is the inactivity timeout applied to every session and its cookie.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Create issues a new token for userID. Earlier sessions stay valid.
func (s *SessionService) Create(ctx context.Context, userID string) (string, error) {
	token, err := utils.GenerateToken()
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	if err := s.sessions.Save(ctx, token, userID, s.ttl); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return token, nil
}

// Authenticate resolves token to a user id and extends the session.
func (s *SessionService) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthenticated
	}
	userID, err := s.sessions.Touch(ctx, token, s.ttl)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrUnauthenticated
		}
		return "", fmt.Errorf("load session: %w", err)
	}

	// Sessions can outlive their user when the session store is durable and
	// the user store is not.
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			if err := s.sessions.Delete(ctx, token); err != nil {
				return "", fmt.Errorf("drop orphaned session: %w", err)
			}
			return "", ErrUnauthenticated
		}
		return "", fmt.Errorf("load session user: %w", err)
	}
	return userID, nil
}

// Destroy invalidates token. Unknown or empty tokens are not an error.
func (s *SessionService) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}
