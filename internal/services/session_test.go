package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindful-journal/journal-backend/internal/models"
	"github.com/mindful-journal/journal-backend/internal/store"
)

func newSessionService(t *testing.T, ttl time.Duration, userIDs ...string) (*SessionService, *store.MemorySessionStore) {
	t.Helper()
	users := store.NewMemoryUserStore()
	for _, id := range userIDs {
		require.NoError(t, users.Insert(context.Background(), &models.User{ID: id, Username: id, Email: id + "@example.com"}))
	}
	sessions := store.NewMemorySessionStore()
	return NewSessionService(sessions, users, ttl), sessions
}

func TestSession_CreateAuthenticateDestroy(t *testing.T) {
	ctx := context.Background()
	s, _ := newSessionService(t, time.Hour, "alice")

	tok, err := s.Create(ctx, "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, tok)

	uid, err := s.Authenticate(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", uid)

	require.NoError(t, s.Destroy(ctx, tok))
	_, err = s.Authenticate(ctx, tok)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	// destroying again is fine
	require.NoError(t, s.Destroy(ctx, tok))
	require.NoError(t, s.Destroy(ctx, ""))
}

func TestSession_MissingOrUnknownToken(t *testing.T) {
	ctx := context.Background()
	s, _ := newSessionService(t, time.Hour)

	_, err := s.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = s.Authenticate(ctx, "made-up")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSession_MultipleSessionsPerUser(t *testing.T) {
	ctx := context.Background()
	s, _ := newSessionService(t, time.Hour, "alice")

	a, err := s.Create(ctx, "alice")
	require.NoError(t, err)
	b, err := s.Create(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	require.NoError(t, s.Destroy(ctx, a))
	uid, err := s.Authenticate(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, "alice", uid)
}

func TestSession_UnknownUserIsRejectedAndDropped(t *testing.T) {
	ctx := context.Background()
	s, sessions := newSessionService(t, time.Hour)

	require.NoError(t, sessions.Save(ctx, "orphan", "ghost", time.Hour))

	_, err := s.Authenticate(ctx, "orphan")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = sessions.Touch(ctx, "orphan", time.Hour)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSession_DefaultTTL(t *testing.T) {
	s, _ := newSessionService(t, 0)
	assert.Equal(t, DefaultSessionTTL, s.TTL())
}
