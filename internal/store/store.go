// Package store holds the persistence backends for users, journal entries
// and sessions. Every backend satisfies the interfaces below; the in-memory
// ones are the default.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/mindful-journal/journal-backend/internal/models"
)

var (
	ErrNotFound  = errors.New("store: not found")
	ErrDuplicate = errors.New("store: duplicate")
)

// UserStore persists user records. Insert must reject a user whose username
// or email is already taken with ErrDuplicate, atomically.
type UserStore interface {
	Insert(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// JournalStore persists journal entries. Every lookup is scoped by owner:
// an entry owned by someone else is reported as ErrNotFound.
type JournalStore interface {
	Insert(ctx context.Context, j *models.Journal) error
	// ListByUser returns the owner's entries newest first.
	ListByUser(ctx context.Context, userID string) ([]models.Journal, error)
	FindByID(ctx context.Context, userID, id string) (*models.Journal, error)
	// Update loads the entry, applies fn and writes it back as one operation.
	Update(ctx context.Context, userID, id string, fn func(*models.Journal)) (*models.Journal, error)
	Delete(ctx context.Context, userID, id string) error
}

// SessionStore maps opaque tokens to user ids with a sliding expiry.
type SessionStore interface {
	Save(ctx context.Context, token, userID string, ttl time.Duration) error
	// Touch returns the session's user id and extends its expiry by ttl.
	Touch(ctx context.Context, token string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, token string) error
}
