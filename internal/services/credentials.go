package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mindful-journal/journal-backend/internal/models"
	"github.com/mindful-journal/journal-backend/internal/store"
	"github.com/mindful-journal/journal-backend/pkg/utils"
)

// PasswordHasher is satisfied by utils.Argon2Params.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}

type RegisterInput struct {
	Username string `json:"username" schema:"username" validate:"required"`
	Email    string `json:"email" schema:"email" validate:"required,email"`
	Password string `json:"password" schema:"password" validate:"required"`
}

type LoginInput struct {
	Email    string `json:"email" schema:"email" validate:"required"`
	Password string `json:"password" schema:"password" validate:"required"`
}

// CredentialService registers users and checks their passwords.
type CredentialService struct {
	users  store.UserStore
	hasher PasswordHasher
	now    func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewCredentialService(users store.UserStore, hasher PasswordHasher) *CredentialService {
	if hasher == nil {
		hasher = utils.DefaultArgon2Params
	}
	return &CredentialService{users: users, hasher: hasher, now: time.Now}
}

// Register creates a user. It fails with ErrConflict when the username or
// email is taken and ErrValidation when a field is missing or malformed.
func (s *CredentialService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	// Cheap pre-check so a taken email does not pay for a hash. The insert
	// below is still the authority on uniqueness.
	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrConflict
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           utils.NewID(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// Verify returns the user owning email when password matches. Unknown email
// and wrong password both yield ErrInvalidCredentials.
func (s *CredentialService) Verify(ctx context.Context, in LoginInput) (*models.User, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("lookup user: %w", err)
		}
		// burn a comparable amount of time so a miss is not observable
		_, _ = s.hasher.Verify(in.Password, s.dummy())
		return nil, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(in.Password, user.PasswordHash)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *CredentialService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("mindful-journal-dummy")
	})
	return s.dummyHash
}
