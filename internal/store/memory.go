package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mindful-journal/journal-backend/internal/models"
)

// MemoryUserStore keeps users in process memory.
type MemoryUserStore struct {
	mu    sync.RWMutex
	byID  map[string]*models.User
	email map[string]string
	name  map[string]string
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		byID:  make(map[string]*models.User),
		email: make(map[string]string),
		name:  make(map[string]string),
	}
}

func (s *MemoryUserStore) Insert(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.email[u.Email]; ok {
		return ErrDuplicate
	}
	if _, ok := s.name[u.Username]; ok {
		return ErrDuplicate
	}
	cp := *u
	s.byID[u.ID] = &cp
	s.email[u.Email] = u.ID
	s.name[u.Username] = u.ID
	return nil
}

func (s *MemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.email[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *MemoryUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// MemoryJournalStore keeps entries in insertion order so that entries with
// equal timestamps list in the order they were created.
type MemoryJournalStore struct {
	mu      sync.RWMutex
	entries []models.Journal
}

func NewMemoryJournalStore() *MemoryJournalStore {
	return &MemoryJournalStore{}
}

func (s *MemoryJournalStore) Insert(_ context.Context, j *models.Journal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		if s.entries[i].ID == j.ID {
			return ErrDuplicate
		}
	}
	s.entries = append(s.entries, j.Clone())
	return nil
}

func (s *MemoryJournalStore) ListByUser(_ context.Context, userID string) ([]models.Journal, error) {
	s.mu.RLock()
	out := make([]models.Journal, 0)
	for i := range s.entries {
		if s.entries[i].UserID == userID {
			out = append(out, s.entries[i].Clone())
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	return out, nil
}

func (s *MemoryJournalStore) FindByID(_ context.Context, userID, id string) (*models.Journal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(userID, id)
	if i < 0 {
		return nil, ErrNotFound
	}
	j := s.entries[i].Clone()
	return &j, nil
}

func (s *MemoryJournalStore) Update(_ context.Context, userID, id string, fn func(*models.Journal)) (*models.Journal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(userID, id)
	if i < 0 {
		return nil, ErrNotFound
	}
	j := s.entries[i].Clone()
	fn(&j)
	// owner and id are immutable
	j.ID, j.UserID = s.entries[i].ID, s.entries[i].UserID
	s.entries[i] = j.Clone()
	return &j, nil
}

func (s *MemoryJournalStore) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(userID, id)
	if i < 0 {
		return ErrNotFound
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	return nil
}

func (s *MemoryJournalStore) indexLocked(userID, id string) int {
	for i := range s.entries {
		if s.entries[i].ID == id && s.entries[i].UserID == userID {
			return i
		}
	}
	return -1
}

type memorySession struct {
	userID    string
	expiresAt time.Time
}

// MemorySessionStore keeps sessions in process memory. Expired sessions are
// dropped on access and by Sweep.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]memorySession),
		now:      time.Now,
	}
}

func (s *MemorySessionStore) Save(_ context.Context, token, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = memorySession{userID: userID, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemorySessionStore) Touch(_ context.Context, token string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return "", ErrNotFound
	}
	now := s.now()
	if !now.Before(sess.expiresAt) {
		delete(s.sessions, token)
		return "", ErrNotFound
	}
	sess.expiresAt = now.Add(ttl)
	s.sessions[token] = sess
	return sess.userID, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// Sweep removes expired sessions and reports how many were dropped.
func (s *MemorySessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for token, sess := range s.sessions {
		if !now.Before(sess.expiresAt) {
			delete(s.sessions, token)
			n++
		}
	}
	return n
}

// StartSweeper runs Sweep every interval until ctx is done.
func (s *MemorySessionStore) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}
