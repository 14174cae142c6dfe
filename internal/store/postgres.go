package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/mindful-journal/journal-backend/internal/models"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// PostgresUserStore keeps users in the users table created by
// database.InitPostgresTables. Uniqueness is enforced by the table's
// UNIQUE constraints.
type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) Insert(ctx context.Context, u *models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *PostgresUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, created_at
		FROM users WHERE email = $1
	`, email))
}

func (s *PostgresUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, created_at
		FROM users WHERE id = $1
	`, id))
}

func (s *PostgresUserStore) scanOne(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
