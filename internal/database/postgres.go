package database

import (
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

// ConnectPostgres opens a pooled connection and creates the schema.
func ConnectPostgres(postgresURI string) (*sql.DB, error) {
	db, err := sql.Open("postgres", postgresURI)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if err = InitPostgresTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// InitPostgresTables creates all necessary tables if they don't exist
func InitPostgresTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(36) PRIMARY KEY,
			username VARCHAR(255) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

func DisconnectPostgres(db *sql.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}
