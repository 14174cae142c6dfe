package models

import (
	"time"
)

// User is a registered journal owner.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`

	// Internal only - never returned in JSON
	PasswordHash string `json:"-"`
}

// PublicUser is the subset of a user returned by the auth endpoints.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Email: u.Email}
}
