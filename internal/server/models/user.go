package models

import "time"

// User is a back-office administrator.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash []byte
	CreatedAt    time.Time
}

// RefreshToken is an opaque, server-stored token that can be exchanged for
// a new access token until it expires.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}
