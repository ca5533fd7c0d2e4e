// Package models defines server-side data models persisted in the database.
package models

import "time"

// Identity is the identity-provider record: who can sign in and how.
// UsernameHint is the username supplied at sign-up, kept as metadata only.
type Identity struct {
	ID           string
	Email        string
	UsernameHint string
	Salt         []byte
	PasswordHash []byte
	CreatedAt    time.Time
}

// Profile is the application-level user record. ID equals the identity id.
type Profile struct {
	ID             string
	Username       string
	Email          string
	Tier           string
	WaitlistStatus string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// WaitlistEntry is a request for collector tier access. UserID is nil for
// entries made without signing in.
type WaitlistEntry struct {
	ID        string
	Email     string
	UserID    *string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
