// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account known to the identity provider. PasswordHash is an
// argon2id digest of the password and Salt.
type User struct {
	ID                   string
	Email                string
	Name                 string
	Salt                 []byte
	PasswordHash         []byte
	Confirmed            bool
	ConfirmationCodeHash string
	CreatedAt            time.Time
}

// RefreshToken is a stored refresh token. Token holds the SHA-256 digest,
// never the token itself.
type RefreshToken struct {
	UserID  string
	Token   string
	Expires time.Time
}

// Insight is the AI annotation stored alongside an entry.
type Insight struct {
	Summary string `json:"summary"`
	Mood    string `json:"mood"`
	Advice  string `json:"advice"`
}

// Entry is one row of journal_entries.
type Entry struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
	Tags      []string
	AIInsight *Insight
}
