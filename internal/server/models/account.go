// Package models defines the server-side data model.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is a registered user. Email is unique and stored lower-cased.
// PasswordHash is an argon2id PHC string; the plaintext password is never
// persisted.
type Account struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	IsActive     bool
	IsStaff      bool
	CreatedAt    time.Time
}
