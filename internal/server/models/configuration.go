package models

import (
	"time"

	"github.com/google/uuid"
)

// Configuration is a per-account email configuration. AppPassword holds the
// AES-GCM ciphertext blob; plaintext exists only transiently on the
// get-by-id read path. Email is unique across all accounts.
//
// Invariant: at most one configuration per account has IsActive=true.
type Configuration struct {
	ID          int64
	AccountID   uuid.UUID
	Email       string
	AppPassword []byte
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
