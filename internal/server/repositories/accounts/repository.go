// Package accounts provides persistence for user accounts.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/mailvault/internal/server/models"
	"github.com/google/uuid"
)

// Repository is the account persistence contract.
//
// Lock takes a row-level lock on the account inside the current
// transaction; the configuration service uses it to serialize writes that
// touch the single-active invariant.
type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	Lock(ctx context.Context, id uuid.UUID) error
}
