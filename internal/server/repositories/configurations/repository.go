// Package configurations provides persistence for email configurations.
package configurations

import (
	"context"

	"github.com/dmitrijs2005/mailvault/internal/server/models"
	"github.com/google/uuid"
)

// Repository is the configuration persistence contract. All reads and
// writes are scoped to the owning account: a configuration owned by another
// account is indistinguishable from a nonexistent one.
//
// DeactivateSiblings clears the active flag on every other configuration of
// the account; the service calls it inside the same transaction as the
// write that sets the target active.
type Repository interface {
	Create(ctx context.Context, cfg *models.Configuration) (*models.Configuration, error)
	Update(ctx context.Context, cfg *models.Configuration) (*models.Configuration, error)
	GetByID(ctx context.Context, accountID uuid.UUID, id int64) (*models.Configuration, error)
	List(ctx context.Context, accountID uuid.UUID) ([]models.Configuration, error)
	Delete(ctx context.Context, accountID uuid.UUID, id int64) error
	DeactivateSiblings(ctx context.Context, accountID uuid.UUID, exceptID int64) error
}
