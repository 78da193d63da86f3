package services

import (
	"context"
	"database/sql"
	"fmt"
	"net/mail"

	"github.com/dmitrijs2005/mailvault/internal/common"
	"github.com/dmitrijs2005/mailvault/internal/cryptox"
	"github.com/dmitrijs2005/mailvault/internal/dbx"
	"github.com/dmitrijs2005/mailvault/internal/server/models"
	"github.com/dmitrijs2005/mailvault/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// ConfigurationView is what the service returns to callers. AppPassword is
// plaintext only on the get-by-id path; list views leave it empty.
type ConfigurationView struct {
	ID          int64
	Email       string
	AppPassword string
	IsActive    bool
}

// ConfigService manages per-account email configurations. App passwords are
// encrypted before they reach the repository and decrypted only on single-item
// reads. Writes that set a configuration active run in a transaction holding
// the account row lock, so the single-active invariant survives concurrent
// requests.
type ConfigService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cipher      *cryptox.Cipher
}

func NewConfigService(db *sql.DB, m repomanager.RepositoryManager, cipher *cryptox.Cipher) *ConfigService {
	return &ConfigService{db: db, repomanager: m, cipher: cipher}
}

// Create stores a new configuration for accountID. When active is true the
// account's other configurations are deactivated in the same transaction.
func (s *ConfigService) Create(ctx context.Context, accountID uuid.UUID, email, appPassword string, active bool) (*ConfigurationView, error) {
	if err := validateConfiguration(email, appPassword); err != nil {
		return nil, err
	}

	ciphertext, err := s.cipher.Encrypt(appPassword)
	if err != nil {
		return nil, common.ErrInternal
	}

	cfg := &models.Configuration{
		AccountID:   accountID,
		Email:       email,
		AppPassword: ciphertext,
		IsActive:    active,
	}

	var created *models.Configuration
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if active {
			if err := s.repomanager.Accounts(tx).Lock(ctx, accountID); err != nil {
				return fmt.Errorf("error locking account: %w", err)
			}
			if err := s.repomanager.Configurations(tx).DeactivateSiblings(ctx, accountID, 0); err != nil {
				return fmt.Errorf("error deactivating configurations: %w", err)
			}
		}
		var createErr error
		created, createErr = s.repomanager.Configurations(tx).Create(ctx, cfg)
		return createErr
	}); err != nil {
		return nil, err
	}

	return listView(created), nil
}

// Update partially rewrites an existing configuration. A nil field keeps the
// stored value, as does an empty appPassword. Activating a configuration
// deactivates its siblings in the same transaction; an explicit active=false
// simply clears the flag, which may leave the account with no active
// configuration.
func (s *ConfigService) Update(ctx context.Context, accountID uuid.UUID, id int64, email, appPassword *string, active *bool) (*ConfigurationView, error) {
	if email != nil {
		if err := validateEmail(*email); err != nil {
			return nil, err
		}
	}

	var ciphertext []byte
	if appPassword != nil && *appPassword != "" {
		var err error
		ciphertext, err = s.cipher.Encrypt(*appPassword)
		if err != nil {
			return nil, common.ErrInternal
		}
	}

	var updated *models.Configuration
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		current, err := s.repomanager.Configurations(tx).GetByID(ctx, accountID, id)
		if err != nil {
			return err
		}
		willBeActive := current.IsActive
		if active != nil {
			willBeActive = *active
		}
		if willBeActive {
			if err := s.repomanager.Accounts(tx).Lock(ctx, accountID); err != nil {
				return fmt.Errorf("error locking account: %w", err)
			}
			if err := s.repomanager.Configurations(tx).DeactivateSiblings(ctx, accountID, id); err != nil {
				return fmt.Errorf("error deactivating configurations: %w", err)
			}
		}
		if email != nil {
			current.Email = *email
		}
		current.IsActive = willBeActive
		if ciphertext != nil {
			current.AppPassword = ciphertext
		}
		var updateErr error
		updated, updateErr = s.repomanager.Configurations(tx).Update(ctx, current)
		return updateErr
	}); err != nil {
		return nil, err
	}

	return listView(updated), nil
}

// Activate marks the configuration active and deactivates its siblings.
func (s *ConfigService) Activate(ctx context.Context, accountID uuid.UUID, id int64) (*ConfigurationView, error) {
	var updated *models.Configuration
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Accounts(tx).Lock(ctx, accountID); err != nil {
			return fmt.Errorf("error locking account: %w", err)
		}
		current, err := s.repomanager.Configurations(tx).GetByID(ctx, accountID, id)
		if err != nil {
			return err
		}
		if err := s.repomanager.Configurations(tx).DeactivateSiblings(ctx, accountID, id); err != nil {
			return fmt.Errorf("error deactivating configurations: %w", err)
		}
		current.IsActive = true
		var updateErr error
		updated, updateErr = s.repomanager.Configurations(tx).Update(ctx, current)
		return updateErr
	}); err != nil {
		return nil, err
	}

	return listView(updated), nil
}

// Get returns one configuration with the app password decrypted.
func (s *ConfigService) Get(ctx context.Context, accountID uuid.UUID, id int64) (*ConfigurationView, error) {
	cfg, err := s.repomanager.Configurations(s.db).GetByID(ctx, accountID, id)
	if err != nil {
		return nil, err
	}

	plaintext, err := s.cipher.Decrypt(cfg.AppPassword)
	if err != nil {
		return nil, common.ErrDecryptionFailed
	}

	view := listView(cfg)
	view.AppPassword = plaintext
	return view, nil
}

// List returns the account's configurations without decrypting passwords.
func (s *ConfigService) List(ctx context.Context, accountID uuid.UUID) ([]ConfigurationView, error) {
	cfgs, err := s.repomanager.Configurations(s.db).List(ctx, accountID)
	if err != nil {
		return nil, err
	}

	views := make([]ConfigurationView, 0, len(cfgs))
	for i := range cfgs {
		views = append(views, *listView(&cfgs[i]))
	}
	return views, nil
}

// Delete removes the configuration. Deleting the active configuration leaves
// the account with none active.
func (s *ConfigService) Delete(ctx context.Context, accountID uuid.UUID, id int64) error {
	return s.repomanager.Configurations(s.db).Delete(ctx, accountID, id)
}

func listView(cfg *models.Configuration) *ConfigurationView {
	return &ConfigurationView{
		ID:       cfg.ID,
		Email:    cfg.Email,
		IsActive: cfg.IsActive,
	}
}

func validateConfiguration(email, appPassword string) error {
	if appPassword == "" {
		return common.ErrValidation
	}
	return validateEmail(email)
}

func validateEmail(email string) error {
	if email == "" {
		return common.ErrValidation
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return common.ErrValidation
	}
	return nil
}
