package configurations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mailvault/internal/common"
	"github.com/dmitrijs2005/mailvault/internal/dbx"
	"github.com/dmitrijs2005/mailvault/internal/server/models"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, cfg *models.Configuration) (*models.Configuration, error) {

	query :=
		`INSERT INTO configurations (account_id, email, app_password, is_active)
         VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		cfg.AccountID, cfg.Email, cfg.AppPassword, cfg.IsActive).
		Scan(&cfg.ID, &cfg.CreatedAt, &cfg.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return cfg, nil
}

func (r *PostgresRepository) Update(ctx context.Context, cfg *models.Configuration) (*models.Configuration, error) {

	query :=
		`UPDATE configurations
		 SET email = $1, app_password = $2, is_active = $3, updated_at = now()
		 WHERE id = $4 AND account_id = $5
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		cfg.Email, cfg.AppPassword, cfg.IsActive, cfg.ID, cfg.AccountID).
		Scan(&cfg.CreatedAt, &cfg.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return cfg, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, accountID uuid.UUID, id int64) (*models.Configuration, error) {
	query :=
		`SELECT id, account_id, email, app_password, is_active, created_at, updated_at
		 FROM configurations
		 WHERE id = $1 AND account_id = $2
		 `

	cfg := &models.Configuration{}
	err := r.db.QueryRowContext(ctx, query, id, accountID).
		Scan(&cfg.ID, &cfg.AccountID, &cfg.Email, &cfg.AppPassword, &cfg.IsActive, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return cfg, nil
}

func (r *PostgresRepository) List(ctx context.Context, accountID uuid.UUID) ([]models.Configuration, error) {
	query :=
		`SELECT id, account_id, email, app_password, is_active, created_at, updated_at
		 FROM configurations
		 WHERE account_id = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Configuration
	for rows.Next() {
		var cfg models.Configuration
		if err := rows.Scan(&cfg.ID, &cfg.AccountID, &cfg.Email, &cfg.AppPassword,
			&cfg.IsActive, &cfg.CreatedAt, &cfg.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, accountID uuid.UUID, id int64) error {
	query := `DELETE FROM configurations WHERE id = $1 AND account_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, accountID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}

	return nil
}

// DeactivateSiblings clears is_active on all configurations of accountID
// except exceptID. Pass exceptID=0 when the target row does not exist yet.
func (r *PostgresRepository) DeactivateSiblings(ctx context.Context, accountID uuid.UUID, exceptID int64) error {
	query :=
		`UPDATE configurations
		 SET is_active = FALSE, updated_at = now()
		 WHERE account_id = $1 AND id <> $2 AND is_active
		 `

	if _, err := r.db.ExecContext(ctx, query, accountID, exceptID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
