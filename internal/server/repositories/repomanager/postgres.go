package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/mailvault/internal/dbx"
	"github.com/dmitrijs2005/mailvault/internal/server/migrations"
	"github.com/dmitrijs2005/mailvault/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/mailvault/internal/server/repositories/configurations"
	"github.com/dmitrijs2005/mailvault/internal/server/repositories/tokenblacklist"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct {
}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Configurations(db dbx.DBTX) configurations.Repository {
	return configurations.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) TokenBlacklist(db dbx.DBTX) tokenblacklist.Repository {
	return tokenblacklist.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}
