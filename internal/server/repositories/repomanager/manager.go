// Package repomanager hands out repositories bound to a DB handle. Because
// repositories accept dbx.DBTX, the same manager serves both pool-level
// calls (*sql.DB) and transactional calls (*sql.Tx).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/mailvault/internal/dbx"
	"github.com/dmitrijs2005/mailvault/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/mailvault/internal/server/repositories/configurations"
	"github.com/dmitrijs2005/mailvault/internal/server/repositories/tokenblacklist"
)

type RepositoryManager interface {
	Accounts(db dbx.DBTX) accounts.Repository
	Configurations(db dbx.DBTX) configurations.Repository
	TokenBlacklist(db dbx.DBTX) tokenblacklist.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
