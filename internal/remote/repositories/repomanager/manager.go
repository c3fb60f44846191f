package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/antiquary/internal/dbx"
	"github.com/dmitrijs2005/antiquary/internal/remote/repositories/collections"
	"github.com/dmitrijs2005/antiquary/internal/remote/repositories/history"
	"github.com/dmitrijs2005/antiquary/internal/remote/repositories/items"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code runs
// against the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Items(db dbx.DBTX) items.Repository
	History(db dbx.DBTX) history.Repository
	Collections(db dbx.DBTX) collections.Repository
}
