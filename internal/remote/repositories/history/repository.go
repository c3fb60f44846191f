// Package history persists scan history entries in the remote Postgres database.
package history

import (
	"context"

	"github.com/dmitrijs2005/antiquary/internal/remote/models"
)

type Repository interface {
	// Insert stores e and returns the new id. ID and CreatedAt of e are ignored.
	Insert(ctx context.Context, e models.HistoryEntry) (string, error)
	// ListByOwner returns the newest entries first, at most limit (0 = no limit).
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]models.HistoryEntry, error)
}
