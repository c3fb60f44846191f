// Package items persists recognized antiques in the remote Postgres database.
package items

import (
	"context"

	"github.com/dmitrijs2005/antiquary/internal/remote/models"
)

type Repository interface {
	// Insert creates an item owned by ownerID and returns its id.
	Insert(ctx context.Context, ownerID string, attrs models.ItemAttributes) (string, error)
	// GetByID returns common.ErrNotFound for unknown ids.
	GetByID(ctx context.Context, id string) (*models.Item, error)
	// ListByIDs returns the owner's items among ids, in the order of ids.
	ListByIDs(ctx context.Context, ownerID string, ids []string) ([]models.Item, error)
}
