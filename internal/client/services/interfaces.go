// Package services holds the client's application logic: the reconciliation
// engine that moves pre-sign-in scans to the backend, the session service,
// the scan capture flow and the item default filling.
package services

import (
	"context"

	"github.com/dmitrijs2005/antiquary/internal/client/models"
	rmodels "github.com/dmitrijs2005/antiquary/internal/remote/models"
)

// LocalStore is the on-device collection store (scans.Store).
type LocalStore interface {
	AddScan(ctx context.Context, snapshot, raw models.Payload, image models.ImageRef) (string, error)
	ListHistory(ctx context.Context) ([]models.ScanEntry, error)
	GetSavedCollection(ctx context.Context) (models.LocalSavedCollection, error)
	RemoveScan(ctx context.Context, localID string) error
	ClearAll(ctx context.Context) error
}

// ImageMaterializer turns an image reference into a durable URL ("" = none).
type ImageMaterializer interface {
	Materialize(ctx context.Context, ownerID string, ref models.ImageRef) (string, error)
}

// RemoteRepository is the backend (remote/services.CollectionService, or
// remote/services.Disabled when no backend is configured).
type RemoteRepository interface {
	Ping(ctx context.Context) error
	InsertItem(ctx context.Context, ownerID string, attrs rmodels.ItemAttributes) (string, error)
	InsertHistoryEntry(ctx context.Context, ownerID string, imageURL *string, itemID string, raw map[string]any) (string, error)
	FindCollectionsByOwner(ctx context.Context, ownerID, excludeID string) ([]rmodels.Collection, error)
	CollectionsContaining(ctx context.Context, ownerID, itemID string) ([]rmodels.Collection, error)
	UpsertSavedCollection(ctx context.Context, ownerID string, ids []string) (*rmodels.Collection, error)
	CreateCollection(ctx context.Context, ownerID, name string) (*rmodels.Collection, error)
	AddMemberToCollection(ctx context.Context, collectionID, itemID string) error
	MoveMember(ctx context.Context, fromID, toID, itemID string) error
	RemoveMember(ctx context.Context, collectionID, itemID string) error
	Items(ctx context.Context, ownerID string, ids []string) ([]rmodels.Item, error)
	History(ctx context.Context, ownerID string, limit int) ([]rmodels.HistoryEntry, error)
}

// OwnerSource reports the signed-in user, if any.
type OwnerSource interface {
	CurrentOwner() (string, bool)
}
