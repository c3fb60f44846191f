// Package collections persists user collections in the remote Postgres
// database. Members are stored as a jsonb array of item ids.
//
// The Saved collection is never created through Create: callers upsert it
// with EnsureSaved, LockSaved and SetMembers inside one transaction. A partial
// unique index keeps it unique per owner.
package collections

import (
	"context"
	"time"

	"github.com/dmitrijs2005/antiquary/internal/remote/models"
)

type Repository interface {
	Create(ctx context.Context, ownerID, name string, memberIDs []string) (*models.Collection, error)
	// ListByOwner returns the owner's collections, oldest first, skipping excludeID when set.
	ListByOwner(ctx context.Context, ownerID, excludeID string) ([]models.Collection, error)
	// ListContaining returns the owner's collections that have itemID as a member.
	ListContaining(ctx context.Context, ownerID, itemID string) ([]models.Collection, error)

	// EnsureSaved creates an empty Saved collection for ownerID unless one exists.
	EnsureSaved(ctx context.Context, ownerID string) error
	// LockSaved reads the owner's Saved collection with a row lock.
	LockSaved(ctx context.Context, ownerID string) (*models.Collection, error)
	// SetMembers replaces the member list and returns the new updated_at.
	SetMembers(ctx context.Context, collectionID string, memberIDs []string) (time.Time, error)

	// AddMember appends itemID unless present. It returns the collection owner.
	AddMember(ctx context.Context, collectionID, itemID string) (string, error)
	// RemoveMember drops itemID if present. It returns the collection owner.
	RemoveMember(ctx context.Context, collectionID, itemID string) (string, error)
}
