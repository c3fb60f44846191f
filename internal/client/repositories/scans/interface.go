package scans

import (
	"context"

	"github.com/dmitrijs2005/antiquary/internal/client/models"
)

// Repository describes row-level access to the scans and saved_members tables.
type Repository interface {
	// Insert stores a new scan entry. LocalID must be unique.
	Insert(ctx context.Context, e models.ScanEntry) error

	// List returns all entries, newest first.
	List(ctx context.Context) ([]models.ScanEntry, error)

	// Delete removes an entry by local id. Absent ids are ignored.
	Delete(ctx context.Context, localID string) error

	// DeleteAll removes every entry.
	DeleteAll(ctx context.Context) error

	// AddSavedMember puts localID at the head of the Saved collection.
	// Adding an id that is already a member is a no-op.
	AddSavedMember(ctx context.Context, localID string) error

	// SavedMembers returns Saved collection members, newest first.
	SavedMembers(ctx context.Context) ([]string, error)

	// RemoveSavedMember drops localID from the Saved collection if present.
	RemoveSavedMember(ctx context.Context, localID string) error

	// ClearSaved empties the Saved collection.
	ClearSaved(ctx context.Context) error
}
