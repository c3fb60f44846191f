package scans

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/antiquary/internal/client/models"
	"github.com/dmitrijs2005/antiquary/internal/common"
	"github.com/dmitrijs2005/antiquary/internal/dbx"
	"github.com/google/uuid"
)

// Store implements the local collection store over a SQLite database.
// It is meant for a single process; SQLite serializes its writers.
type Store struct {
	db  *sql.DB
	now func() time.Time
	ids func() string
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:  db,
		now: time.Now,
		ids: uuid.NewString,
	}
}

// AddScan records a new scan at the head of history and of the Saved
// collection, and returns its fresh local id.
func (s *Store) AddScan(ctx context.Context, snapshot, raw models.Payload, image models.ImageRef) (string, error) {
	e := models.ScanEntry{
		LocalID:   s.ids(),
		Image:     image,
		Snapshot:  snapshot,
		Raw:       raw,
		CreatedAt: s.now().UTC(),
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		if err := repo.Insert(ctx, e); err != nil {
			return err
		}
		return repo.AddSavedMember(ctx, e.LocalID)
	})
	if err != nil {
		return "", fmt.Errorf("add scan: %w", err)
	}
	return e.LocalID, nil
}

// ListHistory returns all local scans, newest first.
func (s *Store) ListHistory(ctx context.Context) ([]models.ScanEntry, error) {
	return NewSQLiteRepository(s.db).List(ctx)
}

// GetSavedCollection returns the device-local Saved collection.
func (s *Store) GetSavedCollection(ctx context.Context) (models.LocalSavedCollection, error) {
	ids, err := NewSQLiteRepository(s.db).SavedMembers(ctx)
	if err != nil {
		return models.LocalSavedCollection{}, err
	}
	return models.LocalSavedCollection{
		ID:        common.LocalSavedCollectionID,
		Name:      common.SavedCollectionName,
		MemberIDs: ids,
	}, nil
}

// RemoveScan drops the entry and its Saved membership. Unknown ids are a no-op.
func (s *Store) RemoveScan(ctx context.Context, localID string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, localID); err != nil {
			return err
		}
		return repo.RemoveSavedMember(ctx, localID)
	})
}

// ClearAll resets history and the Saved collection atomically.
func (s *Store) ClearAll(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		if err := repo.DeleteAll(ctx); err != nil {
			return err
		}
		return repo.ClearSaved(ctx)
	})
}
