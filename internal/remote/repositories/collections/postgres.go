package collections

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/antiquary/internal/common"
	"github.com/dmitrijs2005/antiquary/internal/dbx"
	"github.com/dmitrijs2005/antiquary/internal/remote/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `id, owner_id, name, antiques_ids, created_at, updated_at`

func encodeIDs(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCollection(row rowScanner) (*models.Collection, error) {
	var (
		c   models.Collection
		ids []byte
	)
	if err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &ids, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.MemberIDs = []string{}
	if len(ids) > 0 {
		if err := json.Unmarshal(ids, &c.MemberIDs); err != nil {
			return nil, fmt.Errorf("decode antiques_ids of %s: %w", c.ID, err)
		}
	}
	return &c, nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]models.Collection, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select collections: %w", err)
	}
	defer rows.Close()

	result := []models.Collection{}
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate collections: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Create(ctx context.Context, ownerID, name string, memberIDs []string) (*models.Collection, error) {
	ids, err := encodeIDs(memberIDs)
	if err != nil {
		return nil, fmt.Errorf("encode members: %w", err)
	}
	query := `INSERT INTO collections (owner_id, name, antiques_ids) VALUES ($1, $2, $3::jsonb)
		RETURNING ` + selectColumns
	c, err := scanCollection(r.db.QueryRowContext(ctx, query, ownerID, name, ids))
	if err != nil {
		return nil, fmt.Errorf("failed to insert collection: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID, excludeID string) ([]models.Collection, error) {
	query := `SELECT ` + selectColumns + ` FROM collections
		WHERE owner_id = $1 AND ($2 = '' OR id::text <> $2)
		ORDER BY created_at, id`
	return r.list(ctx, query, ownerID, excludeID)
}

func (r *PostgresRepository) ListContaining(ctx context.Context, ownerID, itemID string) ([]models.Collection, error) {
	query := `SELECT ` + selectColumns + ` FROM collections
		WHERE owner_id = $1 AND jsonb_exists(antiques_ids, $2)
		ORDER BY created_at, id`
	return r.list(ctx, query, ownerID, itemID)
}

func (r *PostgresRepository) EnsureSaved(ctx context.Context, ownerID string) error {
	query := `INSERT INTO collections (owner_id, name, antiques_ids) VALUES ($1, $2, '[]'::jsonb)
		ON CONFLICT (owner_id) WHERE name = 'Saved' DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, ownerID, common.SavedCollectionName); err != nil {
		return fmt.Errorf("failed to ensure saved collection: %w", err)
	}
	return nil
}

func (r *PostgresRepository) LockSaved(ctx context.Context, ownerID string) (*models.Collection, error) {
	query := `SELECT ` + selectColumns + ` FROM collections
		WHERE owner_id = $1 AND name = $2
		FOR UPDATE`
	c, err := scanCollection(r.db.QueryRowContext(ctx, query, ownerID, common.SavedCollectionName))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock saved collection: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) SetMembers(ctx context.Context, collectionID string, memberIDs []string) (time.Time, error) {
	ids, err := encodeIDs(memberIDs)
	if err != nil {
		return time.Time{}, fmt.Errorf("encode members: %w", err)
	}
	query := `UPDATE collections SET antiques_ids = $2::jsonb, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	var updated time.Time
	err = r.db.QueryRowContext(ctx, query, collectionID, ids).Scan(&updated)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, common.ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to update members: %w", err)
	}
	return updated, nil
}

func (r *PostgresRepository) AddMember(ctx context.Context, collectionID, itemID string) (string, error) {
	query := `UPDATE collections
		SET antiques_ids = CASE
				WHEN jsonb_exists(antiques_ids, $2) THEN antiques_ids
				ELSE antiques_ids || to_jsonb($2::text)
			END,
			updated_at = now()
		WHERE id = $1
		RETURNING owner_id`
	return r.mutate(ctx, "add member", query, collectionID, itemID)
}

func (r *PostgresRepository) RemoveMember(ctx context.Context, collectionID, itemID string) (string, error) {
	query := `UPDATE collections
		SET antiques_ids = antiques_ids - $2::text, updated_at = now()
		WHERE id = $1
		RETURNING owner_id`
	return r.mutate(ctx, "remove member", query, collectionID, itemID)
}

func (r *PostgresRepository) mutate(ctx context.Context, op, query, collectionID, itemID string) (string, error) {
	var owner string
	err := r.db.QueryRowContext(ctx, query, collectionID, itemID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", common.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to %s: %w", op, err)
	}
	return owner, nil
}
