package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/antiquary/internal/dbx"
	"github.com/dmitrijs2005/antiquary/internal/remote/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, e models.HistoryEntry) (string, error) {
	raw := e.RawPayload
	if raw == nil {
		raw = map[string]any{}
	}
	rawJSON, err := json.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("encode raw payload: %w", err)
	}

	query := `
		INSERT INTO scan_history (owner_id, image_url, antique_id, raw_payload)
		VALUES ($1, $2, $3, $4::jsonb)
		RETURNING id
	`
	var id string
	if err := r.db.QueryRowContext(ctx, query, e.OwnerID, e.ImageURL, e.ItemID, string(rawJSON)).Scan(&id); err != nil {
		return "", fmt.Errorf("failed to insert history entry: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]models.HistoryEntry, error) {
	query := `SELECT id, owner_id, image_url, antique_id, raw_payload, created_at
		FROM scan_history WHERE owner_id = $1 ORDER BY created_at DESC`
	args := []any{ownerID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select history: %w", err)
	}
	defer rows.Close()

	result := []models.HistoryEntry{}
	for rows.Next() {
		var (
			e        models.HistoryEntry
			imageURL sql.NullString
			raw      []byte
		)
		if err := rows.Scan(&e.ID, &e.OwnerID, &imageURL, &e.ItemID, &raw, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		if imageURL.Valid {
			e.ImageURL = &imageURL.String
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &e.RawPayload); err != nil {
				return nil, fmt.Errorf("decode raw payload: %w", err)
			}
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	return result, nil
}
