package items

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/antiquary/internal/common"
	"github.com/dmitrijs2005/antiquary/internal/dbx"
	"github.com/dmitrijs2005/antiquary/internal/remote/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `id, owner_id, name, description, image_url, origin, period_start, period_end,
	condition, condition_notes, categories, specification, provenance, acquisition_source,
	price_min, price_max, currency, created_at, updated_at`

func (r *PostgresRepository) Insert(ctx context.Context, ownerID string, a models.ItemAttributes) (string, error) {
	categories := a.Categories
	if categories == nil {
		categories = []string{}
	}
	cats, err := json.Marshal(categories)
	if err != nil {
		return "", fmt.Errorf("encode categories: %w", err)
	}
	spec := a.Specification
	if spec == nil {
		spec = map[string]any{}
	}
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return "", fmt.Errorf("encode specification: %w", err)
	}

	query := `
		INSERT INTO antiques (owner_id, name, description, image_url, origin, period_start, period_end,
			condition, condition_notes, categories, specification, provenance, acquisition_source,
			price_min, price_max, currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb, $11::jsonb, $12, $13, $14, $15, $16)
		RETURNING id
	`
	var id string
	err = r.db.QueryRowContext(ctx, query,
		ownerID, a.Name, a.Description, a.ImageURL, a.Origin, a.PeriodStart, a.PeriodEnd,
		a.Condition, a.ConditionNotes, string(cats), string(specJSON), a.Provenance, a.AcquisitionSource,
		a.PriceMin, a.PriceMax, a.Currency,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert item: %w", err)
	}
	return id, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	var (
		it         models.Item
		imageURL   sql.NullString
		cats, spec []byte
	)
	err := row.Scan(&it.ID, &it.OwnerID, &it.Name, &it.Description, &imageURL, &it.Origin,
		&it.PeriodStart, &it.PeriodEnd, &it.Condition, &it.ConditionNotes, &cats, &spec,
		&it.Provenance, &it.AcquisitionSource, &it.PriceMin, &it.PriceMax, &it.Currency,
		&it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if imageURL.Valid {
		it.ImageURL = &imageURL.String
	}
	if len(cats) > 0 {
		if err := json.Unmarshal(cats, &it.Categories); err != nil {
			return nil, fmt.Errorf("decode categories: %w", err)
		}
	}
	if len(spec) > 0 {
		if err := json.Unmarshal(spec, &it.Specification); err != nil {
			return nil, fmt.Errorf("decode specification: %w", err)
		}
	}
	return &it, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Item, error) {
	query := `SELECT ` + selectColumns + ` FROM antiques WHERE id = $1`
	it, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select item: %w", err)
	}
	return it, nil
}

func (r *PostgresRepository) ListByIDs(ctx context.Context, ownerID string, ids []string) ([]models.Item, error) {
	if len(ids) == 0 {
		return []models.Item{}, nil
	}
	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("encode ids: %w", err)
	}

	query := `SELECT ` + selectColumns + ` FROM antiques
		WHERE owner_id = $1 AND id::text IN (SELECT jsonb_array_elements_text($2::jsonb))`
	rows, err := r.db.QueryContext(ctx, query, ownerID, string(idsJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to select items: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]models.Item, len(ids))
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		byID[it.ID] = *it
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	result := make([]models.Item, 0, len(byID))
	for _, id := range ids {
		if it, ok := byID[id]; ok {
			result = append(result, it)
			delete(byID, id)
		}
	}
	return result, nil
}
