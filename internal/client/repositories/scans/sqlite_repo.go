package scans

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/antiquary/internal/client/models"
	"github.com/dmitrijs2005/antiquary/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func encodePayload(p models.Payload) (string, error) {
	if p == nil {
		return "{}", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodePayload(s string) (models.Payload, error) {
	p := models.Payload{}
	if s == "" {
		return p, nil
	}
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, e models.ScanEntry) error {
	snapshot, err := encodePayload(e.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	raw, err := encodePayload(e.Raw)
	if err != nil {
		return fmt.Errorf("failed to encode raw payload: %w", err)
	}

	query := `INSERT INTO scans (local_id, image_kind, image_value, snapshot, raw, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query, e.LocalID, string(e.Image.Kind), e.Image.Value, snapshot, raw, e.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert scan: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.ScanEntry, error) {
	query := `SELECT local_id, image_kind, image_value, snapshot, raw, created_at FROM scans ORDER BY seq DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select scans: %w", err)
	}
	defer rows.Close()

	result := []models.ScanEntry{}
	for rows.Next() {
		var (
			e               models.ScanEntry
			kind, snap, raw string
			createdAt       int64
		)
		if err := rows.Scan(&e.LocalID, &kind, &e.Image.Value, &snap, &raw, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		e.Image.Kind = models.ImageKind(kind)
		if e.Snapshot, err = decodePayload(snap); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot of %s: %w", e.LocalID, err)
		}
		if e.Raw, err = decodePayload(raw); err != nil {
			return nil, fmt.Errorf("failed to decode raw payload of %s: %w", e.LocalID, err)
		}
		e.CreatedAt = time.Unix(0, createdAt).UTC()
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scans: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, localID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM scans WHERE local_id = ?`, localID); err != nil {
		return fmt.Errorf("failed to delete scan: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM scans`); err != nil {
		return fmt.Errorf("failed to clear scans: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) AddSavedMember(ctx context.Context, localID string) error {
	query := `INSERT INTO saved_members (local_id, position)
		VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM saved_members))
		ON CONFLICT(local_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, localID); err != nil {
		return fmt.Errorf("failed to add saved member: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SavedMembers(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT local_id FROM saved_members ORDER BY position DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to select saved members: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan saved member: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate saved members: %w", err)
	}
	return ids, nil
}

func (r *SQLiteRepository) RemoveSavedMember(ctx context.Context, localID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM saved_members WHERE local_id = ?`, localID); err != nil {
		return fmt.Errorf("failed to remove saved member: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ClearSaved(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM saved_members`); err != nil {
		return fmt.Errorf("failed to clear saved members: %w", err)
	}
	return nil
}
