// Package metadata stores small device-local settings: the persisted session
// token and the marker of the last successful migration.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeySessionToken       = "session_token"
	KeyLastMigrationOwner = "last_migration_owner"
	KeyLastMigrationAt    = "last_migration_at"
)

type Repository interface {
	// Get returns (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error

	// GetString returns "" when the key is absent.
	GetString(ctx context.Context, key string) (string, error)
	SetString(ctx context.Context, key, value string) error
}
