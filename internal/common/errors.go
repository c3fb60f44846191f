// Package common defines shared constants and sentinel errors used across
// the client and remote layers of antiquary. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Precondition errors. Both make the reconciliation engine a no-op.
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrImageMaterialization is non-fatal: the image is dropped, the record is still written.
	ErrImageMaterialization = errors.New("image materialization failed")

	// ErrBackendWrite wraps every rejected remote write (item, history, collection).
	// Callers must assume nothing was written.
	ErrBackendWrite = errors.New("backend write rejected")

	// Validation errors.
	ErrReservedName = errors.New("collection name is reserved")
	ErrEmptyName    = errors.New("collection name is empty")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
