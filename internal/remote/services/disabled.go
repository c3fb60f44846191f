package services

import (
	"context"

	"github.com/dmitrijs2005/antiquary/internal/common"
	"github.com/dmitrijs2005/antiquary/internal/remote/models"
)

// Disabled stands in for the backend when none is configured. Every call
// fails with common.ErrBackendUnavailable.
type Disabled struct{}

func (Disabled) Ping(context.Context) error { return common.ErrBackendUnavailable }

func (Disabled) InsertItem(context.Context, string, models.ItemAttributes) (string, error) {
	return "", common.ErrBackendUnavailable
}

func (Disabled) InsertHistoryEntry(context.Context, string, *string, string, map[string]any) (string, error) {
	return "", common.ErrBackendUnavailable
}

func (Disabled) FindCollectionsByOwner(context.Context, string, string) ([]models.Collection, error) {
	return nil, common.ErrBackendUnavailable
}

func (Disabled) CollectionsContaining(context.Context, string, string) ([]models.Collection, error) {
	return nil, common.ErrBackendUnavailable
}

func (Disabled) UpsertSavedCollection(context.Context, string, []string) (*models.Collection, error) {
	return nil, common.ErrBackendUnavailable
}

func (Disabled) CreateCollection(context.Context, string, string) (*models.Collection, error) {
	return nil, common.ErrBackendUnavailable
}

func (Disabled) AddMemberToCollection(context.Context, string, string) error {
	return common.ErrBackendUnavailable
}

func (Disabled) MoveMember(context.Context, string, string, string) error {
	return common.ErrBackendUnavailable
}

func (Disabled) RemoveMember(context.Context, string, string) error {
	return common.ErrBackendUnavailable
}

func (Disabled) Items(context.Context, string, []string) ([]models.Item, error) {
	return nil, common.ErrBackendUnavailable
}

func (Disabled) History(context.Context, string, int) ([]models.HistoryEntry, error) {
	return nil, common.ErrBackendUnavailable
}
