package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/antiquary/internal/common"
	rmodels "github.com/dmitrijs2005/antiquary/internal/remote/models"
	"github.com/dmitrijs2005/antiquary/internal/remote/repositories/collections"
)

// memRemote is an in-memory backend.
type memRemote struct {
	down    bool
	seq     int
	items   map[string]rmodels.Item
	history []rmodels.HistoryEntry
	cols    []*rmodels.Collection
}

func newMemRemote() *memRemote {
	return &memRemote{items: map[string]rmodels.Item{}}
}

func (m *memRemote) next(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memRemote) Ping(context.Context) error {
	if m.down {
		return common.ErrBackendUnavailable
	}
	return nil
}

func (m *memRemote) InsertItem(_ context.Context, owner string, attrs rmodels.ItemAttributes) (string, error) {
	id := m.next("item")
	m.items[id] = rmodels.Item{ID: id, OwnerID: owner, ItemAttributes: attrs}
	return id, nil
}

func (m *memRemote) InsertHistoryEntry(_ context.Context, owner string, imageURL *string, itemID string, raw map[string]any) (string, error) {
	id := m.next("hist")
	m.history = append(m.history, rmodels.HistoryEntry{ID: id, OwnerID: owner, ImageURL: imageURL, ItemID: itemID, RawPayload: raw, CreatedAt: time.Now()})
	return id, nil
}

func (m *memRemote) find(id string) *rmodels.Collection {
	for _, c := range m.cols {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (m *memRemote) FindCollectionsByOwner(_ context.Context, owner, excludeID string) ([]rmodels.Collection, error) {
	out := []rmodels.Collection{}
	for _, c := range m.cols {
		if c.OwnerID == owner && c.ID != excludeID {
			cp := *c
			cp.MemberIDs = append([]string(nil), c.MemberIDs...)
			out = append(out, cp)
		}
	}
	return out, nil
}

func (m *memRemote) CollectionsContaining(ctx context.Context, owner, itemID string) ([]rmodels.Collection, error) {
	all, _ := m.FindCollectionsByOwner(ctx, owner, "")
	out := []rmodels.Collection{}
	for _, c := range all {
		if c.Contains(itemID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memRemote) UpsertSavedCollection(_ context.Context, owner string, ids []string) (*rmodels.Collection, error) {
	for _, c := range m.cols {
		if c.OwnerID == owner && c.Name == common.SavedCollectionName {
			c.MemberIDs = collections.MergeMembers(c.MemberIDs, ids)
			return c, nil
		}
	}
	c := &rmodels.Collection{ID: m.next("col"), OwnerID: owner, Name: common.SavedCollectionName, MemberIDs: collections.MergeMembers(nil, ids)}
	m.cols = append(m.cols, c)
	return c, nil
}

func (m *memRemote) CreateCollection(_ context.Context, owner, name string) (*rmodels.Collection, error) {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, common.SavedCollectionName) {
		return nil, common.ErrReservedName
	}
	c := &rmodels.Collection{ID: m.next("col"), OwnerID: owner, Name: name, MemberIDs: []string{}}
	m.cols = append(m.cols, c)
	return c, nil
}

func (m *memRemote) AddMemberToCollection(_ context.Context, collectionID, itemID string) error {
	c := m.find(collectionID)
	if c == nil {
		return common.ErrNotFound
	}
	c.MemberIDs = collections.MergeMembers(c.MemberIDs, []string{itemID})
	return nil
}

func (m *memRemote) RemoveMember(_ context.Context, collectionID, itemID string) error {
	c := m.find(collectionID)
	if c == nil {
		return common.ErrNotFound
	}
	kept := c.MemberIDs[:0]
	for _, id := range c.MemberIDs {
		if id != itemID {
			kept = append(kept, id)
		}
	}
	c.MemberIDs = kept
	return nil
}

func (m *memRemote) MoveMember(ctx context.Context, fromID, toID, itemID string) error {
	if err := m.AddMemberToCollection(ctx, toID, itemID); err != nil {
		return err
	}
	return m.RemoveMember(ctx, fromID, itemID)
}

func (m *memRemote) Items(_ context.Context, owner string, ids []string) ([]rmodels.Item, error) {
	out := []rmodels.Item{}
	for _, id := range ids {
		if it, ok := m.items[id]; ok && it.OwnerID == owner {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *memRemote) History(_ context.Context, owner string, limit int) ([]rmodels.HistoryEntry, error) {
	out := []rmodels.HistoryEntry{}
	for i := len(m.history) - 1; i >= 0 && len(out) < limit; i-- {
		if m.history[i].OwnerID == owner {
			out = append(out, m.history[i])
		}
	}
	return out, nil
}
