package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dmitrijs2005/antiquary/internal/client/localdb"
	"github.com/dmitrijs2005/antiquary/internal/client/models"
	"github.com/dmitrijs2005/antiquary/internal/client/repositories/scans"
	"github.com/dmitrijs2005/antiquary/internal/common"
	rmodels "github.com/dmitrijs2005/antiquary/internal/remote/models"
	"github.com/dmitrijs2005/antiquary/internal/remote/repositories/collections"
	"github.com/stretchr/testify/require"
)

func newLocal(t *testing.T) (*scans.Store, *localdb.Repositories) {
	t.Helper()
	repos, err := localdb.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })
	return scans.NewStore(repos.DB), repos
}

type historyCall struct {
	ownerID  string
	imageURL *string
	itemID   string
	raw      map[string]any
}

// fakeRemote is an in-memory backend. Item ids are "item-<name>".
type fakeRemote struct {
	mu sync.Mutex

	pingErr    error
	itemErr    func(call int, attrs rmodels.ItemAttributes) error
	historyErr error
	upsertErr  error
	onInsert   func()

	itemCalls int
	items     []rmodels.ItemAttributes
	itemIDs   []string
	history   []historyCall
	saved     map[string][]string
	upserts   int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{saved: map[string][]string{}}
}

func (f *fakeRemote) Ping(context.Context) error { return f.pingErr }

func (f *fakeRemote) InsertItem(ctx context.Context, ownerID string, attrs rmodels.ItemAttributes) (string, error) {
	if f.onInsert != nil {
		f.onInsert()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	call := f.itemCalls
	f.itemCalls++
	if f.itemErr != nil {
		if err := f.itemErr(call, attrs); err != nil {
			return "", fmt.Errorf("%w: %w", common.ErrBackendWrite, err)
		}
	}
	id := "item-" + attrs.Name
	f.items = append(f.items, attrs)
	f.itemIDs = append(f.itemIDs, id)
	return id, nil
}

func (f *fakeRemote) InsertHistoryEntry(ctx context.Context, ownerID string, imageURL *string, itemID string, raw map[string]any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.historyErr != nil {
		return "", f.historyErr
	}
	f.history = append(f.history, historyCall{ownerID: ownerID, imageURL: imageURL, itemID: itemID, raw: raw})
	return fmt.Sprintf("h-%d", len(f.history)), nil
}

func (f *fakeRemote) FindCollectionsByOwner(ctx context.Context, ownerID, excludeID string) ([]rmodels.Collection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []rmodels.Collection{}
	if ids, ok := f.saved[ownerID]; ok && excludeID != "saved-"+ownerID {
		out = append(out, rmodels.Collection{ID: "saved-" + ownerID, OwnerID: ownerID, Name: common.SavedCollectionName, MemberIDs: append([]string(nil), ids...)})
	}
	return out, nil
}

func (f *fakeRemote) CollectionsContaining(ctx context.Context, ownerID, itemID string) ([]rmodels.Collection, error) {
	all, _ := f.FindCollectionsByOwner(ctx, ownerID, "")
	out := []rmodels.Collection{}
	for _, c := range all {
		if c.Contains(itemID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRemote) UpsertSavedCollection(ctx context.Context, ownerID string, ids []string) (*rmodels.Collection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	f.upserts++
	f.saved[ownerID] = collections.MergeMembers(f.saved[ownerID], ids)
	return &rmodels.Collection{ID: "saved-" + ownerID, OwnerID: ownerID, Name: common.SavedCollectionName, MemberIDs: f.saved[ownerID]}, nil
}

func (f *fakeRemote) CreateCollection(context.Context, string, string) (*rmodels.Collection, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeRemote) AddMemberToCollection(context.Context, string, string) error { return nil }
func (f *fakeRemote) MoveMember(context.Context, string, string, string) error    { return nil }
func (f *fakeRemote) RemoveMember(context.Context, string, string) error          { return nil }
func (f *fakeRemote) Items(context.Context, string, []string) ([]rmodels.Item, error) {
	return nil, nil
}
func (f *fakeRemote) History(context.Context, string, int) ([]rmodels.HistoryEntry, error) {
	return nil, nil
}

func (f *fakeRemote) savedOf(owner string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.saved[owner]...)
}

// fakeImages returns "https://cdn.test/<value>" or fails.
type fakeImages struct {
	err   error
	calls []models.ImageRef
}

func (f *fakeImages) Materialize(ctx context.Context, ownerID string, ref models.ImageRef) (string, error) {
	f.calls = append(f.calls, ref)
	if ref.IsZero() {
		return "", nil
	}
	if ref.Kind == models.ImageRemote {
		return ref.Value, nil
	}
	if f.err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrImageMaterialization, f.err)
	}
	return "https://cdn.test/" + ownerID + "/up.jpg", nil
}

func addScans(t *testing.T, s *scans.Store, names ...string) []string {
	t.Helper()
	ids := make([]string, 0, len(names))
	for _, n := range names {
		id, err := s.AddScan(context.Background(), models.Payload{"name": n}, models.Payload{"raw_name": n}, models.ImageRef{})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

type localSnapshot struct {
	history []models.ScanEntry
	saved   models.LocalSavedCollection
}

func snapshotLocal(t *testing.T, s *scans.Store) localSnapshot {
	t.Helper()
	h, err := s.ListHistory(context.Background())
	require.NoError(t, err)
	sc, err := s.GetSavedCollection(context.Background())
	require.NoError(t, err)
	return localSnapshot{history: h, saved: sc}
}
