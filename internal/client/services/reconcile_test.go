package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/jpeg"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/antiquary/internal/client/images"
	"github.com/dmitrijs2005/antiquary/internal/client/models"
	"github.com/dmitrijs2005/antiquary/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/antiquary/internal/common"
	rmodels "github.com/dmitrijs2005/antiquary/internal/remote/models"
	rservices "github.com/dmitrijs2005/antiquary/internal/remote/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = "user-1"

func TestMigrate_AtMostOneClear(t *testing.T) {
	local, repos := newLocal(t)
	remote := newFakeRemote()
	r := NewReconciler(local, remote, &fakeImages{}, repos.Metadata, nil)
	ctx := context.Background()

	addScans(t, local, "A", "B", "C")

	n, err := r.Migrate(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for i := 0; i < 3; i++ {
		n, err = r.Migrate(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	}

	assert.Len(t, remote.items, 3)
	assert.Equal(t, 1, remote.upserts)
	after := snapshotLocal(t, local)
	assert.Empty(t, after.history)
	assert.Empty(t, after.saved.MemberIDs)

	who, err := repos.Metadata.GetString(ctx, metadata.KeyLastMigrationOwner)
	require.NoError(t, err)
	assert.Equal(t, owner, who)
	at, err := repos.Metadata.GetString(ctx, metadata.KeyLastMigrationAt)
	require.NoError(t, err)
	_, err = time.Parse(time.RFC3339, at)
	assert.NoError(t, err)
}

func TestMigrate_BackendUnavailableLeavesLocalUntouched(t *testing.T) {
	tests := []struct {
		name   string
		remote RemoteRepository
	}{
		{"ping fails", &fakeRemote{pingErr: errors.New("dial tcp: connection refused")}},
		{"not configured", rservices.Disabled{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			local, _ := newLocal(t)
			addScans(t, local, "A", "B")
			before := snapshotLocal(t, local)

			n, err := NewReconciler(local, tt.remote, &fakeImages{}, nil, nil).Migrate(context.Background(), owner)
			assert.ErrorIs(t, err, common.ErrBackendUnavailable)
			assert.Equal(t, 0, n)
			assert.Equal(t, before, snapshotLocal(t, local))
		})
	}
}

func TestMigrate_NotAuthenticated(t *testing.T) {
	local, _ := newLocal(t)
	addScans(t, local, "A")
	remote := newFakeRemote()

	n, err := NewReconciler(local, remote, &fakeImages{}, nil, nil).Migrate(context.Background(), "")
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)
	assert.Equal(t, 0, n)
	assert.Empty(t, remote.items)
	assert.Len(t, snapshotLocal(t, local).history, 1)
}

func TestMigrate_PartialFailureIsolation(t *testing.T) {
	local, _ := newLocal(t)
	addScans(t, local, "A", "B", "C")
	remote := newFakeRemote()
	remote.itemErr = func(call int, _ rmodels.ItemAttributes) error {
		if call == 1 {
			return errors.New("row rejected")
		}
		return nil
	}

	n, err := NewReconciler(local, remote, &fakeImages{}, nil, nil).Migrate(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// history is newest-first: C, B, A; B is the second call and fails
	assert.Equal(t, []string{"item-C", "item-A"}, remote.savedOf(owner))
	assert.Len(t, remote.history, 2, "no history entry for the failed item")
	assert.Empty(t, snapshotLocal(t, local).history)
}

func TestMigrate_ZeroSuccessPreservesLocalState(t *testing.T) {
	local, _ := newLocal(t)
	addScans(t, local, "A", "B")
	before := snapshotLocal(t, local)

	remote := newFakeRemote()
	remote.itemErr = func(int, rmodels.ItemAttributes) error { return errors.New("quota exceeded") }

	n, err := NewReconciler(local, remote, &fakeImages{}, nil, nil).Migrate(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, remote.upserts)
	assert.Equal(t, before, snapshotLocal(t, local))
}

func TestMigrate_NonDurableImageNeverPersisted(t *testing.T) {
	local, _ := newLocal(t)
	ctx := context.Background()

	inline := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("\x89PNG\r\n\x1a\n................"))
	_, err := local.AddScan(ctx, models.Payload{"name": "Inline", "image_path": "/var/mobile/1.jpg"}, nil, models.InlineImage(inline))
	require.NoError(t, err)

	failing := images.NewMaterializer(uploaderFunc(func(context.Context, string, []byte, string) (string, error) {
		return "", errors.New("bucket offline")
	}))
	remote := newFakeRemote()

	n, err := NewReconciler(local, remote, failing, nil, nil).Migrate(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.Len(t, remote.items, 1)
	assert.Nil(t, remote.items[0].ImageURL)
	require.Len(t, remote.history, 1)
	assert.Nil(t, remote.history[0].imageURL)
}

type uploaderFunc func(ctx context.Context, key string, body []byte, contentType string) (string, error)

func (f uploaderFunc) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	return f(ctx, key, body, contentType)
}

func TestMigrate_OrderPreservedAfterExistingMembers(t *testing.T) {
	local, _ := newLocal(t)
	addScans(t, local, "A", "B", "C")
	remote := newFakeRemote()
	remote.saved[owner] = []string{"old-1", "item-B"}

	n, err := NewReconciler(local, remote, &fakeImages{}, nil, nil).Migrate(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"old-1", "item-B", "item-C", "item-A"}, remote.savedOf(owner))
}

func TestMigrate_EmptyHistoryClearsAndReturnsZero(t *testing.T) {
	local, _ := newLocal(t)
	remote := newFakeRemote()

	n, err := NewReconciler(local, remote, &fakeImages{}, nil, nil).Migrate(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, remote.upserts)
	assert.Empty(t, snapshotLocal(t, local).saved.MemberIDs)
}

func TestMigrate_UpsertFailureKeepsLocalState(t *testing.T) {
	local, _ := newLocal(t)
	addScans(t, local, "A", "B")
	before := snapshotLocal(t, local)
	remote := newFakeRemote()
	remote.upsertErr = errors.New("503")

	n, err := NewReconciler(local, remote, &fakeImages{}, nil, nil).Migrate(context.Background(), owner)
	assert.ErrorIs(t, err, common.ErrBackendWrite)
	assert.Equal(t, 0, n)
	assert.Len(t, remote.items, 2, "items stay orphaned until a retry")
	assert.Equal(t, before, snapshotLocal(t, local))
}

func TestMigrate_HistoryFailureStillCounts(t *testing.T) {
	local, _ := newLocal(t)
	addScans(t, local, "A")
	remote := newFakeRemote()
	remote.historyErr = errors.New("history table locked")

	n, err := NewReconciler(local, remote, &fakeImages{}, nil, nil).Migrate(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"item-A"}, remote.savedOf(owner))
	assert.Empty(t, snapshotLocal(t, local).history)
}

func TestMigrate_ConcurrentCallsRunOnce(t *testing.T) {
	local, _ := newLocal(t)
	addScans(t, local, "A", "B", "C")
	remote := newFakeRemote()

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	remote.onInsert = func() {
		once.Do(func() {
			close(entered)
			<-release
		})
	}

	r := NewReconciler(local, remote, &fakeImages{}, nil, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]int, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = r.Migrate(ctx, owner)
	}()
	<-entered

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], _ = r.Migrate(ctx, owner)
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, 3, results[0])
	assert.Contains(t, []int{0, 3}, results[1])
	assert.Len(t, remote.items, 3)
	assert.Equal(t, 1, remote.upserts)
}

func TestMigrate_JoiningCallerGetsInFlightOwnersRun(t *testing.T) {
	local, _ := newLocal(t)
	addScans(t, local, "A", "B")
	remote := newFakeRemote()

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	remote.onInsert = func() {
		once.Do(func() {
			close(entered)
			<-release
		})
	}

	r := NewReconciler(local, remote, &fakeImages{}, nil, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = r.Migrate(ctx, owner)
	}()
	<-entered

	var joined int
	wg.Add(1)
	go func() {
		defer wg.Done()
		joined, _ = r.Migrate(ctx, "user-2")
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Contains(t, []int{0, 2}, joined)
	assert.Len(t, remote.savedOf(owner), 2)
	assert.Empty(t, remote.savedOf("user-2"))
	for _, h := range remote.history {
		assert.Equal(t, owner, h.ownerID)
	}
}

func TestMigrate_UsesMaterializedImage(t *testing.T) {
	local, _ := newLocal(t)
	ctx := context.Background()
	_, err := local.AddScan(ctx, models.Payload{"name": "Photo"}, nil, models.FileImage("/tmp/p.jpg"))
	require.NoError(t, err)
	_, err = local.AddScan(ctx, models.Payload{"name": "Linked", "image_url": "https://img.example.com/l.jpg"}, nil, models.FileImage("/tmp/l.jpg"))
	require.NoError(t, err)

	imgs := &fakeImages{}
	remote := newFakeRemote()
	n, err := NewReconciler(local, remote, imgs, nil, nil).Migrate(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Len(t, remote.items, 2)
	require.NotNil(t, remote.items[0].ImageURL)
	assert.Equal(t, "https://img.example.com/l.jpg", *remote.items[0].ImageURL, "durable URL in snapshot wins")
	require.NotNil(t, remote.items[1].ImageURL)
	assert.Equal(t, "https://cdn.test/user-1/up.jpg", *remote.items[1].ImageURL)
	assert.Equal(t, *remote.items[1].ImageURL, *remote.history[1].imageURL)
}

func jpegBase64(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8)), nil))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestBestImage(t *testing.T) {
	longB64 := base64.StdEncoding.EncodeToString(make([]byte, 96))
	jpegB64 := jpegBase64(t)
	require.True(t, strings.HasPrefix(jpegB64, "/9j/"))
	tests := []struct {
		name string
		e    models.ScanEntry
		want models.ImageRef
	}{
		{"nothing", models.ScanEntry{}, models.ImageRef{}},
		{"entry remote", models.ScanEntry{Image: models.RemoteImage("https://x/a.jpg")}, models.RemoteImage("https://x/a.jpg")},
		{"snapshot url beats entry file", models.ScanEntry{
			Image:    models.FileImage("/a.jpg"),
			Snapshot: models.Payload{"imageUrl": "https://x/b.jpg"},
		}, models.RemoteImage("https://x/b.jpg")},
		{"inline beats file", models.ScanEntry{
			Image:    models.FileImage("/a.jpg"),
			Snapshot: models.Payload{"image_base64": longB64},
		}, models.InlineImage(longB64)},
		{"file only", models.ScanEntry{Snapshot: models.Payload{"image_path": "/p.jpg"}}, models.FileImage("/p.jpg")},
		{"mislabelled remote reclassified", models.ScanEntry{Image: models.RemoteImage("file:///p.jpg")}, models.FileImage("/p.jpg")},
		{"base64 jpeg is inline", models.ScanEntry{Snapshot: models.Payload{"image_base64": jpegB64}}, models.InlineImage(jpegB64)},
		{"base64 jpeg beats entry file", models.ScanEntry{
			Image:    models.FileImage("/a.jpg"),
			Snapshot: models.Payload{"imageBase64": jpegB64},
		}, models.InlineImage(jpegB64)},
		{"short value under inline key", models.ScanEntry{Snapshot: models.Payload{"image_base64": "/9j/4AAQ"}}, models.InlineImage("/9j/4AAQ")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bestImage(tt.e))
		})
	}
}
