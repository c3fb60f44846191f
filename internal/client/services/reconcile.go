package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/antiquary/internal/client/models"
	"github.com/dmitrijs2005/antiquary/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/antiquary/internal/common"
	"github.com/dmitrijs2005/antiquary/internal/logging"
	"golang.org/x/sync/singleflight"
)

// snapshot keys that may carry an image reference, checked in order
var snapshotImageKeys = []string{"image_url", "imageUrl", "image", "photo", "image_base64", "imageBase64", "image_path", "imagePath", "image_uri", "imageUri"}

// inlineImageKeys hold encoded bytes whatever their contents look like.
var inlineImageKeys = map[string]bool{"image_base64": true, "imageBase64": true}

// Reconciler migrates everything held in the local store to the backend once
// the user is signed in, then clears the local store.
//
// Concurrent Migrate calls collapse into one run, whatever owner they name;
// late callers receive the result of the run in progress.
type Reconciler struct {
	local  LocalStore
	remote RemoteRepository
	images ImageMaterializer
	meta   metadata.Repository
	log    logging.Logger
	now    func() time.Time
	group  singleflight.Group
}

// NewReconciler wires the engine. meta may be nil, in which case no
// migration marker is recorded.
func NewReconciler(local LocalStore, remote RemoteRepository, images ImageMaterializer, meta metadata.Repository, log logging.Logger) *Reconciler {
	if log == nil {
		log = logging.NewNop()
	}
	return &Reconciler{
		local:  local,
		remote: remote,
		images: images,
		meta:   meta,
		log:    log,
		now:    time.Now,
	}
}

// Migrate moves local history to ownerID's remote account and returns the
// number of entries migrated.
//
// It returns common.ErrNotAuthenticated or common.ErrBackendUnavailable
// without touching anything when a precondition fails. Per-entry failures
// are logged and skipped. If the final Saved collection write fails the
// error wraps common.ErrBackendWrite, the count is 0 and local state is kept.
//
// A call made while another run is in flight does not start a second one.
// It waits and returns that run's count and error, which belong to the
// owner and context of the caller that started it.
func (r *Reconciler) Migrate(ctx context.Context, ownerID string) (int, error) {
	v, err, shared := r.group.Do("migrate", func() (any, error) {
		return r.migrate(ctx, ownerID)
	})
	if shared {
		r.log.Debug(ctx, "joined migration in flight", "owner_id", ownerID)
	}
	return v.(int), err
}

// OnSignIn adapts Migrate to a session listener.
func (r *Reconciler) OnSignIn(ctx context.Context, ownerID string) {
	if _, err := r.Migrate(ctx, ownerID); err != nil {
		r.log.Warn(ctx, "migration after sign-in did not run", "owner_id", ownerID, "err", err)
	}
}

func (r *Reconciler) migrate(ctx context.Context, ownerID string) (int, error) {
	if strings.TrimSpace(ownerID) == "" {
		return 0, common.ErrNotAuthenticated
	}
	if err := r.remote.Ping(ctx); err != nil {
		if errors.Is(err, common.ErrBackendUnavailable) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %w", common.ErrBackendUnavailable, err)
	}

	history, err := r.local.ListHistory(ctx)
	if err != nil {
		return 0, fmt.Errorf("read local history: %w", err)
	}
	if len(history) == 0 {
		if err := r.local.ClearAll(ctx); err != nil {
			return 0, fmt.Errorf("clear local store: %w", err)
		}
		return 0, nil
	}

	log := r.log.With("owner_id", ownerID)
	migrated := make([]string, 0, len(history))
	for _, e := range history {
		if itemID, ok := r.migrateEntry(ctx, log, ownerID, e); ok {
			migrated = append(migrated, itemID)
		}
	}
	failed := len(history) - len(migrated)

	if len(migrated) == 0 {
		log.Info(ctx, "migration finished", "migrated", 0, "failed", failed, "cleared", false)
		return 0, nil
	}

	if _, err := r.remote.UpsertSavedCollection(ctx, ownerID, migrated); err != nil {
		log.Error(ctx, "saved collection upsert failed, keeping local state", "migrated", len(migrated), "err", err)
		if !errors.Is(err, common.ErrBackendWrite) {
			err = fmt.Errorf("%w: upsert saved collection: %w", common.ErrBackendWrite, err)
		}
		return 0, err
	}

	if err := r.local.ClearAll(ctx); err != nil {
		// the next run will migrate these entries again
		log.Error(ctx, "local store not cleared after migration", "migrated", len(migrated), "err", err)
		return len(migrated), fmt.Errorf("clear local store: %w", err)
	}
	r.recordMarker(ctx, log, ownerID)

	log.Info(ctx, "migration finished", "migrated", len(migrated), "failed", failed, "cleared", true)
	return len(migrated), nil
}

func (r *Reconciler) migrateEntry(ctx context.Context, log logging.Logger, ownerID string, e models.ScanEntry) (string, bool) {
	log = log.With("local_id", e.LocalID)

	imageURL := r.materialize(ctx, log, ownerID, bestImage(e))
	attrs := ApplyDefaults(e.Snapshot, imageURL)

	itemID, err := r.remote.InsertItem(ctx, ownerID, attrs)
	if err != nil {
		log.Warn(ctx, "entry not migrated", "stage", "insert_item", "err", err)
		return "", false
	}

	if _, err := r.remote.InsertHistoryEntry(ctx, ownerID, imageURL, itemID, map[string]any(e.Raw)); err != nil {
		log.Warn(ctx, "item migrated without history entry", "stage", "insert_history", "item_id", itemID, "err", err)
	}
	return itemID, true
}

func (r *Reconciler) materialize(ctx context.Context, log logging.Logger, ownerID string, ref models.ImageRef) *string {
	if ref.IsZero() || r.images == nil {
		return nil
	}
	u, err := r.images.Materialize(ctx, ownerID, ref)
	if err != nil {
		log.Warn(ctx, "image dropped", "stage", "materialize", "err", err)
		return nil
	}
	if !models.IsRemoteURL(u) {
		return nil
	}
	return &u
}

func (r *Reconciler) recordMarker(ctx context.Context, log logging.Logger, ownerID string) {
	if r.meta == nil {
		return
	}
	if err := r.meta.SetString(ctx, metadata.KeyLastMigrationOwner, ownerID); err != nil {
		log.Warn(ctx, "migration marker not saved", "err", err)
		return
	}
	if err := r.meta.SetString(ctx, metadata.KeyLastMigrationAt, r.now().UTC().Format(time.RFC3339)); err != nil {
		log.Warn(ctx, "migration marker not saved", "err", err)
	}
}

// bestImage picks the most durable reference available for e: a remote URL,
// then inline data, then a local file.
func bestImage(e models.ScanEntry) models.ImageRef {
	candidates := make([]models.ImageRef, 0, 1+len(snapshotImageKeys))
	if !e.Image.IsZero() {
		ref := e.Image
		if ref.Kind == models.ImageRemote && !models.IsRemoteURL(ref.Value) {
			ref = models.ClassifyImage(ref.Value)
		}
		candidates = append(candidates, ref)
	}
	for _, k := range snapshotImageKeys {
		s, ok := e.Snapshot[k].(string)
		if !ok {
			continue
		}
		ref := models.ClassifyImage(s)
		if inlineImageKeys[k] && ref.Kind == models.ImageFile {
			ref = models.InlineImage(strings.TrimSpace(s))
		}
		if !ref.IsZero() {
			candidates = append(candidates, ref)
		}
	}

	for _, kind := range []models.ImageKind{models.ImageRemote, models.ImageInline, models.ImageFile} {
		for _, c := range candidates {
			if c.Kind == kind {
				return c
			}
		}
	}
	return models.ImageRef{}
}
