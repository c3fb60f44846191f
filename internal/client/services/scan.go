package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/antiquary/internal/client/models"
	"github.com/dmitrijs2005/antiquary/internal/common"
	"github.com/dmitrijs2005/antiquary/internal/logging"
)

// CaptureResult tells where a scan ended up.
type CaptureResult struct {
	// LocalID is set when the scan was stored on the device.
	LocalID string
	// ItemID is set when the scan was written to the backend.
	ItemID   string
	ImageURL string
}

// Remote reports whether the scan went to the backend.
func (r CaptureResult) Remote() bool { return r.ItemID != "" }

// ScanService stores new scans: remotely when a user is signed in and the
// backend answers, otherwise in the local store for later migration.
type ScanService struct {
	session OwnerSource
	local   LocalStore
	remote  RemoteRepository
	images  ImageMaterializer
	log     logging.Logger
}

func NewScanService(session OwnerSource, local LocalStore, remote RemoteRepository, images ImageMaterializer, log logging.Logger) *ScanService {
	if log == nil {
		log = logging.NewNop()
	}
	return &ScanService{session: session, local: local, remote: remote, images: images, log: log}
}

// Capture stores one scan. If the remote item write is rejected the scan is
// kept locally instead, so it is never lost.
func (s *ScanService) Capture(ctx context.Context, snapshot, raw models.Payload, image models.ImageRef) (CaptureResult, error) {
	if owner, ok := s.session.CurrentOwner(); ok {
		if err := s.remote.Ping(ctx); err == nil {
			res, err := s.captureRemote(ctx, owner, snapshot, raw, image)
			if err == nil || res.Remote() {
				return res, err
			}
			s.log.Warn(ctx, "remote capture failed, keeping scan locally", "owner_id", owner, "err", err)
		}
	}

	id, err := s.local.AddScan(ctx, snapshot, raw, image)
	if err != nil {
		return CaptureResult{}, err
	}
	return CaptureResult{LocalID: id}, nil
}

func (s *ScanService) captureRemote(ctx context.Context, owner string, snapshot, raw models.Payload, image models.ImageRef) (CaptureResult, error) {
	var imageURL *string
	if s.images != nil {
		if u, err := s.images.Materialize(ctx, owner, image); err == nil && models.IsRemoteURL(u) {
			imageURL = &u
		} else if err != nil {
			s.log.Warn(ctx, "image dropped", "owner_id", owner, "err", err)
		}
	}

	itemID, err := s.remote.InsertItem(ctx, owner, ApplyDefaults(snapshot, imageURL))
	if err != nil {
		return CaptureResult{}, err
	}
	res := CaptureResult{ItemID: itemID}
	if imageURL != nil {
		res.ImageURL = *imageURL
	}

	if _, err := s.remote.InsertHistoryEntry(ctx, owner, imageURL, itemID, map[string]any(raw)); err != nil {
		s.log.Warn(ctx, "item stored without history entry", "owner_id", owner, "item_id", itemID, "err", err)
	}
	if _, err := s.remote.UpsertSavedCollection(ctx, owner, []string{itemID}); err != nil {
		return res, fmt.Errorf("file into saved: %w", err)
	}
	return res, nil
}

// CollectionsContaining lists the signed-in user's collections holding itemID.
func (s *ScanService) CollectionsContaining(ctx context.Context, itemID string) ([]string, error) {
	owner, ok := s.session.CurrentOwner()
	if !ok {
		return nil, common.ErrNotAuthenticated
	}
	list, err := s.remote.CollectionsContaining(ctx, owner, itemID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(list))
	for _, c := range list {
		names = append(names, c.Name)
	}
	return names, nil
}
