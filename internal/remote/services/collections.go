// Package services is the remote collection repository: typed access to
// items, scan history and collections on the backend, and the single place
// the Saved collection is written.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/antiquary/internal/common"
	"github.com/dmitrijs2005/antiquary/internal/dbx"
	"github.com/dmitrijs2005/antiquary/internal/logging"
	"github.com/dmitrijs2005/antiquary/internal/netx"
	"github.com/dmitrijs2005/antiquary/internal/remote/models"
	"github.com/dmitrijs2005/antiquary/internal/remote/repositories/collections"
	"github.com/dmitrijs2005/antiquary/internal/remote/repositories/repomanager"
	"github.com/patrickmn/go-cache"
)

// CollectionService talks to the remote Postgres database.
//
// Reads of an owner's collections are cached for a short TTL; every write
// through the service drops the owner's entry.
type CollectionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       *cache.Cache
	pingTimeout time.Duration
	log         logging.Logger
}

type Option func(*CollectionService)

// WithCacheTTL enables caching of FindCollectionsByOwner. 0 disables it.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *CollectionService) {
		if ttl > 0 {
			s.cache = cache.New(ttl, 2*ttl)
		} else {
			s.cache = nil
		}
	}
}

func WithPingTimeout(d time.Duration) Option {
	return func(s *CollectionService) { s.pingTimeout = d }
}

func WithLogger(l logging.Logger) Option {
	return func(s *CollectionService) { s.log = l }
}

func NewCollectionService(db *sql.DB, m repomanager.RepositoryManager, opts ...Option) *CollectionService {
	s := &CollectionService{
		db:          db,
		repomanager: m,
		pingTimeout: 5 * time.Second,
		log:         logging.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func writeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", common.ErrBackendWrite, op, err)
}

func requireOwner(ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return common.ErrNotAuthenticated
	}
	return nil
}

func (s *CollectionService) invalidate(ownerID string) {
	if s.cache != nil && ownerID != "" {
		s.cache.Delete(ownerID)
	}
}

// Ping checks that the backend is reachable.
func (s *CollectionService) Ping(ctx context.Context) error {
	if s.db == nil {
		return common.ErrBackendUnavailable
	}
	if s.pingTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.pingTimeout)
		defer cancel()
	}
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", common.ErrBackendUnavailable, err)
	}
	return nil
}

// InsertItem creates an item owned by ownerID. On error nothing was written.
func (s *CollectionService) InsertItem(ctx context.Context, ownerID string, attrs models.ItemAttributes) (string, error) {
	if err := requireOwner(ownerID); err != nil {
		return "", err
	}
	if attrs.ImageURL != nil && !netx.IsHTTPURL(*attrs.ImageURL) {
		s.log.Warn(ctx, "dropping non-durable item image", "owner_id", ownerID)
		attrs.ImageURL = nil
	}
	id, err := s.repomanager.Items(s.db).Insert(ctx, ownerID, attrs)
	if err != nil {
		return "", writeError("insert item", err)
	}
	return id, nil
}

// InsertHistoryEntry records a capture of itemID. imageURL must be nil or a
// durable URL; anything else is stored as nil.
func (s *CollectionService) InsertHistoryEntry(ctx context.Context, ownerID string, imageURL *string, itemID string, raw map[string]any) (string, error) {
	if err := requireOwner(ownerID); err != nil {
		return "", err
	}
	if imageURL != nil && !netx.IsHTTPURL(*imageURL) {
		s.log.Warn(ctx, "dropping non-durable history image", "owner_id", ownerID, "item_id", itemID)
		imageURL = nil
	}
	id, err := s.repomanager.History(s.db).Insert(ctx, models.HistoryEntry{
		OwnerID:    ownerID,
		ImageURL:   imageURL,
		ItemID:     itemID,
		RawPayload: raw,
	})
	if err != nil {
		return "", writeError("insert history entry", err)
	}
	return id, nil
}

func (s *CollectionService) ownerCollections(ctx context.Context, ownerID string) ([]models.Collection, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(ownerID); ok {
			return v.([]models.Collection), nil
		}
	}
	list, err := s.repomanager.Collections(s.db).ListByOwner(ctx, ownerID, "")
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetDefault(ownerID, list)
	}
	return list, nil
}

func cloneCollection(c models.Collection) models.Collection {
	c.MemberIDs = append([]string(nil), c.MemberIDs...)
	if c.MemberIDs == nil {
		c.MemberIDs = []string{}
	}
	return c
}

// FindCollectionsByOwner lists the owner's collections, skipping excludeID
// when it is not empty.
func (s *CollectionService) FindCollectionsByOwner(ctx context.Context, ownerID, excludeID string) ([]models.Collection, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	list, err := s.ownerCollections(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Collection, 0, len(list))
	for _, c := range list {
		if excludeID != "" && c.ID == excludeID {
			continue
		}
		out = append(out, cloneCollection(c))
	}
	return out, nil
}

// CollectionsContaining lists the owner's collections that hold itemID.
// A cached owner list is filtered in memory; otherwise the backend is asked.
func (s *CollectionService) CollectionsContaining(ctx context.Context, ownerID, itemID string) ([]models.Collection, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	out := []models.Collection{}
	if s.cache != nil {
		if v, ok := s.cache.Get(ownerID); ok {
			for _, c := range v.([]models.Collection) {
				if c.Contains(itemID) {
					out = append(out, cloneCollection(c))
				}
			}
			return out, nil
		}
	}
	list, err := s.repomanager.Collections(s.db).ListContaining(ctx, ownerID, itemID)
	if err != nil {
		return nil, err
	}
	return append(out, list...), nil
}

// UpsertSavedCollection merges ids into the owner's Saved collection,
// creating it if needed. Existing members keep their order; new ids are
// appended once each. Safe to repeat.
func (s *CollectionService) UpsertSavedCollection(ctx context.Context, ownerID string, ids []string) (*models.Collection, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if s.db == nil {
		return nil, common.ErrBackendUnavailable
	}

	c, err := dbx.WithTxValue(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.Collection, error) {
		repo := s.repomanager.Collections(tx)
		if err := repo.EnsureSaved(ctx, ownerID); err != nil {
			return nil, err
		}
		saved, err := repo.LockSaved(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		saved.MemberIDs = collections.MergeMembers(saved.MemberIDs, ids)
		if saved.UpdatedAt, err = repo.SetMembers(ctx, saved.ID, saved.MemberIDs); err != nil {
			return nil, err
		}
		return saved, nil
	})
	s.invalidate(ownerID)
	if err != nil {
		return nil, writeError("upsert saved collection", err)
	}
	return c, nil
}

// CreateCollection creates a user-named collection. The Saved name is reserved.
func (s *CollectionService) CreateCollection(ctx context.Context, ownerID, name string) (*models.Collection, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.ErrEmptyName
	}
	if strings.EqualFold(name, common.SavedCollectionName) {
		return nil, common.ErrReservedName
	}
	c, err := s.repomanager.Collections(s.db).Create(ctx, ownerID, name, nil)
	s.invalidate(ownerID)
	if err != nil {
		return nil, writeError("create collection", err)
	}
	return c, nil
}

// AddMemberToCollection files itemID into a collection. Already-present ids are kept once.
func (s *CollectionService) AddMemberToCollection(ctx context.Context, collectionID, itemID string) error {
	owner, err := s.repomanager.Collections(s.db).AddMember(ctx, collectionID, itemID)
	if err != nil {
		return writeError("add member", err)
	}
	s.invalidate(owner)
	return nil
}

// RemoveMember takes itemID out of a collection. Absent ids are a no-op.
func (s *CollectionService) RemoveMember(ctx context.Context, collectionID, itemID string) error {
	owner, err := s.repomanager.Collections(s.db).RemoveMember(ctx, collectionID, itemID)
	if err != nil {
		return writeError("remove member", err)
	}
	s.invalidate(owner)
	return nil
}

// MoveMember adds itemID to toID and then removes it from fromID. The two
// writes are independent: if the removal fails the item is in both.
func (s *CollectionService) MoveMember(ctx context.Context, fromID, toID, itemID string) error {
	if fromID == toID {
		return nil
	}
	if err := s.AddMemberToCollection(ctx, toID, itemID); err != nil {
		return err
	}
	if err := s.RemoveMember(ctx, fromID, itemID); err != nil {
		s.log.Warn(ctx, "move left item in both collections", "from", fromID, "to", toID, "item_id", itemID, "err", err)
		return err
	}
	return nil
}

// Items returns the owner's items among ids, in the order of ids.
func (s *CollectionService) Items(ctx context.Context, ownerID string, ids []string) ([]models.Item, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	return s.repomanager.Items(s.db).ListByIDs(ctx, ownerID, ids)
}

// History returns the owner's most recent scans.
func (s *CollectionService) History(ctx context.Context, ownerID string, limit int) ([]models.HistoryEntry, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	return s.repomanager.History(s.db).ListByOwner(ctx, ownerID, limit)
}
