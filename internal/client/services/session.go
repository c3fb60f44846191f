package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/antiquary/internal/auth"
	"github.com/dmitrijs2005/antiquary/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/antiquary/internal/logging"
)

// SignInListener is notified when a user becomes signed in.
type SignInListener func(ctx context.Context, ownerID string)

// SessionService keeps the signed-in user. The access token is persisted in
// local metadata so the session survives restarts.
//
// Listeners run synchronously, in registration order, every time the
// signed-in owner changes from nobody (or somebody else) to a user.
type SessionService struct {
	meta   metadata.Repository
	secret []byte
	log    logging.Logger

	mu        sync.Mutex
	owner     string
	token     string
	listeners []SignInListener
}

func NewSessionService(meta metadata.Repository, secret []byte, log logging.Logger) *SessionService {
	if log == nil {
		log = logging.NewNop()
	}
	return &SessionService{meta: meta, secret: secret, log: log}
}

// OnSignIn registers l.
func (s *SessionService) OnSignIn(l SignInListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// CurrentOwner returns the signed-in owner id.
func (s *SessionService) CurrentOwner() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner, s.owner != ""
}

// SignIn validates token, persists it and notifies listeners.
func (s *SessionService) SignIn(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	owner, err := auth.OwnerFromToken(token, s.secret)
	if err != nil {
		return "", err
	}
	if err := s.meta.SetString(ctx, metadata.KeySessionToken, token); err != nil {
		return "", fmt.Errorf("persist session: %w", err)
	}
	s.activate(ctx, owner, token)
	return owner, nil
}

// Restore loads the persisted token. A stored token that no longer validates
// is discarded and its validation error returned.
func (s *SessionService) Restore(ctx context.Context) (string, bool, error) {
	token, err := s.meta.GetString(ctx, metadata.KeySessionToken)
	if err != nil {
		return "", false, fmt.Errorf("load session: %w", err)
	}
	if token == "" {
		return "", false, nil
	}

	owner, err := auth.OwnerFromToken(token, s.secret)
	if err != nil {
		s.log.Info(ctx, "discarding stored session", "err", err)
		if derr := s.meta.Delete(ctx, metadata.KeySessionToken); derr != nil {
			s.log.Warn(ctx, "stored session not removed", "err", derr)
		}
		return "", false, err
	}

	s.activate(ctx, owner, token)
	return owner, true, nil
}

// SignOut forgets the session. Local scans are kept.
func (s *SessionService) SignOut(ctx context.Context) error {
	s.mu.Lock()
	s.owner, s.token = "", ""
	s.mu.Unlock()

	if err := s.meta.Delete(ctx, metadata.KeySessionToken); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *SessionService) activate(ctx context.Context, owner, token string) {
	s.mu.Lock()
	changed := s.owner != owner
	s.owner, s.token = owner, token
	listeners := append([]SignInListener(nil), s.listeners...)
	s.mu.Unlock()

	if !changed {
		return
	}
	s.log.Info(ctx, "signed in", "owner_id", owner)
	for _, l := range listeners {
		l(ctx, owner)
	}
}
