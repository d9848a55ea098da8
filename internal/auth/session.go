// Package auth tracks whether an admin session is active. The flag is
// derived from the presence of a bearer token in local storage.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/erazemk/storefront/internal/broadcast"
	"github.com/erazemk/storefront/internal/model"
	"github.com/erazemk/storefront/internal/store"
)

// Storage is the durable key/value backend holding the token.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Session is the admin authentication flag. Sessions sharing a storage and
// hub observe each other's logins and logouts.
type Session struct {
	storage Storage

	mu    sync.RWMutex
	token string
	admin model.Admin

	cancel func()
	done   chan struct{}
}

// NewSession derives the initial state from storage and starts listening
// for token changes on hub. Call Close to stop listening.
func NewSession(ctx context.Context, storage Storage, hub *broadcast.Hub) *Session {
	s := &Session{storage: storage, done: make(chan struct{})}
	s.reload(ctx)

	events, cancel := hub.Subscribe()
	s.cancel = cancel
	go s.listen(events)
	return s
}

// IsAuthenticated reports whether a token is present.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// Token returns the bearer token, or "" when anonymous.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Admin returns the profile saved at login.
func (s *Session) Admin() model.Admin {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.admin
}

// Login persists token and the admin profile and marks the session active.
func (s *Session) Login(ctx context.Context, token string, admin model.Admin) error {
	if token == "" {
		return fmt.Errorf("empty token")
	}

	profile, err := json.Marshal(admin)
	if err != nil {
		return fmt.Errorf("encoding admin profile: %w", err)
	}

	// Held across the writes so a concurrent reload cannot apply a stale read.
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Set(ctx, store.KeyAdminUser, string(profile)); err != nil {
		return fmt.Errorf("saving admin profile: %w", err)
	}
	if err := s.storage.Set(ctx, store.KeyAdminToken, token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	s.token = token
	s.admin = admin
	return nil
}

// Logout removes the token and session data and marks the session
// anonymous. The in-memory flag is cleared even if storage fails, and every
// key is attempted.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.admin = model.Admin{}

	var errs []error
	if err := s.storage.Remove(ctx, store.KeyAdminToken); err != nil {
		errs = append(errs, fmt.Errorf("removing token: %w", err))
	}
	if err := s.storage.Remove(ctx, store.KeyAdminUser); err != nil {
		errs = append(errs, fmt.Errorf("removing admin profile: %w", err))
	}
	return errors.Join(errs...)
}

// Close stops listening for storage changes.
func (s *Session) Close() {
	s.cancel()
	<-s.done
}

func (s *Session) listen(events <-chan broadcast.Event) {
	defer close(s.done)
	for ev := range events {
		if ev.Key != store.KeyAdminToken && ev.Key != store.KeyAdminUser {
			continue
		}
		s.reload(context.Background())
	}
}

// reload re-derives the flag and profile from storage.
func (s *Session) reload(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, _, err := s.storage.Get(ctx, store.KeyAdminToken)
	if err != nil {
		slog.Warn("failed to read admin token", "error", err)
		return
	}

	var admin model.Admin
	if token != "" {
		if raw, ok, err := s.storage.Get(ctx, store.KeyAdminUser); err == nil && ok {
			if err := json.Unmarshal([]byte(raw), &admin); err != nil {
				slog.Warn("ignoring unreadable admin profile", "error", err)
			}
		}
	}

	s.token = token
	s.admin = admin
}
