// Package session tracks the active user and mirrors it under the
// currentUser storage key.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rongwang/studyswap/internal/models"
	"github.com/rongwang/studyswap/internal/storage"
)

// CurrentUserKey is the storage key of the persisted snapshot
const CurrentUserKey = "currentUser"

// UserLookup resolves a user id to its latest record
type UserLookup interface {
	Get(ctx context.Context, id string) (*models.User, error)
}

// Session holds at most one logged-in user
type Session struct {
	mu      sync.RWMutex
	store   *storage.Adapter
	logger  *slog.Logger
	current *models.User
}

// New creates an empty session; call Restore to pick up a persisted one
func New(store *storage.Adapter, logger *slog.Logger) *Session {
	return &Session{store: store, logger: logger}
}

// Login makes user the active user
func (s *Session) Login(ctx context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set(ctx, user)
}

// Logout clears the active user and removes the persisted snapshot
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	if err := s.store.Delete(ctx, CurrentUserKey); err != nil {
		return fmt.Errorf("error clearing session: %w", err)
	}
	return nil
}

// Current returns a copy of the active user
func (s *Session) Current() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return models.User{}, false
	}
	return s.current.Clone(), true
}

// Resync replaces the in-memory snapshot with the latest record for the
// same id. The persisted copy is left to Sync, which writes on every
// committed change. An unknown id keeps the old snapshot and returns
// ErrUnknownUser.
func (s *Session) Resync(ctx context.Context, lookup UserLookup) error {
	current, ok := s.Current()
	if !ok {
		return models.ErrNotAuthenticated
	}

	// lookup takes the repository lock, which commit hooks hold while
	// calling Sync; never hold s.mu across it
	latest, err := lookup.Get(ctx, current.ID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.ID != latest.ID {
		return nil
	}
	c := latest.Clone()
	s.current = &c
	return nil
}

// Sync replaces the snapshot when user is the active user.
// It matches repository.UserChangeFunc.
func (s *Session) Sync(ctx context.Context, user models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.current.ID != user.ID {
		return
	}
	if err := s.set(ctx, user); err != nil {
		s.logger.WarnContext(ctx, "session snapshot not persisted", "user_id", user.ID, "error", err)
	}
}

// Restore loads the persisted snapshot, refreshed from lookup. A snapshot
// whose user is no longer stored is removed and no session is started.
func (s *Session) Restore(ctx context.Context, lookup UserLookup) error {
	var saved models.User
	found, err := s.store.Get(ctx, CurrentUserKey, &saved)
	if err != nil {
		return fmt.Errorf("error restoring session: %w", err)
	}
	if !found || saved.ID == "" {
		return nil
	}

	latest, err := lookup.Get(ctx, saved.ID)
	if errors.Is(err, models.ErrUnknownUser) {
		s.logger.WarnContext(ctx, "dropping session of unknown user", "user_id", saved.ID)
		if err := s.store.Delete(ctx, CurrentUserKey); err != nil {
			return fmt.Errorf("error clearing session: %w", err)
		}
		return nil
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c := latest.Clone()
	s.current = &c
	s.logger.InfoContext(ctx, "session restored", "user_id", c.ID)
	return nil
}

func (s *Session) set(ctx context.Context, user models.User) error {
	c := user.Clone()
	s.current = &c
	if err := s.store.Put(ctx, CurrentUserKey, c); err != nil {
		return fmt.Errorf("error saving session: %w", err)
	}
	return nil
}
