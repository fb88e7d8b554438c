// Package users implements account creation, authentication and profile
// edits on top of the repository.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rongwang/studyswap/internal/models"
	"github.com/rongwang/studyswap/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// Store is the User Store
type Store struct {
	repo       *repository.Repository
	bcryptCost int
	now        func() time.Time
}

// Option customises a Store
type Option func(*Store)

// WithBcryptCost sets the password hashing cost
func WithBcryptCost(cost int) Option {
	return func(s *Store) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.bcryptCost = cost
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a User Store
func NewStore(repo *repository.Repository, opts ...Option) *Store {
	s := &Store{
		repo:       repo,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a password account holding the welcome grant
func (s *Store) Create(ctx context.Context, reg models.Registration) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}
	hash := string(hashed)

	user := models.NewUser(models.NewUserInput{
		FirstName:    strings.TrimSpace(reg.FirstName),
		LastName:     strings.TrimSpace(reg.LastName),
		Email:        strings.TrimSpace(reg.Email),
		PasswordHash: &hash,
	}, s.now())

	err = s.repo.Update(ctx, func(tx *repository.Tx) error {
		return tx.InsertUser(user)
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// Authenticate returns the account matching email and password.
// Unknown emails, wrong passwords and password-less accounts are
// indistinguishable to the caller.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var (
		user  models.User
		found bool
	)
	_ = s.repo.View(func(tx *repository.Tx) error {
		user, found = tx.UserByEmail(email)
		return nil
	})

	if !found || !user.HasPassword() {
		return nil, models.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	return &user, nil
}

// AuthenticateFederated returns the account linked to the profile's
// federated id, creating a password-less one on first use. created reports
// whether a new account was made.
func (s *Store) AuthenticateFederated(ctx context.Context, p models.FederatedProfile) (user *models.User, created bool, err error) {
	if p.FederatedID == "" {
		return nil, false, models.ErrInvalidFederatedCredential
	}

	var out models.User
	err = s.repo.Update(ctx, func(tx *repository.Tx) error {
		if existing, ok := tx.UserByFederatedID(p.FederatedID); ok {
			out = existing
			return nil
		}

		federatedID := p.FederatedID
		out = models.NewUser(models.NewUserInput{
			FirstName:       p.FirstName,
			LastName:        p.LastName,
			Email:           p.Email,
			FederatedID:     &federatedID,
			ProfileImageRef: p.ProfileImageRef,
		}, s.now())
		created = true
		return tx.InsertUser(out)
	})
	if err != nil {
		return nil, false, err
	}

	return &out, created, nil
}

// Get returns the account with the given id
func (s *Store) Get(ctx context.Context, id string) (*models.User, error) {
	var (
		user  models.User
		found bool
	)
	_ = s.repo.View(func(tx *repository.Tx) error {
		user, found = tx.UserByID(id)
		return nil
	})

	if !found {
		return nil, models.ErrUnknownUser
	}
	return &user, nil
}

// Update applies a profile patch. A password change requires the current
// password; when it does not match nothing is changed.
func (s *Store) Update(ctx context.Context, id string, patch models.ProfilePatch) (*models.User, error) {
	var newHash *string
	if patch.NewPassword != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(patch.NewPassword), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("error hashing password: %w", err)
		}
		h := string(hashed)
		newHash = &h
	}

	var out models.User
	err := s.repo.Update(ctx, func(tx *repository.Tx) error {
		user, ok := tx.UserByID(id)
		if !ok {
			return models.ErrUnknownUser
		}

		if newHash != nil {
			if !user.HasPassword() {
				return models.ErrWrongPassword
			}
			err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(patch.OldPassword))
			if err != nil {
				if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
					return models.ErrWrongPassword
				}
				return fmt.Errorf("error checking password: %w", err)
			}
			user.PasswordHash = newHash
		}

		user.FirstName = strings.TrimSpace(patch.FirstName)
		user.LastName = strings.TrimSpace(patch.LastName)
		user.Bio = patch.Bio
		user.University = patch.University

		out = user
		return tx.PutUser(user)
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

// RecordListingCreated bumps the listing counter of a user
func (s *Store) RecordListingCreated(ctx context.Context, id string) error {
	return s.repo.Update(ctx, func(tx *repository.Tx) error {
		return RecordListingCreated(tx, id)
	})
}

// RecordListingCreated bumps the listing counter inside tx
func RecordListingCreated(tx *repository.Tx, id string) error {
	user, ok := tx.UserByID(id)
	if !ok {
		return models.ErrUnknownUser
	}

	user.Stats.Listings++
	return tx.PutUser(user)
}
