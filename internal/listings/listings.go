// Package listings stores accommodation offers and prices them in points.
package listings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rongwang/studyswap/internal/models"
	"github.com/rongwang/studyswap/internal/repository"
)

// Store is the Listing Store
type Store struct {
	repo *repository.Repository
	now  func() time.Time
}

// NewStore creates a Listing Store
func NewStore(repo *repository.Repository) *Store {
	return &Store{repo: repo, now: time.Now}
}

// Validate checks a listing input before it is priced
func Validate(in models.ListingInput) error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return fmt.Errorf("%w: title is required", models.ErrInvalidListing)
	case strings.TrimSpace(in.City) == "":
		return fmt.Errorf("%w: city is required", models.ErrInvalidListing)
	case !in.Type.Valid():
		return fmt.Errorf("%w: unknown type %q", models.ErrInvalidListing, in.Type)
	case in.Capacity < 1:
		return fmt.Errorf("%w: capacity must be at least 1", models.ErrInvalidListing)
	}
	return nil
}

// Build prices in and attributes it to owner
func Build(owner models.User, in models.ListingInput, now time.Time) models.Listing {
	return models.Listing{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(in.Title),
		City:        strings.TrimSpace(in.City),
		Postal:      strings.TrimSpace(in.Postal),
		Description: in.Description,
		Type:        in.Type,
		Capacity:    in.Capacity,
		Points:      models.ListingPoints(in.Type, in.Capacity),
		Amenities:   dedupe(in.Amenities),
		UserID:      owner.ID,
		UserName:    owner.DisplayName(),
		CreatedAt:   now.UTC(),
	}
}

// Create stores a new listing owned by userID
func (s *Store) Create(ctx context.Context, userID string, in models.ListingInput) (*models.Listing, error) {
	var out models.Listing
	err := s.repo.Update(ctx, func(tx *repository.Tx) error {
		l, err := Insert(tx, userID, in, s.now())
		out = l
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Insert validates, prices and appends a listing inside tx
func Insert(tx *repository.Tx, userID string, in models.ListingInput, now time.Time) (models.Listing, error) {
	if userID == "" {
		return models.Listing{}, models.ErrNotAuthenticated
	}

	owner, ok := tx.UserByID(userID)
	if !ok {
		return models.Listing{}, models.ErrUnknownUser
	}

	if err := Validate(in); err != nil {
		return models.Listing{}, err
	}

	l := Build(owner, in, now)
	if err := tx.InsertListing(l); err != nil {
		return models.Listing{}, err
	}
	return l, nil
}

// List returns every listing in creation order
func (s *Store) List(ctx context.Context) []models.Listing {
	var out []models.Listing
	_ = s.repo.View(func(tx *repository.Tx) error {
		out = tx.Listings()
		return nil
	})
	return out
}

// FilterByOwner returns the listings created by userID
func (s *Store) FilterByOwner(ctx context.Context, userID string) []models.Listing {
	return filter(s.List(ctx), func(l models.Listing) bool {
		return l.UserID == userID
	})
}

// FilterByCityContains returns the listings whose city contains substr
func (s *Store) FilterByCityContains(ctx context.Context, substr string, caseInsensitive bool) []models.Listing {
	if caseInsensitive {
		substr = strings.ToLower(substr)
	}
	return filter(s.List(ctx), func(l models.Listing) bool {
		city := l.City
		if caseInsensitive {
			city = strings.ToLower(city)
		}
		return strings.Contains(city, substr)
	})
}

// Get returns the listing with the given id
func (s *Store) Get(ctx context.Context, id string) (*models.Listing, error) {
	for _, l := range s.List(ctx) {
		if l.ID == id {
			return &l, nil
		}
	}
	return nil, models.ErrListingNotFound
}

func filter(in []models.Listing, keep func(models.Listing) bool) []models.Listing {
	out := make([]models.Listing, 0, len(in))
	for _, l := range in {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}

func dedupe(amenities []string) []string {
	out := make([]string, 0, len(amenities))
	seen := make(map[string]struct{}, len(amenities))
	for _, a := range amenities {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
