// Package repository holds the user and listing collections in memory,
// mirrors them into the storage adapter and serialises every write.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rongwang/studyswap/internal/models"
	"github.com/rongwang/studyswap/internal/storage"
)

// Storage keys
const (
	UsersKey    = "users"
	ListingsKey = "listings"
)

// ErrReadOnly is returned when a View transaction attempts a write
var ErrReadOnly = errors.New("write in read-only transaction")

// UserChangeFunc observes a committed user record.
// It runs with the repository locked and must not call back into it.
type UserChangeFunc func(ctx context.Context, user models.User)

// Repository is the single writer for users and listings
type Repository struct {
	mu       sync.Mutex
	store    *storage.Adapter
	logger   *slog.Logger
	users    []models.User
	listings []models.Listing
	hooks    []UserChangeFunc
}

// New creates an empty repository over store; call Load to hydrate it
func New(store *storage.Adapter, logger *slog.Logger) *Repository {
	return &Repository{
		store:  store,
		logger: logger,
	}
}

// Load hydrates both collections from storage. Users written before the
// points history existed get a single welcome entry holding their balance;
// the migrated collection is written back.
func (r *Repository) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var users []models.User
	if _, err := r.store.Get(ctx, UsersKey, &users); err != nil {
		return fmt.Errorf("error loading users: %w", err)
	}

	var listings []models.Listing
	if _, err := r.store.Get(ctx, ListingsKey, &listings); err != nil {
		return fmt.Errorf("error loading listings: %w", err)
	}

	migrated := 0
	for i := range users {
		if migrateUser(&users[i]) {
			migrated++
		}
	}

	if migrated > 0 {
		if err := r.store.Put(ctx, UsersKey, users); err != nil {
			return fmt.Errorf("error saving migrated users: %w", err)
		}
		r.logger.InfoContext(ctx, "migrated legacy users", "count", migrated)
	}

	// ledger writes refuse these users until their records are repaired
	for _, u := range users {
		if err := u.CheckPoints(); err != nil {
			r.logger.WarnContext(ctx, "points balance does not match history",
				"user_id", u.ID, "points", u.Points, "history_total", u.HistoryTotal())
		}
	}

	r.users = users
	r.listings = listings
	r.logger.InfoContext(ctx, "repository loaded", "users", len(users), "listings", len(listings))
	return nil
}

func migrateUser(u *models.User) bool {
	if u.PointsHistory != nil {
		return false
	}

	if u.Points == 0 {
		u.Points = models.WelcomePoints
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	date := u.CreatedAt
	u.PointsHistory = []models.Transaction{
		models.NewTransaction(models.TransactionWelcome, u.Points, "Welcome points", date),
	}
	return true
}

// SeedListings stores samples when no listing has ever been saved.
// It reports whether the samples were written.
func (r *Repository) SeedListings(ctx context.Context, samples []models.Listing) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var existing []models.Listing
	found, err := r.store.Get(ctx, ListingsKey, &existing)
	if err != nil {
		return false, err
	}
	if found || len(r.listings) > 0 {
		return false, nil
	}

	seeded := make([]models.Listing, len(samples))
	for i, l := range samples {
		seeded[i] = l.Clone()
	}

	if err := r.store.Put(ctx, ListingsKey, seeded); err != nil {
		return false, fmt.Errorf("error seeding listings: %w", err)
	}
	r.listings = seeded
	return true, nil
}

// OnUserChange registers a hook called for every committed user write
func (r *Repository) OnUserChange(fn UserChangeFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, fn)
}

// View runs fn against a read-only snapshot
func (r *Repository) View(fn func(tx *Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &Tx{users: r.users, listings: r.listings, readOnly: true}
	return fn(tx)
}

// Update runs fn against a private copy of both collections. When fn
// succeeds, every changed collection is written in one storage batch and
// only then becomes visible. Any error leaves storage and memory untouched.
func (r *Repository) Update(ctx context.Context, fn func(tx *Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := newWriteTx(r.users, r.listings)
	if err := fn(tx); err != nil {
		return err
	}

	var writes []storage.KV
	if len(tx.changedUsers) > 0 {
		writes = append(writes, storage.KV{Key: UsersKey, Value: tx.users})
	}
	if tx.listingsChanged {
		writes = append(writes, storage.KV{Key: ListingsKey, Value: tx.listings})
	}
	if len(writes) == 0 {
		return nil
	}

	if err := r.store.PutAll(ctx, writes...); err != nil {
		return err
	}

	r.users = tx.users
	r.listings = tx.listings

	for _, id := range tx.changeOrder {
		u, ok := tx.UserByID(id)
		if !ok {
			continue
		}
		for _, hook := range r.hooks {
			hook(ctx, u)
		}
	}
	return nil
}
