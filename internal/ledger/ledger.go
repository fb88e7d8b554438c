// Package ledger records points transactions against user balances.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/rongwang/studyswap/internal/models"
	"github.com/rongwang/studyswap/internal/observability/metrics"
	"github.com/rongwang/studyswap/internal/repository"
)

const (
	// DefaultHistoryLimit is used when History is called with limit 0
	DefaultHistoryLimit = 5
	// AllHistory makes History return every entry
	AllHistory = -1
)

// Ledger is the Points Ledger
type Ledger struct {
	repo *repository.Repository
	now  func() time.Time
}

// New creates a Ledger
func New(repo *repository.Repository) *Ledger {
	return &Ledger{repo: repo, now: time.Now}
}

// WithClock returns a copy of l that stamps entries with now
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	return &Ledger{repo: l.repo, now: now}
}

// NewEntry builds a transaction stamped with the ledger clock
func (l *Ledger) NewEntry(t models.TransactionType, amount int, description string) models.Transaction {
	return models.NewTransaction(t, amount, description, l.now())
}

// Apply records a transaction for a user and adjusts the balance
func (l *Ledger) Apply(ctx context.Context, userID string, t models.TransactionType, amount int, description string) (*models.Transaction, error) {
	entry := l.NewEntry(t, amount, description)

	err := l.repo.Update(ctx, func(tx *repository.Tx) error {
		return Apply(tx, userID, entry)
	})
	if err != nil {
		return nil, err
	}

	metrics.ObservePointsTransaction(string(t))
	return &entry, nil
}

// Apply prepends entry to the user's history inside tx.
// Negative amounts may take the balance below zero.
func Apply(tx *repository.Tx, userID string, entry models.Transaction) error {
	if !entry.Type.Valid() {
		return fmt.Errorf("%w: %q", models.ErrInvalidTransactionType, entry.Type)
	}

	user, ok := tx.UserByID(userID)
	if !ok {
		return models.ErrUnknownUser
	}

	history := make([]models.Transaction, 0, len(user.PointsHistory)+1)
	history = append(history, entry)
	history = append(history, user.PointsHistory...)
	user.PointsHistory = history
	user.Points += entry.Amount

	if err := user.CheckPoints(); err != nil {
		return err
	}
	return tx.PutUser(user)
}

// History returns the newest limit entries, newest first. limit 0 means
// DefaultHistoryLimit and a negative limit returns everything.
func (l *Ledger) History(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	user, err := l.user(userID)
	if err != nil {
		return nil, err
	}
	return Recent(user, limit), nil
}

// Balance returns the user's current points
func (l *Ledger) Balance(ctx context.Context, userID string) (int, error) {
	user, err := l.user(userID)
	if err != nil {
		return 0, err
	}
	return user.Points, nil
}

// Recent slices the newest entries off a user's history
func Recent(user models.User, limit int) []models.Transaction {
	if limit == 0 {
		limit = DefaultHistoryLimit
	}

	history := user.PointsHistory
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}

	out := make([]models.Transaction, len(history))
	copy(out, history)
	return out
}

func (l *Ledger) user(id string) (models.User, error) {
	var (
		user  models.User
		found bool
	)
	_ = l.repo.View(func(tx *repository.Tx) error {
		user, found = tx.UserByID(id)
		return nil
	})
	if !found {
		return models.User{}, models.ErrUnknownUser
	}
	return user, nil
}
