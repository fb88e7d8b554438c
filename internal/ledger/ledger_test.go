package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/rongwang/studyswap/internal/ledger"
	"github.com/rongwang/studyswap/internal/models"
	"github.com/rongwang/studyswap/internal/repository"
	"github.com/rongwang/studyswap/internal/storage"
	"github.com/rongwang/studyswap/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*ledger.Ledger, *repository.Repository, models.User) {
	t.Helper()
	ctx := context.Background()

	repo := repository.New(storage.NewAdapter(storage.NewMemoryBackend(), utils.Discard()), utils.Discard())
	require.NoError(t, repo.Load(ctx))

	user := models.NewUser(models.NewUserInput{
		FirstName: "Lucas",
		LastName:  "Martin",
		Email:     "lucas@example.com",
	}, time.Now())
	require.NoError(t, repo.Update(ctx, func(tx *repository.Tx) error {
		return tx.InsertUser(user)
	}))

	return ledger.New(repo), repo, user
}

func TestApply_AdjustsBalanceAndHistory(t *testing.T) {
	ctx := context.Background()
	l, _, user := setup(t)

	steps := []struct {
		typ    models.TransactionType
		amount int
	}{
		{models.TransactionBonus, 10},
		{models.TransactionSpend, -45},
		{models.TransactionEarn, 30},
		{models.TransactionRefund, 5},
	}

	sum := 0
	for _, s := range steps {
		entry, err := l.Apply(ctx, user.ID, s.typ, s.amount, "test")
		require.NoError(t, err)
		assert.Equal(t, s.typ, entry.Type)
		assert.NotEmpty(t, entry.ID)
		sum += s.amount
	}

	balance, err := l.Balance(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WelcomePoints+sum, balance)

	all, err := l.History(ctx, user.ID, ledger.AllHistory)
	require.NoError(t, err)
	require.Len(t, all, len(steps)+1)
	assert.Equal(t, models.TransactionRefund, all[0].Type, "newest first")
	assert.Equal(t, models.TransactionWelcome, all[len(all)-1].Type)

	total := 0
	for _, tx := range all {
		total += tx.Amount
	}
	assert.Equal(t, balance, total)
}

func TestApply_CanGoNegative(t *testing.T) {
	ctx := context.Background()
	l, _, user := setup(t)

	_, err := l.Apply(ctx, user.ID, models.TransactionSpend, -250, "Long stay")
	require.NoError(t, err)

	balance, err := l.Balance(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, -150, balance)
}

func TestApply_Errors(t *testing.T) {
	ctx := context.Background()
	l, repo, user := setup(t)

	_, err := l.Apply(ctx, "ghost", models.TransactionBonus, 10, "x")
	assert.ErrorIs(t, err, models.ErrUnknownUser)

	_, err = l.Apply(ctx, user.ID, models.TransactionType("gift"), 10, "x")
	assert.ErrorIs(t, err, models.ErrInvalidTransactionType)

	_ = repo.View(func(tx *repository.Tx) error {
		u, _ := tx.UserByID(user.ID)
		assert.Len(t, u.PointsHistory, 1)
		assert.Equal(t, models.WelcomePoints, u.Points)
		return nil
	})
}

func TestApply_DetectsCorruptBalance(t *testing.T) {
	ctx := context.Background()
	l, repo, user := setup(t)

	require.NoError(t, repo.Update(ctx, func(tx *repository.Tx) error {
		u, _ := tx.UserByID(user.ID)
		u.Points = 999
		return tx.PutUser(u)
	}))

	_, err := l.Apply(ctx, user.ID, models.TransactionBonus, 10, "x")
	assert.ErrorIs(t, err, models.ErrPointsInvariant)
}

func TestHistory_Limits(t *testing.T) {
	ctx := context.Background()
	l, _, user := setup(t)

	for i := 0; i < 7; i++ {
		_, err := l.Apply(ctx, user.ID, models.TransactionEarn, i+1, "stay")
		require.NoError(t, err)
	}

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"default", 0, ledger.DefaultHistoryLimit},
		{"explicit", 3, 3},
		{"larger than history", 50, 8},
		{"all", ledger.AllHistory, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.History(ctx, user.ID, tt.limit)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
			assert.Equal(t, 7, got[0].Amount)
		})
	}

	_, err := l.History(ctx, "ghost", 0)
	assert.ErrorIs(t, err, models.ErrUnknownUser)
}

func TestNewEntry_UsesClock(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	l, _, _ := setup(t)

	entry := l.WithClock(func() time.Time { return fixed }).NewEntry(models.TransactionBonus, 10, "Listing creation bonus")
	assert.Equal(t, fixed, entry.Date)
	assert.Equal(t, 10, entry.Amount)
}
