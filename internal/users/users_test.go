package users_test

import (
	"context"
	"testing"
	"time"

	"github.com/rongwang/studyswap/internal/models"
	"github.com/rongwang/studyswap/internal/repository"
	"github.com/rongwang/studyswap/internal/storage"
	"github.com/rongwang/studyswap/internal/users"
	"github.com/rongwang/studyswap/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var fixedNow = time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)

func newStore(t *testing.T) (*users.Store, *repository.Repository) {
	t.Helper()
	store := storage.NewAdapter(storage.NewMemoryBackend(), utils.Discard())
	repo := repository.New(store, utils.Discard())
	require.NoError(t, repo.Load(context.Background()))
	return users.NewStore(repo,
		users.WithBcryptCost(bcrypt.MinCost),
		users.WithClock(func() time.Time { return fixedNow }),
	), repo
}

func register(t *testing.T, s *users.Store, email string) *models.User {
	t.Helper()
	u, err := s.Create(context.Background(), models.Registration{
		FirstName: "Marie",
		LastName:  "Dubois",
		Email:     email,
		Password:  "secret123",
	})
	require.NoError(t, err)
	return u
}

func countUsers(repo *repository.Repository) int {
	n := 0
	_ = repo.View(func(tx *repository.Tx) error {
		n = len(tx.Users())
		return nil
	})
	return n
}

func TestCreate_WelcomeGrant(t *testing.T) {
	s, _ := newStore(t)

	u := register(t, s, "marie@example.com")

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, 100, u.Points)
	require.Len(t, u.PointsHistory, 1)
	assert.Equal(t, models.TransactionWelcome, u.PointsHistory[0].Type)
	assert.Equal(t, 100, u.PointsHistory[0].Amount)
	assert.Equal(t, models.Stats{}, u.Stats)
	assert.Equal(t, fixedNow, u.CreatedAt)
	require.NotNil(t, u.PasswordHash)
	assert.NotEqual(t, "secret123", *u.PasswordHash, "password is stored hashed")
	assert.Nil(t, u.FederatedID)
}

func TestCreate_DuplicateEmail(t *testing.T) {
	s, repo := newStore(t)
	register(t, s, "marie@example.com")

	for _, email := range []string{"marie@example.com", "Marie@Example.COM"} {
		_, err := s.Create(context.Background(), models.Registration{
			FirstName: "Other", LastName: "Person", Email: email, Password: "secret123",
		})
		assert.ErrorIs(t, err, models.ErrDuplicateEmail, email)
	}
	assert.Equal(t, 1, countUsers(repo))
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	created := register(t, s, "marie@example.com")

	u, err := s.Authenticate(ctx, "MARIE@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)

	_, err = s.Authenticate(ctx, "marie@example.com", "wrong")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = s.Authenticate(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestAuthenticateFederated(t *testing.T) {
	ctx := context.Background()
	s, repo := newStore(t)
	picture := "https://example.com/me.png"
	profile := models.FederatedProfile{
		FederatedID:     "google_123456",
		FirstName:       "Utilisateur",
		LastName:        "Google",
		Email:           "google.user@gmail.com",
		ProfileImageRef: &picture,
	}

	first, created, err := s.AuthenticateFederated(ctx, profile)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Nil(t, first.PasswordHash)
	assert.Equal(t, 100, first.Points)
	require.NotNil(t, first.ProfileImageRef)
	assert.Equal(t, picture, *first.ProfileImageRef)

	second, created, err := s.AuthenticateFederated(ctx, profile)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, countUsers(repo))

	_, err = s.Authenticate(ctx, "google.user@gmail.com", "")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials, "federated accounts have no password")
}

func TestAuthenticateFederated_EmailTakenByPasswordAccount(t *testing.T) {
	s, _ := newStore(t)
	register(t, s, "google.user@gmail.com")

	_, _, err := s.AuthenticateFederated(context.Background(), models.FederatedProfile{
		FederatedID: "google_1",
		Email:       "google.user@gmail.com",
	})
	assert.ErrorIs(t, err, models.ErrDuplicateEmail)
}

func TestAuthenticateFederated_RequiresSubject(t *testing.T) {
	s, _ := newStore(t)

	_, _, err := s.AuthenticateFederated(context.Background(), models.FederatedProfile{Email: "x@example.com"})
	assert.ErrorIs(t, err, models.ErrInvalidFederatedCredential)
}

func TestUpdate_Profile(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	u := register(t, s, "marie@example.com")

	updated, err := s.Update(ctx, u.ID, models.ProfilePatch{
		FirstName:  "Marie-Claire",
		LastName:   "Dubois",
		Bio:        "Erasmus student",
		University: "Sorbonne",
	})
	require.NoError(t, err)
	assert.Equal(t, "Marie-Claire", updated.FirstName)
	assert.Equal(t, "Sorbonne", updated.University)
	assert.Equal(t, *u.PasswordHash, *updated.PasswordHash)

	got, err := s.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Erasmus student", got.Bio)
}

func TestUpdate_PasswordChange(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	u := register(t, s, "marie@example.com")

	_, err := s.Update(ctx, u.ID, models.ProfilePatch{
		FirstName:   "Changed",
		LastName:    "Name",
		OldPassword: "wrong",
		NewPassword: "newsecret",
	})
	assert.ErrorIs(t, err, models.ErrWrongPassword)

	unchanged, err := s.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Marie", unchanged.FirstName, "a rejected patch changes nothing")

	_, err = s.Update(ctx, u.ID, models.ProfilePatch{
		FirstName:   "Marie",
		LastName:    "Dubois",
		OldPassword: "secret123",
		NewPassword: "newsecret",
	})
	require.NoError(t, err)

	_, err = s.Authenticate(ctx, "marie@example.com", "newsecret")
	assert.NoError(t, err)
	_, err = s.Authenticate(ctx, "marie@example.com", "secret123")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestUpdate_UnknownUser(t *testing.T) {
	s, _ := newStore(t)

	_, err := s.Update(context.Background(), "ghost", models.ProfilePatch{FirstName: "a", LastName: "b"})
	assert.ErrorIs(t, err, models.ErrUnknownUser)
}

func TestRecordListingCreated(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	u := register(t, s, "marie@example.com")

	require.NoError(t, s.RecordListingCreated(ctx, u.ID))
	require.NoError(t, s.RecordListingCreated(ctx, u.ID))

	got, err := s.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stats.Listings)

	assert.ErrorIs(t, s.RecordListingCreated(ctx, "ghost"), models.ErrUnknownUser)
}
