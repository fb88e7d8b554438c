package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rongwang/studyswap/internal/api"
	"github.com/rongwang/studyswap/internal/identity"
	"github.com/rongwang/studyswap/internal/ledger"
	"github.com/rongwang/studyswap/internal/listings"
	"github.com/rongwang/studyswap/internal/models"
	"github.com/rongwang/studyswap/internal/repository"
	"github.com/rongwang/studyswap/internal/service"
	"github.com/rongwang/studyswap/internal/session"
	"github.com/rongwang/studyswap/internal/storage"
	"github.com/rongwang/studyswap/internal/users"
	"github.com/rongwang/studyswap/internal/utils"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	JWTSecret       = "test-secret-key"
	FederatedSecret = "test-provider-secret"

	TestUserEmail    = "testuser@example.com"
	TestUserPassword = "testpassword"
)

// TestContext holds all dependencies for tests
type TestContext struct {
	Router      *gin.Engine
	Repository  *repository.Repository
	Session     *session.Session
	Service     service.Service
	Backend     *storage.MemoryBackend
	TestUserID  string
	TestUserJWT string
}

// SetupTestContext builds the full stack on an in-memory backend with the
// sample listings seeded and a registered, logged-in test user.
func SetupTestContext(t *testing.T) *TestContext {
	t.Helper()
	ctx := context.Background()

	backend := storage.NewMemoryBackend()
	store := storage.NewAdapter(backend, utils.Discard())
	repo := repository.New(store, utils.Discard())
	require.NoError(t, repo.Load(ctx))
	_, err := repo.SeedListings(ctx, listings.SampleListings())
	require.NoError(t, err)

	sess := session.New(store, utils.Discard())
	repo.OnUserChange(sess.Sync)

	svc := service.NewDefaultService(service.Dependencies{
		Repository: repo,
		Users:      users.NewStore(repo, users.WithBcryptCost(bcrypt.MinCost)),
		Ledger:     ledger.New(repo),
		Listings:   listings.NewStore(repo),
		Session:    sess,
		Verifier:   identity.NewHMACVerifier(FederatedSecret, "", ""),
		Logger:     utils.Discard(),
	}, JWTSecret, 24*time.Hour)

	handler := api.NewHandler(svc, utils.Discard())

	gin.SetMode(gin.TestMode)
	router := gin.New()

	// Add middleware for JWT secret
	router.Use(func(c *gin.Context) {
		c.Set("jwtSecret", []byte(JWTSecret))
		c.Next()
	})

	handler.SetupRoutes(router)

	resp, err := svc.Register(ctx, models.RegisterRequest{
		FirstName:       "Test",
		LastName:        "User",
		Email:           TestUserEmail,
		Password:        TestUserPassword,
		ConfirmPassword: TestUserPassword,
	})
	require.NoError(t, err, "Failed to create test user")

	return &TestContext{
		Router:      router,
		Repository:  repo,
		Session:     sess,
		Service:     svc,
		Backend:     backend,
		TestUserID:  resp.User.ID,
		TestUserJWT: resp.Token,
	}
}

// PerformRequest executes an HTTP request against the router
func PerformRequest(r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer

	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// AuthHeaders returns headers with Authorization token
func AuthHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", token),
	}
}

// DecodeJSON unmarshals a recorded response body into v
func DecodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
