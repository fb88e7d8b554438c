package api_test

import (
	"net/http"
	"testing"

	"github.com/rongwang/studyswap/internal/api/testutils"
	"github.com/rongwang/studyswap/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListListings(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	// Test case 1: Public feed holds the sample listings
	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/listings", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.ListingsResponse
	testutils.DecodeJSON(t, w, &resp)
	assert.Equal(t, 6, resp.Total)

	// Test case 2: City filter ignores case
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/listings?city=paris", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	testutils.DecodeJSON(t, w, &resp)
	assert.Equal(t, 2, resp.Total)
	for _, l := range resp.Listings {
		assert.Equal(t, "Paris", l.City)
	}

	// Test case 3: Limit
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/listings?limit=2", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	testutils.DecodeJSON(t, w, &resp)
	assert.Len(t, resp.Listings, 2)

	// Test case 4: Invalid limit
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/listings?limit=abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetListing(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	// Test case 1: Existing listing
	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/listings/4", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.ListingResponse
	testutils.DecodeJSON(t, w, &resp)
	assert.Equal(t, "Bordeaux", resp.Listing.City)
	assert.Equal(t, 60, resp.Listing.Points)

	// Test case 2: Unknown listing
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/listings/non-existent-id", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateListing(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	headers := testutils.AuthHeaders(testCtx.TestUserJWT)

	createReq := models.CreateListingRequest{
		Title:       "Studio moderne",
		City:        "Lyon",
		Postal:      "69002",
		Description: "Calme et lumineux",
		Type:        models.ListingStudio,
		Capacity:    2,
		Amenities:   []string{"wifi", "kitchen"},
	}

	// Test case 1: Successful creation
	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/listings", createReq, headers)
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp models.ListingResponse
	testutils.DecodeJSON(t, w, &resp)
	assert.NotEmpty(t, resp.Listing.ID)
	assert.Equal(t, 45, resp.Listing.Points)
	assert.Equal(t, "Test User", resp.Listing.UserName)
	assert.Equal(t, testCtx.TestUserID, resp.Listing.UserID)

	// Test case 2: The owner got the bonus and the counter
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/me", nil, headers)
	require.Equal(t, http.StatusOK, w.Code)

	var me models.UserResponse
	testutils.DecodeJSON(t, w, &me)
	assert.Equal(t, 110, me.User.Points)
	assert.Equal(t, 1, me.User.Stats.Listings)

	// Test case 3: Unknown listing type
	bad := createReq
	bad.Type = "castle"
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/listings", bad, headers)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Test case 4: Unauthorized request (no token)
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/listings", createReq, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/listings", nil, nil)
	var all models.ListingsResponse
	testutils.DecodeJSON(t, w, &all)
	assert.Equal(t, 7, all.Total)
}

func TestMyListings(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	headers := testutils.AuthHeaders(testCtx.TestUserJWT)

	// Test case 1: No listings yet
	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/me/listings", nil, headers)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.ListingsResponse
	testutils.DecodeJSON(t, w, &resp)
	assert.Equal(t, 0, resp.Total)

	// Test case 2: After creating one
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/listings", models.CreateListingRequest{
		Title:    "Chambre",
		City:     "Toulouse",
		Type:     models.ListingRoom,
		Capacity: 1,
	}, headers)
	require.Equal(t, http.StatusCreated, w.Code)

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/me/listings", nil, headers)
	testutils.DecodeJSON(t, w, &resp)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, 20, resp.Listings[0].Points)
}
