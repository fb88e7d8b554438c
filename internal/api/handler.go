package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rongwang/studyswap/internal/ledger"
	"github.com/rongwang/studyswap/internal/models"
	"github.com/rongwang/studyswap/internal/service"
)

// Handler exposes the service over HTTP
type Handler struct {
	service service.Service
	logger  *slog.Logger
}

// NewHandler creates a new Handler
func NewHandler(svc service.Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// SetupRoutes registers every API route on router
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.GET("/healthz", h.Health)

	api := router.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.POST("/federated", h.FederatedLogin)
	auth.POST("/logout", AuthMiddleware(h.service), h.Logout)

	api.GET("/listings", h.ListListings)
	api.GET("/listings/:id", h.GetListing)

	protected := api.Group("")
	protected.Use(AuthMiddleware(h.service))
	protected.POST("/listings", h.CreateListing)
	protected.GET("/me", h.Me)
	protected.PATCH("/me", h.UpdateProfile)
	protected.GET("/me/points", h.PointsHistory)
	protected.GET("/me/listings", h.MyListings)
	protected.GET("/dashboard", h.Dashboard)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.StatusResponse{Status: "ok"})
}

// Auth handlers
func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !h.bind(c, &req) {
		return
	}

	resp, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !h.bind(c, &req) {
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) FederatedLogin(c *gin.Context) {
	var req models.FederatedLoginRequest
	if !h.bind(c, &req) {
		return
	}

	resp, err := h.service.FederatedLogin(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.StatusResponse{Status: "success", Message: "Logged out"})
}

// Profile handlers
func (h *Handler) Me(c *gin.Context) {
	resp, err := h.service.CurrentUser(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if !h.bind(c, &req) {
		return
	}

	resp, err := h.service.UpdateProfile(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PointsHistory accepts limit=N or limit=all
func (h *Handler) PointsHistory(c *gin.Context) {
	limit := 0
	switch raw := c.Query("limit"); raw {
	case "":
	case "all":
		limit = ledger.AllHistory
	default:
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, "limit must be a non-negative number or \"all\"")
			return
		}
		limit = n
	}

	resp, err := h.service.PointsHistory(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Dashboard(c *gin.Context) {
	resp, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listing handlers
func (h *Handler) CreateListing(c *gin.Context) {
	var req models.CreateListingRequest
	if !h.bind(c, &req) {
		return
	}

	resp, err := h.service.CreateListing(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) ListListings(c *gin.Context) {
	var query models.ListingQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err.Error())
		return
	}

	resp, err := h.service.ListListings(c.Request.Context(), query)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetListing(c *gin.Context) {
	resp, err := h.service.GetListing(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) MyListings(c *gin.Context) {
	resp, err := h.service.MyListings(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		badRequest(c, err.Error())
		return false
	}
	return true
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Status:  "error",
		Code:    "INVALID_REQUEST",
		Message: message,
	})
}

var errorStatus = []struct {
	err    error
	status int
	code   string
}{
	{models.ErrDuplicateEmail, http.StatusConflict, "DUPLICATE_EMAIL"},
	{models.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{models.ErrInvalidFederatedCredential, http.StatusUnauthorized, "INVALID_FEDERATED_CREDENTIAL"},
	{models.ErrNotAuthenticated, http.StatusUnauthorized, "NOT_AUTHENTICATED"},
	{models.ErrPasswordMismatch, http.StatusBadRequest, "PASSWORD_MISMATCH"},
	{models.ErrWrongPassword, http.StatusBadRequest, "WRONG_PASSWORD"},
	{models.ErrInvalidListing, http.StatusBadRequest, "INVALID_LISTING"},
	{models.ErrUnknownUser, http.StatusNotFound, "UNKNOWN_USER"},
	{models.ErrListingNotFound, http.StatusNotFound, "LISTING_NOT_FOUND"},
}

func (h *Handler) fail(c *gin.Context, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			c.JSON(e.status, models.ErrorResponse{
				Status:  "error",
				Code:    e.code,
				Message: err.Error(),
			})
			return
		}
	}

	h.logger.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Status:  "error",
		Code:    "INTERNAL",
		Message: "Internal server error",
	})
}
