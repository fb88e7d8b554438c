package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rongwang/studyswap/internal/identity"
	"github.com/rongwang/studyswap/internal/ledger"
	"github.com/rongwang/studyswap/internal/listings"
	"github.com/rongwang/studyswap/internal/models"
	"github.com/rongwang/studyswap/internal/observability/metrics"
	"github.com/rongwang/studyswap/internal/repository"
	"github.com/rongwang/studyswap/internal/session"
	"github.com/rongwang/studyswap/internal/users"
)

// ListingBonus is credited to the owner of every new listing
const ListingBonus = 10

// Service defines all the business logic operations
type Service interface {
	// Authentication
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	FederatedLogin(ctx context.Context, req models.FederatedLoginRequest) (*models.AuthResponse, error)
	Logout(ctx context.Context) error
	ActiveUserID() (string, bool)

	// Profile
	CurrentUser(ctx context.Context) (*models.UserResponse, error)
	UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (*models.UserResponse, error)
	PointsHistory(ctx context.Context, limit int) (*models.PointsHistoryResponse, error)
	Dashboard(ctx context.Context) (*models.DashboardResponse, error)

	// Listings
	CreateListing(ctx context.Context, req models.CreateListingRequest) (*models.ListingResponse, error)
	ListListings(ctx context.Context, query models.ListingQuery) (*models.ListingsResponse, error)
	GetListing(ctx context.Context, id string) (*models.ListingResponse, error)
	MyListings(ctx context.Context) (*models.ListingsResponse, error)
}

// Dependencies are the stores a DefaultService coordinates
type Dependencies struct {
	Repository *repository.Repository
	Users      *users.Store
	Ledger     *ledger.Ledger
	Listings   *listings.Store
	Session    *session.Session
	Verifier   identity.Verifier
	Logger     *slog.Logger
}

// DefaultService implements the Service interface
type DefaultService struct {
	repo          *repository.Repository
	users         *users.Store
	ledger        *ledger.Ledger
	listings      *listings.Store
	session       *session.Session
	verifier      identity.Verifier
	logger        *slog.Logger
	jwtSecret     []byte
	tokenDuration time.Duration
	now           func() time.Time
}

// NewDefaultService creates a new DefaultService
func NewDefaultService(deps Dependencies, jwtSecret string, tokenDuration time.Duration) *DefaultService {
	if tokenDuration <= 0 {
		tokenDuration = 24 * time.Hour
	}
	return &DefaultService{
		repo:          deps.Repository,
		users:         deps.Users,
		ledger:        deps.Ledger,
		listings:      deps.Listings,
		session:       deps.Session,
		verifier:      deps.Verifier,
		logger:        deps.Logger,
		jwtSecret:     []byte(jwtSecret),
		tokenDuration: tokenDuration,
		now:           time.Now,
	}
}

// Authentication methods
func (s *DefaultService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	if req.Password != req.ConfirmPassword {
		return nil, models.ErrPasswordMismatch
	}

	user, err := s.users.Create(ctx, models.Registration{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		return nil, err
	}
	metrics.ObserveRegistration("password")
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)

	resp, err := s.startSession(ctx, *user)
	if err != nil {
		return nil, err
	}
	resp.Created = true
	return resp, nil
}

func (s *DefaultService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, *user)
}

func (s *DefaultService) FederatedLogin(ctx context.Context, req models.FederatedLoginRequest) (*models.AuthResponse, error) {
	profile, err := s.verifier.Verify(ctx, req.Credential)
	if err != nil {
		return nil, err
	}

	user, created, err := s.users.AuthenticateFederated(ctx, profile)
	if err != nil {
		return nil, err
	}
	if created {
		metrics.ObserveRegistration("federated")
		s.logger.InfoContext(ctx, "federated user registered", "user_id", user.ID)
	}

	resp, err := s.startSession(ctx, *user)
	if err != nil {
		return nil, err
	}
	resp.Created = created
	return resp, nil
}

func (s *DefaultService) Logout(ctx context.Context) error {
	if err := s.session.Logout(ctx); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "user logged out")
	return nil
}

// ActiveUserID returns the id of the logged-in user
func (s *DefaultService) ActiveUserID() (string, bool) {
	user, ok := s.session.Current()
	if !ok {
		return "", false
	}
	return user.ID, true
}

// Profile methods
func (s *DefaultService) CurrentUser(ctx context.Context) (*models.UserResponse, error) {
	user, err := s.activeUser()
	if err != nil {
		return nil, err
	}
	return &models.UserResponse{Status: "success", User: user.Public()}, nil
}

func (s *DefaultService) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (*models.UserResponse, error) {
	current, err := s.activeUser()
	if err != nil {
		return nil, err
	}

	user, err := s.users.Update(ctx, current.ID, models.ProfilePatch{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Bio:         req.Bio,
		University:  req.University,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		return nil, err
	}

	return &models.UserResponse{Status: "success", User: user.Public()}, nil
}

func (s *DefaultService) PointsHistory(ctx context.Context, limit int) (*models.PointsHistoryResponse, error) {
	current, err := s.activeUser()
	if err != nil {
		return nil, err
	}

	balance, err := s.ledger.Balance(ctx, current.ID)
	if err != nil {
		return nil, err
	}
	history, err := s.ledger.History(ctx, current.ID, limit)
	if err != nil {
		return nil, err
	}

	return &models.PointsHistoryResponse{
		Status:       "success",
		Points:       balance,
		Transactions: history,
	}, nil
}

func (s *DefaultService) Dashboard(ctx context.Context) (*models.DashboardResponse, error) {
	if err := s.session.Resync(ctx, s.users); err != nil {
		return nil, err
	}
	user, err := s.activeUser()
	if err != nil {
		return nil, err
	}

	return &models.DashboardResponse{
		Status:             "success",
		User:               user.Public(),
		RecentTransactions: ledger.Recent(user, ledger.DefaultHistoryLimit),
		Listings:           s.listings.FilterByOwner(ctx, user.ID),
	}, nil
}

// Listing methods

// CreateListing stores the listing, credits the listing bonus and bumps
// the owner's listing count in a single repository write.
func (s *DefaultService) CreateListing(ctx context.Context, req models.CreateListingRequest) (*models.ListingResponse, error) {
	current, ok := s.session.Current()
	if !ok {
		return nil, models.ErrNotAuthenticated
	}

	now := s.now()
	bonus := s.ledger.NewEntry(models.TransactionBonus, ListingBonus, "Listing creation bonus")

	var listing models.Listing
	err := s.repo.Update(ctx, func(tx *repository.Tx) error {
		l, err := listings.Insert(tx, current.ID, models.ListingInput{
			Title:       req.Title,
			City:        req.City,
			Postal:      req.Postal,
			Description: req.Description,
			Type:        req.Type,
			Capacity:    req.Capacity,
			Amenities:   req.Amenities,
		}, now)
		if err != nil {
			return err
		}
		if err := ledger.Apply(tx, current.ID, bonus); err != nil {
			return fmt.Errorf("error crediting listing bonus: %w", err)
		}
		if err := users.RecordListingCreated(tx, current.ID); err != nil {
			return err
		}
		listing = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ObserveListingCreated()
	metrics.ObservePointsTransaction(string(bonus.Type))
	s.logger.InfoContext(ctx, "listing created", "listing_id", listing.ID, "user_id", current.ID, "points", listing.Points)

	return &models.ListingResponse{Status: "success", Listing: listing}, nil
}

func (s *DefaultService) ListListings(ctx context.Context, query models.ListingQuery) (*models.ListingsResponse, error) {
	var found []models.Listing
	if query.City != "" {
		found = s.listings.FilterByCityContains(ctx, query.City, true)
	} else {
		found = s.listings.List(ctx)
	}

	total := len(found)
	if query.Limit > 0 && len(found) > query.Limit {
		found = found[:query.Limit]
	}

	return &models.ListingsResponse{
		Status:   "success",
		Listings: found,
		Total:    total,
	}, nil
}

func (s *DefaultService) GetListing(ctx context.Context, id string) (*models.ListingResponse, error) {
	l, err := s.listings.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.ListingResponse{Status: "success", Listing: *l}, nil
}

func (s *DefaultService) MyListings(ctx context.Context) (*models.ListingsResponse, error) {
	current, err := s.activeUser()
	if err != nil {
		return nil, err
	}

	mine := s.listings.FilterByOwner(ctx, current.ID)
	return &models.ListingsResponse{
		Status:   "success",
		Listings: mine,
		Total:    len(mine),
	}, nil
}

// Helper methods
func (s *DefaultService) activeUser() (models.User, error) {
	user, ok := s.session.Current()
	if !ok {
		return models.User{}, models.ErrNotAuthenticated
	}
	return user, nil
}

func (s *DefaultService) startSession(ctx context.Context, user models.User) (*models.AuthResponse, error) {
	if err := s.session.Login(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.generateJWT(&user)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	public := user.Public()
	return &models.AuthResponse{
		Status:    "success",
		User:      &public,
		Token:     token,
		ExpiresIn: int(s.tokenDuration.Seconds()),
	}, nil
}

func (s *DefaultService) generateJWT(user *models.User) (string, error) {
	expirationTime := s.now().Add(s.tokenDuration)

	claims := jwt.MapClaims{
		"sub": user.ID, // subject
		"exp": expirationTime.Unix(),
		"iat": s.now().Unix(), // issued at
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
