package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// WelcomePoints is the grant every new account starts with
const WelcomePoints = 100

// TransactionType classifies a points ledger entry
type TransactionType string

const (
	TransactionWelcome TransactionType = "welcome"
	TransactionEarn    TransactionType = "earn"
	TransactionSpend   TransactionType = "spend"
	TransactionBonus   TransactionType = "bonus"
	TransactionRefund  TransactionType = "refund"
	TransactionListing TransactionType = "listing"
)

// Valid reports whether t is one of the known transaction types
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionWelcome, TransactionEarn, TransactionSpend,
		TransactionBonus, TransactionRefund, TransactionListing:
		return true
	}
	return false
}

// ListingType is the kind of accommodation offered
type ListingType string

const (
	ListingRoom      ListingType = "room"
	ListingStudio    ListingType = "studio"
	ListingApartment ListingType = "apartment"
)

// Valid reports whether t is one of the known listing types
func (t ListingType) Valid() bool {
	switch t {
	case ListingRoom, ListingStudio, ListingApartment:
		return true
	}
	return false
}

// BasePoints returns the nightly price of a single-person listing of this type
func (t ListingType) BasePoints() int {
	switch t {
	case ListingStudio:
		return 35
	case ListingApartment:
		return 50
	default:
		return 20
	}
}

// ListingPoints computes the price of a listing: the type base plus 10 points
// per additional guest.
func ListingPoints(t ListingType, capacity int) int {
	return t.BasePoints() + 10*(capacity-1)
}

// Stats holds the counters shown on the dashboard
type Stats struct {
	Exchanges int `json:"exchanges"`
	Listings  int `json:"listings"`
	Reviews   int `json:"reviews"`
}

// Transaction is an immutable points ledger entry
type Transaction struct {
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	Amount      int             `json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
}

// User represents an account. PointsHistory is ordered newest first.
type User struct {
	ID              string        `json:"id"`
	FirstName       string        `json:"firstName"`
	LastName        string        `json:"lastName"`
	Email           string        `json:"email"`
	PasswordHash    *string       `json:"passwordHash"`
	FederatedID     *string       `json:"federatedId"`
	ProfileImageRef *string       `json:"profileImageRef"`
	Points          int           `json:"points"`
	CreatedAt       time.Time     `json:"createdAt"`
	Stats           Stats         `json:"stats"`
	PointsHistory   []Transaction `json:"pointsHistory"`
	Bio             string        `json:"bio"`
	University      string        `json:"university"`
}

// NewUserInput is everything needed to build a User.
//
// Optional fields default as follows: ID to a fresh uuid, PasswordHash,
// FederatedID and ProfileImageRef to nil, Bio and University to "".
type NewUserInput struct {
	ID              string
	FirstName       string
	LastName        string
	Email           string
	PasswordHash    *string
	FederatedID     *string
	ProfileImageRef *string
	Bio             string
	University      string
}

// NewUser builds a fresh account holding the welcome grant
func NewUser(in NewUserInput, now time.Time) User {
	id := in.ID
	if id == "" {
		id = uuid.New().String()
	}

	now = now.UTC()
	return User{
		ID:              id,
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		Email:           in.Email,
		PasswordHash:    in.PasswordHash,
		FederatedID:     in.FederatedID,
		ProfileImageRef: in.ProfileImageRef,
		Points:          WelcomePoints,
		CreatedAt:       now,
		PointsHistory: []Transaction{
			NewTransaction(TransactionWelcome, WelcomePoints, "Welcome points", now),
		},
		Bio:        in.Bio,
		University: in.University,
	}
}

// NewTransaction builds a ledger entry with a fresh id
func NewTransaction(t TransactionType, amount int, description string, date time.Time) Transaction {
	return Transaction{
		ID:          uuid.New().String(),
		Type:        t,
		Amount:      amount,
		Description: description,
		Date:        date.UTC(),
	}
}

// DisplayName is the "First Last" form used on listings
func (u User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// HasPassword reports whether the account can log in with a password
func (u User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// HistoryTotal sums every recorded transaction
func (u User) HistoryTotal() int {
	total := 0
	for _, t := range u.PointsHistory {
		total += t.Amount
	}
	return total
}

// CheckPoints verifies that the balance matches the ledger history
func (u User) CheckPoints() error {
	if total := u.HistoryTotal(); total != u.Points {
		return fmt.Errorf("%w: user %s has %d points, history sums to %d",
			ErrPointsInvariant, u.ID, u.Points, total)
	}
	return nil
}

// Clone returns a deep copy that shares no slices or pointers with u
func (u User) Clone() User {
	c := u
	c.PasswordHash = cloneString(u.PasswordHash)
	c.FederatedID = cloneString(u.FederatedID)
	c.ProfileImageRef = cloneString(u.ProfileImageRef)
	if u.PointsHistory != nil {
		c.PointsHistory = make([]Transaction, len(u.PointsHistory))
		copy(c.PointsHistory, u.PointsHistory)
	}
	return c
}

// Public strips credentials for API responses
func (u User) Public() PublicUser {
	return PublicUser{
		ID:              u.ID,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Email:           u.Email,
		Federated:       u.FederatedID != nil,
		ProfileImageRef: u.ProfileImageRef,
		Points:          u.Points,
		CreatedAt:       u.CreatedAt,
		Stats:           u.Stats,
		Bio:             u.Bio,
		University:      u.University,
	}
}

// PublicUser is the credential-free view of a User
type PublicUser struct {
	ID              string    `json:"id"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Email           string    `json:"email"`
	Federated       bool      `json:"federated"`
	ProfileImageRef *string   `json:"profileImageRef,omitempty"`
	Points          int       `json:"points"`
	CreatedAt       time.Time `json:"createdAt"`
	Stats           Stats     `json:"stats"`
	Bio             string    `json:"bio"`
	University      string    `json:"university"`
}

// Listing represents an accommodation offered for exchange
type Listing struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	City        string      `json:"city"`
	Postal      string      `json:"postal"`
	Description string      `json:"description"`
	Type        ListingType `json:"type"`
	Capacity    int         `json:"capacity"`
	Points      int         `json:"points"`
	Amenities   []string    `json:"amenities"`
	UserID      string      `json:"userId"`
	UserName    string      `json:"userName"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// Clone returns a copy that does not share the amenities slice
func (l Listing) Clone() Listing {
	c := l
	if l.Amenities != nil {
		c.Amenities = make([]string, len(l.Amenities))
		copy(c.Amenities, l.Amenities)
	}
	return c
}

// FederatedProfile is what the identity provider vouches for
type FederatedProfile struct {
	FederatedID     string
	FirstName       string
	LastName        string
	Email           string
	ProfileImageRef *string
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
