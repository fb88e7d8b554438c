package models

// Request models
type RegisterRequest struct {
	FirstName       string `json:"firstName" binding:"required"`
	LastName        string `json:"lastName" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type FederatedLoginRequest struct {
	Credential string `json:"credential" binding:"required"`
}

type UpdateProfileRequest struct {
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName" binding:"required"`
	Bio         string `json:"bio"`
	University  string `json:"university"`
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword" binding:"omitempty,min=6,max=72"`
}

type CreateListingRequest struct {
	Title       string      `json:"title" binding:"required"`
	City        string      `json:"city" binding:"required"`
	Postal      string      `json:"postal"`
	Description string      `json:"description"`
	Type        ListingType `json:"type" binding:"required,oneof=room studio apartment"`
	Capacity    int         `json:"capacity" binding:"required,min=1"`
	Amenities   []string    `json:"amenities"`
}

// Registration is the User Store input for password accounts
type Registration struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// ProfilePatch holds the editable profile fields. Setting NewPassword
// changes the password and requires OldPassword to match the current one.
type ProfilePatch struct {
	FirstName   string
	LastName    string
	Bio         string
	University  string
	OldPassword string
	NewPassword string
}

// ListingInput is the Listing Store input; Points is derived from Type and Capacity
type ListingInput struct {
	Title       string
	City        string
	Postal      string
	Description string
	Type        ListingType
	Capacity    int
	Amenities   []string
}

// ListingQuery filters the public listing feed
type ListingQuery struct {
	City  string `form:"city"`
	Limit int    `form:"limit" binding:"omitempty,min=0"`
}

// Response models
type AuthResponse struct {
	Status    string      `json:"status"`
	User      *PublicUser `json:"user,omitempty"`
	Created   bool        `json:"created,omitempty"`
	Token     string      `json:"token,omitempty"`
	ExpiresIn int         `json:"expiresIn,omitempty"`
}

type UserResponse struct {
	Status string     `json:"status"`
	User   PublicUser `json:"user"`
}

type ListingResponse struct {
	Status  string  `json:"status"`
	Listing Listing `json:"listing"`
}

type ListingsResponse struct {
	Status   string    `json:"status"`
	Listings []Listing `json:"listings"`
	Total    int       `json:"total"`
}

type PointsHistoryResponse struct {
	Status       string        `json:"status"`
	Points       int           `json:"points"`
	Transactions []Transaction `json:"transactions"`
}

type DashboardResponse struct {
	Status             string        `json:"status"`
	User               PublicUser    `json:"user"`
	RecentTransactions []Transaction `json:"recentTransactions"`
	Listings           []Listing     `json:"listings"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
