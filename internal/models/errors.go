package models

import "errors"

// Account errors
var (
	ErrDuplicateEmail             = errors.New("an account with this email already exists") // 409
	ErrInvalidCredentials         = errors.New("invalid email or password")                 // 401
	ErrPasswordMismatch           = errors.New("passwords do not match")                    // 400
	ErrWrongPassword              = errors.New("current password is incorrect")             // 400
	ErrNotAuthenticated           = errors.New("not authenticated")                         // 401
	ErrUnknownUser                = errors.New("unknown user")                              // 404
	ErrInvalidFederatedCredential = errors.New("invalid federated credential")              // 401
)

// Ledger errors
var (
	ErrInvalidTransactionType = errors.New("invalid transaction type")                // 400
	ErrPointsInvariant        = errors.New("points balance does not match history") // 500
)

// Listing errors
var (
	ErrListingNotFound = errors.New("listing not found") // 404
	ErrInvalidListing  = errors.New("invalid listing")   // 400
)
