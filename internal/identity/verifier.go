// Package identity verifies credentials issued by the external identity
// provider and turns them into federated profiles.
package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rongwang/studyswap/internal/models"
)

// Verifier validates a provider credential
type Verifier interface {
	Verify(ctx context.Context, credential string) (models.FederatedProfile, error)
}

// Claims is the payload of a provider credential
type Claims struct {
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Email      string `json:"email"`
	Picture    string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// HMACVerifier checks HS256-signed credentials
type HMACVerifier struct {
	secret   []byte
	issuer   string
	audience string
}

// NewHMACVerifier creates a verifier. Empty issuer or audience are not checked.
func NewHMACVerifier(secret, issuer, audience string) *HMACVerifier {
	return &HMACVerifier{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
	}
}

// Verify parses credential and returns the profile it vouches for
func (v *HMACVerifier) Verify(_ context.Context, credential string) (models.FederatedProfile, error) {
	if len(v.secret) == 0 {
		return models.FederatedProfile{}, fmt.Errorf("%w: federated login is not configured", models.ErrInvalidFederatedCredential)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(credential, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return models.FederatedProfile{}, fmt.Errorf("%w: %v", models.ErrInvalidFederatedCredential, err)
	}

	if strings.TrimSpace(claims.Subject) == "" {
		return models.FederatedProfile{}, fmt.Errorf("%w: missing subject", models.ErrInvalidFederatedCredential)
	}
	if strings.TrimSpace(claims.Email) == "" {
		return models.FederatedProfile{}, fmt.Errorf("%w: missing email", models.ErrInvalidFederatedCredential)
	}

	profile := models.FederatedProfile{
		FederatedID: claims.Subject,
		FirstName:   claims.GivenName,
		LastName:    claims.FamilyName,
		Email:       claims.Email,
	}
	if claims.Picture != "" {
		picture := claims.Picture
		profile.ProfileImageRef = &picture
	}
	return profile, nil
}
