// Package identitytest issues provider credentials for tests.
package identitytest

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rongwang/studyswap/internal/identity"
)

// Credential signs an HS256 credential for subject that expires in an hour
func Credential(secret, subject, email string) (string, error) {
	return Sign(secret, identity.Claims{
		GivenName:  "Utilisateur",
		FamilyName: "Google",
		Email:      email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
}

// Sign signs arbitrary claims with secret
func Sign(secret string, claims identity.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
