package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rongwang/studyswap/internal/models"
)

// ActiveUser reports who is logged in
type ActiveUser interface {
	ActiveUserID() (string, bool)
}

// AuthMiddleware returns a Gin middleware for authentication. A token is
// only accepted while its subject is the logged-in user.
func AuthMiddleware(active ActiveUser) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get the JWT token from the Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Authentication required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c, "Invalid token format")
			return
		}

		jwtSecret := c.MustGet("jwtSecret").([]byte)
		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			// Validate the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("invalid signing method")
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			abortUnauthorized(c, "Invalid token")
			return
		}

		userID, err := token.Claims.GetSubject()
		if err != nil || userID == "" {
			abortUnauthorized(c, "Invalid user ID in token")
			return
		}

		activeID, ok := active.ActiveUserID()
		if !ok || activeID != userID {
			abortUnauthorized(c, "Session has ended")
			return
		}

		// Set user ID in the context
		c.Set("userId", userID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
		Status:  "error",
		Code:    "NOT_AUTHENTICATED",
		Message: message,
	})
}
