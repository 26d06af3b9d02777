package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"field-service-server/models"
	"field-service-server/services"
)

// Authenticator guards routes with bearer-token authentication. The user is
// always re-fetched from the database so role and standing reflect the
// current record, never a stale token payload.
type Authenticator struct {
	db     *gorm.DB
	tokens *services.TokenService
}

// NewAuthenticator creates an authenticator backed by db and tokens.
func NewAuthenticator(db *gorm.DB, tokens *services.TokenService) *Authenticator {
	return &Authenticator{db: db, tokens: tokens}
}

// RequireAuth validates the bearer token, loads the account, and stores it
// in the request context. Missing, malformed, expired, or tampered tokens
// are rejected, as are tokens for deactivated accounts.
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Authorization header required")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			abortUnauthorized(c, "Token must be in format: Bearer <token>")
			return
		}

		userID, err := a.tokens.Validate(tokenString)
		if err != nil {
			abortUnauthorized(c, "Token is invalid or expired")
			return
		}

		var user models.User
		if err := a.db.First(&user, userID).Error; err != nil {
			abortUnauthorized(c, "User associated with token not found")
			return
		}

		if !user.IsActive {
			abortUnauthorized(c, "User account is deactivated")
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Next()
	}
}

// RequireRole allows only the listed roles past. Must run after RequireAuth.
func (a *Authenticator) RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get("user")
		if !exists {
			abortUnauthorized(c, "Authentication required")
			return
		}

		user := value.(models.User)
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"message": "You do not have permission to perform this action",
			"error":   "forbidden",
		})
		c.Abort()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": message,
		"error":   "unauthenticated",
	})
	c.Abort()
}
