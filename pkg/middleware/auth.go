package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/haulport/logistics-backend/pkg/common"
)

const (
	userIDKey   = "user_id"
	userRoleKey = "user_role"
)

// Claims are the JWT claims issued at login
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates the Bearer token and stores the caller identity
// in the gin context
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			common.ErrorResponse(c, http.StatusUnauthorized, "authorization header required")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			common.ErrorResponse(c, http.StatusUnauthorized, "bearer token required")
			c.Abort()
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			common.ErrorResponse(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(userRoleKey, claims.Role)
		c.Next()
	}
}

// RequireRole aborts the request unless the authenticated user has one of
// the given roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(userRoleKey)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		common.ErrorResponse(c, http.StatusForbidden, "insufficient permissions")
		c.Abort()
	}
}

// GetUserID extracts the authenticated user's ID from the gin context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	raw := c.GetString(userIDKey)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, common.NewUnauthorizedError("unauthorized")
	}
	return id, nil
}

// GetUserRole extracts the authenticated user's role from the gin context
func GetUserRole(c *gin.Context) string {
	return c.GetString(userRoleKey)
}
