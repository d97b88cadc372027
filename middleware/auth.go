package middleware

import (
	"errors"
	"net/http"
	"strings"

	"cmticaret/services"

	"github.com/gin-gonic/gin"
)

const (
	UserContextKey  = "userID"
	AdminContextKey = "isAdmin"
)

// Auth validates the Bearer token and stores the caller identity in the
// request context.
func Auth(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Oturum açmanız gerekiyor"})
			return
		}

		claims, err := tokens.Validate(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Geçersiz oturum"})
			return
		}

		userID, _ := claims["sub"].(string)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Geçersiz oturum"})
			return
		}
		isAdmin, _ := claims["is_admin"].(bool)

		c.Set(UserContextKey, userID)
		c.Set(AdminContextKey, isAdmin)
		c.Next()
	}
}

// RequireAdmin rejects non-admin callers. It must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Bu işlem için yetkiniz yok"})
			return
		}
		c.Next()
	}
}

func GetUserID(c *gin.Context) (string, error) {
	if val, ok := c.Get(UserContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id, nil
		}
	}
	return "", errors.New("user ID not found in context")
}

func IsAdmin(c *gin.Context) bool {
	if val, ok := c.Get(AdminContextKey); ok {
		if admin, ok := val.(bool); ok {
			return admin
		}
	}
	return false
}
