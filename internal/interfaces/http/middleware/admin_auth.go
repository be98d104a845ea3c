package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/infrastructure/auth"
)

// Context keys and header constants for admin authentication
const (
	AdminOperatorKey = "admin_operator"
	AuthHeaderKey    = "Authorization"
	BearerPrefix     = "Bearer "
)

// AdminAuth guards back-office routes with a bearer token issued by the
// auth.JWTService
func AdminAuth(jwtService *auth.JWTService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" || !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, "Authentication required")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			logger.Warn("admin token rejected",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
			)
			message := "Invalid token"
			if err == auth.ErrExpiredToken {
				message = "Token has expired"
			}
			abortUnauthorized(c, message)
			return
		}

		c.Set(AdminOperatorKey, claims.Operator)
		c.Next()
	}
}

// GetAdminOperator returns the authenticated operator, or an empty string
func GetAdminOperator(c *gin.Context) string {
	return c.GetString(AdminOperatorKey)
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}
