package middleware

import (
	"net/http"
	"strings"

	"xenarc-chat-demo/backend/pkg/jwt"
	"xenarc-chat-demo/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// JWTAuth guards routes behind a Bearer token. Validated claims land in
// the context under "claims"; the email also feeds the request logger.
func JWTAuth(jwtService *jwt.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			log.Warn("token validation failed", "error", err.Error(), "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("claims", claims)
		c.Set("userEmail", claims.Email)
		c.Next()
	}
}
