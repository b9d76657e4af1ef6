package delivery

import (
	"net/http"
	"strings"

	authdomain "flux-backend/internal/auth/domain"
	"flux-backend/internal/auth/usecase"

	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// AuthMiddleware rejects requests without a valid bearer token and stores the
// session in the gin context.
func AuthMiddleware(authUsecase usecase.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}

		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		session, err := authUsecase.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

// SessionFrom returns the session set by AuthMiddleware, nil on public routes.
func SessionFrom(c *gin.Context) *authdomain.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	session, _ := v.(*authdomain.Session)
	return session
}
