package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"calendar_notes/internal/config"
	"calendar_notes/pkg/jwt"
	"calendar_notes/pkg/logger"
)

// AuthMiddleware проверяет access-токены, выданные внешним
// identity-сервисом. Сам выпуск токенов живет не здесь.
type AuthMiddleware struct {
	jwtCfg config.JWTConfig
	log    logger.Logger
}

func NewAuthMiddleware(jwtCfg config.JWTConfig, log logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtCfg: jwtCfg,
		log:    log,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := jwt.ValidateAccessToken(parts[1], m.jwtCfg.AccessSecret, m.jwtCfg.Issuer)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_name", claims.UserName)
		c.Next()
	}
}
