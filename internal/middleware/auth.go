package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"textorigin/internal/models"
	"textorigin/internal/service"
)

// ClaimsKey holds the *models.Claims of a token-authenticated request. Requests
// authenticated by the legacy password field carry no claims.
const ClaimsKey = "claims"

const (
	msgUnauthorized    = "Autorisierung fehlgeschlagen."
	msgTooManyAttempts = "Zu viele Anmeldeversuche. Bitte später erneut versuchen."
)

type legacyAuthBody struct {
	Password string `json:"password"`
}

// AdminAuth accepts "Authorization: Bearer <token>" or, for older clients, the admin
// password in a JSON body field "password". Password attempts count against limiter.
func AdminAuth(auth service.AuthService, limiter *PasswordLimiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			var body legacyAuthBody
			if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil || body.Password == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgUnauthorized})
				return
			}
			if !limiter.Allow(c.ClientIP()) {
				logger.Warn("Admin password attempts throttled", zap.String("client_ip", c.ClientIP()))
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": msgTooManyAttempts})
				return
			}
			if !auth.VerifyPassword(body.Password) {
				logger.Warn("Admin password field rejected", zap.String("client_ip", c.ClientIP()))
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgUnauthorized})
				return
			}
			logger.Debug("Admin authenticated by password field", zap.String("path", c.FullPath()))
			c.Next()
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgUnauthorized})
			return
		}

		claims, err := auth.ValidateToken(c.Request.Context(), parts[1])
		if err != nil {
			switch {
			case errors.Is(err, jwt.ErrTokenExpired):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token abgelaufen."})
			case errors.Is(err, service.ErrTokenRevoked):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgUnauthorized})
			default:
				logger.Warn("Invalid JWT token", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgUnauthorized})
			}
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// Claims returns the token claims of the request, if any.
func Claims(c *gin.Context) (*models.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*models.Claims)
	return claims, ok
}
