package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"textorigin/internal/metrics"
	"textorigin/internal/middleware"
	"textorigin/internal/service"
)

type AuthHandler interface {
	Login(c *gin.Context)
	Logout(c *gin.Context)
}

type authHandler struct {
	authService service.AuthService
	metrics     *metrics.Metrics
	limiter     *middleware.PasswordLimiter
	log         *logrus.Logger
}

// NewAuthHandler shares limiter with middleware.AdminAuth so both password paths draw
// from one budget per client.
func NewAuthHandler(authService service.AuthService, m *metrics.Metrics, limiter *middleware.PasswordLimiter, log *logrus.Logger) AuthHandler {
	return &authHandler{
		authService: authService,
		metrics:     m,
		limiter:     limiter,
		log:         log,
	}
}

type LoginRequest struct {
	Password string `json:"password"`
}

// Login exchanges the admin password for a session token.
// POST /admin_login
func (h *authHandler) Login(c *gin.Context) {
	ip := c.ClientIP()
	if !h.limiter.Allow(ip) {
		h.log.WithField("client_ip", ip).Warn("Admin login throttled")
		h.metrics.RecordLogin("throttled")
		abortJSON(c, http.StatusTooManyRequests, msgTooManyLogins)
		return
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Password == "" {
		abortJSON(c, http.StatusBadRequest, msgPasswordMissing)
		return
	}

	tokenString, expirationTime, err := h.authService.Login(c.Request.Context(), req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.log.WithField("client_ip", ip).Warn("Admin login with wrong password")
			h.metrics.RecordLogin("failure")
			abortJSON(c, http.StatusUnauthorized, msgWrongPassword)
			return
		}
		h.log.Errorf("Failed to login admin: %v", err)
		h.metrics.RecordLogin("error")
		abortJSON(c, http.StatusInternalServerError, msgInternal)
		return
	}

	h.log.WithField("client_ip", ip).Info("Admin login successful")
	h.metrics.RecordLogin("success")
	c.JSON(http.StatusOK, gin.H{
		"message":    msgLoginOK,
		"token":      tokenString,
		"expires_at": expirationTime,
	})
}

// Logout revokes the presented token. Password-authenticated requests have no token
// and succeed without effect.
// POST /admin_logout
func (h *authHandler) Logout(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"message": msgLogoutOK})
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		h.log.Errorf("Failed to revoke token %s: %v", claims.ID, err)
		abortJSON(c, http.StatusInternalServerError, msgInternal)
		return
	}

	h.log.WithField("token_id", claims.ID).Info("Admin logged out")
	c.JSON(http.StatusOK, gin.H{"message": msgLogoutOK})
}
