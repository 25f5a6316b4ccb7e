package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"textorigin/internal/models"
)

// AuthService guards the admin endpoints with a single shared password and short-lived
// signed session tokens.
type AuthService interface {
	// Login returns a signed token and its expiration time.
	Login(ctx context.Context, password string) (string, time.Time, error)
	ValidateToken(ctx context.Context, token string) (*models.Claims, error)
	VerifyPassword(password string) bool
	Logout(ctx context.Context, claims *models.Claims) error
}

// AuthConfig configures AuthService.
type AuthConfig struct {
	PasswordHash string
	Secret       []byte
	TokenTTL     time.Duration
}

type authService struct {
	cfg      AuthConfig
	denylist TokenDenylist
	logger   *zap.Logger
	now      func() time.Time
}

func NewAuthService(cfg AuthConfig, denylist TokenDenylist, logger *zap.Logger) AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	if denylist == nil {
		denylist = NewMemoryDenylist()
	}
	return &authService{cfg: cfg, denylist: denylist, logger: logger, now: time.Now}
}

func (s *authService) VerifyPassword(password string) bool {
	if password == "" || s.cfg.PasswordHash == "" {
		return false
	}
	ok, err := CheckPassword(s.cfg.PasswordHash, password)
	if err != nil {
		s.logger.Error("Failed to verify admin password", zap.Error(err))
		return false
	}
	return ok
}

func (s *authService) Login(_ context.Context, password string) (string, time.Time, error) {
	if !s.VerifyPassword(password) {
		return "", time.Time{}, ErrInvalidCredentials
	}

	now := s.now()
	expirationTime := now.Add(s.cfg.TokenTTL)
	claims := &models.Claims{
		Role: models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   models.RoleAdmin,
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.cfg.Secret)
	if err != nil {
		s.logger.Error("Failed to generate JWT token", zap.Error(err))
		return "", time.Time{}, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("Admin logged in", zap.String("token_id", claims.ID))
	return tokenString, expirationTime, nil
}

// ValidateToken parses and verifies a token. Expired tokens yield an error wrapping
// jwt.ErrTokenExpired.
func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*models.Claims, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.cfg.Secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Role != models.RoleAdmin {
		return nil, jwt.ErrTokenInvalidClaims
	}

	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check token denylist: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

func (s *authService) Logout(ctx context.Context, claims *models.Claims) error {
	if claims == nil || claims.ID == "" {
		return errors.New("token has no id")
	}
	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := s.denylist.Revoke(ctx, claims.ID, expiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	s.logger.Info("Admin logged out", zap.String("token_id", claims.ID))
	return nil
}
