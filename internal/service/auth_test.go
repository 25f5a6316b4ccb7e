package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"textorigin/internal/models"
)

func newAuth(t *testing.T) *authService {
	t.Helper()
	hash, err := HashPassword("geheim", "bcrypt")
	require.NoError(t, err)
	svc := NewAuthService(AuthConfig{PasswordHash: hash, Secret: []byte("test-secret")}, nil, zap.NewNop())
	return svc.(*authService)
}

func TestLogin(t *testing.T) {
	t.Parallel()
	svc := newAuth(t)
	ctx := context.Background()

	_, _, err := svc.Login(ctx, "falsch")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	before := time.Now()
	token, exp, err := svc.Login(ctx, "geheim")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, before.Add(time.Hour), exp, 5*time.Second)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestConcurrentSessionsAreIndependent(t *testing.T) {
	t.Parallel()
	svc := newAuth(t)
	ctx := context.Background()

	a, _, err := svc.Login(ctx, "geheim")
	require.NoError(t, err)
	b, _, err := svc.Login(ctx, "geheim")
	require.NoError(t, err)

	claimsA, err := svc.ValidateToken(ctx, a)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, claimsA))

	_, err = svc.ValidateToken(ctx, a)
	assert.ErrorIs(t, err, ErrTokenRevoked)
	_, err = svc.ValidateToken(ctx, b)
	assert.NoError(t, err)
}

func TestValidateTokenRejects(t *testing.T) {
	t.Parallel()
	svc := newAuth(t)
	ctx := context.Background()

	token, _, err := svc.Login(ctx, "geheim")
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		expired := newAuth(t)
		expired.cfg.Secret = svc.cfg.Secret
		expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := expired.ValidateToken(ctx, token)
		assert.True(t, errors.Is(err, jwt.ErrTokenExpired), err)
	})

	t.Run("other secret", func(t *testing.T) {
		other := newAuth(t)
		other.cfg.Secret = []byte("another-secret")
		_, err := other.ValidateToken(ctx, token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken(ctx, "not.a.token")
		assert.Error(t, err)
	})

	t.Run("wrong role", func(t *testing.T) {
		claims := &models.Claims{
			Role: "reader",
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        "x",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.cfg.Secret)
		require.NoError(t, err)
		_, err = svc.ValidateToken(ctx, forged)
		assert.Error(t, err)
	})
}

func TestMemoryDenylist(t *testing.T) {
	t.Parallel()
	d := NewMemoryDenylist()
	ctx := context.Background()

	require.NoError(t, d.Revoke(ctx, "a", time.Now().Add(time.Minute)))
	require.NoError(t, d.Revoke(ctx, "past", time.Now().Add(-time.Minute)))

	revoked, err := d.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = d.IsRevoked(ctx, "past")
	require.NoError(t, err)
	assert.False(t, revoked)
}
