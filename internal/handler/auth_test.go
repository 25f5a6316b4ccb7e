package handler

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"textorigin/internal/middleware"
	"textorigin/internal/repository"
	"textorigin/internal/service"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newLoginRouter(t *testing.T, limiter *middleware.PasswordLimiter) (*gin.Engine, *test.Hook) {
	t.Helper()
	hash, err := service.HashPassword("geheim", "argon2id")
	require.NoError(t, err)
	auth := service.NewAuthService(service.AuthConfig{PasswordHash: hash, Secret: []byte("k")}, nil, zap.NewNop())

	log, hook := test.NewNullLogger()
	r := gin.New()
	r.POST("/admin_login", NewAuthHandler(auth, nil, limiter, log).Login)
	return r, hook
}

func postLogin(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/admin_login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.1:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginAuditLog(t *testing.T) {
	r, hook := newLoginRouter(t, middleware.NewPasswordLimiter(100, 100))

	w := postLogin(r, `{"password":"falsch"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), msgWrongPassword)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "192.0.2.1", hook.LastEntry().Data["client_ip"])

	w = postLogin(r, `{"password":"geheim"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token"`)
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
}

func TestLoginMissingPassword(t *testing.T) {
	r, _ := newLoginRouter(t, middleware.NewPasswordLimiter(100, 100))
	for _, body := range []string{`{}`, `{"password":""}`, `kein json`} {
		w := postLogin(r, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Contains(t, w.Body.String(), msgPasswordMissing, body)
	}
}

func TestLoginThrottled(t *testing.T) {
	r, _ := newLoginRouter(t, middleware.NewPasswordLimiter(0.001, 2))

	assert.Equal(t, http.StatusUnauthorized, postLogin(r, `{"password":"a"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, postLogin(r, `{"password":"b"}`).Code)

	w := postLogin(r, `{"password":"geheim"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), msgTooManyLogins)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.ErrEmptyText, http.StatusBadRequest},
		{service.ErrInvalidLabel, http.StatusBadRequest},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{repository.ErrNotFound, http.StatusNotFound},
		{service.ErrJobNotFound, http.StatusNotFound},
		{service.ErrModelUnavailable, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
