package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"textorigin/internal/service"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newAuth(t *testing.T) service.AuthService {
	t.Helper()
	hash, err := service.HashPassword("geheim", "argon2id")
	require.NoError(t, err)
	return service.NewAuthService(service.AuthConfig{PasswordHash: hash, Secret: []byte("s3cret")}, nil, zap.NewNop())
}

func protectedRouter(auth service.AuthService, limiter *PasswordLimiter) *gin.Engine {
	r := gin.New()
	r.POST("/add_data", AdminAuth(auth, limiter, zap.NewNop()), func(c *gin.Context) {
		var req struct {
			Text string `json:"text"`
		}
		// the body must still be readable after the middleware consumed it
		if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		_, hasClaims := Claims(c)
		c.JSON(http.StatusOK, gin.H{"text": req.Text, "claims": hasClaims})
	})
	return r
}

func TestAdminAuth(t *testing.T) {
	t.Parallel()

	auth := newAuth(t)
	token, _, err := auth.Login(context.Background(), "geheim")
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		body       string
		wantStatus int
		wantBody   string
	}{
		{"bearer token", "Bearer " + token, `{"text":"hallo"}`, http.StatusOK, `{"text":"hallo","claims":true}`},
		{"legacy password", "", `{"text":"hallo","password":"geheim"}`, http.StatusOK, `{"text":"hallo","claims":false}`},
		{"wrong password", "", `{"text":"hallo","password":"falsch"}`, http.StatusUnauthorized, `{"error":"Autorisierung fehlgeschlagen."}`},
		{"no credentials", "", `{"text":"hallo"}`, http.StatusUnauthorized, `{"error":"Autorisierung fehlgeschlagen."}`},
		{"malformed header", "Token " + token, `{}`, http.StatusUnauthorized, `{"error":"Autorisierung fehlgeschlagen."}`},
		{"bad token", "Bearer nope", `{}`, http.StatusUnauthorized, `{"error":"Autorisierung fehlgeschlagen."}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodPost, "/add_data", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protectedRouter(auth, nil).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestAdminAuthRejectsRevokedToken(t *testing.T) {
	t.Parallel()

	auth := newAuth(t)
	token, _, err := auth.Login(context.Background(), "geheim")
	require.NoError(t, err)
	claims, err := auth.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	require.NoError(t, auth.Logout(context.Background(), claims))

	req := httptest.NewRequest(http.MethodPost, "/add_data", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	protectedRouter(auth, nil).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminAuthThrottlesPasswordField(t *testing.T) {
	t.Parallel()

	auth := newAuth(t)
	token, _, err := auth.Login(context.Background(), "geheim")
	require.NoError(t, err)
	r := protectedRouter(auth, NewPasswordLimiter(0.001, 3))

	send := func(remote, header, body string) int {
		req := httptest.NewRequest(http.MethodPost, "/add_data", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = remote
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	codes := map[int]int{}
	for i := 0; i < 20; i++ {
		codes[send("192.0.2.7:4000", "", `{"text":"x","password":"falsch"}`)]++
	}
	assert.Equal(t, map[int]int{http.StatusUnauthorized: 3, http.StatusTooManyRequests: 17}, codes)

	// the right password does not help once the budget is spent
	assert.Equal(t, http.StatusTooManyRequests, send("192.0.2.7:4000", "", `{"text":"x","password":"geheim"}`))
	// tokens are not password attempts
	assert.Equal(t, http.StatusOK, send("192.0.2.7:4000", "Bearer "+token, `{"text":"x"}`))
	// other clients keep their own budget
	assert.Equal(t, http.StatusOK, send("192.0.2.8:4000", "", `{"text":"x","password":"geheim"}`))
}

func TestPasswordLimiter(t *testing.T) {
	t.Parallel()

	l := NewPasswordLimiter(0.001, 2)
	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))

	var unlimited *PasswordLimiter
	for i := 0; i < 10; i++ {
		assert.True(t, unlimited.Allow("a"))
	}
}

func TestCORS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		origins []string
		origin  string
		want    string
	}{
		{"any origin by default", nil, "http://example.org", "*"},
		{"configured origin", []string{"http://localhost:3000"}, "http://localhost:3000", "http://localhost:3000"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := gin.New()
			r.Use(CORS(tt.origins))
			r.POST("/predict", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodOptions, "/predict", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestRequestLoggerLevelByStatus(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/bad", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, zap.ErrorLevel, entries[2].Level)
	assert.Equal(t, "/boom", entries[2].ContextMap()["path"])
}

func TestMaxBodySize(t *testing.T) {
	t.Parallel()

	r := gin.New()
	r.Use(MaxBodySize(16))
	r.POST("/predict", func(c *gin.Context) {
		var req map[string]string
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(`{"text":"`+strings.Repeat("x", 64)+`"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
