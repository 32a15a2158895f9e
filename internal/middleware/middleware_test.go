package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/qs-lzh/movie-review/internal/auth"
	"github.com/qs-lzh/movie-review/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(jwtService *auth.JWTService, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{Authenticate(jwtService)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		claims := GetClaims(c)
		var body struct {
			Token string `json:"token"`
			Note  string `json:"note"`
		}
		_ = c.ShouldBindJSON(&body)
		c.JSON(http.StatusOK, gin.H{"user": claims.IDString(), "note": body.Note})
	})
	r.Any("/users/:id", handlers...)
	return r
}

func TestAuthenticateTokenPrecedence(t *testing.T) {
	jwtService := auth.NewJWTService("secret")
	headerToken, err := jwtService.GenerateToken(1, model.RoleUser)
	require.NoError(t, err)
	cookieToken, err := jwtService.GenerateToken(2, model.RoleUser)
	require.NoError(t, err)
	bodyToken, err := jwtService.GenerateToken(3, model.RoleUser)
	require.NoError(t, err)
	r := newEngine(jwtService)

	req := httptest.NewRequest(http.MethodPost, "/users/9", strings.NewReader(`{"token":"`+bodyToken+`","note":"kept"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+headerToken)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: cookieToken})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"user":"1"`)

	req = httptest.NewRequest(http.MethodPost, "/users/9", strings.NewReader(`{"token":"`+bodyToken+`"}`))
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: cookieToken})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"user":"2"`)

	req = httptest.NewRequest(http.MethodPost, "/users/9", strings.NewReader(`{"token":"`+bodyToken+`","note":"kept"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"user":"3"`)
	assert.Contains(t, w.Body.String(), `"note":"kept"`, "body is still readable by the handler")
}

func TestAuthenticateFailures(t *testing.T) {
	jwtService := auth.NewJWTService("secret")
	r := newEngine(jwtService)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/1", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	expired, err := jwtService.WithTTL(-time.Minute).GenerateToken(1, model.RoleUser)
	require.NoError(t, err)
	foreign, err := auth.NewJWTService("other").GenerateToken(1, model.RoleUser)
	require.NoError(t, err)

	for _, token := range []string{expired, foreign, "garbage"} {
		req := httptest.NewRequest(http.MethodGet, "/users/1", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t, `{"success":false,"message":"Invalid or expired token."}`, w.Body.String())
	}
}

func TestRequireRoleAndSelf(t *testing.T) {
	jwtService := auth.NewJWTService("secret")
	userToken, _ := jwtService.GenerateToken(5, model.RoleUser)
	adminToken, _ := jwtService.GenerateToken(6, model.RoleAdmin)

	call := func(r *gin.Engine, path, token string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	admins := newEngine(jwtService, RequireRole(model.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, call(admins, "/users/5", userToken))
	assert.Equal(t, http.StatusOK, call(admins, "/users/5", adminToken))

	self := newEngine(jwtService, RequireSelf("id"))
	assert.Equal(t, http.StatusOK, call(self, "/users/5", userToken))
	assert.Equal(t, http.StatusForbidden, call(self, "/users/6", userToken))
	assert.Equal(t, http.StatusForbidden, call(self, "/users/05", userToken))
}

func TestRateLimiterPerIP(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Hour), 2, time.Minute)

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "buckets are per client")
}

func TestRateLimiterForgetsIdleClients(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Hour), 1, time.Millisecond)
	assert.True(t, rl.Allow("10.0.0.1"))
	time.Sleep(5 * time.Millisecond)
	assert.True(t, rl.Allow("10.0.0.2"))

	rl.mu.Lock()
	_, tracked := rl.visitors["10.0.0.1"]
	rl.mu.Unlock()
	assert.False(t, tracked)
}
