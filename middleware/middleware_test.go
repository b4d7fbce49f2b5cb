package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hotel-platform/policy"
	"hotel-platform/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func token(t *testing.T, id uint, role string, branch *uint) string {
	t.Helper()
	raw, err := utils.SignToken(secret, id, role, branch, time.Hour, time.Now())
	require.NoError(t, err)
	return "Bearer " + raw
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", handlers...)
	return r
}

func do(r http.Handler, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func ok(c *gin.Context) { c.Status(http.StatusNoContent) }

func TestAuthenticate(t *testing.T) {
	var seen *policy.Policy
	r := newEngine(Authenticate(secret), func(c *gin.Context) {
		seen = CurrentPolicy(c)
		ok(c)
	})

	assert.Equal(t, http.StatusUnauthorized, do(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "Bearer nope").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "Basic abc").Code)

	branch := uint(4)
	w := do(r, token(t, 9, "manager", &branch))
	assert.Equal(t, http.StatusNoContent, w.Code)
	require.NotNil(t, seen)
	assert.Equal(t, uint(9), seen.UserID)
	assert.True(t, seen.CanAccessBranch(4))
}

func TestRequire(t *testing.T) {
	r := newEngine(Authenticate(secret), Require(policy.DeleteRooms), ok)

	branch := uint(1)
	assert.Equal(t, http.StatusForbidden, do(r, token(t, 2, "manager", &branch)).Code)
	assert.Equal(t, http.StatusNoContent, do(r, token(t, 1, "admin", nil)).Code)
}

func TestOptionalAuth(t *testing.T) {
	var seen *policy.Policy
	r := newEngine(OptionalAuth(secret), func(c *gin.Context) {
		seen = CurrentPolicy(c)
		ok(c)
	})

	assert.Equal(t, http.StatusNoContent, do(r, "").Code)
	assert.Nil(t, seen)
	assert.Equal(t, http.StatusUnauthorized, do(r, "Bearer broken").Code)
	assert.Equal(t, http.StatusNoContent, do(r, token(t, 1, "admin", nil)).Code)
	assert.True(t, seen.IsAdmin())
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2, nil)
	r := newEngine(rl.Handler(), ok)

	assert.Equal(t, http.StatusNoContent, do(r, "").Code)
	assert.Equal(t, http.StatusNoContent, do(r, "").Code)
	w := do(r, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	rl.Cleanup(0)
	assert.Equal(t, http.StatusNoContent, do(r, "").Code, "bucket is fresh after cleanup")
}

func TestLoggerSetsRequestID(t *testing.T) {
	log, hook := test.NewNullLogger()
	r := newEngine(Logger(log), ok)

	w := do(r, "")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, w.Header().Get(RequestIDHeader), hook.LastEntry().Data["request_id"])

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}
