package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2025-06-01T15:04:05+07:00")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", FormatDate(d))

	_, err = ParseDate("")
	assert.Error(t, err)
	_, err = ParseDate("01/06/2025")
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("k")
	branch := uint(3)
	now := time.Now()

	raw, err := SignToken(secret, 12, "manager", &branch, time.Hour, now)
	require.NoError(t, err)

	claims, err := ParseToken(secret, raw)
	require.NoError(t, err)
	assert.Equal(t, uint(12), claims.ID)
	assert.Equal(t, "manager", claims.Role)
	require.NotNil(t, claims.BranchID)
	assert.Equal(t, uint(3), *claims.BranchID)

	_, err = ParseToken([]byte("other"), raw)
	assert.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	secret := []byte("k")
	raw, err := SignToken(secret, 1, "user", nil, time.Minute, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = ParseToken(secret, raw)
	assert.Error(t, err)
}

func TestJSONEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	JSONError(c, http.StatusConflict, "room already booked")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"room already booked"}`, w.Body.String())
}
