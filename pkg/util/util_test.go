package util

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"CommunityBoard/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken(t *testing.T) {
	InitJWT(config.JWTConfig{Secret: "s3cret", Issuer: "test", ExpireTime: time.Hour})
	defer InitJWT(config.DefaultJWTConfig())

	t.Run("round_trip", func(t *testing.T) {
		token, err := GenerateToken("user-1", "dev-1")
		require.NoError(t, err)
		claims, err := ParseToken(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserUUID)
		assert.Equal(t, "dev-1", claims.DeviceID)
	})

	t.Run("expired", func(t *testing.T) {
		InitJWT(config.JWTConfig{Secret: "s3cret", ExpireTime: -time.Minute})
		token, err := GenerateToken("user-1", "dev-1")
		require.NoError(t, err)
		_, err = ParseToken(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
		InitJWT(config.JWTConfig{Secret: "s3cret", ExpireTime: time.Hour})
	})

	t.Run("wrong_secret", func(t *testing.T) {
		token, err := GenerateToken("user-1", "dev-1")
		require.NoError(t, err)
		InitJWT(config.JWTConfig{Secret: "other", ExpireTime: time.Hour})
		_, err = ParseToken(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
		InitJWT(config.JWTConfig{Secret: "s3cret", ExpireTime: time.Hour})
	})
}

func TestNextID(t *testing.T) {
	a, b := NextID(), NextID()
	assert.NotZero(t, a)
	assert.Greater(t, b, a)
}

func TestTraceLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TraceLogger())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("trace_id")) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, "req-1")
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-1", w.Body.String())
	assert.Equal(t, "req-1", w.Header().Get(HeaderXRequestID))
}
