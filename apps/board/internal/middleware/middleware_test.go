package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"CommunityBoard/config"
	"CommunityBoard/consts"
	"CommunityBoard/pkg/logger"
	"CommunityBoard/pkg/result"
	"CommunityBoard/pkg/util"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) result.Response {
	t.Helper()
	var resp result.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestJWTAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	util.InitJWT(config.JWTConfig{Secret: "test", ExpireTime: time.Hour})
	defer util.InitJWT(config.DefaultJWTConfig())

	r := gin.New()
	r.Use(JWTAuthMiddleware())
	r.GET("/me", func(c *gin.Context) {
		uuid, _ := GetUserUUID(c)
		c.String(http.StatusOK, uuid)
	})

	token, err := util.GenerateToken("alice", "dev-1")
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   int32
	}{
		{name: "missing_header", header: "", wantStatus: http.StatusUnauthorized, wantCode: consts.CodeUnauthorized},
		{name: "bad_scheme", header: "Token " + token, wantStatus: http.StatusUnauthorized, wantCode: consts.CodeInvalidToken},
		{name: "garbage_token", header: "Bearer abc", wantStatus: http.StatusUnauthorized, wantCode: consts.CodeInvalidToken},
		{name: "valid", header: "Bearer " + token, wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "alice", w.Body.String())
				return
			}
			assert.Equal(t, tt.wantCode, decode(t, w).Code)
		})
	}
}

func TestUserLimiter(t *testing.T) {
	logger.ReplaceGlobal(zap.NewNop())
	ctx := context.Background()

	t.Run("local_fallback", func(t *testing.T) {
		l := NewUserLimiter(1, 2, nil)
		assert.True(t, l.Allow(ctx, "k"))
		assert.True(t, l.Allow(ctx, "k"))
		assert.False(t, l.Allow(ctx, "k"))
		assert.True(t, l.Allow(ctx, "other"))
	})

	t.Run("redis_bucket", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer client.Close()

		l := NewUserLimiter(0.001, 2, client)
		assert.True(t, l.Allow(ctx, "k"))
		assert.True(t, l.Allow(ctx, "k"))
		assert.False(t, l.Allow(ctx, "k"))
		assert.True(t, mr.Exists("k"))
	})
}

func TestUserRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger.ReplaceGlobal(zap.NewNop())

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_uuid", "alice"); c.Next() })
	r.Use(UserRateLimitMiddleware(NewUserLimiter(1, 1, nil)))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, int32(consts.CodeTooManyRequests), decode(t, w).Code)
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger.ReplaceGlobal(zap.NewNop())

	r := gin.New()
	r.Use(Recovery())
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, int32(consts.CodeInternalError), decode(t, w).Code)
}
