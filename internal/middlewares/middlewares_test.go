package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	logger "github.com/Gopher0727/GuildForge/middleware/log"
	"github.com/Gopher0727/GuildForge/utils/ratelimit"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestLogger(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(logger.NewNopLogger()))

	var seen string
	r.GET("/ping", func(c *gin.Context) {
		seen = logger.GetTraceID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	t.Run("propagates incoming request id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(RequestIDHeader, "req-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "req-123", seen)
		assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
	})

	t.Run("generates one when missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
	})
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(logger.NewNopLogger()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error": "Internal server error"}`, w.Body.String())
}

type errLimiter struct{}

func (errLimiter) Allow(context.Context, string, ratelimit.Rule) (bool, error) {
	return false, errors.New("redis down")
}

func (errLimiter) Remaining(context.Context, string, ratelimit.Rule) (int, error) {
	return 0, nil
}

func (errLimiter) Reset(context.Context, string, ratelimit.Rule) error {
	return nil
}

func newLimitedRouter(limiter ratelimit.Limiter, rule ratelimit.Rule) *gin.Engine {
	r := gin.New()
	r.POST("/create", RateLimitMiddleware(limiter, "create", rule), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func post(r http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/create", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("limits per client ip", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer client.Close()

		limiter := ratelimit.NewFixedWindowLimiter(client, zap.NewNop(), true)
		r := newLimitedRouter(limiter, ratelimit.Rule{Limit: 2, Window: time.Minute})

		assert.Equal(t, http.StatusOK, post(r, "10.0.0.1:1000").Code)
		assert.Equal(t, http.StatusOK, post(r, "10.0.0.1:1001").Code)

		w := post(r, "10.0.0.1:1002")
		require.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "60", w.Header().Get("Retry-After"))

		assert.Equal(t, http.StatusOK, post(r, "10.0.0.2:1000").Code)
	})

	t.Run("nil limiter passes through", func(t *testing.T) {
		r := newLimitedRouter(nil, ratelimit.CreateServerRule(1))
		for i := 0; i < 3; i++ {
			assert.Equal(t, http.StatusOK, post(r, "10.0.0.1:1").Code)
		}
	})

	t.Run("limiter error does not block", func(t *testing.T) {
		r := newLimitedRouter(errLimiter{}, ratelimit.CreateServerRule(1))
		assert.Equal(t, http.StatusOK, post(r, "10.0.0.1:1").Code)
	})
}
