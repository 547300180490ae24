package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/arte-ideas/internal/access"
	"github.com/hugohenrick/arte-ideas/pkg/auth"
	"github.com/hugohenrick/arte-ideas/pkg/logger"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestIDIsEchoedOrGenerated(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRecoveryReturns500(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(logger.NewNop()))
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestRateLimitIsPerTenant(t *testing.T) {
	rl := NewRateLimiter(0.0001, 1)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		auth.SetPrincipal(c, &access.Principal{UserID: "u", Role: "sales", TenantID: c.GetHeader("T")})
		c.Next()
	})
	r.Use(RateLimit(rl, logger.NewNop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(tenant string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("T", tenant)
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("a"))
	assert.Equal(t, http.StatusTooManyRequests, call("a"))
	assert.Equal(t, http.StatusOK, call("b"))
}

func TestRateLimiterDropsIdleBuckets(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(0.0001, 1)
	rl.now = func() time.Time { return now }

	for _, key := range []string{"ip:1", "ip:2", "ip:3"} {
		assert.True(t, rl.Allow(key))
	}
	assert.Equal(t, 3, rl.Len())
	assert.False(t, rl.Allow("ip:1"))

	now = now.Add(DefaultLimiterIdle / 2)
	assert.False(t, rl.Allow("ip:1"))

	now = now.Add(DefaultLimiterIdle)
	assert.True(t, rl.Allow("ip:4"))
	assert.Equal(t, 1, rl.Len(), "idle buckets are swept")
	// a swept key starts with a full bucket again
	assert.True(t, rl.Allow("ip:2"))
}
