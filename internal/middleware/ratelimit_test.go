package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmanager/internal/ratelimit"
)

// countingLimiter allows the first limit calls per key.
type countingLimiter struct {
	limit int
	seen  map[string]int
	err   error
}

func (l *countingLimiter) Allow(_ context.Context, key string) (*ratelimit.Result, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.seen[key]++
	n := l.seen[key]
	return &ratelimit.Result{
		Allowed:   n <= l.limit,
		Remaining: max(l.limit-n, 0),
		Limit:     l.limit,
		ResetAt:   time.Now().Add(30 * time.Second),
	}, nil
}

func newLimitedRouter(l RateLimiter) *gin.Engine {
	r := gin.New()
	r.POST("/login", RateLimit(l), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestRateLimit_BlocksAfterLimit(t *testing.T) {
	r := newLimitedRouter(&countingLimiter{limit: 2, seen: map[string]int{}})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, strconv.Itoa(1-i), w.Header().Get("X-RateLimit-Remaining"))
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too many requests")
	retry, err := strconv.Atoi(w.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.InDelta(t, 30, retry, 1)
}

func TestRateLimit_KeysByClientIP(t *testing.T) {
	r := newLimitedRouter(&countingLimiter{limit: 1, seen: map[string]int{}})

	for _, addr := range []string{"10.0.0.1:1000", "10.0.0.2:1000"} {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, addr)
	}
}

func TestRateLimit_FailsOpen(t *testing.T) {
	r := newLimitedRouter(&countingLimiter{err: errors.New("redis down")})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}
