package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func rateLimitContext() echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestRateLimiterAllowsWithinLimit(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Requests: 3, Window: time.Minute})
	handler := rl.Middleware()(okHandler)

	for i := 0; i < 3; i++ {
		assert.NoError(t, handler(rateLimitContext()))
	}
}

func TestRateLimiterBlocksOverLimit(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Requests: 2, Window: time.Minute, Message: "slow down"})
	handler := rl.Middleware()(okHandler)

	assert.NoError(t, handler(rateLimitContext()))
	assert.NoError(t, handler(rateLimitContext()))

	err := handler(rateLimitContext())
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, httpErr.Code)
	assert.Equal(t, "slow down", httpErr.Message)
}

func TestRateLimiterResetsAfterWindow(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Requests: 1, Window: 50 * time.Millisecond})
	handler := rl.Middleware()(okHandler)

	assert.NoError(t, handler(rateLimitContext()))
	assert.Error(t, handler(rateLimitContext()))

	time.Sleep(60 * time.Millisecond)
	assert.NoError(t, handler(rateLimitContext()))
}

func TestRateLimiterSeparateKeys(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		Requests: 1,
		Window:   time.Minute,
		KeyFunc: func(c echo.Context) string {
			return c.Request().Header.Get("X-Test-Key")
		},
	})
	handler := rl.Middleware()(okHandler)

	first := rateLimitContext()
	first.Request().Header.Set("X-Test-Key", "a")
	assert.NoError(t, handler(first))

	second := rateLimitContext()
	second.Request().Header.Set("X-Test-Key", "b")
	assert.NoError(t, handler(second))

	third := rateLimitContext()
	third.Request().Header.Set("X-Test-Key", "a")
	assert.Error(t, handler(third))
}
