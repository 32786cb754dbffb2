package api

import (
	"context"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/stretchr/testify/assert"
)

func fixedClock(rl *RateLimiter, start time.Time) *time.Time {
	now := start
	rl.now = func() time.Time { return now }
	return &now
}

func TestRateLimiterBurstAndRefill(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := fixedClock(rl, time.Unix(1_000, 0))

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "buckets are per IP")
	assert.Equal(t, 1, rl.RetryAfter("10.0.0.1"))

	*now = now.Add(time.Second)
	assert.True(t, rl.Allow("10.0.0.1"))
}

func TestRateLimiterSweepsIdleClients(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := fixedClock(rl, time.Unix(1_000, 0))
	rl.Allow("10.0.0.1")

	*now = now.Add(2 * staleAfter)
	rl.Allow("10.0.0.2")

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.visitors, "10.0.0.1")
	assert.Contains(t, rl.visitors, "10.0.0.2")
}

func TestClientIP(t *testing.T) {
	ctx := &app.RequestContext{}
	ctx.Request.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", clientIP(ctx))

	ctx = &app.RequestContext{}
	ctx.Request.Header.Set("X-Real-IP", "198.51.100.4")
	assert.Equal(t, "198.51.100.4", clientIP(ctx))
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	fixedClock(rl, time.Unix(1_000, 0))
	mw := rateLimitMiddleware(rl)

	request := func() *app.RequestContext {
		ctx := &app.RequestContext{}
		ctx.Request.Header.Set("X-Forwarded-For", "203.0.113.7")
		mw(context.Background(), ctx)
		return ctx
	}

	assert.False(t, request().IsAborted())

	ctx := request()
	assert.True(t, ctx.IsAborted())
	assert.Equal(t, consts.StatusTooManyRequests, ctx.Response.StatusCode())
	assert.NotEmpty(t, ctx.Response.Header.Peek("Retry-After"))
}
