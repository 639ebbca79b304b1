package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
	"tripgen/internal/structures"
	"tripgen/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guardConfig(global, perIP int) *structures.Config {
	return &structures.Config{
		RateLimit: structures.RateLimitConfig{
			Prefix: "rl:",
			Global: structures.LimitConfig{Requests: global, Window: time.Hour},
			PerIP:  structures.LimitConfig{Requests: perIP, Window: 24 * time.Hour},
		},
	}
}

type failingLimiter struct{}

func (f *failingLimiter) Check(_ context.Context, _ string, _ Limit) (Result, error) {
	return Result{}, errors.New("connection refused")
}

func TestGuard_GlobalCheckedFirst(t *testing.T) {
	_, client := newTestRedis(t)
	clock := newFakeClock()
	metrics := testutil.NewMockMetrics()
	g := newGuard(guardConfig(2, 5), NewSlidingWindowLimiter(client, "rl:", clock.Now), &testutil.MockLogger{}, metrics, clock.Now)
	ctx := context.Background()

	require.NoError(t, g.Check(ctx, "10.0.0.1"))
	require.NoError(t, g.Check(ctx, "10.0.0.2"))

	// 10.0.0.3 has never been seen, so only the global tier can reject it
	err := g.Check(ctx, "10.0.0.3")
	var rlErr *Error
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, TierGlobal, rlErr.Tier)
	assert.Empty(t, rlErr.IP)
	assert.Equal(t, "1 hour", rlErr.RetryAfter)
	assert.Equal(t, 1, metrics.RateLimited["global"])
}

func TestGuard_PerIPTier(t *testing.T) {
	_, client := newTestRedis(t)
	clock := newFakeClock()
	g := newGuard(guardConfig(100, 1), NewSlidingWindowLimiter(client, "rl:", clock.Now), &testutil.MockLogger{}, testutil.NewMockMetrics(), clock.Now)
	ctx := context.Background()

	require.NoError(t, g.Check(ctx, "10.0.0.1"))
	clock.Advance(2 * time.Hour)

	err := g.Check(ctx, "10.0.0.1")
	var rlErr *Error
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, TierIP, rlErr.Tier)
	assert.Equal(t, "10.0.0.1", rlErr.IP)
	assert.Equal(t, "22 hours", rlErr.RetryAfter)
	assert.Equal(t, int64(22*3600), rlErr.RetryAfterSeconds(clock.Now()))

	assert.NoError(t, g.Check(ctx, "10.0.0.2"))
}

func TestGuard_FailsOpen(t *testing.T) {
	logger := &testutil.MockLogger{}
	g := newGuard(guardConfig(1, 1), &failingLimiter{}, logger, testutil.NewMockMetrics(), time.Now)

	for i := 0; i < 3; i++ {
		assert.NoError(t, g.Check(context.Background(), "10.0.0.1"))
	}
	assert.Equal(t, 6, logger.Count("error"))
}

func TestGuard_NoRedisAllowsEverything(t *testing.T) {
	conf := guardConfig(1, 1)
	g := NewGuard(conf, NewLimiterProvider(conf, nil), &testutil.MockLogger{}, testutil.NewMockMetrics())

	for i := 0; i < 5; i++ {
		assert.NoError(t, g.Check(context.Background(), "10.0.0.1"))
	}
}

func TestRetryAfterText(t *testing.T) {
	now := time.UnixMilli(1_000_000)
	assert.Equal(t, "now", retryAfterText(now, 999_000))
	assert.Equal(t, "30 seconds", retryAfterText(now, 1_030_000))
	assert.Equal(t, "5 minutes", retryAfterText(now, 1_300_000))
}
