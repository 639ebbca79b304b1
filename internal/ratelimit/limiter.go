package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"
	"tripgen/internal/structures"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Limit struct {
	Name     string
	Requests int
	Window   time.Duration
}

func LimitFromConfig(name string, conf structures.LimitConfig) Limit {
	return Limit{Name: name, Requests: conf.Requests, Window: conf.Window}
}

type Result struct {
	Allowed   bool  `json:"allowed"`
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	ResetAt   int64 `json:"reset"`
}

type LimiterInterface interface {
	Check(ctx context.Context, identifier string, limit Limit) (Result, error)
}

type Clock func() time.Time

// SlidingWindowLimiter keeps one sorted set per limit and identifier whose
// members are the accepted attempts scored by their unix millisecond time.
type SlidingWindowLimiter struct {
	client *redis.Client
	prefix string
	now    Clock
}

func NewSlidingWindowLimiter(client *redis.Client, prefix string, now Clock) *SlidingWindowLimiter {
	if now == nil {
		now = time.Now
	}
	return &SlidingWindowLimiter{client: client, prefix: prefix, now: now}
}

// NewLimiterProvider returns the redis limiter, or one that allows everything
// when redis is not configured.
func NewLimiterProvider(conf *structures.Config, client *redis.Client) LimiterInterface {
	if client == nil {
		return &noopLimiter{}
	}
	return NewSlidingWindowLimiter(client, conf.RateLimit.Prefix, time.Now)
}

func (l *SlidingWindowLimiter) key(identifier string, limit Limit) string {
	return l.prefix + limit.Name + ":" + identifier
}

func (l *SlidingWindowLimiter) Check(ctx context.Context, identifier string, limit Limit) (Result, error) {
	key := l.key(identifier, limit)
	nowMs := l.now().UnixMilli()
	windowMs := limit.Window.Milliseconds()
	member := strconv.FormatInt(nowMs, 10) + "-" + uuid.NewString()

	var card *redis.IntCmd
	var oldest *redis.ZSliceCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(nowMs-windowMs, 10))
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(nowMs), Member: member})
		card = pipe.ZCard(ctx, key)
		oldest = pipe.ZRangeWithScores(ctx, key, 0, 0)
		pipe.PExpire(ctx, key, limit.Window)
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("rate limit check %s: %w", key, err)
	}

	count := int(card.Val())
	resetAt := nowMs + windowMs
	if zs := oldest.Val(); len(zs) > 0 {
		resetAt = int64(zs[0].Score) + windowMs
	}

	res := Result{
		Allowed:   count <= limit.Requests,
		Limit:     limit.Requests,
		Remaining: max(limit.Requests-count, 0),
		ResetAt:   resetAt,
	}
	if !res.Allowed {
		// rejected attempts do not occupy the window
		if err := l.client.ZRem(ctx, key, member).Err(); err != nil {
			return res, fmt.Errorf("rate limit rollback %s: %w", key, err)
		}
	}
	return res, nil
}

type noopLimiter struct{}

func (n *noopLimiter) Check(_ context.Context, _ string, limit Limit) (Result, error) {
	return Result{Allowed: true, Limit: limit.Requests, Remaining: limit.Requests}, nil
}
