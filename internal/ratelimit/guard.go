package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"
	"tripgen/internal/providers"
	"tripgen/internal/structures"

	"github.com/dustin/go-humanize"
)

type Tier string

const (
	TierGlobal Tier = "global"
	TierIP     Tier = "ip"

	GlobalIdentifier = "global"
)

// Error is returned by Guard.Check when one of the tiers rejected the call.
type Error struct {
	Tier       Tier
	IP         string
	Result     Result
	RetryAfter string
}

func (e *Error) Error() string {
	if e.Tier == TierGlobal {
		return fmt.Sprintf("global rate limit exceeded, retry in %s", e.RetryAfter)
	}
	return fmt.Sprintf("rate limit exceeded for %s, retry in %s", e.IP, e.RetryAfter)
}

// RetryAfterSeconds rounds up so that a client never retries too early.
func (e *Error) RetryAfterSeconds(now time.Time) int64 {
	ms := e.Result.ResetAt - now.UnixMilli()
	if ms <= 0 {
		return 0
	}
	return (ms + 999) / 1000
}

type GuardInterface interface {
	Check(ctx context.Context, ip string) error
}

type Guard struct {
	limiter LimiterInterface
	global  Limit
	perIP   Limit
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	now     Clock
}

func NewGuard(conf *structures.Config, limiter LimiterInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) GuardInterface {
	return newGuard(conf, limiter, logger, metrics, time.Now)
}

func newGuard(conf *structures.Config, limiter LimiterInterface, logger providers.Logger, metrics providers.MetricsProviderInterface, now Clock) *Guard {
	return &Guard{
		limiter: limiter,
		global:  LimitFromConfig(string(TierGlobal), conf.RateLimit.Global),
		perIP:   LimitFromConfig(string(TierIP), conf.RateLimit.PerIP),
		logger:  logger,
		metrics: metrics,
		now:     now,
	}
}

// Check runs the global tier before the per-IP tier. Backend failures are
// logged and the call is allowed.
func (g *Guard) Check(ctx context.Context, ip string) error {
	if err := g.checkTier(ctx, TierGlobal, GlobalIdentifier, g.global, ip); err != nil {
		return err
	}
	return g.checkTier(ctx, TierIP, ip, g.perIP, ip)
}

func (g *Guard) checkTier(ctx context.Context, tier Tier, identifier string, limit Limit, ip string) error {
	res, err := g.limiter.Check(ctx, identifier, limit)
	if err != nil {
		g.logger.Errorf(providers.TypeApp, "rate limiter unavailable for %s tier, allowing request: %v", tier, err)
		return nil
	}
	if res.Allowed {
		return nil
	}

	g.metrics.IncRateLimited(string(tier))
	rlErr := &Error{
		Tier:       tier,
		Result:     res,
		RetryAfter: retryAfterText(g.now(), res.ResetAt),
	}
	if tier == TierIP {
		rlErr.IP = ip
	}
	g.logger.Warnf(providers.TypePost, "%s", rlErr.Error())
	return rlErr
}

func retryAfterText(now time.Time, resetAtMs int64) string {
	resetAt := time.UnixMilli(resetAtMs)
	if !resetAt.After(now) {
		return "now"
	}
	return strings.TrimSpace(humanize.RelTime(now, resetAt, "", ""))
}
