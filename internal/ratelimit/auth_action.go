package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/smallbiznis/launchpad/internal/config"
	"github.com/smallbiznis/launchpad/internal/observability/metrics"
	"go.uber.org/zap"
)

// AuthActionLimiter throttles sign-in and sign-up attempts per action and
// client address. It fails open: a redis error never blocks a user.
type AuthActionLimiter struct {
	bucket  *TokenBucket
	rate    float64
	burst   int
	metrics *metrics.Metrics
	log     *zap.Logger
}

type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

func NewAuthActionLimiter(cfg config.Config, bucket *TokenBucket, m *metrics.Metrics, log *zap.Logger) *AuthActionLimiter {
	return &AuthActionLimiter{
		bucket:  bucket,
		rate:    cfg.Redis.AuthActionRate,
		burst:   cfg.Redis.AuthActionBurst,
		metrics: m,
		log:     log.Named("ratelimit.auth"),
	}
}

func (l *AuthActionLimiter) Enabled() bool {
	return l != nil && l.bucket != nil && l.rate > 0 && l.burst > 0
}

func (l *AuthActionLimiter) Allow(ctx context.Context, action, clientIP string) Decision {
	if !l.Enabled() {
		return Decision{Allowed: true}
	}
	action = strings.TrimSpace(action)
	clientIP = strings.TrimSpace(clientIP)
	if clientIP == "" {
		clientIP = "unknown"
	}

	key := fmt.Sprintf("launchpad:ratelimit:auth:%s:%s", action, clientIP)
	res, err := l.bucket.Allow(ctx, key, l.rate, l.burst)
	if err != nil {
		l.log.Warn("rate limit check failed", zap.String("action", action), zap.Error(err))
		l.metrics.RecordRateLimitAllowed(ctx, action)
		return Decision{Allowed: true}
	}
	if !res.Allowed {
		l.metrics.RecordRateLimitDenied(ctx, action, "bucket_empty")
		return Decision{Allowed: false, RetryAfter: res.RetryAfter}
	}
	l.metrics.RecordRateLimitAllowed(ctx, action)
	return Decision{Allowed: true}
}
