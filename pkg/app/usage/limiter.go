package usage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	domain "github.com/solport/devportal/pkg/domain/usage"
	"github.com/solport/devportal/pkg/infra/cache"
)

// ErrCheckUnavailable marks an admission check that could not be evaluated
// because the Fast Store did not answer. Callers must treat it as a denial.
var ErrCheckUnavailable = errors.New("admission check unavailable")

// Limiter evaluates admission against the configured policy. It only reads
// the Fast Store; counters move separately through the Tracker, so two
// concurrent requests can both pass a check before either update lands and
// transiently overshoot a ceiling. That window is accepted.
type Limiter struct {
	redis        *redis.Client
	logger       *logrus.Logger
	domain       string
	policy       domain.Policy
	timeProvider func() time.Time
}

type LimiterOpts struct {
	TimeProvider func() time.Time
}

func NewLimiter(
	redisClient *redis.Client,
	logger *logrus.Logger,
	usageDomain string,
	policy domain.Policy,
	opts *LimiterOpts,
) *Limiter {
	timeProvider := time.Now
	if opts != nil && opts.TimeProvider != nil {
		timeProvider = opts.TimeProvider
	}
	return &Limiter{
		redis:        redisClient,
		logger:       logger,
		domain:       usageDomain,
		policy:       policy,
		timeProvider: timeProvider,
	}
}

func (l *Limiter) Policy() domain.Policy {
	return l.policy
}

// Check runs the admission checks in strict order: per-request ceiling,
// daily request count, daily volume. The first failing check wins and the
// rest are skipped; the per-request check never touches the store. A store
// error is returned to the caller so admission fails closed.
func (l *Limiter) Check(ctx context.Context, identity string, lamports int64) (domain.Decision, error) {
	decision := domain.Decision{
		RequestedLamports:     lamports,
		MaxLamportsPerRequest: l.policy.MaxLamportsPerRequest,
		DailyRequestLimit:     l.policy.DailyRequestLimit,
		DailyLamportsLimit:    l.policy.DailyLamportsLimit,
	}

	if lamports > l.policy.MaxLamportsPerRequest {
		decision.Reason = domain.DenialPerRequest
		return decision, nil
	}

	key := cache.UsageKey(l.domain, identity, domain.Day(l.timeProvider()))
	vals, err := l.redis.HMGet(ctx, key, domain.FieldCount, domain.FieldVolume).Result()
	if err != nil {
		return domain.Decision{}, fmt.Errorf("%w: %v", ErrCheckUnavailable, err)
	}
	count := hashInt(vals, 0)
	volume := hashInt(vals, 1)
	decision.DailyRequestsUsed = count
	decision.DailyLamportsUsed = volume

	if l.policy.DailyRequestLimit > 0 && count >= l.policy.DailyRequestLimit {
		decision.Reason = domain.DenialDailyRequests
		return decision, nil
	}
	if l.policy.DailyLamportsLimit > 0 && volume+lamports > l.policy.DailyLamportsLimit {
		decision.Reason = domain.DenialDailyVolume
		return decision, nil
	}

	decision.Allowed = true
	return decision, nil
}

func hashInt(vals []interface{}, idx int) int64 {
	if idx >= len(vals) || vals[idx] == nil {
		return 0
	}
	s, ok := vals[idx].(string)
	if !ok {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
