package usage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	domain "github.com/solport/devportal/pkg/domain/usage"
	"github.com/solport/devportal/pkg/infra/cache"
)

const recordTimeout = 5 * time.Second

// Tracker increments an identity's lifetime and daily counters in the Fast
// Store. All arithmetic happens server-side with integer HINCRBY; volumes
// are lamports.
//
// TTL policy: the lifetime counter's TTL slides (refreshed on every write)
// so identities stay hot while active; a daily counter's TTL is set exactly
// once, when the day's first increment creates the key, so its retention is
// fixed at creation and later writes never extend it.
type Tracker struct {
	redis        *redis.Client
	logger       *logrus.Logger
	domain       string
	counterTTL   time.Duration
	timeProvider func() time.Time

	detached sync.WaitGroup
}

type TrackerOpts struct {
	TimeProvider func() time.Time
}

func NewTracker(
	redisClient *redis.Client,
	logger *logrus.Logger,
	usageDomain string,
	counterTTL time.Duration,
	opts *TrackerOpts,
) *Tracker {
	timeProvider := time.Now
	if opts != nil && opts.TimeProvider != nil {
		timeProvider = opts.TimeProvider
	}
	return &Tracker{
		redis:        redisClient,
		logger:       logger,
		domain:       usageDomain,
		counterTTL:   counterTTL,
		timeProvider: timeProvider,
	}
}

// Record applies one action to the lifetime counter and then to today's
// daily counter. The two writes are independently retryable; a failure on
// the first does not skip the second.
func (t *Tracker) Record(ctx context.Context, identity string, lamports int64, subKey string) error {
	now := t.timeProvider().UTC()

	lifetimeErr := t.bump(ctx, identity, domain.ScopeLifetime, lamports, subKey, now)
	dailyErr := t.bump(ctx, identity, domain.Day(now), lamports, subKey, now)

	if lifetimeErr != nil {
		return fmt.Errorf("lifetime counter update failed: %w", lifetimeErr)
	}
	if dailyErr != nil {
		return fmt.Errorf("daily counter update failed: %w", dailyErr)
	}
	return nil
}

// RecordDetached records usage without making the caller wait or fail: the
// primary action already succeeded, so errors here are logged and dropped.
// The write runs on its own context so request cancellation cannot abort
// it mid-flight.
func (t *Tracker) RecordDetached(identity string, lamports int64, subKey string) {
	t.detached.Add(1)
	go func() {
		defer t.detached.Done()
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := t.Record(ctx, identity, lamports, subKey); err != nil {
			t.logger.WithFields(logrus.Fields{
				"domain":   t.domain,
				"identity": identity,
				"lamports": lamports,
			}).WithError(err).Error("detached usage record failed")
		}
	}()
}

// Wait blocks until all detached records have finished; called on
// shutdown so accounting writes are not cut off with the process.
func (t *Tracker) Wait() {
	t.detached.Wait()
}

func (t *Tracker) bump(ctx context.Context, identity, scope string, lamports int64, subKey string, now time.Time) error {
	key := cache.UsageKey(t.domain, identity, scope)
	refreshTTL := scope == domain.ScopeLifetime

	pipe := t.redis.TxPipeline()
	countCmd := pipe.HIncrBy(ctx, key, domain.FieldCount, 1)
	pipe.HIncrBy(ctx, key, domain.FieldVolume, lamports)
	pipe.HSet(ctx, key, domain.FieldLastUsedAt, now.Format(time.RFC3339))
	if subKey != "" {
		pipe.HIncrBy(ctx, key, domain.SubCountField(subKey), 1)
		pipe.HIncrBy(ctx, key, domain.SubVolumeField(subKey), lamports)
	}
	if refreshTTL {
		pipe.Expire(ctx, key, t.counterTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	// First write of the day created the key; pin its TTL now.
	if !refreshTTL && countCmd.Val() == 1 {
		if err := t.redis.Expire(ctx, key, t.counterTTL).Err(); err != nil {
			return fmt.Errorf("failed to set daily counter expiry: %w", err)
		}
	}
	return nil
}
