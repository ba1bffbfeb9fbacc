package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	domainerrors "github.com/solport/devportal/pkg/domain"
	domain "github.com/solport/devportal/pkg/domain/usage"
	"github.com/solport/devportal/pkg/infra/cache"
)

// Reporter serves usage views. Stats stays entirely on the Fast Store;
// History stays entirely on the Durable Store. The two never mix in one
// call.
type Reporter struct {
	redis        *redis.Client
	repository   domain.Repository
	logger       *logrus.Logger
	domain       string
	policy       domain.Policy
	timeProvider func() time.Time
}

type ReporterOpts struct {
	TimeProvider func() time.Time
}

func NewReporter(
	redisClient *redis.Client,
	repository domain.Repository,
	logger *logrus.Logger,
	usageDomain string,
	policy domain.Policy,
	opts *ReporterOpts,
) *Reporter {
	timeProvider := time.Now
	if opts != nil && opts.TimeProvider != nil {
		timeProvider = opts.TimeProvider
	}
	return &Reporter{
		redis:        redisClient,
		repository:   repository,
		logger:       logger,
		domain:       usageDomain,
		policy:       policy,
		timeProvider: timeProvider,
	}
}

// Stats composes today's and the lifetime counters into one view. Missing
// counters come back as zero values, not errors.
func (r *Reporter) Stats(ctx context.Context, identity string) (*domain.Stats, error) {
	todayKey := cache.UsageKey(r.domain, identity, domain.Day(r.timeProvider()))
	totalKey := cache.UsageKey(r.domain, identity, domain.ScopeLifetime)

	todayFields, err := r.redis.HGetAll(ctx, todayKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read daily counter: %w", err)
	}
	totalFields, err := r.redis.HGetAll(ctx, totalKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read lifetime counter: %w", err)
	}

	return &domain.Stats{
		Today:    domain.CounterFromHash(todayFields),
		Lifetime: domain.CounterFromHash(totalFields),
		Limits:   r.policy,
	}, nil
}

// History returns the archived daily records between fromDate and toDate
// (inclusive, YYYY-MM-DD) plus their aggregate sums. Data older than the
// Fast Store retention lives only here.
func (r *Reporter) History(ctx context.Context, identity, fromDate, toDate string) (*domain.HistoryReport, error) {
	from, err := time.Parse(domain.DateLayout, fromDate)
	if err != nil {
		return nil, fmt.Errorf("invalid 'from' date %q: %w", fromDate, err)
	}
	to, err := time.Parse(domain.DateLayout, toDate)
	if err != nil {
		return nil, fmt.Errorf("invalid 'to' date %q: %w", toDate, err)
	}
	if from.After(to) {
		return nil, domainerrors.ErrInvalidDateSpan
	}

	records, err := r.repository.ListArchiveRange(ctx, r.domain, identity, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load usage history: %w", err)
	}

	report := &domain.HistoryReport{Records: records}
	for _, record := range records {
		report.TotalCount += record.TotalCount
		report.TotalVolume += record.TotalVolume
	}
	return report, nil
}
