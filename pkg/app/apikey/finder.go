package apikey

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	domain "github.com/solport/devportal/pkg/domain/apikey"
	"github.com/solport/devportal/pkg/infra/cache"
)

var ErrInvalidCacheType = errors.New("invalid type assertion for apikey model")

// Finder resolves a presented secret to its stored key record, cheapest
// layer first: process-local TTL map, then the distributed cache, then the
// database.
//
//go:generate mockery --name=Finder --dir=. --output=./mocks --filename=apikey_finder_mock.go --case=underscore --with-expecter
type Finder interface {
	Find(ctx context.Context, secret string) (*domain.APIKey, error)
}

type finder struct {
	repo        domain.Repository
	cache       cache.Client
	memoryCache *cache.TTLMap
	logger      *logrus.Logger
}

func NewFinder(
	repository domain.Repository,
	c cache.Client,
	logger *logrus.Logger,
) Finder {
	return &finder{
		repo:        repository,
		cache:       c,
		logger:      logger,
		memoryCache: c.GetTTLMap(cache.ApiKeyTTLName),
	}
}

func (f *finder) Find(ctx context.Context, secret string) (*domain.APIKey, error) {
	digest := domain.DigestOf(secret)

	if entity, err := f.getFromMemoryCache(digest); err == nil {
		return entity, nil
	} else if !errors.Is(err, ErrInvalidCacheType) {
		f.logger.WithError(err).Debug("memory cache read apikey failure")
	}

	if cached, err := f.cache.GetApiKey(ctx, digest); err == nil && cached != nil {
		f.memoryCache.Set(digest, cached)
		return cached, nil
	}

	entity, err := f.repo.GetByDigest(ctx, digest)
	if err != nil {
		return nil, err
	}

	f.saveToCaches(ctx, entity)
	return entity, nil
}

func (f *finder) getFromMemoryCache(digest string) (*domain.APIKey, error) {
	cachedValue, found := f.memoryCache.Get(digest)
	if !found {
		return nil, errors.New("api key not found in memory cache")
	}
	entity, ok := cachedValue.(*domain.APIKey)
	if !ok {
		return nil, ErrInvalidCacheType
	}
	return entity, nil
}

func (f *finder) saveToCaches(ctx context.Context, entity *domain.APIKey) {
	f.memoryCache.Set(entity.Digest, entity)
	if err := f.cache.SaveApiKey(ctx, entity); err != nil {
		f.logger.WithError(err).Error("failed to save apikey to distributed cache")
	}
}
