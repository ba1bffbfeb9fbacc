package apikey

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	domainerrors "github.com/solport/devportal/pkg/domain"
	domain "github.com/solport/devportal/pkg/domain/apikey"
	"github.com/solport/devportal/pkg/infra/cache"
)

type Revoker struct {
	repo        domain.Repository
	cache       cache.Client
	memoryCache *cache.TTLMap
	logger      *logrus.Logger
}

func NewRevoker(repository domain.Repository, c cache.Client, logger *logrus.Logger) *Revoker {
	return &Revoker{
		repo:        repository,
		cache:       c,
		memoryCache: c.GetTTLMap(cache.ApiKeyTTLName),
		logger:      logger,
	}
}

// Revoke deactivates the key and drops it from both cache layers so the
// next auth attempt hits the database and fails.
func (r *Revoker) Revoke(ctx context.Context, userID string, id uuid.UUID) error {
	key, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if key.UserID != userID {
		// Do not leak other users' key ids.
		return domainerrors.NewNotFoundError("api key", id.String())
	}

	if err := r.repo.Revoke(ctx, id); err != nil {
		return err
	}

	r.memoryCache.Delete(key.Digest)
	if err := r.cache.InvalidateApiKey(ctx, key.Digest); err != nil {
		r.logger.WithError(err).Warn("failed to invalidate revoked key in distributed cache")
	}

	r.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"key_id":  id,
	}).Info("api key revoked")
	return nil
}
