package apikey

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	domain "github.com/solport/devportal/pkg/domain/apikey"
)

// CreatedKey is the one response that ever contains the plaintext secret.
type CreatedKey struct {
	Key    domain.APIKey `json:"key"`
	Secret string        `json:"secret"`
}

type Creator struct {
	repo   domain.Repository
	logger *logrus.Logger
}

func NewCreator(repository domain.Repository, logger *logrus.Logger) *Creator {
	return &Creator{
		repo:   repository,
		logger: logger,
	}
}

func (c *Creator) Create(ctx context.Context, userID, name string, expiresAt *time.Time) (*CreatedKey, error) {
	secret, digest, err := domain.NewSecret()
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV6()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key id: %w", err)
	}

	key := domain.APIKey{
		ID:        id,
		UserID:    userID,
		Name:      name,
		Digest:    digest,
		Display:   domain.DisplayOf(secret),
		Active:    true,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	if err := c.repo.Save(ctx, &key); err != nil {
		return nil, fmt.Errorf("failed to persist api key: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"key_id":  key.ID,
	}).Info("api key created")

	return &CreatedKey{Key: key, Secret: secret}, nil
}
