package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domainerrors "github.com/solport/devportal/pkg/domain"
	"github.com/solport/devportal/pkg/domain/apikey"
)

type apiKeyRepository struct {
	db *gorm.DB
}

func NewApiKeyRepository(db *gorm.DB) apikey.Repository {
	return &apiKeyRepository{
		db: db,
	}
}

func (r *apiKeyRepository) Save(ctx context.Context, key *apikey.APIKey) error {
	return r.db.WithContext(ctx).Create(key).Error
}

func (r *apiKeyRepository) GetByDigest(ctx context.Context, digest string) (*apikey.APIKey, error) {
	entity := new(apikey.APIKey)
	if err := r.db.WithContext(ctx).
		Where("digest = ?", digest).
		First(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrInvalidAPIKey
		}
		return nil, err
	}
	return entity, nil
}

func (r *apiKeyRepository) GetByID(ctx context.Context, id uuid.UUID) (*apikey.APIKey, error) {
	entity := new(apikey.APIKey)
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.NewNotFoundError("api key", id.String())
		}
		return nil, err
	}
	return entity, nil
}

func (r *apiKeyRepository) ListByUser(ctx context.Context, userID string) ([]apikey.APIKey, error) {
	var keys []apikey.APIKey
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *apiKeyRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&apikey.APIKey{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"active":     false,
			"revoked_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.NewNotFoundError("api key", id.String())
	}
	return nil
}
