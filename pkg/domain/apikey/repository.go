package apikey

import (
	"context"

	"github.com/google/uuid"
)

//go:generate mockery --name=Repository --dir=. --output=./mocks --filename=apikey_repository_mock.go --case=underscore --with-expecter
type Repository interface {
	Save(ctx context.Context, key *APIKey) error
	GetByDigest(ctx context.Context, digest string) (*APIKey, error)
	GetByID(ctx context.Context, id uuid.UUID) (*APIKey, error)
	ListByUser(ctx context.Context, userID string) ([]APIKey, error)
	Revoke(ctx context.Context, id uuid.UUID) error
}
