package program

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Save(ctx context.Context, program *Program) error
	GetByID(ctx context.Context, id uuid.UUID) (*Program, error)
	ListByUser(ctx context.Context, userID string) ([]Program, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]Program, error)
}
