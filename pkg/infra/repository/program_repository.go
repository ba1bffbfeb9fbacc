package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domainerrors "github.com/solport/devportal/pkg/domain"
	"github.com/solport/devportal/pkg/domain/program"
)

type programRepository struct {
	db *gorm.DB
}

func NewProgramRepository(db *gorm.DB) program.Repository {
	return &programRepository{
		db: db,
	}
}

func (r *programRepository) Save(ctx context.Context, entity *program.Program) error {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
			return domainerrors.ErrProgramExists
		}
		return err
	}
	return nil
}

func (r *programRepository) GetByID(ctx context.Context, id uuid.UUID) (*program.Program, error) {
	entity := new(program.Program)
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.NewNotFoundError("program", id.String())
		}
		return nil, err
	}
	return entity, nil
}

func (r *programRepository) ListByUser(ctx context.Context, userID string) ([]program.Program, error) {
	var programs []program.Program
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&programs).Error; err != nil {
		return nil, err
	}
	return programs, nil
}

func (r *programRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]program.Program, error) {
	var programs []program.Program
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&programs).Error; err != nil {
		return nil, err
	}
	return programs, nil
}
