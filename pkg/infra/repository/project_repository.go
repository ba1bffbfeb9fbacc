package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domainerrors "github.com/solport/devportal/pkg/domain"
	"github.com/solport/devportal/pkg/domain/project"
)

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) project.Repository {
	return &projectRepository{
		db: db,
	}
}

func (r *projectRepository) Save(ctx context.Context, entity *project.Project) error {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
			return domainerrors.ErrProjectExists
		}
		return err
	}
	return nil
}

func (r *projectRepository) GetByID(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	entity := new(project.Project)
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.NewNotFoundError("project", id.String())
		}
		return nil, err
	}
	return entity, nil
}

func (r *projectRepository) ListByUser(ctx context.Context, userID string) ([]project.Project, error) {
	var projects []project.Project
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepository) Update(ctx context.Context, entity *project.Project) error {
	if err := r.db.WithContext(ctx).Save(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
			return domainerrors.ErrProjectExists
		}
		return err
	}
	return nil
}

func (r *projectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&project.Project{}).Error
}
