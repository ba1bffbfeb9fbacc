package project

import (
	"time"

	"github.com/google/uuid"
)

// Project groups a portal user's deployed programs. Names are unique per
// user.
type Project struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      string    `json:"user_id" gorm:"uniqueIndex:idx_projects_user_name"`
	Name        string    `json:"name" gorm:"uniqueIndex:idx_projects_user_name"`
	Cluster     string    `json:"cluster"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Project) TableName() string {
	return "public.projects"
}
