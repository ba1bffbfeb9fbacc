package program

import (
	"time"

	"github.com/google/uuid"
)

// Program is a deployed Solana program tracked by a portal user.
type Program struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      string     `json:"user_id" gorm:"index"`
	ProjectID   *uuid.UUID `json:"project_id,omitempty" gorm:"type:uuid;index"`
	Name        string     `json:"name"`
	Address     string     `json:"address" gorm:"uniqueIndex"`
	Cluster     string     `json:"cluster"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Program) TableName() string {
	return "public.programs"
}
