package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vendorhub/vendorhub-backend/pkg/enums"
)

// User is the minimal identity projection consumed from the auth collaborator.
type User struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email     string          `gorm:"type:text;not null;uniqueIndex" json:"email"`
	FirstName string          `gorm:"column:first_name;not null" json:"first_name"`
	LastName  string          `gorm:"column:last_name;not null" json:"last_name"`
	Role      enums.ActorRole `gorm:"column:role;type:actor_role;not null" json:"role"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
