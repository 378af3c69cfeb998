package models

import (
	"time"

	"github.com/google/uuid"
)

// VendorProfile owns performance metrics; metrics themselves are computed on
// demand from the vendor's order history, never stored as columns here.
type VendorProfile struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex" json:"user_id"`
	VendorCode   string    `gorm:"column:vendor_code;not null;uniqueIndex" json:"vendor_code"`
	BusinessName string    `gorm:"column:business_name;not null;uniqueIndex" json:"business_name"`
	User         *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
