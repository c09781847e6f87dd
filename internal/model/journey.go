package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Journey groups processes into a strategic planning area for a company
type Journey struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Position    int            `gorm:"not null;default:0" json:"position"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Process is a unit of business work inside a journey. Its maturity is never
// written directly — only through the evaluation projected on admin approval.
type Process struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	JourneyID uuid.UUID      `gorm:"type:uuid;not null;index" json:"journey_id"`
	Journey   *Journey       `gorm:"foreignKey:JourneyID" json:"journey,omitempty"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Position  int            `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
