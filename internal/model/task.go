package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task status enum constants
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
	TaskStatusCancelled  = "cancelled"
)

// Task is an action item attached to a process. ContributesToMaturity controls
// whether the task counts toward the process completion percentage.
type Task struct {
	ID                    uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID             uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	ProcessID             uuid.UUID      `gorm:"type:uuid;not null;index" json:"process_id"`
	Process               *Process       `gorm:"foreignKey:ProcessID" json:"process,omitempty"`
	Title                 string         `gorm:"type:varchar(255);not null" json:"title"`
	Description           string         `gorm:"type:text" json:"description"`
	Status                string         `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ContributesToMaturity bool           `gorm:"not null;default:true" json:"contributes_to_maturity"`
	Position              int            `gorm:"not null;default:0" json:"position"`
	AssigneeID            *uuid.UUID     `gorm:"type:uuid;index" json:"assignee_id"`
	Assignee              *User          `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	DueDate               *time.Time     `json:"due_date"`
	CreatedAt             time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`
}

// ValidTaskStatus reports whether s is one of the known task statuses
func ValidTaskStatus(s string) bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}
