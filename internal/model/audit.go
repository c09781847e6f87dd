package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateTask    = "CREATE_TASK"
	ActionUpdateTask    = "UPDATE_TASK"
	ActionDeleteTask    = "DELETE_TASK"
	ActionCreateProcess = "CREATE_PROCESS"
	ActionUpdateProcess = "UPDATE_PROCESS"
	ActionDeleteProcess = "DELETE_PROCESS"
	ActionCreateJourney = "CREATE_JOURNEY"
	ActionCreateCompany = "CREATE_COMPANY"
	ActionUpdateCompany = "UPDATE_COMPANY"

	// Maturity workflow actions
	ActionRequestMaturity       = "REQUEST_MATURITY"
	ActionGestorApproveMaturity = "GESTOR_APPROVE_MATURITY"
	ActionAdminApproveMaturity  = "ADMIN_APPROVE_MATURITY"
	ActionRejectMaturity        = "REJECT_MATURITY"
	ActionDirectConfirmMaturity = "DIRECT_CONFIRM_MATURITY"

	ActionCreateIndicator     = "CREATE_INDICATOR"
	ActionRecordIndicatorData = "RECORD_INDICATOR_DATA"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID  *uuid.UUID `gorm:"type:uuid;index" json:"company_id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated job
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/code)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
