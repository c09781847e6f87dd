package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaturityRequest status enum constants. AdminApproved and Rejected are
// terminal — no transition leaves them.
const (
	MaturityStatusPending        = "pending"
	MaturityStatusGestorApproved = "gestor_approved"
	MaturityStatusAdminApproved  = "admin_approved"
	MaturityStatusRejected       = "rejected"
)

// Snapshot type enum constants
const (
	SnapshotTypeDaily  = "daily"
	SnapshotTypeManual = "manual"
)

// MaturityRequest is the approval workflow record for declaring a process mature.
// At most one active request (pending or gestor_approved) may exist per
// (process, company); the partial unique index created in database.NewConnection
// enforces that at the store level.
type MaturityRequest struct {
	ID                   uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID            uuid.UUID  `gorm:"type:uuid;not null;index" json:"company_id"`
	ProcessID            uuid.UUID  `gorm:"type:uuid;not null;index" json:"process_id"`
	Process              *Process   `gorm:"foreignKey:ProcessID" json:"process,omitempty"`
	JourneyID            uuid.UUID  `gorm:"type:uuid;not null;index" json:"journey_id"`
	TotalTasks           int        `gorm:"not null" json:"total_tasks"`
	CompletedTasks       int        `gorm:"not null" json:"completed_tasks"`
	CompletionPercentage int        `gorm:"not null" json:"completion_percentage"`
	Status               string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	RequestedBy          uuid.UUID  `gorm:"type:uuid;not null;index" json:"requested_by"`
	Requester            *User      `gorm:"foreignKey:RequestedBy" json:"requester,omitempty"`
	RequestNotes         string     `gorm:"type:text" json:"request_notes"`
	GestorApprovedBy     *uuid.UUID `gorm:"type:uuid" json:"gestor_approved_by"`
	GestorApprover       *User      `gorm:"foreignKey:GestorApprovedBy" json:"gestor_approver,omitempty"`
	GestorApprovedAt     *time.Time `json:"gestor_approved_at"`
	GestorNotes          string     `gorm:"type:text" json:"gestor_notes"`
	AdminApprovedBy      *uuid.UUID `gorm:"type:uuid" json:"admin_approved_by"`
	AdminApprover        *User      `gorm:"foreignKey:AdminApprovedBy" json:"admin_approver,omitempty"`
	AdminApprovedAt      *time.Time `json:"admin_approved_at"`
	AdminNotes           string     `gorm:"type:text" json:"admin_notes"`
	RejectedBy           *uuid.UUID `gorm:"type:uuid" json:"rejected_by"`
	RejectedAt           *time.Time `json:"rejected_at"`
	RejectionReason      string     `gorm:"type:text" json:"rejection_reason"`
	CreatedAt            time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// ActiveMaturityStatuses are the statuses counted against the one-active-request rule
var ActiveMaturityStatuses = []string{MaturityStatusPending, MaturityStatusGestorApproved}

// TerminalMaturityStatus reports whether a request can no longer transition
func TerminalMaturityStatus(s string) bool {
	return s == MaturityStatusAdminApproved || s == MaturityStatusRejected
}

// ProcessEvaluation is the externally visible maturity flag for a process.
// At most one current row per (process, company) with a null diagnosis —
// mutated only by the maturity workflow via upsert.
type ProcessEvaluation struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"company_id"`
	ProcessID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"process_id"`
	DiagnosisID  *uuid.UUID      `gorm:"type:uuid;index" json:"diagnosis_id"`
	HasProcess   bool            `gorm:"not null;default:false" json:"has_process"`
	CurrentScore decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"current_score"`
	Status       string          `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	EvaluatedAt  *time.Time      `json:"evaluated_at"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// MaturityEvaluationHistory is append-only: one row per admin approval or
// direct confirmation, used for trend reporting. Never updated or deleted.
type MaturityEvaluationHistory struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"company_id"`
	ProcessID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"process_id"`
	EvaluatorID uuid.UUID       `gorm:"type:uuid;not null" json:"evaluator_id"`
	Evaluator   *User           `gorm:"foreignKey:EvaluatorID" json:"evaluator,omitempty"`
	Score       decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"score"`
	EvaluatedAt time.Time       `gorm:"not null;index" json:"evaluated_at"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// JourneyMaturitySnapshot is a dated aggregate of journey-wide maturity,
// keyed by (company, journey, date, type) with overwrite-on-conflict semantics
// so re-confirming on the same day stays idempotent.
type JourneyMaturitySnapshot struct {
	ID                 uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_journey_snapshot_key" json:"company_id"`
	JourneyID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_journey_snapshot_key" json:"journey_id"`
	SnapshotDate       time.Time `gorm:"type:date;not null;uniqueIndex:idx_journey_snapshot_key" json:"snapshot_date"`
	SnapshotType       string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_journey_snapshot_key" json:"snapshot_type"`
	TotalProcesses     int       `gorm:"not null" json:"total_processes"`
	MatureProcesses    int       `gorm:"not null" json:"mature_processes"`
	MaturityPercentage int       `gorm:"not null" json:"maturity_percentage"`
	InProgressCount    int       `gorm:"not null" json:"in_progress_count"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
