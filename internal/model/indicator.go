package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Indicator direction enum constants — whether higher or lower values are better
const (
	IndicatorDirectionUp   = "up"
	IndicatorDirectionDown = "down"
)

// Indicator is a company KPI tracked over time against a target
type Indicator struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID uuid.UUID       `gorm:"type:uuid;not null;index" json:"company_id"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Unit      string          `gorm:"type:varchar(50)" json:"unit"`
	Target    decimal.Decimal `gorm:"type:numeric(18,4);not null;default:0" json:"target"`
	Direction string          `gorm:"type:varchar(10);not null;default:'up'" json:"direction"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}

// IndicatorEntry is a measured value for an indicator in a given month.
// One row per (indicator, period) — re-submitting a period overwrites it.
type IndicatorEntry struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"company_id"`
	IndicatorID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_indicator_period" json:"indicator_id"`
	Indicator   *Indicator      `gorm:"foreignKey:IndicatorID" json:"indicator,omitempty"`
	Period      time.Time       `gorm:"type:date;not null;uniqueIndex:idx_indicator_period" json:"period"`
	Value       decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"value"`
	RecordedBy  *uuid.UUID      `gorm:"type:uuid" json:"recorded_by"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// IndicatorSummary aggregates entries for reporting
type IndicatorSummary struct {
	IndicatorID   string          `json:"indicator_id"`
	IndicatorName string          `json:"indicator_name"`
	Unit          string          `json:"unit"`
	Target        decimal.Decimal `json:"target"`
	LatestValue   decimal.Decimal `json:"latest_value"`
	LatestPeriod  *time.Time      `json:"latest_period"`
	Average       decimal.Decimal `json:"average"`
	EntryCount    int             `json:"entry_count"`
	OnTarget      bool            `json:"on_target"`
}
