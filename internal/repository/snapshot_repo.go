package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SnapshotRepository interface {
	Upsert(ctx context.Context, snapshot *model.JourneyMaturitySnapshot) error
	ListByJourney(ctx context.Context, companyID, journeyID uuid.UUID, from, to time.Time) ([]model.JourneyMaturitySnapshot, error)
}

type snapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

// Upsert is keyed by (company, journey, date, type); the second write for the
// same day overwrites the first (last-write-wins).
func (r *snapshotRepository) Upsert(ctx context.Context, snapshot *model.JourneyMaturitySnapshot) error {
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "company_id"}, {Name: "journey_id"}, {Name: "snapshot_date"}, {Name: "snapshot_type"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_processes", "mature_processes", "maturity_percentage", "in_progress_count", "updated_at",
		}),
	}).Create(snapshot).Error
}

func (r *snapshotRepository) ListByJourney(ctx context.Context, companyID, journeyID uuid.UUID, from, to time.Time) ([]model.JourneyMaturitySnapshot, error) {
	var snapshots []model.JourneyMaturitySnapshot
	if err := GetDB(ctx, r.db).
		Where("company_id = ? AND journey_id = ? AND snapshot_date >= ? AND snapshot_date <= ?", companyID, journeyID, from, to).
		Order("snapshot_date asc").
		Find(&snapshots).Error; err != nil {
		return nil, err
	}
	return snapshots, nil
}
