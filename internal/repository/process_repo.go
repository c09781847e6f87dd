package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JourneyMaturityMetrics aggregates process maturity across a journey,
// computed for snapshot upserts.
type JourneyMaturityMetrics struct {
	TotalProcesses  int
	MatureProcesses int
	InProgressCount int
}

type ProcessRepository interface {
	Create(ctx context.Context, process *model.Process) error
	Update(ctx context.Context, process *model.Process) error
	Delete(ctx context.Context, companyID, id uuid.UUID) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Process, error)
	ListByJourney(ctx context.Context, companyID, journeyID uuid.UUID) ([]model.Process, error)
	JourneyMetrics(ctx context.Context, companyID, journeyID uuid.UUID) (JourneyMaturityMetrics, error)
}

type processRepository struct {
	db *gorm.DB
}

func NewProcessRepository(db *gorm.DB) ProcessRepository {
	return &processRepository{db: db}
}

func (r *processRepository) Create(ctx context.Context, process *model.Process) error {
	return GetDB(ctx, r.db).Create(process).Error
}

func (r *processRepository) Update(ctx context.Context, process *model.Process) error {
	return GetDB(ctx, r.db).Save(process).Error
}

func (r *processRepository) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ? AND company_id = ?", id, companyID).Delete(&model.Process{}).Error
}

func (r *processRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Process, error) {
	var process model.Process
	if err := GetDB(ctx, r.db).First(&process, "id = ? AND company_id = ?", id, companyID).Error; err != nil {
		return nil, err
	}
	return &process, nil
}

func (r *processRepository) ListByJourney(ctx context.Context, companyID, journeyID uuid.UUID) ([]model.Process, error) {
	var processes []model.Process
	if err := GetDB(ctx, r.db).
		Where("journey_id = ? AND company_id = ?", journeyID, companyID).
		Order("position asc, created_at asc").
		Find(&processes).Error; err != nil {
		return nil, err
	}
	return processes, nil
}

// JourneyMetrics counts processes in a journey bucketed by maturity state:
// mature (current evaluation with has_process) and in-progress (active request).
func (r *processRepository) JourneyMetrics(ctx context.Context, companyID, journeyID uuid.UUID) (JourneyMaturityMetrics, error) {
	var metrics JourneyMaturityMetrics
	db := GetDB(ctx, r.db)

	var total int64
	if err := db.Model(&model.Process{}).
		Where("journey_id = ? AND company_id = ?", journeyID, companyID).
		Count(&total).Error; err != nil {
		return metrics, err
	}
	metrics.TotalProcesses = int(total)

	var mature int64
	if err := db.Table("processes").
		Joins("JOIN process_evaluations ON process_evaluations.process_id = processes.id AND process_evaluations.company_id = processes.company_id AND process_evaluations.diagnosis_id IS NULL").
		Where("processes.journey_id = ? AND processes.company_id = ? AND processes.deleted_at IS NULL AND process_evaluations.has_process = true", journeyID, companyID).
		Count(&mature).Error; err != nil {
		return metrics, err
	}
	metrics.MatureProcesses = int(mature)

	var inProgress int64
	if err := db.Table("processes").
		Joins("JOIN maturity_requests ON maturity_requests.process_id = processes.id AND maturity_requests.company_id = processes.company_id").
		Where("processes.journey_id = ? AND processes.company_id = ? AND processes.deleted_at IS NULL AND maturity_requests.status IN ?", journeyID, companyID, model.ActiveMaturityStatuses).
		Count(&inProgress).Error; err != nil {
		return metrics, err
	}
	metrics.InProgressCount = int(inProgress)

	return metrics, nil
}
