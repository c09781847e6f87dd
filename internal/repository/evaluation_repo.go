package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EvaluationRepository interface {
	Upsert(ctx context.Context, eval *model.ProcessEvaluation) error
	FindCurrent(ctx context.Context, companyID, processID uuid.UUID) (*model.ProcessEvaluation, error)
	AppendHistory(ctx context.Context, entry *model.MaturityEvaluationHistory) error
	ListHistory(ctx context.Context, companyID, processID uuid.UUID, page, limit int) ([]model.MaturityEvaluationHistory, int64, error)
}

type evaluationRepository struct {
	db *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

// Upsert writes the current evaluation for (process, company, diagnosis=null).
// The partial unique index idx_process_evaluation_current makes the conflict
// target valid, so two approvals can never leave two current rows.
func (r *evaluationRepository) Upsert(ctx context.Context, eval *model.ProcessEvaluation) error {
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:     []clause.Column{{Name: "process_id"}, {Name: "company_id"}},
		TargetWhere: clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "diagnosis_id IS NULL"}}},
		DoUpdates:   clause.AssignmentColumns([]string{"has_process", "current_score", "status", "evaluated_at", "updated_at"}),
	}).Create(eval).Error
}

func (r *evaluationRepository) FindCurrent(ctx context.Context, companyID, processID uuid.UUID) (*model.ProcessEvaluation, error) {
	var eval model.ProcessEvaluation
	if err := GetDB(ctx, r.db).
		Where("process_id = ? AND company_id = ? AND diagnosis_id IS NULL", processID, companyID).
		First(&eval).Error; err != nil {
		return nil, err
	}
	return &eval, nil
}

func (r *evaluationRepository) AppendHistory(ctx context.Context, entry *model.MaturityEvaluationHistory) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *evaluationRepository) ListHistory(ctx context.Context, companyID, processID uuid.UUID, page, limit int) ([]model.MaturityEvaluationHistory, int64, error) {
	var entries []model.MaturityEvaluationHistory
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.MaturityEvaluationHistory{}).
		Where("process_id = ? AND company_id = ?", processID, companyID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("Evaluator").
		Where("process_id = ? AND company_id = ?", processID, companyID).
		Order("evaluated_at desc").Offset(offset).Limit(limit).Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
