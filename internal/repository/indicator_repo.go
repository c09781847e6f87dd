package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IndicatorRepository interface {
	Create(ctx context.Context, indicator *model.Indicator) error
	Update(ctx context.Context, indicator *model.Indicator) error
	Delete(ctx context.Context, companyID, id uuid.UUID) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Indicator, error)
	List(ctx context.Context, companyID uuid.UUID, page, limit int) ([]model.Indicator, int64, error)
	UpsertEntry(ctx context.Context, entry *model.IndicatorEntry) error
	ListEntries(ctx context.Context, companyID, indicatorID uuid.UUID) ([]model.IndicatorEntry, error)
}

type indicatorRepository struct {
	db *gorm.DB
}

func NewIndicatorRepository(db *gorm.DB) IndicatorRepository {
	return &indicatorRepository{db: db}
}

func (r *indicatorRepository) Create(ctx context.Context, indicator *model.Indicator) error {
	return GetDB(ctx, r.db).Create(indicator).Error
}

func (r *indicatorRepository) Update(ctx context.Context, indicator *model.Indicator) error {
	return GetDB(ctx, r.db).Save(indicator).Error
}

func (r *indicatorRepository) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ? AND company_id = ?", id, companyID).Delete(&model.Indicator{}).Error
}

func (r *indicatorRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Indicator, error) {
	var indicator model.Indicator
	if err := GetDB(ctx, r.db).First(&indicator, "id = ? AND company_id = ?", id, companyID).Error; err != nil {
		return nil, err
	}
	return &indicator, nil
}

func (r *indicatorRepository) List(ctx context.Context, companyID uuid.UUID, page, limit int) ([]model.Indicator, int64, error) {
	var indicators []model.Indicator
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Indicator{}).Where("company_id = ?", companyID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("name asc").Offset(offset).Limit(limit).Find(&indicators).Error; err != nil {
		return nil, 0, err
	}

	return indicators, total, nil
}

// UpsertEntry overwrites the value for an existing (indicator, period) pair
func (r *indicatorRepository) UpsertEntry(ctx context.Context, entry *model.IndicatorEntry) error {
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "indicator_id"}, {Name: "period"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "recorded_by", "updated_at"}),
	}).Create(entry).Error
}

func (r *indicatorRepository) ListEntries(ctx context.Context, companyID, indicatorID uuid.UUID) ([]model.IndicatorEntry, error) {
	var entries []model.IndicatorEntry
	if err := GetDB(ctx, r.db).
		Where("indicator_id = ? AND company_id = ?", indicatorID, companyID).
		Order("period asc").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
