package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JourneyRepository interface {
	Create(ctx context.Context, journey *model.Journey) error
	Update(ctx context.Context, journey *model.Journey) error
	Delete(ctx context.Context, companyID, id uuid.UUID) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Journey, error)
	List(ctx context.Context, companyID uuid.UUID) ([]model.Journey, error)
}

type journeyRepository struct {
	db *gorm.DB
}

func NewJourneyRepository(db *gorm.DB) JourneyRepository {
	return &journeyRepository{db: db}
}

func (r *journeyRepository) Create(ctx context.Context, journey *model.Journey) error {
	return GetDB(ctx, r.db).Create(journey).Error
}

func (r *journeyRepository) Update(ctx context.Context, journey *model.Journey) error {
	return GetDB(ctx, r.db).Save(journey).Error
}

func (r *journeyRepository) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ? AND company_id = ?", id, companyID).Delete(&model.Journey{}).Error
}

func (r *journeyRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Journey, error) {
	var journey model.Journey
	if err := GetDB(ctx, r.db).First(&journey, "id = ? AND company_id = ?", id, companyID).Error; err != nil {
		return nil, err
	}
	return &journey, nil
}

func (r *journeyRepository) List(ctx context.Context, companyID uuid.UUID) ([]model.Journey, error) {
	var journeys []model.Journey
	if err := GetDB(ctx, r.db).
		Where("company_id = ?", companyID).
		Order("position asc, created_at asc").
		Find(&journeys).Error; err != nil {
		return nil, err
	}
	return journeys, nil
}
