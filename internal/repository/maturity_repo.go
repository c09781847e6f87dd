package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaturityRequestFilter narrows request listings
type MaturityRequestFilter struct {
	ProcessID *uuid.UUID
	Status    string
	Page      int
	Limit     int
}

type MaturityRequestRepository interface {
	Create(ctx context.Context, req *model.MaturityRequest) error
	Update(ctx context.Context, req *model.MaturityRequest) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.MaturityRequest, error)
	FindByIDForUpdate(ctx context.Context, companyID, id uuid.UUID) (*model.MaturityRequest, error)
	FindActive(ctx context.Context, companyID, processID uuid.UUID) (*model.MaturityRequest, error)
	List(ctx context.Context, companyID uuid.UUID, filter MaturityRequestFilter) ([]model.MaturityRequest, int64, error)
}

type maturityRequestRepository struct {
	db *gorm.DB
}

func NewMaturityRequestRepository(db *gorm.DB) MaturityRequestRepository {
	return &maturityRequestRepository{db: db}
}

func (r *maturityRequestRepository) Create(ctx context.Context, req *model.MaturityRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *maturityRequestRepository) Update(ctx context.Context, req *model.MaturityRequest) error {
	return GetDB(ctx, r.db).Save(req).Error
}

func (r *maturityRequestRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.MaturityRequest, error) {
	var req model.MaturityRequest
	if err := GetDB(ctx, r.db).Preload("Requester").Preload("GestorApprover").Preload("AdminApprover").
		First(&req, "id = ? AND company_id = ?", id, companyID).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// FindByIDForUpdate row-locks the request so two reviewers cannot race the
// same transition.
func (r *maturityRequestRepository) FindByIDForUpdate(ctx context.Context, companyID, id uuid.UUID) (*model.MaturityRequest, error) {
	var req model.MaturityRequest
	if err := GetDB(ctx, r.db).Raw(
		"SELECT * FROM maturity_requests WHERE id = ? AND company_id = ? FOR UPDATE", id, companyID).
		Scan(&req).Error; err != nil {
		return nil, err
	}
	if req.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &req, nil
}

func (r *maturityRequestRepository) FindActive(ctx context.Context, companyID, processID uuid.UUID) (*model.MaturityRequest, error) {
	var req model.MaturityRequest
	if err := GetDB(ctx, r.db).
		Where("process_id = ? AND company_id = ? AND status IN ?", processID, companyID, model.ActiveMaturityStatuses).
		First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *maturityRequestRepository) List(ctx context.Context, companyID uuid.UUID, filter MaturityRequestFilter) ([]model.MaturityRequest, int64, error) {
	var requests []model.MaturityRequest
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.MaturityRequest{}).Where("company_id = ?", companyID)
	if filter.ProcessID != nil {
		query = query.Where("process_id = ?", *filter.ProcessID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	fetchQuery := db.Preload("Process").Preload("Requester").Preload("GestorApprover").Preload("AdminApprover").
		Where("company_id = ?", companyID)
	if filter.ProcessID != nil {
		fetchQuery = fetchQuery.Where("process_id = ?", *filter.ProcessID)
	}
	if filter.Status != "" {
		fetchQuery = fetchQuery.Where("status = ?", filter.Status)
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := fetchQuery.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}
