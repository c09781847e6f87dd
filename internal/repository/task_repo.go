package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, companyID, id uuid.UUID) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Task, error)
	ListByProcess(ctx context.Context, companyID, processID uuid.UUID) ([]model.Task, error)
	List(ctx context.Context, companyID uuid.UUID, status string, page, limit int) ([]model.Task, int64, error)
	MaxPosition(ctx context.Context, companyID, processID uuid.UUID) (int, error)
	UpdatePosition(ctx context.Context, companyID, id uuid.UUID, position int) error
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	return GetDB(ctx, r.db).Create(task).Error
}

func (r *taskRepository) Update(ctx context.Context, task *model.Task) error {
	return GetDB(ctx, r.db).Save(task).Error
}

func (r *taskRepository) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ? AND company_id = ?", id, companyID).Delete(&model.Task{}).Error
}

func (r *taskRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	if err := GetDB(ctx, r.db).First(&task, "id = ? AND company_id = ?", id, companyID).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) ListByProcess(ctx context.Context, companyID, processID uuid.UUID) ([]model.Task, error) {
	var tasks []model.Task
	if err := GetDB(ctx, r.db).
		Where("process_id = ? AND company_id = ?", processID, companyID).
		Order("position asc, created_at asc").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) List(ctx context.Context, companyID uuid.UUID, status string, page, limit int) ([]model.Task, int64, error) {
	var tasks []model.Task
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Task{}).Where("company_id = ?", companyID)
	if status != "" {
		db = db.Where("status = ?", status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("Assignee").Order("created_at desc").Offset(offset).Limit(limit).Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

func (r *taskRepository) MaxPosition(ctx context.Context, companyID, processID uuid.UUID) (int, error) {
	var max struct {
		Position int
	}
	err := GetDB(ctx, r.db).Model(&model.Task{}).
		Select("COALESCE(MAX(position), 0) as position").
		Where("process_id = ? AND company_id = ?", processID, companyID).
		Scan(&max).Error
	return max.Position, err
}

func (r *taskRepository) UpdatePosition(ctx context.Context, companyID, id uuid.UUID, position int) error {
	return GetDB(ctx, r.db).Model(&model.Task{}).
		Where("id = ? AND company_id = ?", id, companyID).
		Update("position", position).Error
}
