package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend/internal/events"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateTaskRequest struct {
	ProcessID             string     `json:"process_id" binding:"required"`
	Title                 string     `json:"title" binding:"required"`
	Description           string     `json:"description"`
	ContributesToMaturity *bool      `json:"contributes_to_maturity"`
	AssigneeID            string     `json:"assignee_id"`
	DueDate               *time.Time `json:"due_date"`
}

type UpdateTaskRequest struct {
	Title                 string     `json:"title"`
	Description           *string    `json:"description"`
	Status                string     `json:"status" binding:"omitempty,oneof=pending in_progress completed cancelled"`
	ContributesToMaturity *bool      `json:"contributes_to_maturity"`
	AssigneeID            *string    `json:"assignee_id"`
	DueDate               *time.Time `json:"due_date"`
}

type ReorderTasksRequest struct {
	ProcessID string   `json:"process_id" binding:"required"`
	TaskIDs   []string `json:"task_ids" binding:"required,min=1"`
}

type TaskResponse struct {
	ID                    string     `json:"id"`
	ProcessID             string     `json:"process_id"`
	Title                 string     `json:"title"`
	Description           string     `json:"description"`
	Status                string     `json:"status"`
	ContributesToMaturity bool       `json:"contributes_to_maturity"`
	Position              int        `json:"position"`
	AssigneeID            *string    `json:"assignee_id"`
	AssigneeName          string     `json:"assignee_name,omitempty"`
	DueDate               *time.Time `json:"due_date"`
	CreatedAt             string     `json:"created_at"`
}

// --- Interface ---

type TaskService interface {
	ListTasks(ctx context.Context, companyID uuid.UUID, status string, page, limit int) ([]TaskResponse, int64, error)
	ListByProcess(ctx context.Context, companyID, processID uuid.UUID) ([]TaskResponse, error)
	CreateTask(ctx context.Context, companyID, userID uuid.UUID, req CreateTaskRequest) (TaskResponse, error)
	UpdateTask(ctx context.Context, companyID, userID, id uuid.UUID, req UpdateTaskRequest) (TaskResponse, error)
	DeleteTask(ctx context.Context, companyID, userID, id uuid.UUID) error
	ReorderTasks(ctx context.Context, companyID uuid.UUID, req ReorderTasksRequest) error
}

type taskService struct {
	taskRepo    repository.TaskRepository
	processRepo repository.ProcessRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	bus         *events.Bus
}

func NewTaskService(
	taskRepo repository.TaskRepository,
	processRepo repository.ProcessRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	bus *events.Bus,
) TaskService {
	return &taskService{
		taskRepo:    taskRepo,
		processRepo: processRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		bus:         bus,
	}
}

// --- Implementation ---

func (s *taskService) ListTasks(ctx context.Context, companyID uuid.UUID, status string, page, limit int) ([]TaskResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	if status != "" && !model.ValidTaskStatus(status) {
		return nil, 0, fmt.Errorf("unknown task status: %s", status)
	}

	tasks, total, err := s.taskRepo.List(ctx, companyID, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch tasks: %w", err)
	}

	result := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		result = append(result, toTaskResponse(t))
	}
	return result, total, nil
}

func (s *taskService) ListByProcess(ctx context.Context, companyID, processID uuid.UUID) ([]TaskResponse, error) {
	tasks, err := s.taskRepo.ListByProcess(ctx, companyID, processID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}

	result := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		result = append(result, toTaskResponse(t))
	}
	return result, nil
}

func (s *taskService) CreateTask(ctx context.Context, companyID, userID uuid.UUID, req CreateTaskRequest) (TaskResponse, error) {
	processID, err := uuid.Parse(req.ProcessID)
	if err != nil {
		return TaskResponse{}, fmt.Errorf("invalid process id: %w", err)
	}
	if _, err := s.processRepo.FindByID(ctx, companyID, processID); err != nil {
		return TaskResponse{}, fmt.Errorf("process not found: %w", err)
	}

	contributes := true
	if req.ContributesToMaturity != nil {
		contributes = *req.ContributesToMaturity
	}

	task := model.Task{
		CompanyID:             companyID,
		ProcessID:             processID,
		Title:                 req.Title,
		Description:           req.Description,
		Status:                model.TaskStatusPending,
		ContributesToMaturity: contributes,
		DueDate:               req.DueDate,
	}
	if req.AssigneeID != "" {
		assigneeID, parseErr := uuid.Parse(req.AssigneeID)
		if parseErr != nil {
			return TaskResponse{}, fmt.Errorf("invalid assignee id: %w", parseErr)
		}
		task.AssigneeID = &assigneeID
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		maxPos, posErr := s.taskRepo.MaxPosition(txCtx, companyID, processID)
		if posErr != nil {
			return fmt.Errorf("failed to compute task position: %w", posErr)
		}
		task.Position = maxPos + 1

		if createErr := s.taskRepo.Create(txCtx, &task); createErr != nil {
			return fmt.Errorf("failed to create task: %w", createErr)
		}
		return s.audit(txCtx, companyID, userID, model.ActionCreateTask, task.ID.String(), task.Title)
	})
	if err != nil {
		return TaskResponse{}, err
	}

	s.publish("task_created", companyID, task.ID)
	return toTaskResponse(task), nil
}

func (s *taskService) UpdateTask(ctx context.Context, companyID, userID, id uuid.UUID, req UpdateTaskRequest) (TaskResponse, error) {
	task, err := s.taskRepo.FindByID(ctx, companyID, id)
	if err != nil {
		return TaskResponse{}, errors.New("task not found")
	}

	if req.Title != "" {
		task.Title = req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != "" {
		if !model.ValidTaskStatus(req.Status) {
			return TaskResponse{}, fmt.Errorf("unknown task status: %s", req.Status)
		}
		task.Status = req.Status
	}
	if req.ContributesToMaturity != nil {
		task.ContributesToMaturity = *req.ContributesToMaturity
	}
	if req.AssigneeID != nil {
		if *req.AssigneeID == "" {
			task.AssigneeID = nil
		} else {
			assigneeID, parseErr := uuid.Parse(*req.AssigneeID)
			if parseErr != nil {
				return TaskResponse{}, fmt.Errorf("invalid assignee id: %w", parseErr)
			}
			task.AssigneeID = &assigneeID
		}
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.taskRepo.Update(txCtx, task); updateErr != nil {
			return fmt.Errorf("failed to update task: %w", updateErr)
		}
		return s.audit(txCtx, companyID, userID, model.ActionUpdateTask, task.ID.String(), task.Title)
	})
	if err != nil {
		return TaskResponse{}, err
	}

	s.publish("task_updated", companyID, task.ID)
	return toTaskResponse(*task), nil
}

func (s *taskService) DeleteTask(ctx context.Context, companyID, userID, id uuid.UUID) error {
	task, err := s.taskRepo.FindByID(ctx, companyID, id)
	if err != nil {
		return errors.New("task not found")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if delErr := s.taskRepo.Delete(txCtx, companyID, id); delErr != nil {
			return fmt.Errorf("failed to delete task: %w", delErr)
		}
		return s.audit(txCtx, companyID, userID, model.ActionDeleteTask, id.String(), task.Title)
	})
	if err != nil {
		return err
	}

	s.publish("task_deleted", companyID, id)
	return nil
}

// ReorderTasks rewrites positions for a process's tasks following the order of
// the given ids. Ids outside the process are rejected wholesale.
func (s *taskService) ReorderTasks(ctx context.Context, companyID uuid.UUID, req ReorderTasksRequest) error {
	processID, err := uuid.Parse(req.ProcessID)
	if err != nil {
		return fmt.Errorf("invalid process id: %w", err)
	}

	existing, err := s.taskRepo.ListByProcess(ctx, companyID, processID)
	if err != nil {
		return fmt.Errorf("failed to fetch tasks: %w", err)
	}
	known := make(map[uuid.UUID]bool, len(existing))
	for _, t := range existing {
		known[t.ID] = true
	}

	ids := make([]uuid.UUID, 0, len(req.TaskIDs))
	for _, raw := range req.TaskIDs {
		id, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			return fmt.Errorf("invalid task id %q: %w", raw, parseErr)
		}
		if !known[id] {
			return fmt.Errorf("task %s does not belong to process %s", id, processID)
		}
		ids = append(ids, id)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for i, id := range ids {
			if posErr := s.taskRepo.UpdatePosition(txCtx, companyID, id, i+1); posErr != nil {
				return fmt.Errorf("failed to reposition task %s: %w", id, posErr)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish("tasks_reordered", companyID, processID)
	return nil
}

// --- Internal helpers ---

func (s *taskService) audit(txCtx context.Context, companyID, userID uuid.UUID, action, entityID, entityName string) error {
	entry := model.AuditLog{
		CompanyID:  &companyID,
		UserID:     &userID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
	}
	if err := s.auditRepo.Log(txCtx, &entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (s *taskService) publish(kind string, companyID, entityID uuid.UUID) {
	s.bus.Publish(events.Event{
		Topic:     events.TopicTasks,
		CompanyID: companyID.String(),
		EntityID:  entityID.String(),
		Kind:      kind,
	})
}

func toTaskResponse(t model.Task) TaskResponse {
	resp := TaskResponse{
		ID:                    t.ID.String(),
		ProcessID:             t.ProcessID.String(),
		Title:                 t.Title,
		Description:           t.Description,
		Status:                t.Status,
		ContributesToMaturity: t.ContributesToMaturity,
		Position:              t.Position,
		DueDate:               t.DueDate,
		CreatedAt:             t.CreatedAt.Format(time.RFC3339),
	}
	if t.AssigneeID != nil {
		v := t.AssigneeID.String()
		resp.AssigneeID = &v
	}
	if t.Assignee != nil {
		resp.AssigneeName = t.Assignee.Name
	}
	return resp
}
