package service

import (
	"context"
	"errors"
	"testing"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// fakeTaskRepo is an in-memory TaskRepository used across the service tests.
type fakeTaskRepo struct {
	tasks []model.Task
	err   error
}

func (f *fakeTaskRepo) Create(ctx context.Context, task *model.Task) error {
	if f.err != nil {
		return f.err
	}
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	f.tasks = append(f.tasks, *task)
	return nil
}

func (f *fakeTaskRepo) Update(ctx context.Context, task *model.Task) error {
	for i := range f.tasks {
		if f.tasks[i].ID == task.ID {
			f.tasks[i] = *task
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeTaskRepo) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	for i := range f.tasks {
		if f.tasks[i].ID == id && f.tasks[i].CompanyID == companyID {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeTaskRepo) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Task, error) {
	for i := range f.tasks {
		if f.tasks[i].ID == id && f.tasks[i].CompanyID == companyID {
			t := f.tasks[i]
			return &t, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeTaskRepo) ListByProcess(ctx context.Context, companyID, processID uuid.UUID) ([]model.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Task
	for _, t := range f.tasks {
		if t.ProcessID == processID && t.CompanyID == companyID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) List(ctx context.Context, companyID uuid.UUID, status string, page, limit int) ([]model.Task, int64, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	var out []model.Task
	for _, t := range f.tasks {
		if t.CompanyID != companyID {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		out = append(out, t)
	}
	return out, int64(len(out)), nil
}

func (f *fakeTaskRepo) MaxPosition(ctx context.Context, companyID, processID uuid.UUID) (int, error) {
	max := 0
	for _, t := range f.tasks {
		if t.ProcessID == processID && t.CompanyID == companyID && t.Position > max {
			max = t.Position
		}
	}
	return max, nil
}

func (f *fakeTaskRepo) UpdatePosition(ctx context.Context, companyID, id uuid.UUID, position int) error {
	for i := range f.tasks {
		if f.tasks[i].ID == id && f.tasks[i].CompanyID == companyID {
			f.tasks[i].Position = position
			return nil
		}
	}
	return errors.New("not found")
}

func relevantTask(companyID, processID uuid.UUID, status string) model.Task {
	return model.Task{
		ID:                    uuid.New(),
		CompanyID:             companyID,
		ProcessID:             processID,
		Title:                 "task",
		Status:                status,
		ContributesToMaturity: true,
	}
}

func TestCalculateProgressNoTasks(t *testing.T) {
	companyID, processID := uuid.New(), uuid.New()
	svc := NewProgressService(&fakeTaskRepo{})

	progress := svc.CalculateProgress(context.Background(), companyID, processID)

	assert.Equal(t, 0, progress.Total)
	assert.Equal(t, 0, progress.Completed)
	assert.Equal(t, 0, progress.Percentage)
	assert.False(t, progress.Complete())
}

func TestCalculateProgressRounding(t *testing.T) {
	companyID, processID := uuid.New(), uuid.New()
	repo := &fakeTaskRepo{tasks: []model.Task{
		relevantTask(companyID, processID, model.TaskStatusCompleted),
		relevantTask(companyID, processID, model.TaskStatusCompleted),
		relevantTask(companyID, processID, model.TaskStatusCompleted),
		relevantTask(companyID, processID, model.TaskStatusPending),
	}}
	svc := NewProgressService(repo)

	progress := svc.CalculateProgress(context.Background(), companyID, processID)

	assert.Equal(t, 4, progress.Total)
	assert.Equal(t, 3, progress.Completed)
	assert.Equal(t, 75, progress.Percentage)
	assert.False(t, progress.Complete())
}

func TestCalculateProgressExcludesNonContributing(t *testing.T) {
	companyID, processID := uuid.New(), uuid.New()
	excluded := relevantTask(companyID, processID, model.TaskStatusPending)
	excluded.ContributesToMaturity = false

	repo := &fakeTaskRepo{tasks: []model.Task{
		relevantTask(companyID, processID, model.TaskStatusCompleted),
		excluded,
	}}
	svc := NewProgressService(repo)

	progress := svc.CalculateProgress(context.Background(), companyID, processID)

	assert.Equal(t, 1, progress.Total)
	assert.Equal(t, 1, progress.Completed)
	assert.Equal(t, 100, progress.Percentage)
	assert.True(t, progress.Complete())
}

func TestCalculateProgressRepoErrorYieldsZeroValue(t *testing.T) {
	svc := NewProgressService(&fakeTaskRepo{err: errors.New("connection refused")})

	progress := svc.CalculateProgress(context.Background(), uuid.New(), uuid.New())

	assert.Equal(t, ProcessProgress{}, progress)
	assert.False(t, progress.Complete())
}

func TestCalculateProgressScopedToProcess(t *testing.T) {
	companyID, processID := uuid.New(), uuid.New()
	repo := &fakeTaskRepo{tasks: []model.Task{
		relevantTask(companyID, processID, model.TaskStatusCompleted),
		relevantTask(companyID, uuid.New(), model.TaskStatusPending), // other process
	}}
	svc := NewProgressService(repo)

	progress := svc.CalculateProgress(context.Background(), companyID, processID)

	assert.Equal(t, 1, progress.Total)
	assert.Equal(t, 100, progress.Percentage)
}
