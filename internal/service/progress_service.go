package service

import (
	"context"
	"log"
	"math"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// ProcessProgress summarizes task completion for a process. Tasks whose
// contributes_to_maturity flag is false are excluded from both counts.
type ProcessProgress struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Percentage int `json:"percentage"`
}

// Complete reports whether the process has tasks and all of them are done
func (p ProcessProgress) Complete() bool {
	return p.Total > 0 && p.Percentage == 100
}

const progressFetchTimeout = 10 * time.Second

type ProgressService interface {
	CalculateProgress(ctx context.Context, companyID, processID uuid.UUID) ProcessProgress
}

type progressService struct {
	taskRepo repository.TaskRepository
}

func NewProgressService(taskRepo repository.TaskRepository) ProgressService {
	return &progressService{taskRepo: taskRepo}
}

// CalculateProgress derives the completion percentage from the process's task
// set. The fetch is bounded by a fixed timeout; on any error the zero value is
// returned instead of propagating, so read-only badges and gates degrade to
// "0% complete" rather than breaking the caller.
func (s *progressService) CalculateProgress(ctx context.Context, companyID, processID uuid.UUID) ProcessProgress {
	fetchCtx, cancel := context.WithTimeout(ctx, progressFetchTimeout)
	defer cancel()

	tasks, err := s.taskRepo.ListByProcess(fetchCtx, companyID, processID)
	if err != nil {
		log.Printf("progress calculation failed for process %s: %v", processID, err)
		return ProcessProgress{}
	}

	var progress ProcessProgress
	for _, task := range tasks {
		if !task.ContributesToMaturity {
			continue
		}
		progress.Total++
		if task.Status == model.TaskStatusCompleted {
			progress.Completed++
		}
	}

	if progress.Total > 0 {
		progress.Percentage = int(math.Round(float64(progress.Completed) / float64(progress.Total) * 100))
	}

	return progress
}
