package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateJourneyRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Position    int    `json:"position"`
}

type UpdateJourneyRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Position    *int    `json:"position"`
}

type CreateProcessRequest struct {
	JourneyID string `json:"journey_id" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Position  int    `json:"position"`
}

type UpdateProcessRequest struct {
	Name     string `json:"name"`
	Position *int   `json:"position"`
}

type JourneyResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Position    int    `json:"position"`
	CreatedAt   string `json:"created_at"`
}

type ProcessResponse struct {
	ID        string `json:"id"`
	JourneyID string `json:"journey_id"`
	Name      string `json:"name"`
	Position  int    `json:"position"`
	CreatedAt string `json:"created_at"`
}

// JourneyMaturityResponse is the journey-wide maturity summary used by
// dashboards alongside the persisted snapshots.
type JourneyMaturityResponse struct {
	JourneyID          string `json:"journey_id"`
	TotalProcesses     int    `json:"total_processes"`
	MatureProcesses    int    `json:"mature_processes"`
	MaturityPercentage int    `json:"maturity_percentage"`
	InProgressCount    int    `json:"in_progress_count"`
}

// --- Interface ---

type JourneyService interface {
	ListJourneys(ctx context.Context, companyID uuid.UUID) ([]JourneyResponse, error)
	CreateJourney(ctx context.Context, companyID uuid.UUID, req CreateJourneyRequest) (JourneyResponse, error)
	UpdateJourney(ctx context.Context, companyID, id uuid.UUID, req UpdateJourneyRequest) (JourneyResponse, error)
	DeleteJourney(ctx context.Context, companyID, id uuid.UUID) error
	JourneyMaturity(ctx context.Context, companyID, journeyID uuid.UUID) (JourneyMaturityResponse, error)
	ListProcesses(ctx context.Context, companyID, journeyID uuid.UUID) ([]ProcessResponse, error)
	CreateProcess(ctx context.Context, companyID uuid.UUID, req CreateProcessRequest) (ProcessResponse, error)
	UpdateProcess(ctx context.Context, companyID, id uuid.UUID, req UpdateProcessRequest) (ProcessResponse, error)
	DeleteProcess(ctx context.Context, companyID, id uuid.UUID) error
}

type journeyService struct {
	journeyRepo repository.JourneyRepository
	processRepo repository.ProcessRepository
}

func NewJourneyService(journeyRepo repository.JourneyRepository, processRepo repository.ProcessRepository) JourneyService {
	return &journeyService{journeyRepo: journeyRepo, processRepo: processRepo}
}

// --- Implementation ---

func (s *journeyService) ListJourneys(ctx context.Context, companyID uuid.UUID) ([]JourneyResponse, error) {
	journeys, err := s.journeyRepo.List(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch journeys: %w", err)
	}

	result := make([]JourneyResponse, 0, len(journeys))
	for _, j := range journeys {
		result = append(result, toJourneyResponse(j))
	}
	return result, nil
}

func (s *journeyService) CreateJourney(ctx context.Context, companyID uuid.UUID, req CreateJourneyRequest) (JourneyResponse, error) {
	journey := model.Journey{
		CompanyID:   companyID,
		Name:        req.Name,
		Description: req.Description,
		Position:    req.Position,
	}
	if err := s.journeyRepo.Create(ctx, &journey); err != nil {
		return JourneyResponse{}, fmt.Errorf("failed to create journey: %w", err)
	}
	return toJourneyResponse(journey), nil
}

func (s *journeyService) UpdateJourney(ctx context.Context, companyID, id uuid.UUID, req UpdateJourneyRequest) (JourneyResponse, error) {
	journey, err := s.journeyRepo.FindByID(ctx, companyID, id)
	if err != nil {
		return JourneyResponse{}, errors.New("journey not found")
	}

	if req.Name != "" {
		journey.Name = req.Name
	}
	if req.Description != nil {
		journey.Description = *req.Description
	}
	if req.Position != nil {
		journey.Position = *req.Position
	}

	if err := s.journeyRepo.Update(ctx, journey); err != nil {
		return JourneyResponse{}, fmt.Errorf("failed to update journey: %w", err)
	}
	return toJourneyResponse(*journey), nil
}

func (s *journeyService) DeleteJourney(ctx context.Context, companyID, id uuid.UUID) error {
	if _, err := s.journeyRepo.FindByID(ctx, companyID, id); err != nil {
		return errors.New("journey not found")
	}

	processes, err := s.processRepo.ListByJourney(ctx, companyID, id)
	if err != nil {
		return fmt.Errorf("failed to check journey processes: %w", err)
	}
	if len(processes) > 0 {
		return errors.New("journey still has processes; delete or move them first")
	}

	return s.journeyRepo.Delete(ctx, companyID, id)
}

func (s *journeyService) JourneyMaturity(ctx context.Context, companyID, journeyID uuid.UUID) (JourneyMaturityResponse, error) {
	if _, err := s.journeyRepo.FindByID(ctx, companyID, journeyID); err != nil {
		return JourneyMaturityResponse{}, errors.New("journey not found")
	}

	metrics, err := s.processRepo.JourneyMetrics(ctx, companyID, journeyID)
	if err != nil {
		return JourneyMaturityResponse{}, fmt.Errorf("failed to compute journey maturity: %w", err)
	}

	percentage := 0
	if metrics.TotalProcesses > 0 {
		percentage = metrics.MatureProcesses * 100 / metrics.TotalProcesses
	}

	return JourneyMaturityResponse{
		JourneyID:          journeyID.String(),
		TotalProcesses:     metrics.TotalProcesses,
		MatureProcesses:    metrics.MatureProcesses,
		MaturityPercentage: percentage,
		InProgressCount:    metrics.InProgressCount,
	}, nil
}

func (s *journeyService) ListProcesses(ctx context.Context, companyID, journeyID uuid.UUID) ([]ProcessResponse, error) {
	processes, err := s.processRepo.ListByJourney(ctx, companyID, journeyID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch processes: %w", err)
	}

	result := make([]ProcessResponse, 0, len(processes))
	for _, p := range processes {
		result = append(result, toProcessResponse(p))
	}
	return result, nil
}

func (s *journeyService) CreateProcess(ctx context.Context, companyID uuid.UUID, req CreateProcessRequest) (ProcessResponse, error) {
	journeyID, err := uuid.Parse(req.JourneyID)
	if err != nil {
		return ProcessResponse{}, fmt.Errorf("invalid journey id: %w", err)
	}
	if _, err := s.journeyRepo.FindByID(ctx, companyID, journeyID); err != nil {
		return ProcessResponse{}, errors.New("journey not found")
	}

	process := model.Process{
		CompanyID: companyID,
		JourneyID: journeyID,
		Name:      req.Name,
		Position:  req.Position,
	}
	if err := s.processRepo.Create(ctx, &process); err != nil {
		return ProcessResponse{}, fmt.Errorf("failed to create process: %w", err)
	}
	return toProcessResponse(process), nil
}

func (s *journeyService) UpdateProcess(ctx context.Context, companyID, id uuid.UUID, req UpdateProcessRequest) (ProcessResponse, error) {
	process, err := s.processRepo.FindByID(ctx, companyID, id)
	if err != nil {
		return ProcessResponse{}, errors.New("process not found")
	}

	if req.Name != "" {
		process.Name = req.Name
	}
	if req.Position != nil {
		process.Position = *req.Position
	}

	if err := s.processRepo.Update(ctx, process); err != nil {
		return ProcessResponse{}, fmt.Errorf("failed to update process: %w", err)
	}
	return toProcessResponse(*process), nil
}

func (s *journeyService) DeleteProcess(ctx context.Context, companyID, id uuid.UUID) error {
	if _, err := s.processRepo.FindByID(ctx, companyID, id); err != nil {
		return errors.New("process not found")
	}
	return s.processRepo.Delete(ctx, companyID, id)
}

// --- Helpers ---

func toJourneyResponse(j model.Journey) JourneyResponse {
	return JourneyResponse{
		ID:          j.ID.String(),
		Name:        j.Name,
		Description: j.Description,
		Position:    j.Position,
		CreatedAt:   j.CreatedAt.Format(time.RFC3339),
	}
}

func toProcessResponse(p model.Process) ProcessResponse {
	return ProcessResponse{
		ID:        p.ID.String(),
		JourneyID: p.JourneyID.String(),
		Name:      p.Name,
		Position:  p.Position,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}
