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
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateIndicatorRequest struct {
	Name      string `json:"name" binding:"required"`
	Unit      string `json:"unit"`
	Target    string `json:"target" binding:"required"`
	Direction string `json:"direction" binding:"omitempty,oneof=up down"`
}

type UpdateIndicatorRequest struct {
	Name      string  `json:"name"`
	Unit      *string `json:"unit"`
	Target    string  `json:"target"`
	Direction string  `json:"direction" binding:"omitempty,oneof=up down"`
}

// RecordEntryRequest writes the value for a month; Period accepts "2006-01"
type RecordEntryRequest struct {
	Period string `json:"period" binding:"required"`
	Value  string `json:"value" binding:"required"`
}

type IndicatorResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Unit      string `json:"unit"`
	Target    string `json:"target"`
	Direction string `json:"direction"`
	CreatedAt string `json:"created_at"`
}

type IndicatorEntryResponse struct {
	ID     string `json:"id"`
	Period string `json:"period"`
	Value  string `json:"value"`
}

// --- Interface ---

type IndicatorService interface {
	CreateIndicator(ctx context.Context, companyID, userID uuid.UUID, req CreateIndicatorRequest) (IndicatorResponse, error)
	UpdateIndicator(ctx context.Context, companyID, id uuid.UUID, req UpdateIndicatorRequest) (IndicatorResponse, error)
	DeleteIndicator(ctx context.Context, companyID, id uuid.UUID) error
	ListIndicators(ctx context.Context, companyID uuid.UUID, page, limit int) ([]IndicatorResponse, int64, error)
	RecordEntry(ctx context.Context, companyID, indicatorID, userID uuid.UUID, req RecordEntryRequest) (IndicatorEntryResponse, error)
	Summary(ctx context.Context, companyID, indicatorID uuid.UUID) (model.IndicatorSummary, error)
}

type indicatorService struct {
	repo      repository.IndicatorRepository
	auditRepo repository.AuditRepository
	bus       *events.Bus
}

func NewIndicatorService(repo repository.IndicatorRepository, auditRepo repository.AuditRepository, bus *events.Bus) IndicatorService {
	return &indicatorService{repo: repo, auditRepo: auditRepo, bus: bus}
}

// --- Implementation ---

func (s *indicatorService) CreateIndicator(ctx context.Context, companyID, userID uuid.UUID, req CreateIndicatorRequest) (IndicatorResponse, error) {
	target, err := decimal.NewFromString(req.Target)
	if err != nil {
		return IndicatorResponse{}, fmt.Errorf("invalid target value: %w", err)
	}

	direction := req.Direction
	if direction == "" {
		direction = model.IndicatorDirectionUp
	}

	indicator := model.Indicator{
		CompanyID: companyID,
		Name:      req.Name,
		Unit:      req.Unit,
		Target:    target,
		Direction: direction,
	}
	if err := s.repo.Create(ctx, &indicator); err != nil {
		return IndicatorResponse{}, fmt.Errorf("failed to create indicator: %w", err)
	}

	entry := model.AuditLog{
		CompanyID:  &companyID,
		UserID:     &userID,
		Action:     model.ActionCreateIndicator,
		EntityID:   indicator.ID.String(),
		EntityName: indicator.Name,
	}
	_ = s.auditRepo.Log(ctx, &entry)

	return toIndicatorResponse(indicator), nil
}

func (s *indicatorService) UpdateIndicator(ctx context.Context, companyID, id uuid.UUID, req UpdateIndicatorRequest) (IndicatorResponse, error) {
	indicator, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		return IndicatorResponse{}, errors.New("indicator not found")
	}

	if req.Name != "" {
		indicator.Name = req.Name
	}
	if req.Unit != nil {
		indicator.Unit = *req.Unit
	}
	if req.Target != "" {
		target, parseErr := decimal.NewFromString(req.Target)
		if parseErr != nil {
			return IndicatorResponse{}, fmt.Errorf("invalid target value: %w", parseErr)
		}
		indicator.Target = target
	}
	if req.Direction != "" {
		indicator.Direction = req.Direction
	}

	if err := s.repo.Update(ctx, indicator); err != nil {
		return IndicatorResponse{}, fmt.Errorf("failed to update indicator: %w", err)
	}
	return toIndicatorResponse(*indicator), nil
}

func (s *indicatorService) DeleteIndicator(ctx context.Context, companyID, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, companyID, id); err != nil {
		return errors.New("indicator not found")
	}
	return s.repo.Delete(ctx, companyID, id)
}

func (s *indicatorService) ListIndicators(ctx context.Context, companyID uuid.UUID, page, limit int) ([]IndicatorResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	indicators, total, err := s.repo.List(ctx, companyID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch indicators: %w", err)
	}

	result := make([]IndicatorResponse, 0, len(indicators))
	for _, i := range indicators {
		result = append(result, toIndicatorResponse(i))
	}
	return result, total, nil
}

func (s *indicatorService) RecordEntry(ctx context.Context, companyID, indicatorID, userID uuid.UUID, req RecordEntryRequest) (IndicatorEntryResponse, error) {
	if _, err := s.repo.FindByID(ctx, companyID, indicatorID); err != nil {
		return IndicatorEntryResponse{}, errors.New("indicator not found")
	}

	period, err := time.Parse("2006-01", req.Period)
	if err != nil {
		return IndicatorEntryResponse{}, fmt.Errorf("invalid period, expected YYYY-MM: %w", err)
	}

	value, err := decimal.NewFromString(req.Value)
	if err != nil {
		return IndicatorEntryResponse{}, fmt.Errorf("invalid value: %w", err)
	}

	entry := model.IndicatorEntry{
		CompanyID:   companyID,
		IndicatorID: indicatorID,
		Period:      period,
		Value:       value,
		RecordedBy:  &userID,
	}
	if err := s.repo.UpsertEntry(ctx, &entry); err != nil {
		return IndicatorEntryResponse{}, fmt.Errorf("failed to record indicator entry: %w", err)
	}

	audit := model.AuditLog{
		CompanyID:  &companyID,
		UserID:     &userID,
		Action:     model.ActionRecordIndicatorData,
		EntityID:   indicatorID.String(),
		EntityName: req.Period,
	}
	_ = s.auditRepo.Log(ctx, &audit)

	s.bus.Publish(events.Event{
		Topic:     events.TopicIndicators,
		CompanyID: companyID.String(),
		EntityID:  indicatorID.String(),
		Kind:      "indicator_recorded",
	})

	return IndicatorEntryResponse{
		ID:     entry.ID.String(),
		Period: period.Format("2006-01"),
		Value:  value.String(),
	}, nil
}

// Summary folds all entries into latest value, average and on-target status
func (s *indicatorService) Summary(ctx context.Context, companyID, indicatorID uuid.UUID) (model.IndicatorSummary, error) {
	indicator, err := s.repo.FindByID(ctx, companyID, indicatorID)
	if err != nil {
		return model.IndicatorSummary{}, errors.New("indicator not found")
	}

	entries, err := s.repo.ListEntries(ctx, companyID, indicatorID)
	if err != nil {
		return model.IndicatorSummary{}, fmt.Errorf("failed to fetch indicator entries: %w", err)
	}

	summary := model.IndicatorSummary{
		IndicatorID:   indicator.ID.String(),
		IndicatorName: indicator.Name,
		Unit:          indicator.Unit,
		Target:        indicator.Target,
		EntryCount:    len(entries),
	}
	if len(entries) == 0 {
		return summary, nil
	}

	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Value)
	}
	latest := entries[len(entries)-1]

	summary.LatestValue = latest.Value
	latestPeriod := latest.Period
	summary.LatestPeriod = &latestPeriod
	summary.Average = sum.Div(decimal.NewFromInt(int64(len(entries)))).Round(4)

	if indicator.Direction == model.IndicatorDirectionDown {
		summary.OnTarget = latest.Value.LessThanOrEqual(indicator.Target)
	} else {
		summary.OnTarget = latest.Value.GreaterThanOrEqual(indicator.Target)
	}

	return summary, nil
}

// --- Helpers ---

func toIndicatorResponse(i model.Indicator) IndicatorResponse {
	return IndicatorResponse{
		ID:        i.ID.String(),
		Name:      i.Name,
		Unit:      i.Unit,
		Target:    i.Target.String(),
		Direction: i.Direction,
		CreatedAt: i.CreatedAt.Format(time.RFC3339),
	}
}
