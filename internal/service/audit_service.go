package service

import (
	"context"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

type AuditLogResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	Action     string `json:"action"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`
	Details    string `json:"details"`
	CreatedAt  string `json:"created_at"`
}

type AuditService interface {
	GetAuditLogs(ctx context.Context, companyID string, page, limit int) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	auditRepo repository.AuditRepository
}

// NewAuditService creates a new AuditService instance
func NewAuditService(auditRepo repository.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

// GetAuditLogs retrieves paginated audit records for a company with the acting user pre-loaded
func (s *auditService) GetAuditLogs(ctx context.Context, companyID string, page, limit int) ([]AuditLogResponse, int64, error) {
	cid, err := uuid.Parse(companyID)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid company id: %w", err)
	}

	logs, total, err := s.auditRepo.List(ctx, cid, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		res = append(res, toAuditLogResponse(l))
	}

	return res, total, nil
}

func toAuditLogResponse(l model.AuditLog) AuditLogResponse {
	username := "System"
	userID := ""
	if l.User != nil {
		username = l.User.Name
	}
	if l.UserID != nil {
		userID = l.UserID.String()
	}

	return AuditLogResponse{
		ID:         l.ID.String(),
		UserID:     userID,
		Username:   username,
		Action:     l.Action,
		EntityID:   l.EntityID,
		EntityName: l.EntityName,
		Details:    l.Details,
		CreatedAt:  l.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
