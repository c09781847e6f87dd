package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"backend/internal/events"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// legacyMatureScore is the score written by the maturity workflow; detailed
// scoring lives in the diagnosis flow, which this path does not touch.
var legacyMatureScore = decimal.NewFromInt(5)

// --- DTOs ---

// RequestMaturityInput creates a new workflow record. SelfCertify controls the
// entry state: a gestor certifying their own process enters directly at
// gestor_approved; a plain request enters at pending and waits for a gestor.
type RequestMaturityInput struct {
	ProcessID   string `json:"process_id" binding:"required"`
	Notes       string `json:"notes"`
	SelfCertify bool   `json:"self_certify"`
}

type ReviewMaturityInput struct {
	Notes string `json:"notes"`
}

type RejectMaturityInput struct {
	Reason string `json:"reason" binding:"required"`
}

type MaturityRequestFilter struct {
	ProcessID string
	Status    string
	Page      int
	Limit     int
}

type MaturityRequestResponse struct {
	ID                   string  `json:"id"`
	ProcessID            string  `json:"process_id"`
	ProcessName          string  `json:"process_name,omitempty"`
	JourneyID            string  `json:"journey_id"`
	TotalTasks           int     `json:"total_tasks"`
	CompletedTasks       int     `json:"completed_tasks"`
	CompletionPercentage int     `json:"completion_percentage"`
	Status               string  `json:"status"`
	RequestedBy          string  `json:"requested_by"`
	RequesterName        string  `json:"requester_name,omitempty"`
	RequestNotes         string  `json:"request_notes,omitempty"`
	GestorApprovedBy     *string `json:"gestor_approved_by"`
	GestorApproverName   string  `json:"gestor_approver_name,omitempty"`
	GestorApprovedAt     *string `json:"gestor_approved_at"`
	GestorNotes          string  `json:"gestor_notes,omitempty"`
	AdminApprovedBy      *string `json:"admin_approved_by"`
	AdminApproverName    string  `json:"admin_approver_name,omitempty"`
	AdminApprovedAt      *string `json:"admin_approved_at"`
	AdminNotes           string  `json:"admin_notes,omitempty"`
	RejectedBy           *string `json:"rejected_by"`
	RejectedAt           *string `json:"rejected_at"`
	RejectionReason      string  `json:"rejection_reason,omitempty"`
	CreatedAt            string  `json:"created_at"`
}

// SnapshotResponse is one point of a journey's maturity-over-time series.
type SnapshotResponse struct {
	JourneyID          string `json:"journey_id"`
	SnapshotDate       string `json:"snapshot_date"`
	SnapshotType       string `json:"snapshot_type"`
	TotalProcesses     int    `json:"total_processes"`
	MatureProcesses    int    `json:"mature_processes"`
	MaturityPercentage int    `json:"maturity_percentage"`
	InProgressCount    int    `json:"in_progress_count"`
}

type EvaluationHistoryResponse struct {
	ID            string `json:"id"`
	ProcessID     string `json:"process_id"`
	EvaluatorID   string `json:"evaluator_id"`
	EvaluatorName string `json:"evaluator_name,omitempty"`
	Score         string `json:"score"`
	EvaluatedAt   string `json:"evaluated_at"`
}

// --- Interface ---

type MaturityService interface {
	Progress(ctx context.Context, companyID, processID uuid.UUID) ProcessProgress
	RequestApproval(ctx context.Context, companyID, requesterID uuid.UUID, input RequestMaturityInput) (MaturityRequestResponse, error)
	GestorApprove(ctx context.Context, companyID, requestID, approverID uuid.UUID, notes string) (MaturityRequestResponse, error)
	AdminApprove(ctx context.Context, companyID, requestID, approverID uuid.UUID, notes string) (MaturityRequestResponse, error)
	Reject(ctx context.Context, companyID, requestID, rejecterID uuid.UUID, reason string) (MaturityRequestResponse, error)
	DirectConfirm(ctx context.Context, companyID, processID, adminID uuid.UUID) error
	ListRequests(ctx context.Context, companyID uuid.UUID, filter MaturityRequestFilter) ([]MaturityRequestResponse, int64, error)
	ListHistory(ctx context.Context, companyID, processID uuid.UUID, page, limit int) ([]EvaluationHistoryResponse, int64, error)
	ListSnapshots(ctx context.Context, companyID, journeyID uuid.UUID, from, to time.Time) ([]SnapshotResponse, error)
}

type maturityService struct {
	maturityRepo repository.MaturityRequestRepository
	processRepo  repository.ProcessRepository
	evalRepo     repository.EvaluationRepository
	snapshotRepo repository.SnapshotRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	progress     ProgressService
	bus          *events.Bus
}

func NewMaturityService(
	maturityRepo repository.MaturityRequestRepository,
	processRepo repository.ProcessRepository,
	evalRepo repository.EvaluationRepository,
	snapshotRepo repository.SnapshotRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	progress ProgressService,
	bus *events.Bus,
) MaturityService {
	return &maturityService{
		maturityRepo: maturityRepo,
		processRepo:  processRepo,
		evalRepo:     evalRepo,
		snapshotRepo: snapshotRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		progress:     progress,
		bus:          bus,
	}
}

// --- Implementation ---

func (s *maturityService) Progress(ctx context.Context, companyID, processID uuid.UUID) ProcessProgress {
	return s.progress.CalculateProgress(ctx, companyID, processID)
}

func (s *maturityService) RequestApproval(ctx context.Context, companyID, requesterID uuid.UUID, input RequestMaturityInput) (MaturityRequestResponse, error) {
	processID, err := uuid.Parse(input.ProcessID)
	if err != nil {
		return MaturityRequestResponse{}, fmt.Errorf("invalid process id: %w", err)
	}

	process, err := s.processRepo.FindByID(ctx, companyID, processID)
	if err != nil {
		return MaturityRequestResponse{}, fmt.Errorf("process not found: %w", err)
	}

	progress := s.progress.CalculateProgress(ctx, companyID, processID)
	if progress.Total == 0 {
		return MaturityRequestResponse{}, errors.New("Processo não possui tarefas associadas")
	}
	if !progress.Complete() {
		actual := float64(progress.Completed) / float64(progress.Total) * 100
		return MaturityRequestResponse{}, fmt.Errorf(
			"Processo ainda não atingiu 100%% de conclusão das tarefas (atual: %.1f%%)", actual)
	}

	// Friendly pre-check; the partial unique index is the real guard against
	// two concurrent submissions.
	if _, err := s.maturityRepo.FindActive(ctx, companyID, processID); err == nil {
		return MaturityRequestResponse{}, errors.New("Já existe uma solicitação de maturidade ativa para este processo")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return MaturityRequestResponse{}, fmt.Errorf("failed to check active requests: %w", err)
	}

	request := model.MaturityRequest{
		CompanyID:            companyID,
		ProcessID:            processID,
		JourneyID:            process.JourneyID,
		TotalTasks:           progress.Total,
		CompletedTasks:       progress.Completed,
		CompletionPercentage: progress.Percentage,
		Status:               model.MaturityStatusPending,
		RequestedBy:          requesterID,
		RequestNotes:         input.Notes,
	}
	if input.SelfCertify {
		now := time.Now()
		request.Status = model.MaturityStatusGestorApproved
		request.GestorApprovedBy = &requesterID
		request.GestorApprovedAt = &now
		request.GestorNotes = input.Notes
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.maturityRepo.Create(txCtx, &request); createErr != nil {
			if errors.Is(createErr, gorm.ErrDuplicatedKey) {
				return errors.New("Já existe uma solicitação de maturidade ativa para este processo")
			}
			return fmt.Errorf("failed to create maturity request: %w", createErr)
		}
		return s.logAction(txCtx, companyID, requesterID, model.ActionRequestMaturity, request.ID.String(), process.Name, map[string]interface{}{
			"process_id":   processID.String(),
			"percentage":   progress.Percentage,
			"self_certify": input.SelfCertify,
			"entry_status": request.Status,
		})
	})
	if err != nil {
		return MaturityRequestResponse{}, err
	}

	s.publish("maturity_requested", companyID, processID)
	return s.reload(ctx, companyID, request.ID)
}

func (s *maturityService) GestorApprove(ctx context.Context, companyID, requestID, approverID uuid.UUID, notes string) (MaturityRequestResponse, error) {
	var processID uuid.UUID
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err := s.maturityRepo.FindByIDForUpdate(txCtx, companyID, requestID)
		if err != nil {
			return fmt.Errorf("maturity request not found: %w", err)
		}
		if request.Status != model.MaturityStatusPending {
			return fmt.Errorf("solicitação já está %s", request.Status)
		}

		// The task set may have changed since the request was created;
		// re-validate before moving the request forward.
		progress := s.progress.CalculateProgress(txCtx, companyID, request.ProcessID)
		if !progress.Complete() {
			return fmt.Errorf(
				"Processo ainda não atingiu 100%% de conclusão das tarefas (atual: %d%%)", progress.Percentage)
		}

		now := time.Now()
		request.Status = model.MaturityStatusGestorApproved
		request.GestorApprovedBy = &approverID
		request.GestorApprovedAt = &now
		request.GestorNotes = notes
		request.TotalTasks = progress.Total
		request.CompletedTasks = progress.Completed
		request.CompletionPercentage = progress.Percentage

		if err := s.maturityRepo.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to update maturity request: %w", err)
		}

		processID = request.ProcessID
		return s.logAction(txCtx, companyID, approverID, model.ActionGestorApproveMaturity, request.ID.String(), "", map[string]interface{}{
			"process_id": request.ProcessID.String(),
		})
	})
	if err != nil {
		return MaturityRequestResponse{}, err
	}

	s.publish("maturity_gestor_approved", companyID, processID)
	return s.reload(ctx, companyID, requestID)
}

// AdminApprove moves a gestor-approved request to its terminal approved state.
// The status transition, the evaluation upsert and the history append all run
// in one transaction: either the request is approved and the evaluation
// reflects it, or neither happened.
func (s *maturityService) AdminApprove(ctx context.Context, companyID, requestID, approverID uuid.UUID, notes string) (MaturityRequestResponse, error) {
	var processID uuid.UUID
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err := s.maturityRepo.FindByIDForUpdate(txCtx, companyID, requestID)
		if err != nil {
			return fmt.Errorf("maturity request not found: %w", err)
		}
		if request.Status != model.MaturityStatusGestorApproved {
			if request.Status == model.MaturityStatusPending {
				return errors.New("solicitação ainda aguarda aprovação do gestor")
			}
			return fmt.Errorf("solicitação já está %s", request.Status)
		}

		now := time.Now()
		request.Status = model.MaturityStatusAdminApproved
		request.AdminApprovedBy = &approverID
		request.AdminApprovedAt = &now
		request.AdminNotes = notes

		if err := s.maturityRepo.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to update maturity request: %w", err)
		}

		if err := s.projectEvaluation(txCtx, companyID, request.ProcessID, approverID, now); err != nil {
			return err
		}

		processID = request.ProcessID
		return s.logAction(txCtx, companyID, approverID, model.ActionAdminApproveMaturity, request.ID.String(), "", map[string]interface{}{
			"process_id": request.ProcessID.String(),
		})
	})
	if err != nil {
		return MaturityRequestResponse{}, err
	}

	s.publish("maturity_approved", companyID, processID)
	return s.reload(ctx, companyID, requestID)
}

func (s *maturityService) Reject(ctx context.Context, companyID, requestID, rejecterID uuid.UUID, reason string) (MaturityRequestResponse, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return MaturityRequestResponse{}, errors.New("Motivo da rejeição é obrigatório")
	}

	var processID uuid.UUID
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err := s.maturityRepo.FindByIDForUpdate(txCtx, companyID, requestID)
		if err != nil {
			return fmt.Errorf("maturity request not found: %w", err)
		}
		if model.TerminalMaturityStatus(request.Status) {
			return fmt.Errorf("solicitação já está %s", request.Status)
		}

		now := time.Now()
		request.Status = model.MaturityStatusRejected
		request.RejectedBy = &rejecterID
		request.RejectedAt = &now
		request.RejectionReason = reason

		if err := s.maturityRepo.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to update maturity request: %w", err)
		}

		processID = request.ProcessID
		return s.logAction(txCtx, companyID, rejecterID, model.ActionRejectMaturity, request.ID.String(), "", map[string]interface{}{
			"process_id": request.ProcessID.String(),
			"reason":     reason,
		})
	})
	if err != nil {
		return MaturityRequestResponse{}, err
	}

	s.publish("maturity_rejected", companyID, processID)
	return s.reload(ctx, companyID, requestID)
}

// DirectConfirm is the company-admin shortcut that skips the request workflow
// and marks the process mature immediately. The journey snapshot afterwards is
// best-effort: a failure there is logged but never undoes the confirmation.
func (s *maturityService) DirectConfirm(ctx context.Context, companyID, processID, adminID uuid.UUID) error {
	process, err := s.processRepo.FindByID(ctx, companyID, processID)
	if err != nil {
		return fmt.Errorf("process not found: %w", err)
	}

	now := time.Now()
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.projectEvaluation(txCtx, companyID, processID, adminID, now); err != nil {
			return err
		}
		return s.logAction(txCtx, companyID, adminID, model.ActionDirectConfirmMaturity, processID.String(), process.Name, map[string]interface{}{
			"journey_id": process.JourneyID.String(),
		})
	})
	if err != nil {
		return err
	}

	s.snapshotJourney(ctx, companyID, process.JourneyID, now)
	s.publish("maturity_confirmed", companyID, processID)
	return nil
}

func (s *maturityService) ListRequests(ctx context.Context, companyID uuid.UUID, filter MaturityRequestFilter) ([]MaturityRequestResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.MaturityRequestFilter{
		Status: filter.Status,
		Page:   filter.Page,
		Limit:  filter.Limit,
	}
	if filter.ProcessID != "" {
		processID, err := uuid.Parse(filter.ProcessID)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid process id: %w", err)
		}
		repoFilter.ProcessID = &processID
	}

	requests, total, err := s.maturityRepo.List(ctx, companyID, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch maturity requests: %w", err)
	}

	result := make([]MaturityRequestResponse, 0, len(requests))
	for _, r := range requests {
		result = append(result, toMaturityResponse(r))
	}

	return result, total, nil
}

func (s *maturityService) ListHistory(ctx context.Context, companyID, processID uuid.UUID, page, limit int) ([]EvaluationHistoryResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	entries, total, err := s.evalRepo.ListHistory(ctx, companyID, processID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch evaluation history: %w", err)
	}

	result := make([]EvaluationHistoryResponse, 0, len(entries))
	for _, e := range entries {
		item := EvaluationHistoryResponse{
			ID:          e.ID.String(),
			ProcessID:   e.ProcessID.String(),
			EvaluatorID: e.EvaluatorID.String(),
			Score:       e.Score.String(),
			EvaluatedAt: e.EvaluatedAt.Format(time.RFC3339),
		}
		if e.Evaluator != nil {
			item.EvaluatorName = e.Evaluator.Name
		}
		result = append(result, item)
	}

	return result, total, nil
}

// ListSnapshots returns the persisted maturity-over-time series of a journey.
func (s *maturityService) ListSnapshots(ctx context.Context, companyID, journeyID uuid.UUID, from, to time.Time) ([]SnapshotResponse, error) {
	snapshots, err := s.snapshotRepo.ListByJourney(ctx, companyID, journeyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch journey snapshots: %w", err)
	}

	result := make([]SnapshotResponse, 0, len(snapshots))
	for _, snap := range snapshots {
		result = append(result, SnapshotResponse{
			JourneyID:          snap.JourneyID.String(),
			SnapshotDate:       snap.SnapshotDate.Format("2006-01-02"),
			SnapshotType:       snap.SnapshotType,
			TotalProcesses:     snap.TotalProcesses,
			MatureProcesses:    snap.MatureProcesses,
			MaturityPercentage: snap.MaturityPercentage,
			InProgressCount:    snap.InProgressCount,
		})
	}
	return result, nil
}

// --- Internal helpers ---

// projectEvaluation upserts the current evaluation and appends the immutable
// history entry. Callers run it inside the same transaction as the status
// transition it belongs to.
func (s *maturityService) projectEvaluation(txCtx context.Context, companyID, processID, evaluatorID uuid.UUID, now time.Time) error {
	eval := model.ProcessEvaluation{
		CompanyID:    companyID,
		ProcessID:    processID,
		HasProcess:   true,
		CurrentScore: legacyMatureScore,
		Status:       "completed",
		EvaluatedAt:  &now,
	}
	if err := s.evalRepo.Upsert(txCtx, &eval); err != nil {
		return fmt.Errorf("failed to upsert process evaluation: %w", err)
	}

	history := model.MaturityEvaluationHistory{
		CompanyID:   companyID,
		ProcessID:   processID,
		EvaluatorID: evaluatorID,
		Score:       legacyMatureScore,
		EvaluatedAt: now,
	}
	if err := s.evalRepo.AppendHistory(txCtx, &history); err != nil {
		return fmt.Errorf("failed to append evaluation history: %w", err)
	}

	return nil
}

// snapshotJourney recomputes journey-wide maturity and upserts the dated
// snapshot. Failures are logged only — the confirmation already committed.
func (s *maturityService) snapshotJourney(ctx context.Context, companyID, journeyID uuid.UUID, now time.Time) {
	metrics, err := s.processRepo.JourneyMetrics(ctx, companyID, journeyID)
	if err != nil {
		log.Printf("journey snapshot skipped for journey %s: %v", journeyID, err)
		return
	}

	percentage := 0
	if metrics.TotalProcesses > 0 {
		percentage = metrics.MatureProcesses * 100 / metrics.TotalProcesses
	}

	snapshot := model.JourneyMaturitySnapshot{
		CompanyID:          companyID,
		JourneyID:          journeyID,
		SnapshotDate:       now.Truncate(24 * time.Hour),
		SnapshotType:       model.SnapshotTypeDaily,
		TotalProcesses:     metrics.TotalProcesses,
		MatureProcesses:    metrics.MatureProcesses,
		MaturityPercentage: percentage,
		InProgressCount:    metrics.InProgressCount,
	}
	if err := s.snapshotRepo.Upsert(ctx, &snapshot); err != nil {
		log.Printf("journey snapshot upsert failed for journey %s: %v", journeyID, err)
	}
}

func (s *maturityService) logAction(txCtx context.Context, companyID, userID uuid.UUID, action, entityID, entityName string, details map[string]interface{}) error {
	payload, _ := json.Marshal(details)
	entry := model.AuditLog{
		CompanyID:  &companyID,
		UserID:     &userID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(payload),
	}
	if err := s.auditRepo.Log(txCtx, &entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (s *maturityService) publish(kind string, companyID, processID uuid.UUID) {
	s.bus.Publish(events.Event{
		Topic:     events.TopicProcessMaturity,
		CompanyID: companyID.String(),
		EntityID:  processID.String(),
		Kind:      kind,
	})
}

func (s *maturityService) reload(ctx context.Context, companyID, requestID uuid.UUID) (MaturityRequestResponse, error) {
	request, err := s.maturityRepo.FindByID(ctx, companyID, requestID)
	if err != nil {
		return MaturityRequestResponse{}, fmt.Errorf("failed to reload maturity request: %w", err)
	}
	return toMaturityResponse(*request), nil
}

// --- Helpers ---

func toMaturityResponse(r model.MaturityRequest) MaturityRequestResponse {
	resp := MaturityRequestResponse{
		ID:                   r.ID.String(),
		ProcessID:            r.ProcessID.String(),
		JourneyID:            r.JourneyID.String(),
		TotalTasks:           r.TotalTasks,
		CompletedTasks:       r.CompletedTasks,
		CompletionPercentage: r.CompletionPercentage,
		Status:               r.Status,
		RequestedBy:          r.RequestedBy.String(),
		RequestNotes:         r.RequestNotes,
		GestorNotes:          r.GestorNotes,
		AdminNotes:           r.AdminNotes,
		RejectionReason:      r.RejectionReason,
		CreatedAt:            r.CreatedAt.Format(time.RFC3339),
	}

	if r.Process != nil {
		resp.ProcessName = r.Process.Name
	}
	if r.Requester != nil {
		resp.RequesterName = r.Requester.Name
	}
	if r.GestorApprovedBy != nil {
		v := r.GestorApprovedBy.String()
		resp.GestorApprovedBy = &v
	}
	if r.GestorApprover != nil {
		resp.GestorApproverName = r.GestorApprover.Name
	}
	if r.GestorApprovedAt != nil {
		v := r.GestorApprovedAt.Format(time.RFC3339)
		resp.GestorApprovedAt = &v
	}
	if r.AdminApprovedBy != nil {
		v := r.AdminApprovedBy.String()
		resp.AdminApprovedBy = &v
	}
	if r.AdminApprover != nil {
		resp.AdminApproverName = r.AdminApprover.Name
	}
	if r.AdminApprovedAt != nil {
		v := r.AdminApprovedAt.Format(time.RFC3339)
		resp.AdminApprovedAt = &v
	}
	if r.RejectedBy != nil {
		v := r.RejectedBy.String()
		resp.RejectedBy = &v
	}
	if r.RejectedAt != nil {
		v := r.RejectedAt.Format(time.RFC3339)
		resp.RejectedAt = &v
	}

	return resp
}
