package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"backend/internal/events"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// --- Fakes ---

// fakeTxManager runs the function directly; the fakes are already in memory,
// so there is nothing to roll back.
type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeMaturityRepo struct {
	requests map[uuid.UUID]*model.MaturityRequest
	// hideActive makes FindActive miss existing rows, simulating the race
	// window where two requests pass the friendly pre-check concurrently.
	hideActive bool
}

func newFakeMaturityRepo() *fakeMaturityRepo {
	return &fakeMaturityRepo{requests: make(map[uuid.UUID]*model.MaturityRequest)}
}

func (f *fakeMaturityRepo) Create(ctx context.Context, req *model.MaturityRequest) error {
	// Enforce the partial unique index: one active request per (process, company)
	for _, existing := range f.requests {
		if existing.ProcessID == req.ProcessID && existing.CompanyID == req.CompanyID &&
			!model.TerminalMaturityStatus(existing.Status) {
			return gorm.ErrDuplicatedKey
		}
	}
	req.ID = uuid.New()
	req.CreatedAt = time.Now()
	clone := *req
	f.requests[req.ID] = &clone
	return nil
}

func (f *fakeMaturityRepo) Update(ctx context.Context, req *model.MaturityRequest) error {
	if _, ok := f.requests[req.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *req
	f.requests[req.ID] = &clone
	return nil
}

func (f *fakeMaturityRepo) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.MaturityRequest, error) {
	req, ok := f.requests[id]
	if !ok || req.CompanyID != companyID {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *req
	return &clone, nil
}

func (f *fakeMaturityRepo) FindByIDForUpdate(ctx context.Context, companyID, id uuid.UUID) (*model.MaturityRequest, error) {
	return f.FindByID(ctx, companyID, id)
}

func (f *fakeMaturityRepo) FindActive(ctx context.Context, companyID, processID uuid.UUID) (*model.MaturityRequest, error) {
	if f.hideActive {
		return nil, gorm.ErrRecordNotFound
	}
	for _, req := range f.requests {
		if req.ProcessID == processID && req.CompanyID == companyID && !model.TerminalMaturityStatus(req.Status) {
			clone := *req
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMaturityRepo) List(ctx context.Context, companyID uuid.UUID, filter repository.MaturityRequestFilter) ([]model.MaturityRequest, int64, error) {
	var out []model.MaturityRequest
	for _, req := range f.requests {
		if req.CompanyID != companyID {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		if filter.ProcessID != nil && req.ProcessID != *filter.ProcessID {
			continue
		}
		out = append(out, *req)
	}
	return out, int64(len(out)), nil
}

type fakeProcessRepo struct {
	processes map[uuid.UUID]*model.Process
	metrics   repository.JourneyMaturityMetrics
}

func newFakeProcessRepo() *fakeProcessRepo {
	return &fakeProcessRepo{processes: make(map[uuid.UUID]*model.Process)}
}

func (f *fakeProcessRepo) Create(ctx context.Context, process *model.Process) error {
	if process.ID == uuid.Nil {
		process.ID = uuid.New()
	}
	clone := *process
	f.processes[process.ID] = &clone
	return nil
}

func (f *fakeProcessRepo) Update(ctx context.Context, process *model.Process) error {
	clone := *process
	f.processes[process.ID] = &clone
	return nil
}

func (f *fakeProcessRepo) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	delete(f.processes, id)
	return nil
}

func (f *fakeProcessRepo) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Process, error) {
	p, ok := f.processes[id]
	if !ok || p.CompanyID != companyID {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *p
	return &clone, nil
}

func (f *fakeProcessRepo) ListByJourney(ctx context.Context, companyID, journeyID uuid.UUID) ([]model.Process, error) {
	var out []model.Process
	for _, p := range f.processes {
		if p.CompanyID == companyID && p.JourneyID == journeyID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProcessRepo) JourneyMetrics(ctx context.Context, companyID, journeyID uuid.UUID) (repository.JourneyMaturityMetrics, error) {
	return f.metrics, nil
}

type fakeEvalRepo struct {
	evals   map[string]*model.ProcessEvaluation
	history []model.MaturityEvaluationHistory
}

func newFakeEvalRepo() *fakeEvalRepo {
	return &fakeEvalRepo{evals: make(map[string]*model.ProcessEvaluation)}
}

func evalKey(companyID, processID uuid.UUID) string {
	return companyID.String() + "|" + processID.String()
}

func (f *fakeEvalRepo) Upsert(ctx context.Context, eval *model.ProcessEvaluation) error {
	key := evalKey(eval.CompanyID, eval.ProcessID)
	if existing, ok := f.evals[key]; ok {
		eval.ID = existing.ID
	} else if eval.ID == uuid.Nil {
		eval.ID = uuid.New()
	}
	clone := *eval
	f.evals[key] = &clone
	return nil
}

func (f *fakeEvalRepo) FindCurrent(ctx context.Context, companyID, processID uuid.UUID) (*model.ProcessEvaluation, error) {
	eval, ok := f.evals[evalKey(companyID, processID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *eval
	return &clone, nil
}

func (f *fakeEvalRepo) AppendHistory(ctx context.Context, entry *model.MaturityEvaluationHistory) error {
	entry.ID = uuid.New()
	f.history = append(f.history, *entry)
	return nil
}

func (f *fakeEvalRepo) ListHistory(ctx context.Context, companyID, processID uuid.UUID, page, limit int) ([]model.MaturityEvaluationHistory, int64, error) {
	var out []model.MaturityEvaluationHistory
	for _, entry := range f.history {
		if entry.CompanyID == companyID && entry.ProcessID == processID {
			out = append(out, entry)
		}
	}
	return out, int64(len(out)), nil
}

type fakeSnapshotRepo struct {
	snapshots map[string]*model.JourneyMaturitySnapshot
}

func newFakeSnapshotRepo() *fakeSnapshotRepo {
	return &fakeSnapshotRepo{snapshots: make(map[string]*model.JourneyMaturitySnapshot)}
}

func snapshotKey(s *model.JourneyMaturitySnapshot) string {
	return fmt.Sprintf("%s|%s|%s|%s", s.CompanyID, s.JourneyID, s.SnapshotDate.Format("2006-01-02"), s.SnapshotType)
}

func (f *fakeSnapshotRepo) Upsert(ctx context.Context, snapshot *model.JourneyMaturitySnapshot) error {
	key := snapshotKey(snapshot)
	if existing, ok := f.snapshots[key]; ok {
		snapshot.ID = existing.ID
	} else if snapshot.ID == uuid.Nil {
		snapshot.ID = uuid.New()
	}
	clone := *snapshot
	f.snapshots[key] = &clone
	return nil
}

func (f *fakeSnapshotRepo) ListByJourney(ctx context.Context, companyID, journeyID uuid.UUID, from, to time.Time) ([]model.JourneyMaturitySnapshot, error) {
	var out []model.JourneyMaturitySnapshot
	for _, s := range f.snapshots {
		if s.CompanyID == companyID && s.JourneyID == journeyID &&
			!s.SnapshotDate.Before(from) && !s.SnapshotDate.After(to) {
			out = append(out, *s)
		}
	}
	return out, nil
}

type fakeAuditRepo struct {
	entries []model.AuditLog
}

func (f *fakeAuditRepo) Log(ctx context.Context, entry *model.AuditLog) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditRepo) List(ctx context.Context, companyID uuid.UUID, page, limit int) ([]model.AuditLog, int64, error) {
	var out []model.AuditLog
	for _, e := range f.entries {
		if e.CompanyID != nil && *e.CompanyID == companyID {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

// --- Fixture ---

type maturityFixture struct {
	svc          MaturityService
	taskRepo     *fakeTaskRepo
	maturityRepo *fakeMaturityRepo
	processRepo  *fakeProcessRepo
	evalRepo     *fakeEvalRepo
	snapshotRepo *fakeSnapshotRepo
	auditRepo    *fakeAuditRepo

	companyID uuid.UUID
	journeyID uuid.UUID
	processID uuid.UUID
	userID    uuid.UUID
}

func newMaturityFixture(t *testing.T) *maturityFixture {
	t.Helper()

	f := &maturityFixture{
		taskRepo:     &fakeTaskRepo{},
		maturityRepo: newFakeMaturityRepo(),
		processRepo:  newFakeProcessRepo(),
		evalRepo:     newFakeEvalRepo(),
		snapshotRepo: newFakeSnapshotRepo(),
		auditRepo:    &fakeAuditRepo{},
		companyID:    uuid.New(),
		journeyID:    uuid.New(),
		processID:    uuid.New(),
		userID:       uuid.New(),
	}

	f.processRepo.processes[f.processID] = &model.Process{
		ID:        f.processID,
		CompanyID: f.companyID,
		JourneyID: f.journeyID,
		Name:      "Onboarding de clientes",
	}

	f.svc = NewMaturityService(
		f.maturityRepo, f.processRepo, f.evalRepo, f.snapshotRepo, f.auditRepo,
		fakeTxManager{}, NewProgressService(f.taskRepo), events.NewBus(),
	)
	return f
}

func (f *maturityFixture) addTasks(completed, pending int) {
	for i := 0; i < completed; i++ {
		f.taskRepo.tasks = append(f.taskRepo.tasks, relevantTask(f.companyID, f.processID, model.TaskStatusCompleted))
	}
	for i := 0; i < pending; i++ {
		f.taskRepo.tasks = append(f.taskRepo.tasks, relevantTask(f.companyID, f.processID, model.TaskStatusPending))
	}
}

func (f *maturityFixture) request(t *testing.T, selfCertify bool) MaturityRequestResponse {
	t.Helper()
	resp, err := f.svc.RequestApproval(context.Background(), f.companyID, f.userID, RequestMaturityInput{
		ProcessID:   f.processID.String(),
		SelfCertify: selfCertify,
	})
	require.NoError(t, err)
	return resp
}

// --- RequestApproval ---

func TestRequestApprovalRejectsProcessWithoutTasks(t *testing.T) {
	f := newMaturityFixture(t)

	_, err := f.svc.RequestApproval(context.Background(), f.companyID, f.userID, RequestMaturityInput{
		ProcessID: f.processID.String(),
	})

	require.Error(t, err)
	assert.Equal(t, "Processo não possui tarefas associadas", err.Error())
	assert.Empty(t, f.maturityRepo.requests)
}

func TestRequestApprovalRejectsIncompleteProcess(t *testing.T) {
	f := newMaturityFixture(t)
	f.addTasks(3, 1)

	_, err := f.svc.RequestApproval(context.Background(), f.companyID, f.userID, RequestMaturityInput{
		ProcessID: f.processID.String(),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "100%")
	assert.Contains(t, err.Error(), "75.0%")
	assert.Empty(t, f.maturityRepo.requests)
}

func TestRequestApprovalCreatesPendingRequest(t *testing.T) {
	f := newMaturityFixture(t)
	f.addTasks(4, 0)

	resp := f.request(t, false)

	assert.Equal(t, model.MaturityStatusPending, resp.Status)
	assert.Equal(t, 4, resp.TotalTasks)
	assert.Equal(t, 4, resp.CompletedTasks)
	assert.Equal(t, 100, resp.CompletionPercentage)
	assert.Nil(t, resp.GestorApprovedBy)

	require.Len(t, f.auditRepo.entries, 1)
	assert.Equal(t, model.ActionRequestMaturity, f.auditRepo.entries[0].Action)
}

func TestRequestApprovalSelfCertifyEntersGestorApproved(t *testing.T) {
	f := newMaturityFixture(t)
	f.addTasks(2, 0)

	resp := f.request(t, true)

	assert.Equal(t, model.MaturityStatusGestorApproved, resp.Status)
	require.NotNil(t, resp.GestorApprovedBy)
	assert.Equal(t, f.userID.String(), *resp.GestorApprovedBy)
	assert.NotNil(t, resp.GestorApprovedAt)
}

func TestRequestApprovalRejectsDuplicateActive(t *testing.T) {
	f := newMaturityFixture(t)
	f.addTasks(1, 0)
	f.request(t, false)

	_, err := f.svc.RequestApproval(context.Background(), f.companyID, f.userID, RequestMaturityInput{
		ProcessID: f.processID.String(),
	})

	require.Error(t, err)
	assert.Equal(t, "Já existe uma solicitação de maturidade ativa para este processo", err.Error())
}

func TestRequestApprovalDuplicateCaughtByUniqueIndex(t *testing.T) {
	// Simulates the race where the pre-check misses a concurrent insert:
	// the store-level unique violation surfaces the same duplicate error.
	f := newMaturityFixture(t)
	f.addTasks(1, 0)
	f.request(t, false)

	f.maturityRepo.hideActive = true
	_, err := f.svc.RequestApproval(context.Background(), f.companyID, f.userID, RequestMaturityInput{
		ProcessID: f.processID.String(),
	})

	require.Error(t, err)
	assert.Equal(t, "Já existe uma solicitação de maturidade ativa para este processo", err.Error())
}

func TestRequestApprovalAllowedAfterRejection(t *testing.T) {
	f := newMaturityFixture(t)
	f.addTasks(1, 0)
	first := f.request(t, false)

	_, err := f.svc.Reject(context.Background(), f.companyID, uuid.MustParse(first.ID), f.userID, "faltou evidência")
	require.NoError(t, err)

	second := f.request(t, false)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, model.MaturityStatusPending, second.Status)
}

// --- GestorApprove ---

func TestGestorApprove(t *testing.T) {
	f := newMaturityFixture(t)
	f.addTasks(2, 0)
	created := f.request(t, false)
	gestorID := uuid.New()

	resp, err := f.svc.GestorApprove(context.Background(), f.companyID, uuid.MustParse(created.ID), gestorID, "ok")
	require.NoError(t, err)

	assert.Equal(t, model.MaturityStatusGestorApproved, resp.Status)
	require.NotNil(t, resp.GestorApprovedBy)
	assert.Equal(t, gestorID.String(), *resp.GestorApprovedBy)
	assert.Equal(t, "ok", resp.GestorNotes)
}

func TestGestorApproveRechecksProgress(t *testing.T) {
	f := newMaturityFixture(t)
	f.addTasks(2, 0)
	created := f.request(t, false)

	// A new incomplete task appears between request and review
	f.addTasks(0, 1)

	_, err := f.svc.GestorApprove(context.Background(), f.companyID, uuid.MustParse(created.ID), uuid.New(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "100%")

	stored, findErr := f.maturityRepo.FindByID(context.Background(), f.companyID, uuid.MustParse(created.ID))
	require.NoError(t, findErr)
	assert.Equal(t, model.MaturityStatusPending, stored.Status)
}

func TestGestorApproveRejectsNonPending(t *testing.T) {
	f := newMaturityFixture(t)
	f.addTasks(1, 0)
	created := f.request(t, true) // already gestor_approved

	_, err := f.svc.GestorApprove(context.Background(), f.companyID, uuid.MustParse(created.ID), uuid.New(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), model.MaturityStatusGestorApproved)
}

// --- AdminApprove ---

func TestAdminApproveProjectsEvaluation(t *testing.T) {
	f := newMaturityFixture(t)
	f.addTasks(3, 0)
	created := f.request(t, true)
	adminID := uuid.New()

	resp, err := f.svc.AdminApprove(context.Background(), f.companyID, uuid.MustParse(created.ID), adminID, "validado")
	require.NoError(t, err)

	assert.Equal(t, model.MaturityStatusAdminApproved, resp.Status)
	require.NotNil(t, resp.AdminApprovedBy)
	assert.Equal(t, adminID.String(), *resp.AdminApprovedBy)

	eval, err := f.evalRepo.FindCurrent(context.Background(), f.companyID, f.processID)
	require.NoError(t, err)
	assert.True(t, eval.HasProcess)
	assert.True(t, eval.CurrentScore.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, "completed", eval.Status)

	require.Len(t, f.evalRepo.history, 1)
	assert.Equal(t, adminID, f.evalRepo.history[0].EvaluatorID)
}

func TestAdminApproveRepeatKeepsSingleEvaluationRow(t *testing.T) {
	f := newMaturityFixture(t)
	f.addTasks(1, 0)

	first := f.request(t, true)
	_, err := f.svc.AdminApprove(context.Background(), f.companyID, uuid.MustParse(first.ID), uuid.New(), "")
	require.NoError(t, err)

	// Approve a second cycle for the same process
	second := f.request(t, true)
	_, err = f.svc.AdminApprove(context.Background(), f.companyID, uuid.MustParse(second.ID), uuid.New(), "")
	require.NoError(t, err)

	assert.Len(t, f.evalRepo.evals, 1, "evaluation upsert must keep one current row per process")
	assert.Len(t, f.evalRepo.history, 2, "history is append-only")
}

func TestAdminApproveRequiresGestorApproval(t *testing.T) {
	f := newMaturityFixture(t)
	f.addTasks(1, 0)
	created := f.request(t, false) // still pending

	_, err := f.svc.AdminApprove(context.Background(), f.companyID, uuid.MustParse(created.ID), uuid.New(), "")
	require.Error(t, err)
	assert.Equal(t, "solicitação ainda aguarda aprovação do gestor", err.Error())
}

func TestAdminApproveRejectsTerminal(t *testing.T) {
	f := newMaturityFixture(t)
	f.addTasks(1, 0)
	created := f.request(t, true)

	_, err := f.svc.AdminApprove(context.Background(), f.companyID, uuid.MustParse(created.ID), uuid.New(), "")
	require.NoError(t, err)

	_, err = f.svc.AdminApprove(context.Background(), f.companyID, uuid.MustParse(created.ID), uuid.New(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), model.MaturityStatusAdminApproved)
}

// --- Reject ---

func TestRejectRequiresReason(t *testing.T) {
	f := newMaturityFixture(t)
	f.addTasks(1, 0)
	created := f.request(t, false)

	_, err := f.svc.Reject(context.Background(), f.companyID, uuid.MustParse(created.ID), f.userID, "   ")
	require.Error(t, err)
	assert.Equal(t, "Motivo da rejeição é obrigatório", err.Error())

	stored, findErr := f.maturityRepo.FindByID(context.Background(), f.companyID, uuid.MustParse(created.ID))
	require.NoError(t, findErr)
	assert.Equal(t, model.MaturityStatusPending, stored.Status)
}

func TestRejectStampsReason(t *testing.T) {
	f := newMaturityFixture(t)
	f.addTasks(1, 0)
	created := f.request(t, false)
	rejecterID := uuid.New()

	resp, err := f.svc.Reject(context.Background(), f.companyID, uuid.MustParse(created.ID), rejecterID, "evidência insuficiente")
	require.NoError(t, err)

	assert.Equal(t, model.MaturityStatusRejected, resp.Status)
	assert.Equal(t, "evidência insuficiente", resp.RejectionReason)
	require.NotNil(t, resp.RejectedBy)
	assert.Equal(t, rejecterID.String(), *resp.RejectedBy)
}

func TestRejectTerminalFails(t *testing.T) {
	f := newMaturityFixture(t)
	f.addTasks(1, 0)
	created := f.request(t, true)
	requestID := uuid.MustParse(created.ID)

	_, err := f.svc.AdminApprove(context.Background(), f.companyID, requestID, uuid.New(), "")
	require.NoError(t, err)

	_, err = f.svc.Reject(context.Background(), f.companyID, requestID, uuid.New(), "tarde demais")
	require.Error(t, err)
	assert.Contains(t, err.Error(), model.MaturityStatusAdminApproved)
}

// --- DirectConfirm ---

func TestDirectConfirmProjectsAndSnapshots(t *testing.T) {
	f := newMaturityFixture(t)
	f.processRepo.metrics = repository.JourneyMaturityMetrics{
		TotalProcesses:  4,
		MatureProcesses: 1,
		InProgressCount: 2,
	}
	adminID := uuid.New()

	err := f.svc.DirectConfirm(context.Background(), f.companyID, f.processID, adminID)
	require.NoError(t, err)

	eval, err := f.evalRepo.FindCurrent(context.Background(), f.companyID, f.processID)
	require.NoError(t, err)
	assert.True(t, eval.HasProcess)

	require.Len(t, f.snapshotRepo.snapshots, 1)
	for _, snap := range f.snapshotRepo.snapshots {
		assert.Equal(t, 4, snap.TotalProcesses)
		assert.Equal(t, 1, snap.MatureProcesses)
		assert.Equal(t, 25, snap.MaturityPercentage)
		assert.Equal(t, 2, snap.InProgressCount)
	}

	require.Len(t, f.auditRepo.entries, 1)
	assert.Equal(t, model.ActionDirectConfirmMaturity, f.auditRepo.entries[0].Action)
}

func TestDirectConfirmSnapshotSameDayLastWriteWins(t *testing.T) {
	f := newMaturityFixture(t)

	f.processRepo.metrics = repository.JourneyMaturityMetrics{TotalProcesses: 2, MatureProcesses: 1}
	require.NoError(t, f.svc.DirectConfirm(context.Background(), f.companyID, f.processID, uuid.New()))

	f.processRepo.metrics = repository.JourneyMaturityMetrics{TotalProcesses: 2, MatureProcesses: 2}
	require.NoError(t, f.svc.DirectConfirm(context.Background(), f.companyID, f.processID, uuid.New()))

	require.Len(t, f.snapshotRepo.snapshots, 1, "same-day snapshot must be overwritten, not duplicated")
	for _, snap := range f.snapshotRepo.snapshots {
		assert.Equal(t, 2, snap.MatureProcesses)
		assert.Equal(t, 100, snap.MaturityPercentage)
	}
}

// --- Listing ---

func TestListRequestsFiltersByStatus(t *testing.T) {
	f := newMaturityFixture(t)
	f.addTasks(1, 0)
	created := f.request(t, false)
	_, err := f.svc.Reject(context.Background(), f.companyID, uuid.MustParse(created.ID), f.userID, "não")
	require.NoError(t, err)
	f.request(t, false)

	rejected, total, err := f.svc.ListRequests(context.Background(), f.companyID, MaturityRequestFilter{Status: model.MaturityStatusRejected})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rejected, 1)
	assert.Equal(t, model.MaturityStatusRejected, rejected[0].Status)
}
