package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vkrastev/clinicore/internal/config"
	"github.com/vkrastev/clinicore/internal/domain"
	"github.com/vkrastev/clinicore/internal/domain/diagnosis"
	"github.com/vkrastev/clinicore/internal/domain/doctor"
	"github.com/vkrastev/clinicore/internal/domain/patient"
	"github.com/vkrastev/clinicore/internal/domain/visit"
	"github.com/vkrastev/clinicore/internal/paging"
	"github.com/vkrastev/clinicore/pkg/metrics"
)

// VisitService orchestrates the visit lifecycle: reference resolution,
// scheduling validation, child-aggregate rebuild and persistence.
type VisitService struct {
	repo          visit.Repository
	patientRepo   patient.Repository
	doctorRepo    doctor.Repository
	diagnosisRepo diagnosis.Repository
	rule          *SchedulingRule
	auditSvc      *AuditService
	metrics       *metrics.Collector
	log           *zap.Logger

	maxPageSize int

	listJobs chan *listJob
	wg       sync.WaitGroup
}

type listJob struct {
	ctx    context.Context
	query  *visit.ListVisitsQuery
	future *ListFuture
}

// VisitPage is the projected result of a paged listing.
type VisitPage struct {
	Visits     []*visit.VisitView `json:"visits"`
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
}

// ListFuture is the completion handle of an asynchronous listing. The
// caller blocks on Wait or chains further work after it.
type ListFuture struct {
	done chan struct{}
	page *VisitPage
	err  error
}

func (f *ListFuture) Wait(ctx context.Context) (*VisitPage, error) {
	select {
	case <-f.done:
		return f.page, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *ListFuture) complete(page *VisitPage, err error) {
	f.page = page
	f.err = err
	close(f.done)
}

func NewVisitService(
	repo visit.Repository,
	patientRepo patient.Repository,
	doctorRepo doctor.Repository,
	diagnosisRepo diagnosis.Repository,
	rule *SchedulingRule,
	auditSvc *AuditService,
	m *metrics.Collector,
	log *zap.Logger,
	cfg config.PaginationConfig,
) *VisitService {
	s := &VisitService{
		repo:          repo,
		patientRepo:   patientRepo,
		doctorRepo:    doctorRepo,
		diagnosisRepo: diagnosisRepo,
		rule:          rule,
		auditSvc:      auditSvc,
		metrics:       m,
		log:           log,
		maxPageSize:   cfg.MaxPageSize,
		listJobs:      make(chan *listJob),
	}
	for i := 0; i < cfg.ListWorkerCount; i++ {
		s.wg.Add(1)
		go s.listWorker()
	}
	return s
}

// Shutdown drains the list worker pool. In-flight futures complete;
// new submissions panic, so call this only after the HTTP server has
// stopped accepting requests.
func (s *VisitService) Shutdown() {
	close(s.listJobs)
	s.wg.Wait()
}

func (s *VisitService) CreateVisit(ctx context.Context, cmd *visit.CreateVisitCommand, callerID uuid.UUID, callerRole string, ip string) (*visit.VisitView, error) {
	if cmd == nil {
		return nil, invalidRequest("request body is required")
	}

	p, d, diag, err := s.resolveReferences(ctx, cmd.PatientID, cmd.DoctorID, cmd.DiagnosisID)
	if err != nil {
		return nil, err
	}

	if err := s.rule.Validate(ctx, p, d.ID, cmd.VisitDate, cmd.VisitTime, nil); err != nil {
		s.countRuleRejection(err)
		return nil, err
	}

	v := &visit.Visit{
		VisitDate:   cmd.VisitDate,
		VisitTime:   cmd.VisitTime,
		Status:      visit.StatusScheduled,
		PatientID:   p.ID,
		DoctorID:    d.ID,
		DiagnosisID: diag.ID,
		CreatedBy:   cmd.CreatedBy,
	}
	visit.RebuildChildren(v, cmd.Treatment, cmd.SickLeave)

	if err := s.repo.Create(ctx, v); err != nil {
		if errors.Is(err, visit.ErrSlotTaken) {
			// Lost the race to a concurrent booking; the unique slot
			// index is the final arbiter.
			s.metrics.SlotConflictsTotal.Inc()
			return nil, err
		}
		s.log.Error("failed to create visit", zap.Error(err))
		return nil, fmt.Errorf("creating visit: %w", err)
	}

	s.metrics.VisitsBookedTotal.Inc()
	if v.SickLeave != nil {
		s.metrics.SickLeavesIssuedTotal.Inc()
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: "create", ResourceType: "visit", ResourceID: v.ID.String(), IPAddress: ip,
	})

	return visit.View(v), nil
}

func (s *VisitService) UpdateVisit(ctx context.Context, cmd *visit.UpdateVisitCommand, callerID uuid.UUID, callerRole string, ip string) (*visit.VisitView, error) {
	if cmd == nil {
		return nil, invalidRequest("request body is required")
	}
	if cmd.ID == uuid.Nil {
		return nil, invalidRequest("visit id is required")
	}

	v, err := s.repo.GetByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}

	// References may have changed; resolve them all again.
	p, d, diag, err := s.resolveReferences(ctx, cmd.PatientID, cmd.DoctorID, cmd.DiagnosisID)
	if err != nil {
		return nil, err
	}

	if err := s.rule.Validate(ctx, p, d.ID, cmd.VisitDate, cmd.VisitTime, &v.ID); err != nil {
		s.countRuleRejection(err)
		return nil, err
	}

	v.VisitDate = cmd.VisitDate
	v.VisitTime = cmd.VisitTime
	v.PatientID = p.ID
	v.DoctorID = d.ID
	v.DiagnosisID = diag.ID
	if cmd.Status != nil {
		if !cmd.Status.IsValid() {
			return nil, visit.ErrInvalidStatus
		}
		v.Status = *cmd.Status
	}
	visit.RebuildChildren(v, cmd.Treatment, cmd.SickLeave)

	if err := s.repo.Save(ctx, v); err != nil {
		if errors.Is(err, visit.ErrSlotTaken) {
			s.metrics.SlotConflictsTotal.Inc()
			return nil, err
		}
		s.log.Error("failed to update visit", zap.Error(err), zap.String("visit_id", v.ID.String()))
		return nil, fmt.Errorf("updating visit: %w", err)
	}

	if v.SickLeave != nil {
		s.metrics.SickLeavesIssuedTotal.Inc()
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: "update", ResourceType: "visit", ResourceID: v.ID.String(), IPAddress: ip,
	})

	return visit.View(v), nil
}

func (s *VisitService) DeleteVisit(ctx context.Context, id uuid.UUID, callerID uuid.UUID, callerRole string, ip string) error {
	if id == uuid.Nil {
		return invalidRequest("visit id is required")
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting visit: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: "delete", ResourceType: "visit", ResourceID: id.String(), IPAddress: ip,
	})

	return nil
}

func (s *VisitService) GetVisit(ctx context.Context, id uuid.UUID, callerID uuid.UUID, callerRole string, callerPatientID *uuid.UUID, ip string) (*visit.VisitView, error) {
	if id == uuid.Nil {
		return nil, invalidRequest("visit id is required")
	}

	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Row-level rule: patients only see their own visits. Every other
	// role passes.
	if callerRole == string(domain.RolePatient) {
		if callerPatientID == nil || *callerPatientID != v.PatientID {
			return nil, ErrForbidden
		}
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: "read", ResourceType: "visit", ResourceID: id.String(), IPAddress: ip,
	})

	return visit.View(v), nil
}

// ListVisits validates pagination synchronously, then executes the query
// on the worker pool and returns a future the caller can block on. The
// synchronous-validation policy is uniform: an out-of-range page never
// reaches the pool.
func (s *VisitService) ListVisits(
	ctx context.Context,
	page, size int,
	sortBy string,
	ascending bool,
	filter string,
	doctorID *uuid.UUID,
	callerRole string,
	callerPatientID *uuid.UUID,
) (*ListFuture, error) {
	req, err := paging.New(page, size, sortBy, ascending, s.maxPageSize)
	if err != nil {
		return nil, invalidRequest(err.Error())
	}

	q := &visit.ListVisitsQuery{
		Page:     req,
		Filter:   filter,
		DoctorID: doctorID,
	}
	if callerRole == string(domain.RolePatient) {
		if callerPatientID == nil {
			return nil, ErrForbidden
		}
		q.PatientID = callerPatientID
	}

	future := &ListFuture{done: make(chan struct{})}
	s.listJobs <- &listJob{ctx: ctx, query: q, future: future}
	return future, nil
}

func (s *VisitService) listWorker() {
	defer s.wg.Done()
	for job := range s.listJobs {
		res, err := s.repo.List(job.ctx, job.query)
		if err != nil {
			job.future.complete(nil, fmt.Errorf("listing visits: %w", err))
			continue
		}
		job.future.complete(&VisitPage{
			Visits:     visit.ViewPage(res),
			TotalCount: res.TotalCount,
			Page:       res.Page,
			PageSize:   res.PageSize,
			TotalPages: res.TotalPages,
		}, nil)
	}
}

func (s *VisitService) resolveReferences(ctx context.Context, patientID, doctorID, diagnosisID uuid.UUID) (*patient.Patient, *doctor.Doctor, *diagnosis.Diagnosis, error) {
	p, err := s.patientRepo.GetByID(ctx, patientID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("resolving patient %s: %w", patientID, err)
	}
	d, err := s.doctorRepo.GetByID(ctx, doctorID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("resolving doctor %s: %w", doctorID, err)
	}
	diag, err := s.diagnosisRepo.GetByID(ctx, diagnosisID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("resolving diagnosis %s: %w", diagnosisID, err)
	}
	return p, d, diag, nil
}

func (s *VisitService) countRuleRejection(err error) {
	switch {
	case errors.Is(err, patient.ErrInsuranceLapsed):
		s.metrics.IneligibleRejectionsTotal.Inc()
	case errors.Is(err, visit.ErrSlotTaken):
		s.metrics.SlotConflictsTotal.Inc()
	}
}
