package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
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

type visitRepoMock struct {
	createFn             func(ctx context.Context, v *visit.Visit) error
	getByIDFn            func(ctx context.Context, id uuid.UUID) (*visit.Visit, error)
	getByDoctorAndSlotFn func(ctx context.Context, doctorID uuid.UUID, date time.Time, slotTime string) (*visit.Visit, error)
	saveFn               func(ctx context.Context, v *visit.Visit) error
	deleteFn             func(ctx context.Context, id uuid.UUID) error
	listFn               func(ctx context.Context, q *visit.ListVisitsQuery) (*visit.PagedVisits, error)
}

func (m *visitRepoMock) Create(ctx context.Context, v *visit.Visit) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, v)
}

func (m *visitRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*visit.Visit, error) {
	if m.getByIDFn == nil {
		return nil, visit.ErrVisitNotFound
	}
	return m.getByIDFn(ctx, id)
}

func (m *visitRepoMock) GetByDoctorAndSlot(ctx context.Context, doctorID uuid.UUID, date time.Time, slotTime string) (*visit.Visit, error) {
	if m.getByDoctorAndSlotFn == nil {
		return nil, visit.ErrVisitNotFound
	}
	return m.getByDoctorAndSlotFn(ctx, doctorID, date, slotTime)
}

func (m *visitRepoMock) Save(ctx context.Context, v *visit.Visit) error {
	if m.saveFn == nil {
		return nil
	}
	return m.saveFn(ctx, v)
}

func (m *visitRepoMock) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn == nil {
		return nil
	}
	return m.deleteFn(ctx, id)
}

func (m *visitRepoMock) List(ctx context.Context, q *visit.ListVisitsQuery) (*visit.PagedVisits, error) {
	if m.listFn == nil {
		return &visit.PagedVisits{}, nil
	}
	return m.listFn(ctx, q)
}

type patientRepoMock struct {
	createFn  func(ctx context.Context, p *patient.Patient) error
	getByIDFn func(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
	updateFn  func(ctx context.Context, cmd *patient.UpdatePatientCommand) (*patient.Patient, error)
	listFn    func(ctx context.Context, page *paging.PageRequest, filter string) (*patient.PagedPatients, error)
}

func (m *patientRepoMock) Create(ctx context.Context, p *patient.Patient) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, p)
}

func (m *patientRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	if m.getByIDFn == nil {
		return nil, patient.ErrPatientNotFound
	}
	return m.getByIDFn(ctx, id)
}

func (m *patientRepoMock) Update(ctx context.Context, cmd *patient.UpdatePatientCommand) (*patient.Patient, error) {
	if m.updateFn == nil {
		return nil, patient.ErrPatientNotFound
	}
	return m.updateFn(ctx, cmd)
}

func (m *patientRepoMock) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (m *patientRepoMock) List(ctx context.Context, page *paging.PageRequest, filter string) (*patient.PagedPatients, error) {
	if m.listFn == nil {
		return &patient.PagedPatients{}, nil
	}
	return m.listFn(ctx, page, filter)
}

type doctorRepoMock struct {
	getByIDFn func(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error)
}

func (m *doctorRepoMock) Create(ctx context.Context, d *doctor.Doctor) error { return nil }

func (m *doctorRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	if m.getByIDFn == nil {
		return nil, doctor.ErrDoctorNotFound
	}
	return m.getByIDFn(ctx, id)
}

func (m *doctorRepoMock) Update(ctx context.Context, cmd *doctor.UpdateDoctorCommand) (*doctor.Doctor, error) {
	return nil, doctor.ErrDoctorNotFound
}

func (m *doctorRepoMock) SoftDelete(ctx context.Context, id uuid.UUID) error { return nil }

func (m *doctorRepoMock) List(ctx context.Context, page *paging.PageRequest, filter string) (*doctor.PagedDoctors, error) {
	return &doctor.PagedDoctors{}, nil
}

type diagnosisRepoMock struct {
	getByIDFn func(ctx context.Context, id uuid.UUID) (*diagnosis.Diagnosis, error)
}

func (m *diagnosisRepoMock) Create(ctx context.Context, d *diagnosis.Diagnosis) error { return nil }

func (m *diagnosisRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*diagnosis.Diagnosis, error) {
	if m.getByIDFn == nil {
		return nil, diagnosis.ErrDiagnosisNotFound
	}
	return m.getByIDFn(ctx, id)
}

func (m *diagnosisRepoMock) GetByName(ctx context.Context, name string) (*diagnosis.Diagnosis, error) {
	return nil, diagnosis.ErrDiagnosisNotFound
}

func (m *diagnosisRepoMock) List(ctx context.Context, page *paging.PageRequest, filter string) (*diagnosis.PagedDiagnoses, error) {
	return &diagnosis.PagedDiagnoses{}, nil
}

type auditRepoMock struct {
	createFn func(ctx context.Context, entry *domain.AuditLog) error
}

func (m *auditRepoMock) Create(ctx context.Context, entry *domain.AuditLog) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, entry)
}

func testCollector() *metrics.Collector {
	return metrics.NewCollector("clinicore", prometheus.NewRegistry())
}

func testAuditService(t *testing.T) *AuditService {
	t.Helper()
	svc := NewAuditService(&auditRepoMock{}, testCollector(), zap.NewNop())
	t.Cleanup(svc.Shutdown)
	return svc
}

// insuredPatient paid within the eligibility window relative to now.
func insuredPatient(now time.Time) *patient.Patient {
	paid := now.AddDate(0, -1, 0)
	return &patient.Patient{
		ID:                     uuid.New(),
		FirstName:              "Iva",
		LastName:               "Petrova",
		LastInsurancePaymentAt: &paid,
	}
}

// lapsedPatient last paid seven months before now.
func lapsedPatient(now time.Time) *patient.Patient {
	paid := now.AddDate(0, -7, 0)
	return &patient.Patient{
		ID:                     uuid.New(),
		FirstName:              "Ivan",
		LastName:               "Georgiev",
		LastInsurancePaymentAt: &paid,
	}
}

func newTestVisitService(
	t *testing.T,
	visitRepo *visitRepoMock,
	patientRepo *patientRepoMock,
	doctorRepo *doctorRepoMock,
	diagnosisRepo *diagnosisRepoMock,
	clock func() time.Time,
) *VisitService {
	t.Helper()

	rule := NewSchedulingRule(visitRepo)
	if clock != nil {
		rule.now = clock
	}

	svc := NewVisitService(
		visitRepo, patientRepo, doctorRepo, diagnosisRepo,
		rule, testAuditService(t), testCollector(), zap.NewNop(),
		config.PaginationConfig{MaxPageSize: 100, ListWorkerCount: 2},
	)
	t.Cleanup(svc.Shutdown)
	return svc
}
