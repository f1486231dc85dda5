package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vkrastev/clinicore/internal/domain"
	"github.com/vkrastev/clinicore/internal/domain/patient"
	"github.com/vkrastev/clinicore/internal/paging"
	"github.com/vkrastev/clinicore/pkg/metrics"
)

type PatientService struct {
	repo        patient.Repository
	auditSvc    *AuditService
	metrics     *metrics.Collector
	log         *zap.Logger
	maxPageSize int
}

func NewPatientService(repo patient.Repository, auditSvc *AuditService, m *metrics.Collector, log *zap.Logger, maxPageSize int) *PatientService {
	return &PatientService{repo: repo, auditSvc: auditSvc, metrics: m, log: log, maxPageSize: maxPageSize}
}

func (s *PatientService) CreatePatient(ctx context.Context, cmd *patient.CreatePatientCommand, callerID uuid.UUID, callerRole string, ip string) (*patient.Patient, error) {
	if cmd == nil {
		return nil, invalidRequest("request body is required")
	}
	if err := validateCreatePatient(cmd); err != nil {
		return nil, err
	}

	p := &patient.Patient{
		FirstName:   strings.TrimSpace(cmd.FirstName),
		LastName:    strings.TrimSpace(cmd.LastName),
		DateOfBirth: cmd.DateOfBirth,
		Gender:      cmd.Gender,
		NationalID:  strings.TrimSpace(cmd.NationalID),
		ContactInfo: patient.ContactInfo{
			Phone:   strings.TrimSpace(cmd.Phone),
			Email:   strings.ToLower(strings.TrimSpace(cmd.Email)),
			Address: cmd.Address,
			City:    cmd.City,
		},
		LastInsurancePaymentAt: cmd.LastInsurancePaymentAt,
		AssignedGPID:           cmd.AssignedGPID,
		Status:                 patient.StatusActive,
		CreatedBy:              cmd.CreatedBy,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.log.Error("failed to create patient", zap.Error(err))
		return nil, err
	}

	s.metrics.PatientsCreatedTotal.Inc()

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: "create", ResourceType: "patient", ResourceID: p.ID.String(), IPAddress: ip,
	})

	return p, nil
}

func (s *PatientService) GetPatient(ctx context.Context, id uuid.UUID, callerID uuid.UUID, callerRole string, callerPatientID *uuid.UUID, ip string) (*patient.Patient, error) {
	if id == uuid.Nil {
		return nil, invalidRequest("patient id is required")
	}

	// Patients can only read their own record.
	if callerRole == string(domain.RolePatient) {
		if callerPatientID == nil || *callerPatientID != id {
			return nil, ErrForbidden
		}
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: "read", ResourceType: "patient", ResourceID: id.String(), IPAddress: ip,
	})

	return p, nil
}

func (s *PatientService) UpdatePatient(ctx context.Context, cmd *patient.UpdatePatientCommand, callerID uuid.UUID, callerRole string, ip string) (*patient.Patient, error) {
	if cmd == nil {
		return nil, invalidRequest("request body is required")
	}
	if cmd.ID == uuid.Nil {
		return nil, invalidRequest("patient id is required")
	}
	if cmd.Gender != nil && !cmd.Gender.IsValid() {
		return nil, patient.ErrInvalidGender
	}

	p, err := s.repo.Update(ctx, cmd)
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: "update", ResourceType: "patient", ResourceID: cmd.ID.String(), IPAddress: ip,
	})

	return p, nil
}

func (s *PatientService) DeactivatePatient(ctx context.Context, id uuid.UUID, callerID uuid.UUID, callerRole string, ip string) error {
	if id == uuid.Nil {
		return invalidRequest("patient id is required")
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("deactivating patient: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: "delete", ResourceType: "patient", ResourceID: id.String(), IPAddress: ip,
	})

	return nil
}

func (s *PatientService) ListPatients(ctx context.Context, page, size int, sortBy string, ascending bool, filter string) (*patient.PagedPatients, error) {
	req, err := paging.New(page, size, sortBy, ascending, s.maxPageSize)
	if err != nil {
		return nil, invalidRequest(err.Error())
	}
	return s.repo.List(ctx, req, filter)
}

func validateCreatePatient(cmd *patient.CreatePatientCommand) error {
	var fields []string
	if strings.TrimSpace(cmd.FirstName) == "" {
		fields = append(fields, "first_name is required")
	}
	if strings.TrimSpace(cmd.LastName) == "" {
		fields = append(fields, "last_name is required")
	}
	if strings.TrimSpace(cmd.NationalID) == "" {
		fields = append(fields, "national_id is required")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	if !cmd.Gender.IsValid() {
		return patient.ErrInvalidGender
	}
	if cmd.DateOfBirth.After(time.Now()) {
		return patient.ErrInvalidDateOfBirth
	}
	return nil
}
