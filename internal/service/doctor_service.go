package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vkrastev/clinicore/internal/domain/doctor"
	"github.com/vkrastev/clinicore/internal/paging"
)

type DoctorService struct {
	repo          doctor.Repository
	specialtyRepo doctor.SpecialtyRepository
	auditSvc      *AuditService
	log           *zap.Logger
	maxPageSize   int
}

func NewDoctorService(repo doctor.Repository, specialtyRepo doctor.SpecialtyRepository, auditSvc *AuditService, log *zap.Logger, maxPageSize int) *DoctorService {
	return &DoctorService{repo: repo, specialtyRepo: specialtyRepo, auditSvc: auditSvc, log: log, maxPageSize: maxPageSize}
}

func (s *DoctorService) CreateDoctor(ctx context.Context, cmd *doctor.CreateDoctorCommand, callerID uuid.UUID, callerRole string, ip string) (*doctor.Doctor, error) {
	if cmd == nil {
		return nil, invalidRequest("request body is required")
	}
	if strings.TrimSpace(cmd.FirstName) == "" || strings.TrimSpace(cmd.LastName) == "" {
		return nil, invalidRequest("first_name and last_name are required")
	}

	spec, err := s.specialtyRepo.GetByID(ctx, cmd.SpecialtyID)
	if err != nil {
		return nil, fmt.Errorf("resolving specialty %s: %w", cmd.SpecialtyID, err)
	}

	d := &doctor.Doctor{
		FirstName:             strings.TrimSpace(cmd.FirstName),
		LastName:              strings.TrimSpace(cmd.LastName),
		SpecialtyID:           spec.ID,
		IsGeneralPractitioner: cmd.IsGeneralPractitioner,
		CreatedBy:             cmd.CreatedBy,
	}

	if err := s.repo.Create(ctx, d); err != nil {
		s.log.Error("failed to create doctor", zap.Error(err))
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: "create", ResourceType: "doctor", ResourceID: d.ID.String(), IPAddress: ip,
	})

	return d, nil
}

func (s *DoctorService) GetDoctor(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	if id == uuid.Nil {
		return nil, invalidRequest("doctor id is required")
	}
	return s.repo.GetByID(ctx, id)
}

func (s *DoctorService) UpdateDoctor(ctx context.Context, cmd *doctor.UpdateDoctorCommand, callerID uuid.UUID, callerRole string, ip string) (*doctor.Doctor, error) {
	if cmd == nil {
		return nil, invalidRequest("request body is required")
	}
	if cmd.ID == uuid.Nil {
		return nil, invalidRequest("doctor id is required")
	}

	if cmd.SpecialtyID != nil {
		if _, err := s.specialtyRepo.GetByID(ctx, *cmd.SpecialtyID); err != nil {
			return nil, fmt.Errorf("resolving specialty %s: %w", *cmd.SpecialtyID, err)
		}
	}

	d, err := s.repo.Update(ctx, cmd)
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: "update", ResourceType: "doctor", ResourceID: cmd.ID.String(), IPAddress: ip,
	})

	return d, nil
}

func (s *DoctorService) ListDoctors(ctx context.Context, page, size int, sortBy string, ascending bool, filter string) (*doctor.PagedDoctors, error) {
	req, err := paging.New(page, size, sortBy, ascending, s.maxPageSize)
	if err != nil {
		return nil, invalidRequest(err.Error())
	}
	return s.repo.List(ctx, req, filter)
}

func (s *DoctorService) CreateSpecialty(ctx context.Context, name, description string, callerID uuid.UUID, callerRole string, ip string) (*doctor.Specialty, error) {
	if strings.TrimSpace(name) == "" {
		return nil, invalidRequest("name is required")
	}

	spec := &doctor.Specialty{Name: strings.TrimSpace(name), Description: description}
	if err := s.specialtyRepo.Create(ctx, spec); err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: "create", ResourceType: "specialty", ResourceID: spec.ID.String(), IPAddress: ip,
	})

	return spec, nil
}

func (s *DoctorService) ListSpecialties(ctx context.Context) ([]*doctor.Specialty, error) {
	return s.specialtyRepo.List(ctx)
}
