package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vkrastev/clinicore/internal/domain/diagnosis"
	"github.com/vkrastev/clinicore/internal/paging"
)

type DiagnosisService struct {
	repo        diagnosis.Repository
	auditSvc    *AuditService
	log         *zap.Logger
	maxPageSize int
}

func NewDiagnosisService(repo diagnosis.Repository, auditSvc *AuditService, log *zap.Logger, maxPageSize int) *DiagnosisService {
	return &DiagnosisService{repo: repo, auditSvc: auditSvc, log: log, maxPageSize: maxPageSize}
}

func (s *DiagnosisService) CreateDiagnosis(ctx context.Context, cmd *diagnosis.CreateDiagnosisCommand, callerID uuid.UUID, callerRole string, ip string) (*diagnosis.Diagnosis, error) {
	if cmd == nil {
		return nil, invalidRequest("request body is required")
	}
	if strings.TrimSpace(cmd.Name) == "" {
		return nil, invalidRequest("name is required")
	}

	d := &diagnosis.Diagnosis{
		Name:        strings.TrimSpace(cmd.Name),
		Description: cmd.Description,
		CreatedBy:   cmd.CreatedBy,
	}

	if err := s.repo.Create(ctx, d); err != nil {
		s.log.Error("failed to create diagnosis", zap.Error(err))
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: "create", ResourceType: "diagnosis", ResourceID: d.ID.String(), IPAddress: ip,
	})

	return d, nil
}

func (s *DiagnosisService) GetDiagnosis(ctx context.Context, id uuid.UUID) (*diagnosis.Diagnosis, error) {
	if id == uuid.Nil {
		return nil, invalidRequest("diagnosis id is required")
	}
	return s.repo.GetByID(ctx, id)
}

func (s *DiagnosisService) ListDiagnoses(ctx context.Context, page, size int, sortBy string, ascending bool, filter string) (*diagnosis.PagedDiagnoses, error) {
	req, err := paging.New(page, size, sortBy, ascending, s.maxPageSize)
	if err != nil {
		return nil, invalidRequest(err.Error())
	}
	return s.repo.List(ctx, req, filter)
}
