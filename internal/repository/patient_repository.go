package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vkrastev/clinicore/internal/domain/patient"
	"github.com/vkrastev/clinicore/internal/paging"
)

type PatientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

var _ patient.Repository = (*PatientRepository)(nil)

func (r *PatientRepository) Create(ctx context.Context, p *patient.Patient) error {
	err := r.db.WithContext(ctx).Create(p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return patient.ErrPatientAlreadyExists
		}
		return err
	}
	return nil
}

func (r *PatientRepository) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	var p patient.Patient
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, patient.ErrPatientNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PatientRepository) Update(ctx context.Context, cmd *patient.UpdatePatientCommand) (*patient.Patient, error) {
	p, err := r.GetByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}

	if cmd.FirstName != nil {
		p.FirstName = *cmd.FirstName
	}
	if cmd.LastName != nil {
		p.LastName = *cmd.LastName
	}
	if cmd.Gender != nil {
		p.Gender = *cmd.Gender
	}
	if cmd.Phone != nil {
		p.Phone = *cmd.Phone
	}
	if cmd.Email != nil {
		p.Email = *cmd.Email
	}
	if cmd.Address != nil {
		p.Address = *cmd.Address
	}
	if cmd.City != nil {
		p.City = *cmd.City
	}
	if cmd.LastInsurancePaymentAt != nil {
		p.LastInsurancePaymentAt = cmd.LastInsurancePaymentAt
	}
	if cmd.AssignedGPID != nil {
		p.AssignedGPID = cmd.AssignedGPID
	}

	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PatientRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&patient.Patient{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]any{"deleted_at": now, "status": patient.StatusInactive})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return patient.ErrPatientNotFound
	}
	return nil
}

func (r *PatientRepository) List(ctx context.Context, page *paging.PageRequest, filter string) (*patient.PagedPatients, error) {
	db := r.db.WithContext(ctx).Model(&patient.Patient{}).
		Where("deleted_at IS NULL")

	if paging.HasFilter(filter) {
		db = db.Where("first_name || ' ' || last_name ILIKE ?", paging.LikePattern(filter))
	}

	var count int64
	if err := db.Count(&count).Error; err != nil {
		return nil, err
	}

	var patients []*patient.Patient
	err := db.
		Order(page.Order()).
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&patients).Error
	if err != nil {
		return nil, err
	}

	return &patient.PagedPatients{
		Patients:   patients,
		TotalCount: count,
		Page:       page.Page(),
		PageSize:   page.Limit(),
		TotalPages: totalPages(count, page.Limit()),
	}, nil
}
