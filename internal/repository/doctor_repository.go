package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vkrastev/clinicore/internal/domain/doctor"
	"github.com/vkrastev/clinicore/internal/paging"
)

type DoctorRepository struct {
	db *gorm.DB
}

func NewDoctorRepository(db *gorm.DB) *DoctorRepository {
	return &DoctorRepository{db: db}
}

var _ doctor.Repository = (*DoctorRepository)(nil)

func (r *DoctorRepository) Create(ctx context.Context, d *doctor.Doctor) error {
	return r.db.WithContext(ctx).Omit("Specialty").Create(d).Error
}

func (r *DoctorRepository) GetByID(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	var d doctor.Doctor
	err := r.db.WithContext(ctx).
		Preload("Specialty").
		Where("deleted_at IS NULL").
		First(&d, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, doctor.ErrDoctorNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *DoctorRepository) Update(ctx context.Context, cmd *doctor.UpdateDoctorCommand) (*doctor.Doctor, error) {
	d, err := r.GetByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}

	if cmd.FirstName != nil {
		d.FirstName = *cmd.FirstName
	}
	if cmd.LastName != nil {
		d.LastName = *cmd.LastName
	}
	if cmd.SpecialtyID != nil {
		d.SpecialtyID = *cmd.SpecialtyID
		d.Specialty = nil
	}
	if cmd.IsGeneralPractitioner != nil {
		d.IsGeneralPractitioner = *cmd.IsGeneralPractitioner
	}

	if err := r.db.WithContext(ctx).Omit("Specialty").Save(d).Error; err != nil {
		return nil, err
	}
	return d, nil
}

func (r *DoctorRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&doctor.Doctor{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return doctor.ErrDoctorNotFound
	}
	return nil
}

func (r *DoctorRepository) List(ctx context.Context, page *paging.PageRequest, filter string) (*doctor.PagedDoctors, error) {
	db := r.db.WithContext(ctx).Model(&doctor.Doctor{}).
		Where("deleted_at IS NULL")

	if paging.HasFilter(filter) {
		db = db.Where("first_name || ' ' || last_name ILIKE ?", paging.LikePattern(filter))
	}

	var count int64
	if err := db.Count(&count).Error; err != nil {
		return nil, err
	}

	var doctors []*doctor.Doctor
	err := db.
		Preload("Specialty").
		Order(page.Order()).
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&doctors).Error
	if err != nil {
		return nil, err
	}

	return &doctor.PagedDoctors{
		Doctors:    doctors,
		TotalCount: count,
		Page:       page.Page(),
		PageSize:   page.Limit(),
		TotalPages: totalPages(count, page.Limit()),
	}, nil
}

type SpecialtyRepository struct {
	db *gorm.DB
}

func NewSpecialtyRepository(db *gorm.DB) *SpecialtyRepository {
	return &SpecialtyRepository{db: db}
}

var _ doctor.SpecialtyRepository = (*SpecialtyRepository)(nil)

func (r *SpecialtyRepository) Create(ctx context.Context, s *doctor.Specialty) error {
	err := r.db.WithContext(ctx).Create(s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return doctor.ErrSpecialtyAlreadyExists
		}
		return err
	}
	return nil
}

func (r *SpecialtyRepository) GetByID(ctx context.Context, id uuid.UUID) (*doctor.Specialty, error) {
	var s doctor.Specialty
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		First(&s, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, doctor.ErrSpecialtyNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *SpecialtyRepository) GetByName(ctx context.Context, name string) (*doctor.Specialty, error) {
	var s doctor.Specialty
	err := r.db.WithContext(ctx).
		Where("name = ? AND deleted_at IS NULL", name).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, doctor.ErrSpecialtyNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *SpecialtyRepository) List(ctx context.Context) ([]*doctor.Specialty, error) {
	var specialties []*doctor.Specialty
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		Order("name ASC").
		Find(&specialties).Error
	if err != nil {
		return nil, err
	}
	return specialties, nil
}
