package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vkrastev/clinicore/internal/domain/diagnosis"
	"github.com/vkrastev/clinicore/internal/paging"
)

type DiagnosisRepository struct {
	db *gorm.DB
}

func NewDiagnosisRepository(db *gorm.DB) *DiagnosisRepository {
	return &DiagnosisRepository{db: db}
}

var _ diagnosis.Repository = (*DiagnosisRepository)(nil)

func (r *DiagnosisRepository) Create(ctx context.Context, d *diagnosis.Diagnosis) error {
	err := r.db.WithContext(ctx).Create(d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return diagnosis.ErrDiagnosisAlreadyExists
		}
		return err
	}
	return nil
}

func (r *DiagnosisRepository) GetByID(ctx context.Context, id uuid.UUID) (*diagnosis.Diagnosis, error) {
	var d diagnosis.Diagnosis
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		First(&d, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, diagnosis.ErrDiagnosisNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *DiagnosisRepository) GetByName(ctx context.Context, name string) (*diagnosis.Diagnosis, error) {
	var d diagnosis.Diagnosis
	err := r.db.WithContext(ctx).
		Where("name = ? AND deleted_at IS NULL", name).
		First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, diagnosis.ErrDiagnosisNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *DiagnosisRepository) List(ctx context.Context, page *paging.PageRequest, filter string) (*diagnosis.PagedDiagnoses, error) {
	db := r.db.WithContext(ctx).Model(&diagnosis.Diagnosis{}).
		Where("deleted_at IS NULL")

	if paging.HasFilter(filter) {
		db = db.Where("name ILIKE ?", paging.LikePattern(filter))
	}

	var count int64
	if err := db.Count(&count).Error; err != nil {
		return nil, err
	}

	var diagnoses []*diagnosis.Diagnosis
	err := db.
		Order(page.Order()).
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&diagnoses).Error
	if err != nil {
		return nil, err
	}

	return &diagnosis.PagedDiagnoses{
		Diagnoses:  diagnoses,
		TotalCount: count,
		Page:       page.Page(),
		PageSize:   page.Limit(),
		TotalPages: totalPages(count, page.Limit()),
	}, nil
}
