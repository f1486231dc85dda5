package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vkrastev/clinicore/internal/domain/visit"
	"github.com/vkrastev/clinicore/internal/paging"
)

type VisitRepository struct {
	db *gorm.DB
}

func NewVisitRepository(db *gorm.DB) *VisitRepository {
	return &VisitRepository{db: db}
}

var _ visit.Repository = (*VisitRepository)(nil)

func (r *VisitRepository) Create(ctx context.Context, v *visit.Visit) error {
	// gorm persists the children (treatment, medicines, sick leave) in
	// the same transaction as the root insert.
	err := r.db.WithContext(ctx).Create(v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// The unique slot index fired: a concurrent booking won.
			return visit.ErrSlotTaken
		}
		return err
	}
	return nil
}

func (r *VisitRepository) GetByID(ctx context.Context, id uuid.UUID) (*visit.Visit, error) {
	var v visit.Visit
	err := r.db.WithContext(ctx).
		Preload("Treatment.Medicines", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Treatment").
		Preload("SickLeave").
		Where("deleted_at IS NULL").
		First(&v, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, visit.ErrVisitNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *VisitRepository) GetByDoctorAndSlot(ctx context.Context, doctorID uuid.UUID, date time.Time, slotTime string) (*visit.Visit, error) {
	var v visit.Visit
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND visit_date = ? AND visit_time = ? AND deleted_at IS NULL",
			doctorID, date.Format("2006-01-02"), slotTime).
		First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, visit.ErrVisitNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *VisitRepository) Save(ctx context.Context, v *visit.Visit) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Children are replaced wholesale: drop the previous rows, then
		// insert whatever RebuildChildren attached. Medicines go with
		// their treatment via the FK cascade.
		if err := tx.Where("visit_id = ?", v.ID).Delete(&visit.Treatment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("visit_id = ?", v.ID).Delete(&visit.SickLeave{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(v).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return visit.ErrSlotTaken
		}
		return err
	}
	return nil
}

func (r *VisitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&visit.Visit{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return visit.ErrVisitNotFound
	}
	return nil
}

func (r *VisitRepository) List(ctx context.Context, q *visit.ListVisitsQuery) (*visit.PagedVisits, error) {
	db := r.db.WithContext(ctx).Model(&visit.Visit{}).
		Where("clinical.visits.deleted_at IS NULL")

	if q.PatientID != nil {
		db = db.Where("clinical.visits.patient_id = ?", *q.PatientID)
	}
	if q.DoctorID != nil {
		db = db.Where("clinical.visits.doctor_id = ?", *q.DoctorID)
	}

	// Filter dispatch: blank means the plain listing, anything else is a
	// case-insensitive substring match on the diagnosis name.
	if paging.HasFilter(q.Filter) {
		db = db.
			Joins("JOIN clinical.diagnoses ON clinical.diagnoses.id = clinical.visits.diagnosis_id").
			Where("clinical.diagnoses.name ILIKE ?", paging.LikePattern(q.Filter))
	}

	var count int64
	if err := db.Count(&count).Error; err != nil {
		return nil, err
	}

	var visits []*visit.Visit
	err := db.
		Preload("Treatment.Medicines", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Treatment").
		Preload("SickLeave").
		Order(q.Page.Order()).
		Offset(q.Page.Offset()).
		Limit(q.Page.Limit()).
		Find(&visits).Error
	if err != nil {
		return nil, err
	}

	return &visit.PagedVisits{
		Visits:     visits,
		TotalCount: count,
		Page:       q.Page.Page(),
		PageSize:   q.Page.Limit(),
		TotalPages: totalPages(count, q.Page.Limit()),
	}, nil
}
