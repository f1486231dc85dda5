package visit

import (
	"time"

	"github.com/google/uuid"

	"github.com/vkrastev/clinicore/internal/paging"
)

type VisitStatus string

const (
	StatusScheduled VisitStatus = "scheduled"
	StatusCompleted VisitStatus = "completed"
	StatusCancelled VisitStatus = "cancelled"
)

func (s VisitStatus) IsValid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Visit is the aggregate root: a scheduled encounter between one patient
// and one doctor, optionally owning a Treatment and a SickLeave. The
// slot (doctor, date, time) is unique across visits.
type Visit struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	VisitDate time.Time `gorm:"column:visit_date;type:date;not null;index"`
	// VisitTime is the slot time of day, "HH:MM".
	VisitTime string `gorm:"column:visit_time;type:varchar(5);not null"`

	Status VisitStatus `gorm:"column:status;type:varchar(20);not null;default:'scheduled';index"`

	PatientID   uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index"`
	DoctorID    uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;index"`
	DiagnosisID uuid.UUID `gorm:"column:diagnosis_id;type:uuid;not null;index"`

	// Exclusively owned children; replaced wholesale on every update.
	Treatment *Treatment `gorm:"foreignKey:VisitID;constraint:OnDelete:CASCADE"`
	SickLeave *SickLeave `gorm:"foreignKey:VisitID;constraint:OnDelete:CASCADE"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
}

func (Visit) TableName() string {
	return "clinical.visits"
}

type Treatment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	VisitID uuid.UUID `gorm:"column:visit_id;type:uuid;not null;uniqueIndex"`

	Description string `gorm:"column:description;type:text"`

	// Medicines keep their supply order via Position.
	Medicines []Medicine `gorm:"foreignKey:TreatmentID;constraint:OnDelete:CASCADE"`
}

func (Treatment) TableName() string {
	return "clinical.treatments"
}

type Medicine struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	TreatmentID uuid.UUID `gorm:"column:treatment_id;type:uuid;not null;index"`

	Name      string `gorm:"column:name;type:varchar(255);not null"`
	Dosage    string `gorm:"column:dosage;type:varchar(100)"`
	Frequency string `gorm:"column:frequency;type:varchar(100)"`
	Position  int    `gorm:"column:position;not null"`
}

func (Medicine) TableName() string {
	return "clinical.medicines"
}

type SickLeave struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	VisitID uuid.UUID `gorm:"column:visit_id;type:uuid;not null;uniqueIndex"`

	StartDate    time.Time `gorm:"column:start_date;type:date;not null"`
	DurationDays int       `gorm:"column:duration_days;not null"`
}

func (SickLeave) TableName() string {
	return "clinical.sick_leaves"
}

type CreateVisitCommand struct {
	VisitDate   time.Time
	VisitTime   string
	PatientID   uuid.UUID
	DoctorID    uuid.UUID
	DiagnosisID uuid.UUID
	Treatment   *TreatmentInput
	SickLeave   *SickLeaveInput
	CreatedBy   uuid.UUID
}

type UpdateVisitCommand struct {
	ID          uuid.UUID
	VisitDate   time.Time
	VisitTime   string
	PatientID   uuid.UUID
	DoctorID    uuid.UUID
	DiagnosisID uuid.UUID
	Status      *VisitStatus
	Treatment   *TreatmentInput
	SickLeave   *SickLeaveInput
	UpdatedBy   uuid.UUID
}

// ListVisitsQuery scopes the paged listing. PatientID is forced to the
// caller's own patient record for patient-role callers.
type ListVisitsQuery struct {
	Page      *paging.PageRequest
	Filter    string
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
}

type PagedVisits struct {
	Visits     []*Visit
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}
