package doctor

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Specialty struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	Name        string `gorm:"column:name;type:varchar(100);uniqueIndex;not null"`
	Description string `gorm:"column:description;type:text"`
}

func (Specialty) TableName() string {
	return "clinical.specialties"
}

type Doctor struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	FirstName string `gorm:"column:first_name;type:varchar(100);not null"`
	LastName  string `gorm:"column:last_name;type:varchar(100);not null"`

	SpecialtyID uuid.UUID  `gorm:"column:specialty_id;type:uuid;not null;index"`
	Specialty   *Specialty `gorm:"foreignKey:SpecialtyID"`

	// IsGeneralPractitioner marks doctors eligible to be a patient's
	// primary-care reference.
	IsGeneralPractitioner bool `gorm:"column:is_general_practitioner;default:false;index"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
}

func (Doctor) TableName() string {
	return "clinical.doctors"
}

func (d *Doctor) FullName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

type CreateDoctorCommand struct {
	FirstName             string
	LastName              string
	SpecialtyID           uuid.UUID
	IsGeneralPractitioner bool
	CreatedBy             uuid.UUID
}

type UpdateDoctorCommand struct {
	ID                    uuid.UUID
	FirstName             *string
	LastName              *string
	SpecialtyID           *uuid.UUID
	IsGeneralPractitioner *bool
	UpdatedBy             uuid.UUID
}

type PagedDoctors struct {
	Doctors    []*Doctor
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}
