package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderOther   Gender = "other"
	GenderUnknown Gender = "unknown"
)

func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther, GenderUnknown:
		return true
	}
	return false
}

// Status represents the lifecycle state of a patient record.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// InsuranceValidityMonths is the booking-eligibility window: a patient
// whose last insurance payment is older than this many calendar months
// cannot book a visit.
const InsuranceValidityMonths = 6

type ContactInfo struct {
	Phone   string `gorm:"column:phone;type:varchar(20)"`
	Email   string `gorm:"column:email;type:varchar(255)"`
	Address string `gorm:"column:address;type:text"`
	City    string `gorm:"column:city;type:varchar(100)"`
}

type Patient struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	FirstName   string    `gorm:"column:first_name;type:varchar(100);not null"`
	LastName    string    `gorm:"column:last_name;type:varchar(100);not null"`
	DateOfBirth time.Time `gorm:"column:date_of_birth;not null"`
	Gender      Gender    `gorm:"column:gender;type:varchar(20);not null"`
	NationalID  string    `gorm:"column:national_id;type:varchar(50);uniqueIndex"`

	ContactInfo

	// LastInsurancePaymentAt gates visit booking. Nil means the patient
	// has never paid and is not eligible.
	LastInsurancePaymentAt *time.Time `gorm:"column:last_insurance_payment_at;index"`

	Status Status `gorm:"column:status;type:varchar(20);default:'active';index"`

	// AssignedGPID references the patient's general practitioner.
	AssignedGPID *uuid.UUID `gorm:"column:assigned_gp_id;type:uuid;index"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
}

func (Patient) TableName() string {
	return "clinical.patients"
}

func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func (p *Patient) IsActive() bool {
	return p.Status == StatusActive && p.DeletedAt == nil
}

// InsuranceCurrentAt reports whether the patient's insurance covers a
// booking evaluated at the given instant. The window is measured in
// calendar months, not days.
func (p *Patient) InsuranceCurrentAt(now time.Time) bool {
	if p.LastInsurancePaymentAt == nil {
		return false
	}
	cutoff := now.AddDate(0, -InsuranceValidityMonths, 0)
	return !p.LastInsurancePaymentAt.Before(cutoff)
}

type CreatePatientCommand struct {
	FirstName              string
	LastName               string
	DateOfBirth            time.Time
	Gender                 Gender
	NationalID             string
	Phone                  string
	Email                  string
	Address                string
	City                   string
	LastInsurancePaymentAt *time.Time
	AssignedGPID           *uuid.UUID
	CreatedBy              uuid.UUID
}

type UpdatePatientCommand struct {
	ID                     uuid.UUID
	FirstName              *string
	LastName               *string
	Gender                 *Gender
	Phone                  *string
	Email                  *string
	Address                *string
	City                   *string
	LastInsurancePaymentAt *time.Time
	AssignedGPID           *uuid.UUID
	UpdatedBy              uuid.UUID
}

type PagedPatients struct {
	Patients   []*Patient
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}
