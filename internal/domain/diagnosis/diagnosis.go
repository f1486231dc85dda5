package diagnosis

import (
	"time"

	"github.com/google/uuid"
)

type Diagnosis struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	Name        string `gorm:"column:name;type:varchar(255);uniqueIndex;not null"`
	Description string `gorm:"column:description;type:text"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
}

func (Diagnosis) TableName() string {
	return "clinical.diagnoses"
}

type CreateDiagnosisCommand struct {
	Name        string
	Description string
	CreatedBy   uuid.UUID
}

type PagedDiagnoses struct {
	Diagnoses  []*Diagnosis
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}
