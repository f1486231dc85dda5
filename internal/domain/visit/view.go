package visit

import (
	"time"

	"github.com/google/uuid"
)

// VisitView is the read-only projection returned by every operation.
// It carries plain values and referenced-entity ids, never the live
// gorm entities.
type VisitView struct {
	ID          uuid.UUID      `json:"id"`
	VisitDate   string         `json:"visit_date"`
	VisitTime   string         `json:"visit_time"`
	Status      VisitStatus    `json:"status"`
	PatientID   uuid.UUID      `json:"patient_id"`
	DoctorID    uuid.UUID      `json:"doctor_id"`
	DiagnosisID uuid.UUID      `json:"diagnosis_id"`
	Treatment   *TreatmentView `json:"treatment,omitempty"`
	SickLeave   *SickLeaveView `json:"sick_leave,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type TreatmentView struct {
	ID          uuid.UUID      `json:"id"`
	Description string         `json:"description"`
	Medicines   []MedicineView `json:"medicines"`
}

type MedicineView struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
}

type SickLeaveView struct {
	ID           uuid.UUID `json:"id"`
	StartDate    string    `json:"start_date"`
	DurationDays int       `json:"duration_days"`
}

const dateLayout = "2006-01-02"

// View projects the aggregate into its outward representation.
func View(v *Visit) *VisitView {
	out := &VisitView{
		ID:          v.ID,
		VisitDate:   v.VisitDate.Format(dateLayout),
		VisitTime:   v.VisitTime,
		Status:      v.Status,
		PatientID:   v.PatientID,
		DoctorID:    v.DoctorID,
		DiagnosisID: v.DiagnosisID,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}

	if v.Treatment != nil {
		tv := &TreatmentView{
			ID:          v.Treatment.ID,
			Description: v.Treatment.Description,
			Medicines:   make([]MedicineView, 0, len(v.Treatment.Medicines)),
		}
		for _, m := range v.Treatment.Medicines {
			tv.Medicines = append(tv.Medicines, MedicineView{
				Name:      m.Name,
				Dosage:    m.Dosage,
				Frequency: m.Frequency,
			})
		}
		out.Treatment = tv
	}

	if v.SickLeave != nil {
		out.SickLeave = &SickLeaveView{
			ID:           v.SickLeave.ID,
			StartDate:    v.SickLeave.StartDate.Format(dateLayout),
			DurationDays: v.SickLeave.DurationDays,
		}
	}

	return out
}

// ViewPage projects a page of visits.
func ViewPage(p *PagedVisits) []*VisitView {
	views := make([]*VisitView, 0, len(p.Visits))
	for _, v := range p.Visits {
		views = append(views, View(v))
	}
	return views
}
