package visit

import "time"

// TreatmentInput is the desired state of a visit's treatment. Supplying
// one always discards and rebuilds the whole medicine list; there is no
// partial merge.
type TreatmentInput struct {
	Description string
	Medicines   []MedicineInput
}

type MedicineInput struct {
	Name      string
	Dosage    string
	Frequency string
}

// SickLeaveInput is the desired state of a visit's sick leave.
type SickLeaveInput struct {
	StartDate    time.Time
	DurationDays int
}

// RebuildChildren replaces the visit's child aggregate in place. The
// current Treatment and SickLeave are always cleared first; a non-nil
// input then attaches a freshly built child, so a nil input leaves the
// visit without that child. Field values are copied verbatim and
// medicine order is preserved. No validation happens here; callers own
// the input checks.
func RebuildChildren(v *Visit, treatment *TreatmentInput, sickLeave *SickLeaveInput) {
	v.Treatment = nil
	if treatment != nil {
		t := &Treatment{
			VisitID:     v.ID,
			Description: treatment.Description,
		}
		if len(treatment.Medicines) > 0 {
			t.Medicines = make([]Medicine, 0, len(treatment.Medicines))
			for i, m := range treatment.Medicines {
				t.Medicines = append(t.Medicines, Medicine{
					Name:      m.Name,
					Dosage:    m.Dosage,
					Frequency: m.Frequency,
					Position:  i,
				})
			}
		}
		v.Treatment = t
	}

	v.SickLeave = nil
	if sickLeave != nil {
		v.SickLeave = &SickLeave{
			VisitID:      v.ID,
			StartDate:    sickLeave.StartDate,
			DurationDays: sickLeave.DurationDays,
		}
	}
}
