package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkrastev/clinicore/internal/domain"
	"github.com/vkrastev/clinicore/internal/domain/diagnosis"
	"github.com/vkrastev/clinicore/internal/domain/doctor"
	"github.com/vkrastev/clinicore/internal/domain/patient"
	"github.com/vkrastev/clinicore/internal/domain/visit"
)

type visitFixture struct {
	patient   *patient.Patient
	doctor    *doctor.Doctor
	diagnosis *diagnosis.Diagnosis
}

func newVisitFixture() *visitFixture {
	return &visitFixture{
		patient:   insuredPatient(testClock()),
		doctor:    &doctor.Doctor{ID: uuid.New(), FirstName: "Maria", LastName: "Dimitrova"},
		diagnosis: &diagnosis.Diagnosis{ID: uuid.New(), Name: "Influenza"},
	}
}

func (f *visitFixture) patientRepo() *patientRepoMock {
	return &patientRepoMock{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
			if id != f.patient.ID {
				return nil, patient.ErrPatientNotFound
			}
			return f.patient, nil
		},
	}
}

func (f *visitFixture) doctorRepo() *doctorRepoMock {
	return &doctorRepoMock{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
			if id != f.doctor.ID {
				return nil, doctor.ErrDoctorNotFound
			}
			return f.doctor, nil
		},
	}
}

func (f *visitFixture) diagnosisRepo() *diagnosisRepoMock {
	return &diagnosisRepoMock{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*diagnosis.Diagnosis, error) {
			if id != f.diagnosis.ID {
				return nil, diagnosis.ErrDiagnosisNotFound
			}
			return f.diagnosis, nil
		},
	}
}

func (f *visitFixture) createCommand() *visit.CreateVisitCommand {
	return &visit.CreateVisitCommand{
		VisitDate:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		VisitTime:   "10:30",
		PatientID:   f.patient.ID,
		DoctorID:    f.doctor.ID,
		DiagnosisID: f.diagnosis.ID,
		CreatedBy:   uuid.New(),
	}
}

func (f *visitFixture) service(t *testing.T, visitRepo *visitRepoMock) *VisitService {
	t.Helper()
	return newTestVisitService(t, visitRepo, f.patientRepo(), f.doctorRepo(), f.diagnosisRepo(), testClock)
}

func TestVisitService_CreateVisit(t *testing.T) {
	caller := uuid.New()

	t.Run("books a visit with treatment and sick leave", func(t *testing.T) {
		f := newVisitFixture()

		var saved *visit.Visit
		repo := &visitRepoMock{
			createFn: func(ctx context.Context, v *visit.Visit) error {
				saved = v
				return nil
			},
		}
		svc := f.service(t, repo)

		cmd := f.createCommand()
		cmd.Treatment = &visit.TreatmentInput{
			Description: "bed rest and fluids",
			Medicines: []visit.MedicineInput{
				{Name: "Paracetamol", Dosage: "500mg", Frequency: "3x daily"},
				{Name: "Vitamin C", Dosage: "1000mg", Frequency: "1x daily"},
			},
		}
		cmd.SickLeave = &visit.SickLeaveInput{
			StartDate:    cmd.VisitDate,
			DurationDays: 5,
		}

		view, err := svc.CreateVisit(context.Background(), cmd, caller, "doctor", "10.0.0.1")
		require.NoError(t, err)
		require.NotNil(t, saved)

		assert.Equal(t, visit.StatusScheduled, saved.Status)
		assert.Equal(t, f.patient.ID, saved.PatientID)
		assert.Equal(t, f.doctor.ID, saved.DoctorID)
		assert.Equal(t, f.diagnosis.ID, saved.DiagnosisID)
		assert.Equal(t, "10:30", saved.VisitTime)

		require.NotNil(t, saved.Treatment)
		require.Len(t, saved.Treatment.Medicines, 2)
		assert.Equal(t, "Paracetamol", saved.Treatment.Medicines[0].Name)
		assert.Equal(t, 0, saved.Treatment.Medicines[0].Position)
		assert.Equal(t, "Vitamin C", saved.Treatment.Medicines[1].Name)
		assert.Equal(t, 1, saved.Treatment.Medicines[1].Position)

		require.NotNil(t, saved.SickLeave)
		assert.Equal(t, 5, saved.SickLeave.DurationDays)

		require.NotNil(t, view)
		assert.Equal(t, "2026-04-01", view.VisitDate)
		assert.Equal(t, visit.StatusScheduled, view.Status)
	})

	t.Run("nil command is rejected", func(t *testing.T) {
		f := newVisitFixture()
		svc := f.service(t, &visitRepoMock{})

		_, err := svc.CreateVisit(context.Background(), nil, caller, "doctor", "10.0.0.1")

		var validErr *ValidationError
		assert.ErrorAs(t, err, &validErr)
	})

	t.Run("unknown patient", func(t *testing.T) {
		f := newVisitFixture()
		svc := f.service(t, &visitRepoMock{})

		cmd := f.createCommand()
		cmd.PatientID = uuid.New()

		_, err := svc.CreateVisit(context.Background(), cmd, caller, "doctor", "10.0.0.1")
		assert.ErrorIs(t, err, patient.ErrPatientNotFound)
	})

	t.Run("lapsed insurance blocks booking", func(t *testing.T) {
		f := newVisitFixture()
		f.patient = lapsedPatient(testClock())

		created := false
		svc := f.service(t, &visitRepoMock{
			createFn: func(ctx context.Context, v *visit.Visit) error {
				created = true
				return nil
			},
		})

		cmd := f.createCommand()
		_, err := svc.CreateVisit(context.Background(), cmd, caller, "doctor", "10.0.0.1")

		require.ErrorIs(t, err, patient.ErrInsuranceLapsed)
		assert.False(t, created)
	})

	t.Run("occupied slot blocks booking", func(t *testing.T) {
		f := newVisitFixture()
		existing := &visit.Visit{ID: uuid.New(), DoctorID: f.doctor.ID}
		svc := f.service(t, &visitRepoMock{
			getByDoctorAndSlotFn: func(ctx context.Context, _ uuid.UUID, _ time.Time, _ string) (*visit.Visit, error) {
				return existing, nil
			},
		})

		_, err := svc.CreateVisit(context.Background(), f.createCommand(), caller, "doctor", "10.0.0.1")
		assert.ErrorIs(t, err, visit.ErrSlotTaken)
	})

	t.Run("concurrent booking race surfaces the conflict", func(t *testing.T) {
		f := newVisitFixture()
		// Slot lookup sees it free, but the insert loses the race.
		svc := f.service(t, &visitRepoMock{
			createFn: func(ctx context.Context, v *visit.Visit) error {
				return visit.ErrSlotTaken
			},
		})

		_, err := svc.CreateVisit(context.Background(), f.createCommand(), caller, "doctor", "10.0.0.1")
		assert.ErrorIs(t, err, visit.ErrSlotTaken)
	})
}

func TestVisitService_UpdateVisit(t *testing.T) {
	caller := uuid.New()

	existingVisit := func(f *visitFixture) *visit.Visit {
		v := &visit.Visit{
			ID:          uuid.New(),
			VisitDate:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
			VisitTime:   "10:30",
			Status:      visit.StatusScheduled,
			PatientID:   f.patient.ID,
			DoctorID:    f.doctor.ID,
			DiagnosisID: f.diagnosis.ID,
		}
		v.Treatment = &visit.Treatment{
			VisitID:     v.ID,
			Description: "old plan",
			Medicines:   []visit.Medicine{{Name: "Ibuprofen", Position: 0}},
		}
		v.SickLeave = &visit.SickLeave{VisitID: v.ID, StartDate: v.VisitDate, DurationDays: 3}
		return v
	}

	updateCommand := func(f *visitFixture, v *visit.Visit) *visit.UpdateVisitCommand {
		return &visit.UpdateVisitCommand{
			ID:          v.ID,
			VisitDate:   v.VisitDate,
			VisitTime:   v.VisitTime,
			PatientID:   f.patient.ID,
			DoctorID:    f.doctor.ID,
			DiagnosisID: f.diagnosis.ID,
			UpdatedBy:   caller,
		}
	}

	t.Run("keeps its own slot on an unchanged reschedule", func(t *testing.T) {
		f := newVisitFixture()
		v := existingVisit(f)

		var saved *visit.Visit
		svc := f.service(t, &visitRepoMock{
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*visit.Visit, error) {
				return v, nil
			},
			getByDoctorAndSlotFn: func(ctx context.Context, _ uuid.UUID, _ time.Time, _ string) (*visit.Visit, error) {
				return v, nil // the visit itself occupies the slot
			},
			saveFn: func(ctx context.Context, got *visit.Visit) error {
				saved = got
				return nil
			},
		})

		cmd := updateCommand(f, v)
		cmd.Treatment = &visit.TreatmentInput{Description: "new plan"}

		_, err := svc.UpdateVisit(context.Background(), cmd, caller, "doctor", "10.0.0.1")
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, "new plan", saved.Treatment.Description)
	})

	t.Run("omitted children are removed", func(t *testing.T) {
		f := newVisitFixture()
		v := existingVisit(f)

		var saved *visit.Visit
		svc := f.service(t, &visitRepoMock{
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*visit.Visit, error) {
				return v, nil
			},
			saveFn: func(ctx context.Context, got *visit.Visit) error {
				saved = got
				return nil
			},
		})

		// No treatment, no sick leave in the command.
		_, err := svc.UpdateVisit(context.Background(), updateCommand(f, v), caller, "doctor", "10.0.0.1")
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Nil(t, saved.Treatment)
		assert.Nil(t, saved.SickLeave)
	})

	t.Run("moving onto another visit's slot is rejected", func(t *testing.T) {
		f := newVisitFixture()
		v := existingVisit(f)
		other := &visit.Visit{ID: uuid.New(), DoctorID: f.doctor.ID}

		svc := f.service(t, &visitRepoMock{
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*visit.Visit, error) {
				return v, nil
			},
			getByDoctorAndSlotFn: func(ctx context.Context, _ uuid.UUID, _ time.Time, _ string) (*visit.Visit, error) {
				return other, nil
			},
		})

		cmd := updateCommand(f, v)
		cmd.VisitTime = "11:00"

		_, err := svc.UpdateVisit(context.Background(), cmd, caller, "doctor", "10.0.0.1")
		assert.ErrorIs(t, err, visit.ErrSlotTaken)
	})

	t.Run("invalid status", func(t *testing.T) {
		f := newVisitFixture()
		v := existingVisit(f)

		svc := f.service(t, &visitRepoMock{
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*visit.Visit, error) {
				return v, nil
			},
			getByDoctorAndSlotFn: func(ctx context.Context, _ uuid.UUID, _ time.Time, _ string) (*visit.Visit, error) {
				return v, nil
			},
		})

		cmd := updateCommand(f, v)
		bogus := visit.VisitStatus("rescheduled")
		cmd.Status = &bogus

		_, err := svc.UpdateVisit(context.Background(), cmd, caller, "doctor", "10.0.0.1")
		assert.ErrorIs(t, err, visit.ErrInvalidStatus)
	})

	t.Run("unknown visit", func(t *testing.T) {
		f := newVisitFixture()
		svc := f.service(t, &visitRepoMock{})

		cmd := updateCommand(f, &visit.Visit{ID: uuid.New()})
		_, err := svc.UpdateVisit(context.Background(), cmd, caller, "doctor", "10.0.0.1")
		assert.ErrorIs(t, err, visit.ErrVisitNotFound)
	})
}

func TestVisitService_DeleteVisit(t *testing.T) {
	caller := uuid.New()

	t.Run("removes an existing visit", func(t *testing.T) {
		f := newVisitFixture()
		id := uuid.New()

		deleted := false
		svc := f.service(t, &visitRepoMock{
			getByIDFn: func(ctx context.Context, got uuid.UUID) (*visit.Visit, error) {
				return &visit.Visit{ID: got}, nil
			},
			deleteFn: func(ctx context.Context, got uuid.UUID) error {
				assert.Equal(t, id, got)
				deleted = true
				return nil
			},
		})

		err := svc.DeleteVisit(context.Background(), id, caller, "admin", "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, deleted)
	})

	t.Run("unknown visit", func(t *testing.T) {
		f := newVisitFixture()
		svc := f.service(t, &visitRepoMock{})

		err := svc.DeleteVisit(context.Background(), uuid.New(), caller, "admin", "10.0.0.1")
		assert.ErrorIs(t, err, visit.ErrVisitNotFound)
	})
}

func TestVisitService_GetVisit(t *testing.T) {
	caller := uuid.New()

	setup := func(t *testing.T, f *visitFixture) (*VisitService, *visit.Visit) {
		v := &visit.Visit{
			ID:          uuid.New(),
			VisitDate:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
			VisitTime:   "10:30",
			Status:      visit.StatusScheduled,
			PatientID:   f.patient.ID,
			DoctorID:    f.doctor.ID,
			DiagnosisID: f.diagnosis.ID,
		}
		svc := f.service(t, &visitRepoMock{
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*visit.Visit, error) {
				return v, nil
			},
		})
		return svc, v
	}

	t.Run("patients see their own visits", func(t *testing.T) {
		f := newVisitFixture()
		svc, v := setup(t, f)

		view, err := svc.GetVisit(context.Background(), v.ID, caller, string(domain.RolePatient), &f.patient.ID, "10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, v.ID, view.ID)
	})

	t.Run("patients cannot see other patients' visits", func(t *testing.T) {
		f := newVisitFixture()
		svc, v := setup(t, f)

		otherPatient := uuid.New()
		_, err := svc.GetVisit(context.Background(), v.ID, caller, string(domain.RolePatient), &otherPatient, "10.0.0.1")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("patient claims without a patient link are rejected", func(t *testing.T) {
		f := newVisitFixture()
		svc, v := setup(t, f)

		_, err := svc.GetVisit(context.Background(), v.ID, caller, string(domain.RolePatient), nil, "10.0.0.1")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("staff roles see any visit", func(t *testing.T) {
		f := newVisitFixture()
		svc, v := setup(t, f)

		for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleDoctor, domain.RoleReceptionist} {
			view, err := svc.GetVisit(context.Background(), v.ID, caller, string(role), nil, "10.0.0.1")
			require.NoError(t, err, "role %s", role)
			assert.Equal(t, v.ID, view.ID)
		}
	})
}

func TestVisitService_ListVisits(t *testing.T) {
	t.Run("returns a page through the future", func(t *testing.T) {
		f := newVisitFixture()
		svc := f.service(t, &visitRepoMock{
			listFn: func(ctx context.Context, q *visit.ListVisitsQuery) (*visit.PagedVisits, error) {
				assert.Equal(t, "visit_date DESC", q.Page.Order())
				return &visit.PagedVisits{
					Visits: []*visit.Visit{{
						ID:        uuid.New(),
						VisitDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
						VisitTime: "10:30",
						Status:    visit.StatusScheduled,
					}},
					TotalCount: 1,
					Page:       0,
					PageSize:   20,
					TotalPages: 1,
				}, nil
			},
		})

		future, err := svc.ListVisits(context.Background(), 0, 20, "visit_date", false, "", nil, "doctor", nil)
		require.NoError(t, err)

		page, err := future.Wait(context.Background())
		require.NoError(t, err)
		require.Len(t, page.Visits, 1)
		assert.Equal(t, int64(1), page.TotalCount)
	})

	t.Run("rejects out-of-range pagination before dispatch", func(t *testing.T) {
		f := newVisitFixture()

		listed := false
		svc := f.service(t, &visitRepoMock{
			listFn: func(ctx context.Context, q *visit.ListVisitsQuery) (*visit.PagedVisits, error) {
				listed = true
				return &visit.PagedVisits{}, nil
			},
		})

		for _, tc := range []struct{ page, size int }{
			{-1, 10},
			{0, 0},
			{0, 101},
		} {
			_, err := svc.ListVisits(context.Background(), tc.page, tc.size, "visit_date", true, "", nil, "doctor", nil)

			var validErr *ValidationError
			assert.ErrorAs(t, err, &validErr, "page=%d size=%d", tc.page, tc.size)
		}
		assert.False(t, listed)
	})

	t.Run("patient callers are scoped to their own visits", func(t *testing.T) {
		f := newVisitFixture()
		patientID := uuid.New()

		var captured *visit.ListVisitsQuery
		svc := f.service(t, &visitRepoMock{
			listFn: func(ctx context.Context, q *visit.ListVisitsQuery) (*visit.PagedVisits, error) {
				captured = q
				return &visit.PagedVisits{}, nil
			},
		})

		future, err := svc.ListVisits(context.Background(), 0, 20, "visit_date", true, "", nil, string(domain.RolePatient), &patientID)
		require.NoError(t, err)
		_, err = future.Wait(context.Background())
		require.NoError(t, err)

		require.NotNil(t, captured)
		require.NotNil(t, captured.PatientID)
		assert.Equal(t, patientID, *captured.PatientID)
	})

	t.Run("patient callers without a patient link are rejected", func(t *testing.T) {
		f := newVisitFixture()
		svc := f.service(t, &visitRepoMock{})

		_, err := svc.ListVisits(context.Background(), 0, 20, "visit_date", true, "", nil, string(domain.RolePatient), nil)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}
