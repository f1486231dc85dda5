package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkrastev/clinicore/internal/domain/patient"
	"github.com/vkrastev/clinicore/internal/domain/visit"
)

var testClock = func() time.Time {
	return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
}

func newTestRule(repo *visitRepoMock) *SchedulingRule {
	rule := NewSchedulingRule(repo)
	rule.now = testClock
	return rule
}

func TestSchedulingRule_InsuranceLapsed(t *testing.T) {
	rule := newTestRule(&visitRepoMock{})
	date := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	t.Run("never paid", func(t *testing.T) {
		p := &patient.Patient{ID: uuid.New()}
		err := rule.Validate(context.Background(), p, uuid.New(), date, "10:30", nil)
		assert.ErrorIs(t, err, patient.ErrInsuranceLapsed)
	})

	t.Run("paid seven months ago", func(t *testing.T) {
		p := lapsedPatient(testClock())
		err := rule.Validate(context.Background(), p, uuid.New(), date, "10:30", nil)
		assert.ErrorIs(t, err, patient.ErrInsuranceLapsed)
	})

	t.Run("paid exactly six months ago is still eligible", func(t *testing.T) {
		paid := testClock().AddDate(0, -6, 0)
		p := &patient.Patient{ID: uuid.New(), LastInsurancePaymentAt: &paid}
		err := rule.Validate(context.Background(), p, uuid.New(), date, "10:30", nil)
		assert.NoError(t, err)
	})
}

func TestSchedulingRule_SlotConflict(t *testing.T) {
	now := testClock()
	date := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	doctorID := uuid.New()

	t.Run("free slot passes", func(t *testing.T) {
		rule := newTestRule(&visitRepoMock{}) // default: slot lookup finds nothing
		err := rule.Validate(context.Background(), insuredPatient(now), doctorID, date, "10:30", nil)
		assert.NoError(t, err)
	})

	t.Run("occupied slot is rejected", func(t *testing.T) {
		occupied := &visit.Visit{ID: uuid.New(), DoctorID: doctorID}
		rule := newTestRule(&visitRepoMock{
			getByDoctorAndSlotFn: func(ctx context.Context, gotDoctor uuid.UUID, gotDate time.Time, gotTime string) (*visit.Visit, error) {
				assert.Equal(t, doctorID, gotDoctor)
				assert.Equal(t, "10:30", gotTime)
				return occupied, nil
			},
		})

		err := rule.Validate(context.Background(), insuredPatient(now), doctorID, date, "10:30", nil)
		assert.ErrorIs(t, err, visit.ErrSlotTaken)
	})

	t.Run("visit keeps its own slot", func(t *testing.T) {
		own := &visit.Visit{ID: uuid.New(), DoctorID: doctorID}
		rule := newTestRule(&visitRepoMock{
			getByDoctorAndSlotFn: func(ctx context.Context, _ uuid.UUID, _ time.Time, _ string) (*visit.Visit, error) {
				return own, nil
			},
		})

		err := rule.Validate(context.Background(), insuredPatient(now), doctorID, date, "10:30", &own.ID)
		assert.NoError(t, err)
	})

	t.Run("excluding a different visit does not free the slot", func(t *testing.T) {
		occupied := &visit.Visit{ID: uuid.New(), DoctorID: doctorID}
		rule := newTestRule(&visitRepoMock{
			getByDoctorAndSlotFn: func(ctx context.Context, _ uuid.UUID, _ time.Time, _ string) (*visit.Visit, error) {
				return occupied, nil
			},
		})

		otherID := uuid.New()
		err := rule.Validate(context.Background(), insuredPatient(now), doctorID, date, "10:30", &otherID)
		assert.ErrorIs(t, err, visit.ErrSlotTaken)
	})

	t.Run("insurance is checked before the slot", func(t *testing.T) {
		lookedUp := false
		rule := newTestRule(&visitRepoMock{
			getByDoctorAndSlotFn: func(ctx context.Context, _ uuid.UUID, _ time.Time, _ string) (*visit.Visit, error) {
				lookedUp = true
				return nil, visit.ErrVisitNotFound
			},
		})

		err := rule.Validate(context.Background(), lapsedPatient(now), doctorID, date, "10:30", nil)
		require.ErrorIs(t, err, patient.ErrInsuranceLapsed)
		assert.False(t, lookedUp)
	})

	t.Run("lookup failure propagates", func(t *testing.T) {
		boom := errors.New("connection reset")
		rule := newTestRule(&visitRepoMock{
			getByDoctorAndSlotFn: func(ctx context.Context, _ uuid.UUID, _ time.Time, _ string) (*visit.Visit, error) {
				return nil, boom
			},
		})

		err := rule.Validate(context.Background(), insuredPatient(now), doctorID, date, "10:30", nil)
		assert.ErrorIs(t, err, boom)
	})
}
