package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vkrastev/clinicore/internal/domain/patient"
	"github.com/vkrastev/clinicore/internal/domain/visit"
)

// SchedulingRule decides whether a visit may be booked or rebooked.
// Two checks, in order: the patient's insurance must be current, and
// the (doctor, date, time) slot must be free — unless the conflicting
// visit is the one being updated, which may keep its own slot.
//
// Nothing else is enforced here: clinic hours and doctor availability
// windows are out of scope on purpose.
type SchedulingRule struct {
	visits visit.Repository
	now    func() time.Time
}

func NewSchedulingRule(visits visit.Repository) *SchedulingRule {
	return &SchedulingRule{visits: visits, now: time.Now}
}

func (r *SchedulingRule) Validate(
	ctx context.Context,
	p *patient.Patient,
	doctorID uuid.UUID,
	date time.Time,
	slotTime string,
	excludeVisitID *uuid.UUID,
) error {
	// Eligibility is evaluated against the current clock, not the
	// proposed visit date.
	if !p.InsuranceCurrentAt(r.now()) {
		return fmt.Errorf("patient %s: %w", p.ID, patient.ErrInsuranceLapsed)
	}

	existing, err := r.visits.GetByDoctorAndSlot(ctx, doctorID, date, slotTime)
	if err != nil {
		if errors.Is(err, visit.ErrVisitNotFound) {
			return nil // slot is free
		}
		return fmt.Errorf("checking slot availability: %w", err)
	}

	if excludeVisitID != nil && existing.ID == *excludeVisitID {
		return nil // the visit keeps its own slot
	}

	return fmt.Errorf("%s %s: %w", date.Format("2006-01-02"), slotTime, visit.ErrSlotTaken)
}
