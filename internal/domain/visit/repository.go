package visit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists the visit together with its children in one
	// transaction. Returns ErrSlotTaken when the (doctor, date, time)
	// slot is already booked.
	Create(ctx context.Context, v *Visit) error

	// GetByID loads the visit with its Treatment (and medicines) and
	// SickLeave preloaded. Returns ErrVisitNotFound when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*Visit, error)

	// GetByDoctorAndSlot finds the visit occupying a slot, if any.
	// Returns ErrVisitNotFound when the slot is free.
	GetByDoctorAndSlot(ctx context.Context, doctorID uuid.UUID, date time.Time, slotTime string) (*Visit, error)

	// Save persists the mutated aggregate, replacing the previous
	// Treatment/SickLeave rows wholesale in one transaction.
	Save(ctx context.Context, v *Visit) error

	// Delete removes the visit and, by cascade, its children. Returns
	// ErrVisitNotFound when the id is unknown.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns one page of visits. Filter dispatch: blank filter
	// lists everything in scope; otherwise filter matches the referenced
	// diagnosis name as a case-insensitive substring.
	List(ctx context.Context, q *ListVisitsQuery) (*PagedVisits, error)
}
