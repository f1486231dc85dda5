package patient

import (
	"context"

	"github.com/google/uuid"

	"github.com/vkrastev/clinicore/internal/paging"
)

type Repository interface {
	// Create persists a new patient. Returns ErrPatientAlreadyExists on
	// a duplicate NationalID.
	Create(ctx context.Context, p *Patient) error

	// GetByID returns ErrPatientNotFound when the id is unknown.
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)

	// Update applies partial updates to an existing record.
	Update(ctx context.Context, cmd *UpdatePatientCommand) (*Patient, error)

	// SoftDelete marks the patient as deleted; the row is retained.
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// List returns one page of patients. A blank filter lists everything;
	// otherwise filter is matched as a case-insensitive substring of the
	// patient name.
	List(ctx context.Context, page *paging.PageRequest, filter string) (*PagedPatients, error)
}
