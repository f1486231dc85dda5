package doctor

import (
	"context"

	"github.com/google/uuid"

	"github.com/vkrastev/clinicore/internal/paging"
)

type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	Update(ctx context.Context, cmd *UpdateDoctorCommand) (*Doctor, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// List returns one page of doctors, filtered by name substring when
	// filter is non-blank.
	List(ctx context.Context, page *paging.PageRequest, filter string) (*PagedDoctors, error)
}

type SpecialtyRepository interface {
	Create(ctx context.Context, s *Specialty) error
	GetByID(ctx context.Context, id uuid.UUID) (*Specialty, error)
	GetByName(ctx context.Context, name string) (*Specialty, error)
	List(ctx context.Context) ([]*Specialty, error)
}
