package diagnosis

import (
	"context"

	"github.com/google/uuid"

	"github.com/vkrastev/clinicore/internal/paging"
)

type Repository interface {
	Create(ctx context.Context, d *Diagnosis) error
	GetByID(ctx context.Context, id uuid.UUID) (*Diagnosis, error)
	GetByName(ctx context.Context, name string) (*Diagnosis, error)

	// List returns one page of diagnoses, filtered by name substring when
	// filter is non-blank.
	List(ctx context.Context, page *paging.PageRequest, filter string) (*PagedDiagnoses, error)
}
