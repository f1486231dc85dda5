package paging

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPageOutOfRange     = errors.New("page index must be zero or positive")
	ErrPageSizeOutOfRange = errors.New("page size is outside the allowed range")
	ErrSortFieldRequired  = errors.New("sort field is required")
)

// PageRequest is an immutable offset/limit/ordering descriptor shared by
// every list query in the system.
type PageRequest struct {
	page      int
	size      int
	sortBy    string
	ascending bool
}

// New validates the raw pagination inputs and builds a PageRequest.
// Page indexes are zero-based. Sizes outside [1, maxSize] are rejected,
// never clamped.
func New(page, size int, sortBy string, ascending bool, maxSize int) (*PageRequest, error) {
	if page < 0 {
		return nil, fmt.Errorf("page %d: %w", page, ErrPageOutOfRange)
	}
	if size < 1 || size > maxSize {
		return nil, fmt.Errorf("size %d (max %d): %w", size, maxSize, ErrPageSizeOutOfRange)
	}
	if strings.TrimSpace(sortBy) == "" {
		return nil, ErrSortFieldRequired
	}
	return &PageRequest{page: page, size: size, sortBy: sortBy, ascending: ascending}, nil
}

func (p *PageRequest) Page() int { return p.page }

func (p *PageRequest) Offset() int { return p.page * p.size }

func (p *PageRequest) Limit() int { return p.size }

// Order renders the ordering clause, e.g. "visit_date DESC".
func (p *PageRequest) Order() string {
	dir := "DESC"
	if p.ascending {
		dir = "ASC"
	}
	return p.sortBy + " " + dir
}

// HasFilter implements the two-way filter dispatch used by list
// repositories: a nil/blank filter means the unfiltered listing, anything
// else is treated as a case-insensitive substring pattern.
func HasFilter(filter string) bool {
	return strings.TrimSpace(filter) != ""
}

// LikePattern wraps the filter for a case-insensitive containment match.
func LikePattern(filter string) string {
	return "%" + strings.TrimSpace(filter) + "%"
}
