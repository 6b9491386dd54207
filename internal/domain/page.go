package domain

import (
	"fmt"
	"time"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PaginationParams carries page/pageSize values from the HTTP layer to the repo layer.
// Page is 1-indexed. PageSize is clamped to [1, 100] by NewPaginationParams.
type PaginationParams struct {
	// Page is the current page number, starting at 1.
	Page int
	// PageSize is the maximum number of items to return.
	PageSize int
}

// NewPaginationParams builds a PaginationParams from optional HTTP query params.
// Nil pointers fall back to page=1, pageSize=20. A page below 1 becomes 1 and
// the page size is clamped to [1, 100] to prevent runaway queries.
func NewPaginationParams(page, pageSize *int) PaginationParams {
	p := PaginationParams{Page: 1, PageSize: defaultPageSize}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if pageSize != nil {
		p.PageSize = min(max(*pageSize, 1), maxPageSize)
	}
	return p
}

// Offset returns the zero-based row offset for a SQL OFFSET clause.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// TotalPages returns ceil(total / PageSize).
func (p PaginationParams) TotalPages(total int64) int {
	if total <= 0 || p.PageSize <= 0 {
		return 0
	}
	size := int64(p.PageSize)
	return int((total + size - 1) / size)
}

// SortColumn is a client-facing column name that lists may be ordered by.
type SortColumn string

const (
	SortCreatedAt   SortColumn = "createdAt"
	SortUpdatedAt   SortColumn = "updatedAt"
	SortStatus      SortColumn = "status"
	SortType        SortColumn = "type"
	SortPrice       SortColumn = "price"
	SortKilometers  SortColumn = "kilometers"
	SortServiceDate SortColumn = "serviceDate"
)

// Sortable reports whether c is in the sort allow-list.
func (c SortColumn) Sortable() bool {
	switch c {
	case SortCreatedAt, SortUpdatedAt, SortStatus, SortType, SortPrice, SortKilometers, SortServiceDate:
		return true
	}
	return false
}

// SortDirection is asc or desc.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortParams is a validated ordering for list queries.
type SortParams struct {
	Column    SortColumn
	Direction SortDirection
}

// NewSortParams builds a SortParams from optional HTTP query params.
// A column outside the allow-list resets the whole ordering to createdAt desc;
// an unknown direction on an allowed column falls back to desc.
func NewSortParams(sortBy, sortOrder *string) SortParams {
	def := SortParams{Column: SortCreatedAt, Direction: SortDesc}
	if sortBy == nil {
		return def
	}
	col := SortColumn(*sortBy)
	if !col.Sortable() {
		return def
	}
	s := SortParams{Column: col, Direction: SortDesc}
	if sortOrder != nil && SortDirection(*sortOrder) == SortAsc {
		s.Direction = SortAsc
	}
	return s
}

// ListFilter narrows list, stats and export queries. Nil fields do not filter.
// DateFrom and DateTo are inclusive bounds on the service date.
type ListFilter struct {
	Type     *ServiceType
	Status   *Status
	DateFrom *time.Time
	DateTo   *time.Time
}

// Validate rejects unknown enum values and an inverted date range.
func (f ListFilter) Validate() error {
	if f.Type != nil && !f.Type.Valid() {
		return fmt.Errorf("%w: type filter must be one of secondary, sport", ErrValidation)
	}
	if f.Status != nil && !f.Status.Valid() {
		return fmt.Errorf("%w: unknown status filter %q", ErrValidation, *f.Status)
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateTo.Before(*f.DateFrom) {
		return fmt.Errorf("%w: dateTo must not be before dateFrom", ErrValidation)
	}
	return nil
}

// ListQuery is everything the repo needs to fetch one page of services.
type ListQuery struct {
	Filter     ListFilter
	Scope      Scope
	Pagination PaginationParams
	Sort       SortParams
}

// Page is one page of results with its paging metadata.
type Page[T any] struct {
	Items      []T
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
}
