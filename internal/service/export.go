package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pkordes/servicelog/internal/domain"
	"github.com/pkordes/servicelog/internal/fieldmap"
)

// exportPageSize is the page size Export walks the result set with.
const exportPageSize = 100

// Export returns one flat row per service visible to the actor that matches
// f, oldest first.
func (s *QueryService) Export(ctx context.Context, actor domain.Actor, f domain.ListFilter) ([]domain.ExportRow, error) {
	size := exportPageSize
	sort := domain.SortParams{Column: domain.SortCreatedAt, Direction: domain.SortAsc}

	rows := []domain.ExportRow{}
	for page := 1; ; page++ {
		p := domain.NewPaginationParams(&page, &size)
		res, err := s.List(ctx, actor, f, p, sort)
		if err != nil {
			return nil, fmt.Errorf("service.QueryService.Export: %w", err)
		}
		for _, v := range res.Items {
			rows = append(rows, exportRow(v))
		}
		if page >= res.TotalPages {
			return rows, nil
		}
	}
}

// exportRow flattens v. Summary is the patient name of a secondary service or
// the event name of a sport service.
func exportRow(v domain.ClientService) domain.ExportRow {
	row := domain.ExportRow{
		ID:         v.ID.String(),
		Type:       string(v.Type),
		OwnerID:    v.OwnerID,
		Status:     string(v.Status),
		Kilometers: v.Kilometers,
		Price:      v.Price,
		CreatedAt:  v.CreatedAt.UTC().Format(time.RFC3339),
	}
	if v.ServiceDate != nil {
		row.ServiceDate = v.ServiceDate.Format(fieldmap.DateLayout)
	}
	if d, ok := v.Secondary(); ok {
		row.Summary = d.PatientName
		row.Vehicle = d.Vehicle
	}
	if d, ok := v.Sport(); ok {
		row.Summary = d.EventName
		row.Vehicle = d.Vehicle
	}
	return row
}
