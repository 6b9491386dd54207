package service

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/pkordes/servicelog/internal/domain"
	"github.com/pkordes/servicelog/internal/fieldmap"
	"github.com/pkordes/servicelog/internal/repo"
)

// QueryService serves list and stats requests. Non-elevated actors only ever
// see their own services.
type QueryService struct {
	repo repo.ServiceRepo
	log  *slog.Logger
}

// NewQueryService constructs a QueryService backed by r.
func NewQueryService(r repo.ServiceRepo, log *slog.Logger) *QueryService {
	return &QueryService{repo: r, log: log}
}

// List returns one page of services visible to the actor.
// Items is never nil.
func (s *QueryService) List(ctx context.Context, actor domain.Actor, f domain.ListFilter, p domain.PaginationParams, sort domain.SortParams) (domain.Page[domain.ClientService], error) {
	if err := f.Validate(); err != nil {
		return domain.Page[domain.ClientService]{}, err
	}

	aggs, total, err := s.repo.List(ctx, domain.ListQuery{
		Filter:     f,
		Scope:      domain.ScopeFor(actor),
		Pagination: p,
		Sort:       sort,
	})
	if err != nil {
		return domain.Page[domain.ClientService]{}, storageErr("service.QueryService.List", err)
	}

	items := make([]domain.ClientService, 0, len(aggs))
	for _, a := range aggs {
		v, complete := fieldmap.ToClientView(a.Parent, a.Child)
		if !complete {
			s.log.WarnContext(ctx, "service has no child row, returning empty detail",
				"service_id", a.Parent.ID,
				"type", string(a.Parent.Type),
			)
		}
		items = append(items, v)
	}

	return domain.Page[domain.ClientService]{
		Items:      items,
		Total:      total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages(total),
	}, nil
}

// Stats summarizes the services visible to the actor that match f.
func (s *QueryService) Stats(ctx context.Context, actor domain.Actor, f domain.ListFilter) (domain.Stats, error) {
	if err := f.Validate(); err != nil {
		return domain.Stats{}, err
	}
	rows, err := s.repo.StatsRows(ctx, f, domain.ScopeFor(actor))
	if err != nil {
		return domain.Stats{}, storageErr("service.QueryService.Stats", err)
	}
	return ComputeStats(rows), nil
}

// ComputeStats aggregates rows. Revenue and average price only count
// completed services; the average divides by max(completed, 1) so an empty
// set yields zero. Kilometers are summed over every row. Money and distance
// sums are exact decimals rounded to 2 places.
func ComputeStats(rows []domain.StatsRow) domain.Stats {
	var (
		st      domain.Stats
		revenue = decimal.Zero
		km      = decimal.Zero
	)
	for _, r := range rows {
		st.Total++
		km = km.Add(decimal.NewFromFloat(r.Kilometers))
		switch r.Status {
		case domain.StatusCompleted:
			st.Completed++
			revenue = revenue.Add(decimal.NewFromFloat(r.Price))
		case domain.StatusPending:
			st.Pending++
		case domain.StatusCancelled:
			st.Cancelled++
		}
	}

	avg := revenue.Div(decimal.NewFromInt(int64(max(st.Completed, 1))))

	st.TotalRevenue = revenue.Round(2).InexactFloat64()
	st.AveragePrice = avg.Round(2).InexactFloat64()
	st.TotalKilometers = km.Round(2).InexactFloat64()
	return st
}
