package handler

import (
	"fmt"
	"net/http"

	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/servicelog/internal/domain"
)

// ListServices handles GET /services.
// Supports ?type, ?status, ?dateFrom, ?dateTo, ?page, ?pageSize, ?sortBy and
// ?sortOrder (defaults: page=1, pageSize=20, max=100, createdAt desc).
func (s *Server) ListServices(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	f, err := bindFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var page, pageSize *int
	var sortBy, sortOrder *string
	for name, dest := range map[string]any{"page": &page, "pageSize": &pageSize, "sortBy": &sortBy, "sortOrder": &sortOrder} {
		if err := bindQuery(r, name, dest); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	res, err := s.queries.List(r.Context(), actor, f,
		domain.NewPaginationParams(page, pageSize), domain.NewSortParams(sortBy, sortOrder))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	items := make([]any, 0, len(res.Items))
	for _, it := range res.Items {
		items = append(items, serviceToResponse(it))
	}
	writeData(w, http.StatusOK, pageResponse{
		Items:      items,
		Total:      res.Total,
		Page:       res.Page,
		PageSize:   res.PageSize,
		TotalPages: res.TotalPages,
	})
}

// GetStats handles GET /services/stats. It takes the list filters but no
// paging or sorting.
func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	f, err := bindFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	st, err := s.queries.Stats(r.Context(), actor, f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, statsResponse{
		Total:           st.Total,
		Completed:       st.Completed,
		Pending:         st.Pending,
		Cancelled:       st.Cancelled,
		TotalRevenue:    st.TotalRevenue,
		AveragePrice:    st.AveragePrice,
		TotalKilometers: st.TotalKilometers,
	})
}

// bindFilter reads the list filters shared by list, stats and export.
// Enum values are passed through unchecked; the service rejects unknown ones.
func bindFilter(r *http.Request) (domain.ListFilter, error) {
	var (
		typ, status      *string
		dateFrom, dateTo *openapi_types.Date
	)
	for name, dest := range map[string]any{"type": &typ, "status": &status, "dateFrom": &dateFrom, "dateTo": &dateTo} {
		if err := bindQuery(r, name, dest); err != nil {
			return domain.ListFilter{}, err
		}
	}

	var f domain.ListFilter
	if typ != nil {
		t := domain.ServiceType(*typ)
		f.Type = &t
	}
	if status != nil {
		st := domain.Status(*status)
		f.Status = &st
	}
	f.DateFrom = dateTime(dateFrom)
	f.DateTo = dateTime(dateTo)
	return f, nil
}

// bindQuery binds one optional form-style query parameter into dest.
func bindQuery(r *http.Request, name string, dest any) error {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		return fmt.Errorf("%w: invalid %s parameter", domain.ErrValidation, name)
	}
	return nil
}
