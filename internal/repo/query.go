package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/servicelog/internal/domain"
)

// sortColumns maps the sortable client fields to their parent columns.
// Anything not in this map never reaches the ORDER BY clause.
var sortColumns = map[domain.SortColumn]string{
	domain.SortCreatedAt:   "s.created_at",
	domain.SortUpdatedAt:   "s.updated_at",
	domain.SortServiceDate: "s.service_date",
	domain.SortStatus:      "s.status",
	domain.SortType:        "s.type",
	domain.SortPrice:       "s.price",
	domain.SortKilometers:  "s.kilometers",
}

// ListPlan is the SQL for one list request: a page query, a count query, and
// the named arguments shared by both.
type ListPlan struct {
	PageSQL  string
	CountSQL string
	Args     pgx.NamedArgs
}

// PlanList builds the page and count queries for q. Filter values are always
// bound as named arguments; only allow-listed column names are interpolated.
// The id tie-break keeps pages stable when sort values repeat.
func PlanList(q domain.ListQuery) ListPlan {
	args := pgx.NamedArgs{}
	where := whereClause(q.Filter, q.Scope, args)

	col, ok := sortColumns[q.Sort.Column]
	if !ok {
		col = sortColumns[domain.SortCreatedAt]
	}
	dir := "DESC"
	if q.Sort.Direction == domain.SortAsc {
		dir = "ASC"
	}

	args["limit"] = q.Pagination.PageSize
	args["offset"] = q.Pagination.Offset()

	return ListPlan{
		PageSQL: aggregateSelect + where + `
		ORDER BY ` + col + ` ` + dir + ` NULLS LAST, s.id ` + dir + `
		LIMIT @limit OFFSET @offset`,
		CountSQL: `SELECT count(*) FROM services s` + where,
		Args:     args,
	}
}

// whereClause renders the scope and filter predicates, adding their values to
// args. It returns an empty string when nothing restricts the rows.
func whereClause(f domain.ListFilter, scope domain.Scope, args pgx.NamedArgs) string {
	var conds []string
	if !scope.All {
		conds = append(conds, "s.owner_id = @owner_id")
		args["owner_id"] = scope.OwnerID
	}
	if f.Type != nil {
		conds = append(conds, "s.type = @type")
		args["type"] = string(*f.Type)
	}
	if f.Status != nil {
		conds = append(conds, "s.status = @status")
		args["status"] = string(*f.Status)
	}
	if f.DateFrom != nil {
		conds = append(conds, "s.service_date >= @date_from")
		args["date_from"] = *f.DateFrom
	}
	if f.DateTo != nil {
		conds = append(conds, "s.service_date <= @date_to")
		args["date_to"] = *f.DateTo
	}
	if len(conds) == 0 {
		return ""
	}
	return `
		WHERE ` + strings.Join(conds, " AND ")
}

// List runs the page and count queries of q.
func (r *pgServiceRepo) List(ctx context.Context, q domain.ListQuery) ([]Aggregate, int64, error) {
	plan := PlanList(q)

	var total int64
	if err := r.db.QueryRow(ctx, plan.CountSQL, plan.Args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.ServiceRepo.List: count: %w", err)
	}

	rows, err := r.db.Query(ctx, plan.PageSQL, plan.Args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ServiceRepo.List: %w", err)
	}
	defer rows.Close()

	items := []Aggregate{}
	for rows.Next() {
		a, err := scanAggregate(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.ServiceRepo.List: scan: %w", err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.ServiceRepo.List: rows: %w", err)
	}
	return items, total, nil
}

// StatsRows returns the aggregation projection of the matching rows.
func (r *pgServiceRepo) StatsRows(ctx context.Context, f domain.ListFilter, scope domain.Scope) ([]domain.StatsRow, error) {
	args := pgx.NamedArgs{}
	q := `SELECT s.status, s.price, s.kilometers FROM services s` + whereClause(f, scope, args)

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.ServiceRepo.StatsRows: %w", err)
	}
	defer rows.Close()

	out := []domain.StatsRow{}
	for rows.Next() {
		var (
			row    domain.StatsRow
			status string
		)
		if err := rows.Scan(&status, &row.Price, &row.Kilometers); err != nil {
			return nil, fmt.Errorf("repo.ServiceRepo.StatsRows: scan: %w", err)
		}
		row.Status = domain.Status(status)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ServiceRepo.StatsRows: rows: %w", err)
	}
	return out, nil
}
