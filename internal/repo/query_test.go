package repo_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pkordes/servicelog/internal/domain"
	"github.com/pkordes/servicelog/internal/repo"
)

func listQuery(scope domain.Scope) domain.ListQuery {
	return domain.ListQuery{
		Scope:      scope,
		Pagination: domain.NewPaginationParams(nil, nil),
		Sort:       domain.NewSortParams(nil, nil),
	}
}

func TestPlanList_userScopeRestrictsOwner(t *testing.T) {
	plan := repo.PlanList(listQuery(domain.Scope{OwnerID: "u1"}))

	assert.Contains(t, plan.PageSQL, "s.owner_id = @owner_id")
	assert.Contains(t, plan.CountSQL, "s.owner_id = @owner_id")
	assert.Equal(t, "u1", plan.Args["owner_id"])
}

// TestPlanList_emptyOwnerMatchesNothing guards against an actor without an id
// being treated as unscoped.
func TestPlanList_emptyOwnerMatchesNothing(t *testing.T) {
	plan := repo.PlanList(listQuery(domain.Scope{}))

	assert.Contains(t, plan.PageSQL, "s.owner_id = @owner_id")
	assert.Equal(t, "", plan.Args["owner_id"])
}

func TestPlanList_elevatedScopeHasNoWhere(t *testing.T) {
	plan := repo.PlanList(listQuery(domain.Scope{All: true}))

	assert.NotContains(t, plan.PageSQL, "WHERE")
	assert.NotContains(t, plan.CountSQL, "WHERE")
	assert.NotContains(t, plan.Args, "owner_id")
}

func TestPlanList_filtersAreBound(t *testing.T) {
	typ := domain.TypeSport
	status := domain.StatusCompleted
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)

	q := listQuery(domain.Scope{All: true})
	q.Filter = domain.ListFilter{Type: &typ, Status: &status, DateFrom: &from, DateTo: &to}

	plan := repo.PlanList(q)

	for _, cond := range []string{
		"s.type = @type",
		"s.status = @status",
		"s.service_date >= @date_from",
		"s.service_date <= @date_to",
	} {
		assert.Contains(t, plan.PageSQL, cond)
		assert.Contains(t, plan.CountSQL, cond)
	}
	assert.Equal(t, "sport", plan.Args["type"])
	assert.Equal(t, "completed", plan.Args["status"])
	assert.Equal(t, from, plan.Args["date_from"])
	assert.Equal(t, to, plan.Args["date_to"])
}

func TestPlanList_defaultSortWithTieBreak(t *testing.T) {
	plan := repo.PlanList(listQuery(domain.Scope{All: true}))

	assert.Contains(t, plan.PageSQL, "ORDER BY s.created_at DESC NULLS LAST, s.id DESC")
}

func TestPlanList_sortAndPaging(t *testing.T) {
	by, order := "price", "asc"
	page, size := 3, 10

	q := listQuery(domain.Scope{All: true})
	q.Sort = domain.NewSortParams(&by, &order)
	q.Pagination = domain.NewPaginationParams(&page, &size)

	plan := repo.PlanList(q)

	assert.Contains(t, plan.PageSQL, "ORDER BY s.price ASC NULLS LAST, s.id ASC")
	assert.Contains(t, plan.PageSQL, "LIMIT @limit OFFSET @offset")
	assert.Equal(t, 10, plan.Args["limit"])
	assert.Equal(t, 20, plan.Args["offset"])
}

// TestPlanList_unknownSortColumnNeverReachesSQL feeds a hostile sort column
// straight into the query, bypassing NewSortParams.
func TestPlanList_unknownSortColumnNeverReachesSQL(t *testing.T) {
	q := listQuery(domain.Scope{All: true})
	q.Sort = domain.SortParams{Column: "id; DROP TABLE services", Direction: domain.SortAsc}

	plan := repo.PlanList(q)

	assert.NotContains(t, plan.PageSQL, "DROP")
	assert.Contains(t, plan.PageSQL, "ORDER BY s.created_at ASC")
}
