package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pkordes/servicelog/internal/domain"
	"github.com/pkordes/servicelog/internal/fieldmap"
)

// childTable returns the quoted identifier for t, rejecting anything that is
// not one of the two child tables. Column names come from fieldmap's fixed
// lists, so only the table needs checking before it is spliced into SQL.
func childTable(t fieldmap.Table) (string, error) {
	switch t {
	case fieldmap.TableSecondary, fieldmap.TableSport:
		return pgx.Identifier{string(t)}.Sanitize(), nil
	}
	return "", fmt.Errorf("%w: unknown child table %q", domain.ErrValidation, t)
}

// InsertChild inserts the child row of serviceID.
func (r *pgServiceRepo) InsertChild(ctx context.Context, table fieldmap.Table, serviceID uuid.UUID, cols fieldmap.ColumnPatch) error {
	tbl, err := childTable(table)
	if err != nil {
		return fmt.Errorf("repo.ServiceRepo.InsertChild: %w", err)
	}

	names := []string{"service_id"}
	params := []string{"@service_id"}
	args := pgx.NamedArgs{"service_id": serviceID}
	for _, c := range cols.Columns() {
		names = append(names, pgx.Identifier{c}.Sanitize())
		params = append(params, "@"+c)
		args[c] = cols[c]
	}

	q := `INSERT INTO ` + tbl + ` (` + strings.Join(names, ", ") + `) VALUES (` + strings.Join(params, ", ") + `)`

	if _, err := r.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("repo.ServiceRepo.InsertChild: %w", err)
	}
	return nil
}

// UpdateChild writes cols to the child row and touches the parent's
// updated_at. The CTE keeps both writes in one statement.
func (r *pgServiceRepo) UpdateChild(ctx context.Context, table fieldmap.Table, id uuid.UUID, cols fieldmap.ColumnPatch) error {
	tbl, err := childTable(table)
	if err != nil {
		return fmt.Errorf("repo.ServiceRepo.UpdateChild: %w", err)
	}
	if len(cols) == 0 {
		return fmt.Errorf("repo.ServiceRepo.UpdateChild: %w: empty patch", domain.ErrValidation)
	}

	args := pgx.NamedArgs{"service_id": id}
	sets := make([]string, 0, len(cols))
	for _, c := range cols.Columns() {
		sets = append(sets, pgx.Identifier{c}.Sanitize()+" = @"+c)
		args[c] = cols[c]
	}

	q := `
		WITH child AS (
			UPDATE ` + tbl + ` SET ` + strings.Join(sets, ", ") + `
			WHERE service_id = @service_id
			RETURNING service_id
		)
		UPDATE services SET updated_at = now()
		WHERE id IN (SELECT service_id FROM child)`

	tag, err := r.db.Exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("repo.ServiceRepo.UpdateChild: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ServiceRepo.UpdateChild: %w", domain.ErrNotFound)
	}
	return nil
}
