// Package repo contains all database access logic for the service log API.
// Every method issues a single SQL statement; multi-step protocols (the
// create saga, authorization) live in the service layer.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/servicelog/internal/domain"
	"github.com/pkordes/servicelog/internal/fieldmap"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, and lets
// the Transactor run a whole create inside one transaction.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Aggregate is a parent row together with its decoded child row.
// Child is nil when the child row is missing.
type Aggregate struct {
	Parent domain.Service
	Child  fieldmap.ChildRow
}

// ServiceRepo defines the persistence operations for services.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a fake.
type ServiceRepo interface {
	// InsertParent inserts the envelope row and returns it with the
	// DB-generated id, created_at and updated_at populated.
	InsertParent(ctx context.Context, s domain.Service) (domain.Service, error)

	// InsertChild inserts the child row of serviceID into table. Columns absent
	// from cols take the table defaults.
	InsertChild(ctx context.Context, table fieldmap.Table, serviceID uuid.UUID, cols fieldmap.ColumnPatch) error

	// DeleteParent removes a service by ID; the child goes with it through the
	// foreign-key cascade. Returns domain.ErrNotFound if it does not exist.
	DeleteParent(ctx context.Context, id uuid.UUID) error

	// UpdateParent writes the non-nil envelope fields of p and bumps updated_at.
	// Returns domain.ErrNotFound if the service does not exist.
	UpdateParent(ctx context.Context, id uuid.UUID, p domain.ParentPatch) error

	// UpdateChild writes cols to the child row of id and bumps the parent's
	// updated_at in the same statement.
	// Returns domain.ErrNotFound if the child row does not exist.
	UpdateChild(ctx context.Context, table fieldmap.Table, id uuid.UUID, cols fieldmap.ColumnPatch) error

	// Get retrieves a parent row joined with its child.
	// Returns domain.ErrNotFound if no service with that ID exists.
	Get(ctx context.Context, id uuid.UUID) (Aggregate, error)

	// GetOwnership retrieves only the id, type and owner of a service.
	// Returns domain.ErrNotFound if no service with that ID exists.
	GetOwnership(ctx context.Context, id uuid.UUID) (domain.Ownership, error)

	// List returns one page of aggregates matching q and the total number of
	// matching rows.
	List(ctx context.Context, q domain.ListQuery) ([]Aggregate, int64, error)

	// StatsRows returns the status/price/kilometers projection of every row
	// matching the filter within scope.
	StatsRows(ctx context.Context, f domain.ListFilter, scope domain.Scope) ([]domain.StatsRow, error)
}

// pgServiceRepo is the Postgres implementation of ServiceRepo.
type pgServiceRepo struct {
	db db
}

// NewServiceRepo constructs a ServiceRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewServiceRepo(db db) ServiceRepo {
	return &pgServiceRepo{db: db}
}

// parentColumns is the envelope projection shared by every read.
const parentColumns = `s.id, s.type, s.owner_id, s.status, s.kilometers, s.price, s.service_date, s.created_at, s.updated_at`

// aggregateSelect joins the parent with both child tables and returns the
// child matching the parent's type as one JSON column.
const aggregateSelect = `
		SELECT ` + parentColumns + `,
		       CASE
		           WHEN s.type = 'secondary' AND ss.service_id IS NOT NULL THEN to_jsonb(ss)
		           WHEN s.type = 'sport' AND es.service_id IS NOT NULL THEN to_jsonb(es)
		       END AS child
		FROM services s
		LEFT JOIN secondary_services ss ON ss.service_id = s.id
		LEFT JOIN event_services es ON es.service_id = s.id`

// InsertParent inserts a new envelope row and returns the persisted record.
func (r *pgServiceRepo) InsertParent(ctx context.Context, s domain.Service) (domain.Service, error) {
	const q = `
		INSERT INTO services AS s (type, owner_id, status, kilometers, price, service_date)
		VALUES (@type, @owner_id, @status, @kilometers, @price, @service_date)
		RETURNING ` + parentColumns

	args := pgx.NamedArgs{
		"type":         string(s.Type),
		"owner_id":     s.OwnerID,
		"status":       string(s.Status),
		"kilometers":   s.Kilometers,
		"price":        s.Price,
		"service_date": s.ServiceDate, // nil becomes NULL
	}

	result, err := scanService(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Service{}, fmt.Errorf("repo.ServiceRepo.InsertParent: %w", err)
	}
	return result, nil
}

// DeleteParent removes a service by primary key.
func (r *pgServiceRepo) DeleteParent(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM services WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.ServiceRepo.DeleteParent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ServiceRepo.DeleteParent: %w", domain.ErrNotFound)
	}
	return nil
}

// UpdateParent writes the present envelope fields.
func (r *pgServiceRepo) UpdateParent(ctx context.Context, id uuid.UUID, p domain.ParentPatch) error {
	args := pgx.NamedArgs{"id": id}
	var sets []string
	if p.Status != nil {
		sets = append(sets, "status = @status")
		args["status"] = string(*p.Status)
	}
	if p.Kilometers != nil {
		sets = append(sets, "kilometers = @kilometers")
		args["kilometers"] = *p.Kilometers
	}
	if p.Price != nil {
		sets = append(sets, "price = @price")
		args["price"] = *p.Price
	}
	if p.ServiceDate != nil {
		sets = append(sets, "service_date = @service_date")
		args["service_date"] = *p.ServiceDate
	}
	sets = append(sets, "updated_at = now()")

	q := `UPDATE services SET ` + strings.Join(sets, ", ") + ` WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("repo.ServiceRepo.UpdateParent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ServiceRepo.UpdateParent: %w", domain.ErrNotFound)
	}
	return nil
}

// Get retrieves a service and its child by primary key.
func (r *pgServiceRepo) Get(ctx context.Context, id uuid.UUID) (Aggregate, error) {
	const q = aggregateSelect + `
		WHERE s.id = @id`

	result, err := scanAggregate(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return Aggregate{}, fmt.Errorf("repo.ServiceRepo.Get: %w", err)
	}
	return result, nil
}

// GetOwnership retrieves the ownership projection of a service.
func (r *pgServiceRepo) GetOwnership(ctx context.Context, id uuid.UUID) (domain.Ownership, error) {
	const q = `SELECT id, type, owner_id FROM services WHERE id = @id`

	var (
		o   domain.Ownership
		typ string
	)
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&o.ID, &typ, &o.OwnerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = domain.ErrNotFound
		}
		return domain.Ownership{}, fmt.Errorf("repo.ServiceRepo.GetOwnership: %w", err)
	}
	o.Type = domain.ServiceType(typ)
	return o, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan helpers
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanService maps a parentColumns row into a domain.Service.
func scanService(s scanner) (domain.Service, error) {
	return scanParent(s)
}

// scanAggregate maps an aggregateSelect row into an Aggregate.
func scanAggregate(s scanner) (Aggregate, error) {
	var child []byte
	parent, err := scanParent(s, &child)
	if err != nil {
		return Aggregate{}, err
	}
	row, err := fieldmap.DecodeChildRow(parent.Type, child)
	if err != nil {
		return Aggregate{}, fmt.Errorf("decode child of %s: %w", parent.ID, err)
	}
	return Aggregate{Parent: parent, Child: row}, nil
}

// scanParent scans the envelope columns followed by any extra destinations.
// It handles the UUID, enum and nullable service_date conversions.
func scanParent(s scanner, extra ...any) (domain.Service, error) {
	var (
		svc    domain.Service
		id     pgtype.UUID
		typ    string
		status string
		date   pgtype.Date
	)

	dest := append([]any{&id, &typ, &svc.OwnerID, &status, &svc.Kilometers, &svc.Price, &date, &svc.CreatedAt, &svc.UpdatedAt}, extra...)
	if err := s.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Service{}, domain.ErrNotFound
		}
		return domain.Service{}, err
	}

	svc.ID = uuid.UUID(id.Bytes)
	svc.Type = domain.ServiceType(typ)
	svc.Status = domain.Status(status)
	if date.Valid {
		d := date.Time
		svc.ServiceDate = &d
	}
	return svc, nil
}
