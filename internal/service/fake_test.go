package service_test

import (
	"context"
	"encoding/json"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/servicelog/internal/domain"
	"github.com/pkordes/servicelog/internal/fieldmap"
	"github.com/pkordes/servicelog/internal/repo"
)

// ---- fake store ------------------------------------------------------------

// fakeStore is an in-memory repo.ServiceRepo. Each write advances a fake clock
// by one second so updated_at changes are observable. The fail* fields inject
// errors into single operations.
type fakeStore struct {
	mu       sync.Mutex
	parents  map[uuid.UUID]domain.Service
	children map[uuid.UUID]fieldmap.ColumnPatch
	tables   map[uuid.UUID]fieldmap.Table
	clock    time.Time
	writes   []string

	failInsertParent error
	failInsertChild  error
	failDeleteParent error
	failUpdateParent error
	failUpdateChild  error
	failList         error
}

// compile-time check: fakeStore must satisfy repo.ServiceRepo.
var _ repo.ServiceRepo = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		parents:  map[uuid.UUID]domain.Service{},
		children: map[uuid.UUID]fieldmap.ColumnPatch{},
		tables:   map[uuid.UUID]fieldmap.Table{},
		clock:    time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeStore) InsertParent(_ context.Context, s domain.Service) (domain.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, "InsertParent")
	if f.failInsertParent != nil {
		return domain.Service{}, f.failInsertParent
	}
	s.ID = uuid.New()
	s.CreatedAt = f.tick()
	s.UpdatedAt = s.CreatedAt
	f.parents[s.ID] = s
	return s, nil
}

func (f *fakeStore) InsertChild(_ context.Context, table fieldmap.Table, id uuid.UUID, cols fieldmap.ColumnPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, "InsertChild")
	if f.failInsertChild != nil {
		return f.failInsertChild
	}
	if _, ok := f.parents[id]; !ok {
		return domain.ErrNotFound
	}
	f.children[id] = maps.Clone(cols)
	f.tables[id] = table
	return nil
}

func (f *fakeStore) DeleteParent(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, "DeleteParent")
	if f.failDeleteParent != nil {
		return f.failDeleteParent
	}
	if _, ok := f.parents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.parents, id)
	delete(f.children, id)
	delete(f.tables, id)
	return nil
}

func (f *fakeStore) UpdateParent(_ context.Context, id uuid.UUID, p domain.ParentPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, "UpdateParent")
	if f.failUpdateParent != nil {
		return f.failUpdateParent
	}
	s, ok := f.parents[id]
	if !ok {
		return domain.ErrNotFound
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.Kilometers != nil {
		s.Kilometers = *p.Kilometers
	}
	if p.Price != nil {
		s.Price = *p.Price
	}
	if p.ServiceDate != nil {
		d := *p.ServiceDate
		s.ServiceDate = &d
	}
	s.UpdatedAt = f.tick()
	f.parents[id] = s
	return nil
}

func (f *fakeStore) UpdateChild(_ context.Context, _ fieldmap.Table, id uuid.UUID, cols fieldmap.ColumnPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, "UpdateChild")
	if f.failUpdateChild != nil {
		return f.failUpdateChild
	}
	child, ok := f.children[id]
	if !ok {
		return domain.ErrNotFound
	}
	maps.Copy(child, cols)
	s := f.parents[id]
	s.UpdatedAt = f.tick()
	f.parents[id] = s
	return nil
}

func (f *fakeStore) Get(_ context.Context, id uuid.UUID) (repo.Aggregate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.parents[id]
	if !ok {
		return repo.Aggregate{}, domain.ErrNotFound
	}
	return f.aggregate(s)
}

func (f *fakeStore) GetOwnership(_ context.Context, id uuid.UUID) (domain.Ownership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.parents[id]
	if !ok {
		return domain.Ownership{}, domain.ErrNotFound
	}
	return domain.Ownership{ID: s.ID, Type: s.Type, OwnerID: s.OwnerID}, nil
}

// List supports every filter and scope but only orders by created_at.
func (f *fakeStore) List(_ context.Context, q domain.ListQuery) ([]repo.Aggregate, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList != nil {
		return nil, 0, f.failList
	}
	matched := f.match(q.Filter, q.Scope)
	slices.SortFunc(matched, func(a, b domain.Service) int {
		c := a.CreatedAt.Compare(b.CreatedAt)
		if q.Sort.Direction == domain.SortDesc {
			c = -c
		}
		return c
	})

	total := int64(len(matched))
	start := min(q.Pagination.Offset(), len(matched))
	end := min(start+q.Pagination.PageSize, len(matched))

	out := []repo.Aggregate{}
	for _, s := range matched[start:end] {
		a, err := f.aggregate(s)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, nil
}

func (f *fakeStore) StatsRows(_ context.Context, filter domain.ListFilter, scope domain.Scope) ([]domain.StatsRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.StatsRow{}
	for _, s := range f.match(filter, scope) {
		out = append(out, domain.StatsRow{Status: s.Status, Price: s.Price, Kilometers: s.Kilometers})
	}
	return out, nil
}

func (f *fakeStore) match(filter domain.ListFilter, scope domain.Scope) []domain.Service {
	var out []domain.Service
	for _, s := range f.parents {
		if !scope.All && s.OwnerID != scope.OwnerID {
			continue
		}
		if filter.Type != nil && s.Type != *filter.Type {
			continue
		}
		if filter.Status != nil && s.Status != *filter.Status {
			continue
		}
		if filter.DateFrom != nil && (s.ServiceDate == nil || s.ServiceDate.Before(*filter.DateFrom)) {
			continue
		}
		if filter.DateTo != nil && (s.ServiceDate == nil || s.ServiceDate.After(*filter.DateTo)) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// aggregate round-trips the stored child through JSON the way the Postgres
// store returns to_jsonb rows.
func (f *fakeStore) aggregate(s domain.Service) (repo.Aggregate, error) {
	cols, ok := f.children[s.ID]
	if !ok {
		return repo.Aggregate{Parent: s}, nil
	}
	raw, err := json.Marshal(cols)
	if err != nil {
		return repo.Aggregate{}, err
	}
	child, err := fieldmap.DecodeChildRow(s.Type, raw)
	if err != nil {
		return repo.Aggregate{}, err
	}
	return repo.Aggregate{Parent: s, Child: child}, nil
}

// insertOrphan stores a parent with no child row.
func (f *fakeStore) insertOrphan(s domain.Service) domain.Service {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.ID = uuid.New()
	s.CreatedAt = f.tick()
	s.UpdatedAt = s.CreatedAt
	f.parents[s.ID] = s
	return s
}

func (f *fakeStore) resetWrites() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = nil
}

// ---- fake transactor -------------------------------------------------------

// fakeTransactor snapshots the store and restores it when fn fails.
type fakeTransactor struct {
	store *fakeStore
}

var _ repo.Transactor = (*fakeTransactor)(nil)

func (t *fakeTransactor) WithinTx(_ context.Context, fn func(repo.ServiceRepo) error) error {
	t.store.mu.Lock()
	parents := maps.Clone(t.store.parents)
	children := maps.Clone(t.store.children)
	tables := maps.Clone(t.store.tables)
	t.store.mu.Unlock()

	if err := fn(t.store); err != nil {
		t.store.mu.Lock()
		t.store.parents, t.store.children, t.store.tables = parents, children, tables
		t.store.mu.Unlock()
		return err
	}
	return nil
}

// ---- fake recorder ---------------------------------------------------------

type fakeRecorder struct {
	outcomes []string
}

func (r *fakeRecorder) RecordCompensation(outcome string) {
	r.outcomes = append(r.outcomes, outcome)
}
