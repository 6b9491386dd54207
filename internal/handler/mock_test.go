package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/servicelog/internal/auth"
	"github.com/pkordes/servicelog/internal/domain"
	"github.com/pkordes/servicelog/internal/handler"
	"github.com/pkordes/servicelog/internal/middleware"
)

// ---- mocks -----------------------------------------------------------------

// mockAggregateServicer is a test double for handler.AggregateServicer.
// Set only the method fields your test needs.
type mockAggregateServicer struct {
	create func(ctx context.Context, actor domain.Actor, t domain.ServiceType, ps domain.PatchSet) (domain.ClientService, error)
	read   func(ctx context.Context, actor domain.Actor, id uuid.UUID) (domain.ClientService, error)
	update func(ctx context.Context, actor domain.Actor, id uuid.UUID, ps domain.PatchSet) (domain.ClientService, error)
	delete func(ctx context.Context, actor domain.Actor, id uuid.UUID) error
}

func (m *mockAggregateServicer) Create(ctx context.Context, a domain.Actor, t domain.ServiceType, ps domain.PatchSet) (domain.ClientService, error) {
	return m.create(ctx, a, t, ps)
}
func (m *mockAggregateServicer) Read(ctx context.Context, a domain.Actor, id uuid.UUID) (domain.ClientService, error) {
	return m.read(ctx, a, id)
}
func (m *mockAggregateServicer) Update(ctx context.Context, a domain.Actor, id uuid.UUID, ps domain.PatchSet) (domain.ClientService, error) {
	return m.update(ctx, a, id, ps)
}
func (m *mockAggregateServicer) Delete(ctx context.Context, a domain.Actor, id uuid.UUID) error {
	return m.delete(ctx, a, id)
}

// compile-time check: mockAggregateServicer must satisfy handler.AggregateServicer.
var _ handler.AggregateServicer = (*mockAggregateServicer)(nil)

// mockQueryServicer is a test double for handler.QueryServicer.
type mockQueryServicer struct {
	list   func(ctx context.Context, actor domain.Actor, f domain.ListFilter, p domain.PaginationParams, s domain.SortParams) (domain.Page[domain.ClientService], error)
	stats  func(ctx context.Context, actor domain.Actor, f domain.ListFilter) (domain.Stats, error)
	export func(ctx context.Context, actor domain.Actor, f domain.ListFilter) ([]domain.ExportRow, error)
}

func (m *mockQueryServicer) List(ctx context.Context, a domain.Actor, f domain.ListFilter, p domain.PaginationParams, s domain.SortParams) (domain.Page[domain.ClientService], error) {
	return m.list(ctx, a, f, p, s)
}
func (m *mockQueryServicer) Stats(ctx context.Context, a domain.Actor, f domain.ListFilter) (domain.Stats, error) {
	return m.stats(ctx, a, f)
}
func (m *mockQueryServicer) Export(ctx context.Context, a domain.Actor, f domain.ListFilter) ([]domain.ExportRow, error) {
	return m.export(ctx, a, f)
}

var _ handler.QueryServicer = (*mockQueryServicer)(nil)

// ---- helpers ---------------------------------------------------------------

const testSecret = "handler-test-secret"

var (
	u1    = domain.Actor{ID: "u1", Role: domain.RoleUser}
	admin = domain.Actor{ID: "root", Role: domain.RoleAdmin}
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newHTTPHandler wires a Server with the given mocks into a chi router behind
// the real JWT middleware. This mirrors how main.go wires it in production.
func newHTTPHandler(aggs handler.AggregateServicer, queries handler.QueryServicer, mws ...func(http.Handler) http.Handler) http.Handler {
	log := discardLogger()
	srv := handler.NewServer(aggs, queries, log)
	r := chi.NewRouter()
	r.Use(mws...)
	srv.Register(r, middleware.NewAuthHandler(auth.NewJWTGate(testSecret), log))
	return r
}

// newRequest builds a request authenticated as actor. A nil body sends none.
func newRequest(t *testing.T, method, target string, body any, actor domain.Actor) *http.Request {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewBuffer(raw)
	}
	req := httptest.NewRequest(method, target, rdr)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token, err := auth.NewJWTGate(testSecret).Issue(actor, time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// envelope is the decoded shape of any API response.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	env := decodeEnvelope(t, rec)
	require.True(t, env.Success)
	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data
}

func ptr[T any](v T) *T { return &v }

var may1 = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func secondaryFixture() domain.ClientService {
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	return domain.NewSecondaryService(domain.Service{
		ID:          uuid.New(),
		OwnerID:     "u1",
		Status:      domain.StatusDraft,
		Kilometers:  10,
		Price:       50,
		ServiceDate: &may1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, domain.SecondaryDetail{
		PatientName: "Mario Rossi",
		PickupTime:  "08:15",
		Equipment:   []string{"stretcher"},
		ServiceDate: &may1,
		Kilometers:  10,
		Price:       50,
	})
}

func sportFixture() domain.ClientService {
	now := time.Date(2024, 6, 2, 14, 0, 0, 0, time.UTC)
	return domain.NewSportService(domain.Service{
		ID:         uuid.New(),
		OwnerID:    "u1",
		Status:     domain.StatusConfirmed,
		Kilometers: 22.5,
		Price:      80,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, domain.SportDetail{
		EventName:  "Derby",
		Kilometers: 22.5,
		Price:      80,
	})
}
