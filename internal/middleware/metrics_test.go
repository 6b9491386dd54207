package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/servicelog/internal/middleware"
)

type observation struct {
	method, route string
	status        int
}

type recordingObserver struct {
	seen []observation
}

func (o *recordingObserver) ObserveRequest(method, route string, status int, _ time.Duration) {
	o.seen = append(o.seen, observation{method, route, status})
}

func TestMetricsHandler_LabelsByRoutePattern(t *testing.T) {
	obs := &recordingObserver{}
	r := chi.NewRouter()
	r.Use(middleware.NewMetricsHandler(obs))
	r.Delete("/services/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for _, id := range []string{"a", "b"} {
		req := httptest.NewRequest(http.MethodDelete, "/services/"+id, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	require.Len(t, obs.seen, 2)
	for _, o := range obs.seen {
		assert.Equal(t, observation{http.MethodDelete, "/services/{id}", http.StatusNoContent}, o)
	}
}

func TestMetricsHandler_DefaultsStatusTo200(t *testing.T) {
	obs := &recordingObserver{}
	h := middleware.NewMetricsHandler(obs)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	require.Len(t, obs.seen, 1)
	assert.Equal(t, http.StatusOK, obs.seen[0].status)
	assert.Equal(t, "unmatched", obs.seen[0].route)
}
