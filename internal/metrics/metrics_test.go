package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_ObservesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/course/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/course/42", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	count := testutil.CollectAndCount(m.RequestDuration, "courses_http_request_duration_seconds")
	assert.Equal(t, 1, count)

	families, err := reg.Gather()
	require.NoError(t, err)
	var labels map[string]string
	for _, f := range families {
		if f.GetName() != "courses_http_request_duration_seconds" {
			continue
		}
		labels = map[string]string{}
		for _, l := range f.GetMetric()[0].GetLabel() {
			labels[l.GetName()] = l.GetValue()
		}
	}
	assert.Equal(t, "/course/{id}", labels["route"])
	assert.Equal(t, "404", labels["status"])
}

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.Enrollments.WithLabelValues("enrolled").Inc()
	m.Enrollments.WithLabelValues("enrolled").Inc()
	m.Enrollments.WithLabelValues("rejected").Inc()

	assert.InDelta(t, 2, testutil.ToFloat64(m.Enrollments.WithLabelValues("enrolled")), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Enrollments.WithLabelValues("rejected")), 0.001)
}
