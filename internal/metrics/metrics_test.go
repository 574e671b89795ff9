package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleCounters(t *testing.T) {
	m := New()

	m.ScheduleGenerated("knockout", 7, 20*time.Millisecond)
	m.ScheduleGenerated("knockout", 3, 5*time.Millisecond)
	m.ScheduleGenerated("round_robin", 6, time.Millisecond)
	m.ScheduleFailed("knockout", "conflict")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.schedulesGenerated.WithLabelValues("knockout")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.matchesCreated.WithLabelValues("knockout")))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.matchesCreated.WithLabelValues("round_robin")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.scheduleFailures.WithLabelValues("knockout", "conflict")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.StandingsComputed(8, 3*time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "tournament_engine_standings_compute_seconds_count 1")
	assert.Contains(t, body, "tournament_engine_standings_rows_sum 8")
	assert.Contains(t, body, "go_goroutines")
}
