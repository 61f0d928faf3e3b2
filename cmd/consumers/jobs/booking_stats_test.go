package jobs

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"milan/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticCounter struct {
	counts map[string]int64
	err    error
}

func (s staticCounter) CountByStatus(context.Context) (map[string]int64, error) {
	return s.counts, s.err
}

func TestCollectSetsGauge(t *testing.T) {
	job := NewBookingStatsJob(staticCounter{counts: map[string]int64{"completed": 42}}, 0)

	counts := job.Collect(context.Background())
	assert.Equal(t, int64(42), counts["completed"])
	assert.Equal(t, 42.0, testutil.ToFloat64(metrics.Bookings.WithLabelValues("completed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.Bookings.WithLabelValues("pending")))
}

func TestCollectError(t *testing.T) {
	job := NewBookingStatsJob(staticCounter{err: errors.New("db down")}, 0)
	assert.Nil(t, job.Collect(context.Background()))
}

func TestCollectedGaugeIsScraped(t *testing.T) {
	job := NewBookingStatsJob(staticCounter{counts: map[string]int64{"pending": 3, "completed": 11}}, 0)
	job.Collect(context.Background())

	srv := httptest.NewServer(metrics.NewServer("").Handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `milan_bookings{status="pending"} 3`)
	assert.Contains(t, string(body), `milan_bookings{status="completed"} 11`)
}
