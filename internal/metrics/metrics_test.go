package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerExposesGauges(t *testing.T) {
	Bookings.WithLabelValues("completed").Set(7)
	ConsumedEvents.WithLabelValues("booking.confirmed", "ok").Inc()

	srv := httptest.NewServer(NewServer("").Handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `milan_bookings{status="completed"} 7`)
	assert.Contains(t, string(body), `milan_consumed_events_total{result="ok",subject="booking.confirmed"}`)
}

func TestServerUnknownPath(t *testing.T) {
	srv := httptest.NewServer(NewServer("").Handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
