package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"milan/internal/config"
	"milan/internal/database"
	"milan/internal/messaging"
	"milan/internal/otp"
	"milan/internal/service"
	"milan/internal/status"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := &Server{
		router: gin.New(),
		config: &config.Config{TeamsCacheMaxAge: 60},
		db:     database.Wrap(db),
		nats:   &messaging.NATSClient{},
		services: service.NewServices(service.Deps{
			OTPs:     otp.NewMemoryStore(otp.DefaultTTL),
			Statuses: status.NewMemoryStore(status.DefaultTTL),
		}),
	}
	s.setupRoutes()
	return s, mock
}

func TestHealthCheck(t *testing.T) {
	s, mock := newTestServer(t)
	mock.ExpectPing()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	s.GetRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"service":"milan-api"`)
	assert.Contains(t, w.Body.String(), `"enabled":false`)
}

func TestHealthCheckDatabaseDown(t *testing.T) {
	s, mock := newTestServer(t)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	s.GetRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"unhealthy"`)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	s.GetRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestTeamsCacheHeaderFromConfig(t *testing.T) {
	s, _ := newTestServer(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/teams", nil)
	s.GetRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public, max-age=60, stale-while-revalidate=86400", w.Header().Get("Cache-Control"))
}
