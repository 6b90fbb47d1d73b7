package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/csfa-report/internal/api/handler"
	"github.com/vfg2006/csfa-report/internal/api/handler/mocks"
	"github.com/vfg2006/csfa-report/internal/config"
	"github.com/vfg2006/csfa-report/internal/domain"
	"github.com/vfg2006/csfa-report/internal/usecases/authenticating"
	reportingMocks "github.com/vfg2006/csfa-report/internal/usecases/reporting/mocks"
	"go.uber.org/mock/gomock"
)

func testServer(t *testing.T) (*Server, authenticating.Authenticator, *mocks.MockReportScheduler) {
	t.Helper()
	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = "0"
	cfg.Auth.Secret = "segredo-de-teste"

	authenticator := authenticating.NewService(cfg.Auth)
	scheduler := mocks.NewMockReportScheduler(ctrl)

	srv, err := New(cfg, authenticator, handler.ReportServices{
		Scheduler: scheduler,
		Reporter:  reportingMocks.NewMockReporter(ctrl),
		Location:  time.UTC,
	})
	require.NoError(t, err)
	return srv, authenticator, scheduler
}

func TestNew_RequiresSecret(t *testing.T) {
	_, err := New(&config.Config{}, nil, handler.ReportServices{})
	assert.Error(t, err)
}

func TestServer_Routes(t *testing.T) {
	srv, authenticator, scheduler := testServer(t)
	token, err := authenticator.IssueToken("operador", time.Hour)
	require.NoError(t, err)

	t.Run("Healthcheck público", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Rota protegida sem token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/reports/run", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Status com token", func(t *testing.T) {
		scheduler.EXPECT().GetStatus().Return(map[string]any{"running": false})

		req := httptest.NewRequest(http.MethodGet, "/v1/reports/status", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))
	})

	t.Run("Disparo em andamento", func(t *testing.T) {
		scheduler.EXPECT().TriggerManualSync(gomock.Any(), false).Return(domain.ErrRunInProgress)

		req := httptest.NewRequest(http.MethodPost, "/v1/reports/run?date=2024-03-05", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Rota inexistente", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/unknown", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Método não permitido", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/v1/reports/status", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
