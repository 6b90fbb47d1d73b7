package csfaclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/csfa-report/internal/config"
	"github.com/vfg2006/csfa-report/internal/domain"
)

func noSleep(_ context.Context, _ time.Duration) error { return nil }

func newTestClient(t *testing.T, srv *httptest.Server, maxRetries int) Client {
	t.Helper()

	cfg := config.CSFA{
		CountryID: "149",
		CallsPath: "/api/v1/get-v2-calls",
		PageSize:  25,
	}
	tokens := config.TokenBundle{
		BaseURL:       srv.URL,
		AccessToken:   "access-token-123456",
		LaravelToken:  "laravel-token-123456",
		SessionToken:  "session-token-123456",
		XSRFToken:     "xsrf%3Dtoken-123456",
		SessionUserID: "57",
	}
	httpClient := srv.Client()
	httpClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	doer := &RetryingDoer{
		Next:           httpClient,
		MaxRetries:     maxRetries,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     10 * time.Millisecond,
		Sleep:          noSleep,
	}
	return NewClient(cfg, tokens, doer)
}

func TestRetryingDoer_RetryBound(t *testing.T) {
	const maxRetries = 3

	tests := []struct {
		name         string
		failures     int
		wantAttempts int32
		wantErr      error
	}{
		{name: "Sem falhas - uma tentativa", failures: 0, wantAttempts: 1},
		{name: "Uma falha transitória - duas tentativas", failures: 1, wantAttempts: 2},
		{name: "Falhas até o teto - N+1 tentativas", failures: maxRetries, wantAttempts: maxRetries + 1},
		{name: "Falhas acima do teto - erro transitório", failures: maxRetries + 1, wantAttempts: maxRetries + 1, wantErr: domain.ErrTransientFetch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := atomic.AddInt32(&attempts, 1)
				if int(n) <= tt.failures {
					w.WriteHeader(http.StatusServiceUnavailable)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"data":[{"id":1}],"current_page":1,"last_page":1}`))
			}))
			defer srv.Close()

			client := newTestClient(t, srv, maxRetries)
			resp, err := client.GetOrders(context.Background(), OrdersParams{Page: 1, PerPage: 25})

			assert.Equal(t, tt.wantAttempts, atomic.LoadInt32(&attempts))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))

				var fetchErr *domain.FetchError
				require.True(t, errors.As(err, &fetchErr))
				assert.Equal(t, maxRetries+1, fetchErr.Attempts)
				assert.Equal(t, http.StatusServiceUnavailable, fetchErr.StatusCode)
				return
			}

			require.NoError(t, err)
			assert.Len(t, resp.Data, 1)
		})
	}
}

func TestCSFAClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name         string
		handler      http.HandlerFunc
		wantErr      error
		wantAttempts int32
	}{
		{
			name: "401 - erro de autenticação sem nova tentativa",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			wantErr:      domain.ErrAuthentication,
			wantAttempts: 1,
		},
		{
			name: "419 - sessão expirada",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(419)
			},
			wantErr:      domain.ErrAuthentication,
			wantAttempts: 1,
		},
		{
			name: "Redirecionamento para login - erro de autenticação",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "/login", http.StatusFound)
			},
			wantErr:      domain.ErrAuthentication,
			wantAttempts: 1,
		},
		{
			name: "404 - resposta malformada sem nova tentativa",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			wantErr:      domain.ErrMalformedResponse,
			wantAttempts: 1,
		},
		{
			name: "Corpo que não é JSON - resposta malformada",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>erro</html>`))
			},
			wantErr:      domain.ErrMalformedResponse,
			wantAttempts: 1,
		},
		{
			name: "Campo data ausente - resposta malformada",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"message":"ok"}`))
			},
			wantErr:      domain.ErrMalformedResponse,
			wantAttempts: 1,
		},
		{
			name: "429 é repetido até esgotar as tentativas",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			wantErr:      domain.ErrTransientFetch,
			wantAttempts: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&attempts, 1)
				tt.handler(w, r)
			}))
			defer srv.Close()

			client := newTestClient(t, srv, 2)
			_, err := client.GetOrders(context.Background(), OrdersParams{Page: 1, PerPage: 25})

			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "erro inesperado: %v", err)
			assert.Equal(t, tt.wantAttempts, atomic.LoadInt32(&attempts))
		})
	}
}

func TestRetryingDoer_HonoursRetryAfter(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	var waits []time.Duration
	doer := &RetryingDoer{
		Next:           srv.Client(),
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		Sleep: func(_ context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		},
	}

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := doer.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Len(t, waits, 1)
	assert.GreaterOrEqual(t, waits[0], 2*time.Second)
}

func TestRetryingDoer_Backoff(t *testing.T) {
	doer := &RetryingDoer{
		InitialBackoff: time.Second,
		MaxBackoff:     5 * time.Second,
		Jitter:         func(d time.Duration) time.Duration { return d },
	}

	assert.Equal(t, time.Second, doer.backoff(1))
	assert.Equal(t, 2*time.Second, doer.backoff(2))
	assert.Equal(t, 4*time.Second, doer.backoff(3))
	assert.Equal(t, 5*time.Second, doer.backoff(4))
	assert.Equal(t, 5*time.Second, doer.backoff(10))
}

func TestRetryingDoer_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	doer := &RetryingDoer{
		Next:       srv.Client(),
		MaxRetries: 5,
		Sleep: func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	_, err = doer.Do(req)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCSFAClient_GetTimesheet(t *testing.T) {
	var captured *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(context.Background())
		_, _ = w.Write([]byte(`{"draw":1,"recordsTotal":1,"recordsFiltered":1,"data":[{"rep_name":"Ana","shop_name":"Loja A","timespent":"00:15:00"}]}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, 0)
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	resp, err := client.GetTimesheet(context.Background(), TimesheetParams{
		StartDate: day,
		EndDate:   day,
		Draw:      1,
		Length:    25,
	})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, 1, resp.RecordsFiltered)

	require.NotNil(t, captured)
	assert.Equal(t, "/timesheet-list", captured.URL.Path)
	assert.Equal(t, "2024-03-05 - 2024-03-05", captured.URL.Query().Get("daterange"))
	assert.Equal(t, "virtual", captured.URL.Query().Get("inventorytype"))
	assert.Equal(t, "xsrf=token-123456", captured.Header.Get("X-XSRF-TOKEN"))

	session, err := captured.Cookie("sat_session")
	require.NoError(t, err)
	assert.Equal(t, "session-token-123456", session.Value)

	userID, err := captured.Cookie("sat_user_id")
	require.NoError(t, err)
	assert.Equal(t, "57", userID.Value)
}

func TestCSFAClient_GetOrdersQuery(t *testing.T) {
	var captured *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(context.Background())
		_, _ = w.Write([]byte(`{"data":[],"current_page":2,"last_page":2}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, 0)
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	resp, err := client.GetOrders(context.Background(), OrdersParams{StartDate: day, EndDate: day, Page: 2, PerPage: 25})
	require.NoError(t, err)
	assert.False(t, resp.HasMore())

	require.NotNil(t, captured)
	query := captured.URL.Query()
	assert.Equal(t, "Tue Mar 05 2024", query.Get("start_date"))
	assert.Equal(t, "149", query.Get("country_id[]"))
	assert.Equal(t, "2", query.Get("page"))
	assert.Equal(t, "1", query.Get("orderWorkflowId"))
	assert.Equal(t, "Bearer access-token-123456", captured.Header.Get("Authorization"))
}

func TestCSFAClient_GetOrderDetails(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantLen int
		wantErr error
	}{
		{name: "Itens na raiz", body: `{"entries":[{"product_id":"Tinta A","sold_qty":"2","unit_cost":"100"}]}`, wantLen: 1},
		{name: "Itens dentro de data", body: `{"data":{"entries":[{"product_id":"Tinta A"},{"product_id":"Tinta B"}]}}`, wantLen: 2},
		{name: "Pedido sem itens", body: `{"entries":[]}`, wantLen: 0},
		{name: "Sem entries - resposta malformada", body: `{"data":{}}`, wantErr: domain.ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/v1/get-v2-order-details/42", r.URL.Path)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := newTestClient(t, srv, 0)
			resp, err := client.GetOrderDetails(context.Background(), "42")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, resp.Items(), tt.wantLen)
		})
	}
}
