package apiErrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/csfa-report/internal/domain"
)

func TestCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"Período inválido", fmt.Errorf("%w: data", domain.ErrInvalidPeriod), ErrInvalidPeriod},
		{"Execução em andamento", domain.ErrRunInProgress, ErrRunInProgress},
		{"Período entregue", fmt.Errorf("período 2024-03-05: %w", domain.ErrAlreadyDelivered), ErrAlreadyDelivered},
		{"Credenciais recusadas", &domain.FetchError{Feed: domain.FeedVisit, Err: domain.ErrAuthentication}, ErrExternalAuth},
		{"Prazo excedido", fmt.Errorf("busca: %w", context.DeadlineExceeded), ErrTimeout},
		{"Falha transitória", domain.ErrTransientFetch, ErrCommunication},
		{"Resposta malformada", domain.ErrMalformedResponse, ErrExternalService},
		{"Esquema violado", domain.ErrSchemaViolation, ErrExternalService},
		{"Totais divergentes", domain.ErrAggregationInvariant, ErrReportInvariant},
		{"Erro genérico", errors.New("boom"), ErrInternalServer},
		{"Sem erro", nil, ErrInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeFor(tt.err))
		})
	}
}

func TestWriteFromError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteFromError(rec, domain.ErrRunInProgress)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var apiErr APIError
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
	assert.Equal(t, ErrRunInProgress, apiErr.Code)
	assert.NotEmpty(t, apiErr.Message)
}

func TestStatus_UnknownCode(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, Status("XYZ_999"))
	assert.Equal(t, http.StatusForbidden, Status(ErrInsufficientPrivilege))
}
