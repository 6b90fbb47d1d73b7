package apiErrors

import (
	"context"
	"errors"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/vfg2006/csfa-report/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Códigos de erro da API
const (
	// Erros de autenticação
	ErrInvalidToken          = "AUTH_006" // Token inválido
	ErrExpiredToken          = "AUTH_007" // Token expirado
	ErrInsufficientPrivilege = "AUTH_008" // Privilégios insuficientes

	// Erros de validação
	ErrInvalidRequest      = "VAL_001" // Requisição inválida
	ErrMissingRequiredData = "VAL_002" // Dados obrigatórios ausentes
	ErrInvalidFormat       = "VAL_003" // Formato de dados inválido
	ErrInvalidPeriod       = "VAL_004" // Período inválido
	ErrNotFound            = "VAL_005" // Rota inexistente
	ErrMethodNotAllowed    = "VAL_006" // Método não suportado pela rota

	// Erros de execução do relatório
	ErrRunInProgress    = "RUN_001" // Já existe uma execução em andamento
	ErrAlreadyDelivered = "RUN_002" // Período já entregue
	ErrReportInvariant  = "RUN_003" // Relatório não fecha com os dados de entrada

	// Erros do servidor
	ErrInternalServer    = "SRV_001" // Erro interno do servidor
	ErrDatabaseOperation = "SRV_002" // Erro de operação de banco de dados
	ErrExternalService   = "SRV_003" // Erro em serviço externo
	ErrCommunication     = "SRV_004" // Erro de comunicação
	ErrTimeout           = "SRV_005" // Tempo limite excedido
	ErrExternalAuth      = "SRV_006" // Credenciais do serviço externo recusadas
)

// Mapeamento de códigos de erro para status HTTP
var httpStatusMap = map[string]int{
	ErrInvalidToken:          http.StatusUnauthorized,
	ErrExpiredToken:          http.StatusUnauthorized,
	ErrInsufficientPrivilege: http.StatusForbidden,
	ErrInvalidRequest:        http.StatusBadRequest,
	ErrMissingRequiredData:   http.StatusBadRequest,
	ErrInvalidFormat:         http.StatusBadRequest,
	ErrInvalidPeriod:         http.StatusBadRequest,
	ErrNotFound:              http.StatusNotFound,
	ErrMethodNotAllowed:      http.StatusMethodNotAllowed,
	ErrRunInProgress:         http.StatusConflict,
	ErrAlreadyDelivered:      http.StatusConflict,
	ErrReportInvariant:       http.StatusUnprocessableEntity,
	ErrInternalServer:        http.StatusInternalServerError,
	ErrDatabaseOperation:     http.StatusInternalServerError,
	ErrExternalService:       http.StatusBadGateway,
	ErrCommunication:         http.StatusServiceUnavailable,
	ErrTimeout:               http.StatusGatewayTimeout,
	ErrExternalAuth:          http.StatusBadGateway,
}

// APIError representa um erro de API padronizado
type APIError struct {
	Code    string `json:"code"`              // Código de erro para o cliente
	Message string `json:"message,omitempty"` // Mensagem descritiva (opcional)
	Details any    `json:"details,omitempty"` // Detalhes adicionais (opcional)
}

// Status devolve o status HTTP do código; desconhecidos viram 500
func Status(code string) int {
	if status, exists := httpStatusMap[code]; exists {
		return status
	}
	return http.StatusInternalServerError
}

// WriteError escreve o erro padronizado para a resposta HTTP
func WriteError(w http.ResponseWriter, code string, message string, details any) {
	apiErr := APIError{
		Code:    code,
		Message: message,
		Details: details,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(Status(code))
	json.NewEncoder(w).Encode(apiErr)
}

// CodeFor classifica um erro do pipeline no código de API correspondente
func CodeFor(err error) string {
	switch {
	case err == nil:
		return ErrInternalServer
	case errors.Is(err, domain.ErrInvalidPeriod):
		return ErrInvalidPeriod
	case errors.Is(err, domain.ErrRunInProgress):
		return ErrRunInProgress
	case errors.Is(err, domain.ErrAlreadyDelivered):
		return ErrAlreadyDelivered
	case errors.Is(err, domain.ErrInvalidToken):
		return ErrInvalidToken
	case errors.Is(err, domain.ErrAuthentication):
		return ErrExternalAuth
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	case errors.Is(err, domain.ErrTransientFetch):
		return ErrCommunication
	case errors.Is(err, domain.ErrMalformedResponse), errors.Is(err, domain.ErrSchemaViolation):
		return ErrExternalService
	case errors.Is(err, domain.ErrAggregationInvariant):
		return ErrReportInvariant
	}
	return ErrInternalServer
}

// FromError cria um erro de API a partir de um erro Go
func FromError(err error) APIError {
	if err == nil {
		return APIError{
			Code:    ErrInternalServer,
			Message: "Erro desconhecido",
		}
	}

	return APIError{
		Code:    CodeFor(err),
		Message: err.Error(),
	}
}

// WriteFromError classifica o erro e escreve a resposta
func WriteFromError(w http.ResponseWriter, err error) {
	apiErr := FromError(err)
	WriteError(w, apiErr.Code, apiErr.Message, nil)
}
