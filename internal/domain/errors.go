package domain

import (
	"errors"
	"fmt"
)

// Taxonomia de erros do pipeline de relatório
var (
	// Erros de recuperação
	ErrAuthentication    = errors.New("authentication failed")
	ErrTransientFetch    = errors.New("transient fetch failure, retries exhausted")
	ErrMalformedResponse = errors.New("malformed response")

	// Erros de normalização e agregação
	ErrSchemaViolation      = errors.New("schema violation")
	ErrAggregationInvariant = errors.New("aggregation invariant violated")

	// Erros de execução
	ErrInvalidPeriod    = errors.New("invalid period")
	ErrAlreadyDelivered = errors.New("report already delivered for period")
	ErrRunInProgress    = errors.New("report run already in progress")
	ErrInvalidToken     = errors.New("invalid token")
)

// FetchError descreve uma falha de recuperação de um feed
type FetchError struct {
	Err        error    // Erro base (ErrAuthentication, ErrTransientFetch, ErrMalformedResponse)
	Feed       FeedKind // Feed envolvido (quando conhecido)
	Attempts   int      // Tentativas realizadas
	StatusCode int      // Último status HTTP (0 quando não houve resposta)
	Cause      error    // Causa original
}

func (e *FetchError) Error() string {
	msg := e.Err.Error()
	if e.Feed != "" {
		msg = fmt.Sprintf("%s: %s", e.Feed, msg)
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Attempts > 1 {
		msg = fmt.Sprintf("%s after %d attempts", msg, e.Attempts)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap expõe tanto o erro base quanto a causa para errors.Is/As
func (e *FetchError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// NewFetchError cria um FetchError
func NewFetchError(err error, feed FeedKind, statusCode int, cause error) *FetchError {
	return &FetchError{
		Err:        err,
		Feed:       feed,
		Attempts:   1,
		StatusCode: statusCode,
		Cause:      cause,
	}
}

// SchemaError indica um registro sem campos obrigatórios ou com valores ilegíveis
type SchemaError struct {
	Feed   FeedKind
	Field  string
	Index  int // Posição do registro no feed, -1 quando desconhecida
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: %s record #%d: field %q: %s", ErrSchemaViolation, e.Feed, e.Index, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s record: field %q: %s", ErrSchemaViolation, e.Feed, e.Field, e.Reason)
}

func (e *SchemaError) Unwrap() error {
	return ErrSchemaViolation
}

// NewSchemaError cria um SchemaError sem posição conhecida
func NewSchemaError(feed FeedKind, field, reason string) *SchemaError {
	return &SchemaError{Feed: feed, Field: field, Index: -1, Reason: reason}
}

// InvariantError indica divergência entre totais que deveriam ser iguais
type InvariantError struct {
	Check    string
	Expected string
	Actual   string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %s: expected %s, got %s", ErrAggregationInvariant, e.Check, e.Expected, e.Actual)
}

func (e *InvariantError) Unwrap() error {
	return ErrAggregationInvariant
}
