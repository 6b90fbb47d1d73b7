package domain

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// Escopos aceitos nos tokens da API de operação
const (
	ScopeReportRead = "report:read"
	ScopeReportRun  = "report:run"
)

// AllScopes é o conjunto concedido quando o token é emitido sem escopos explícitos
var AllScopes = []string{ScopeReportRead, ScopeReportRun}

type Claims struct {
	Scopes []string `json:"scopes"`
	jwt.RegisteredClaims
}

// HasScope indica se o token concede o escopo
func (c *Claims) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}
