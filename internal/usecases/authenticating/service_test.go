package authenticating

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/csfa-report/internal/config"
	"github.com/vfg2006/csfa-report/internal/domain"
)

func newTestService(secret string, now time.Time) *Service {
	s := NewService(config.Auth{Secret: secret}).(*Service)
	s.now = func() time.Time { return now }
	return s
}

func TestService_IssueAndValidate(t *testing.T) {
	now := time.Now()
	s := newTestService("segredo-de-teste", now)

	token, err := s.IssueToken("ops", time.Hour)
	require.NoError(t, err)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.Equal(t, "csfa-report", claims.Issuer)
	assert.True(t, claims.HasScope(domain.ScopeReportRun))
	assert.True(t, claims.HasScope(domain.ScopeReportRead))
}

func TestService_IssueToken(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		secret  string
		subject string
		scopes  []string
		wantErr error
	}{
		{name: "Sem segredo configurado", subject: "ops", wantErr: ErrMissingSecret},
		{name: "Sem identificação", secret: "segredo", wantErr: ErrMissingSubject},
		{name: "Escopo desconhecido", secret: "segredo", subject: "ops", scopes: []string{"admin"}, wantErr: ErrUnknownScope},
		{name: "Somente leitura", secret: "segredo", subject: "painel", scopes: []string{domain.ScopeReportRead}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestService(tt.secret, now)
			token, err := s.IssueToken(tt.subject, 0, tt.scopes...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			claims, err := s.ValidateToken(token)
			require.NoError(t, err)
			assert.Equal(t, []string{domain.ScopeReportRead}, claims.Scopes)
			assert.False(t, claims.HasScope(domain.ScopeReportRun))
			assert.WithinDuration(t, now.Add(24*time.Hour), claims.ExpiresAt.Time, time.Second)
		})
	}
}

func TestService_ValidateToken(t *testing.T) {
	issuedAt := time.Now()
	issuer := newTestService("segredo", issuedAt)
	token, err := issuer.IssueToken("ops", time.Hour)
	require.NoError(t, err)

	t.Run("Token expirado", func(t *testing.T) {
		later := newTestService("segredo", issuedAt.Add(2*time.Hour))
		_, err := later.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
		assert.True(t, IsAuthorizationError(err))
	})

	t.Run("Assinatura com outro segredo", func(t *testing.T) {
		other := newTestService("outro-segredo", issuedAt)
		_, err := other.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("Algoritmo none é recusado", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, domain.Claims{
			RegisteredClaims: jwt.RegisteredClaims{Issuer: "csfa-report", Subject: "ops"},
		})
		raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = issuer.ValidateToken(raw)
		var authErr *AuthError
		require.True(t, errors.As(err, &authErr))
		assert.Equal(t, "AUTH_006", authErr.Code)
	})

	t.Run("Token malformado", func(t *testing.T) {
		_, err := issuer.ValidateToken("abc.def")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
