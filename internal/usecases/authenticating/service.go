package authenticating

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/csfa-report/internal/config"
	"github.com/vfg2006/csfa-report/internal/domain"
	"github.com/vfg2006/csfa-report/pkg/apiErrors"
)

const (
	issuer     = "csfa-report"
	defaultTTL = 24 * time.Hour
)

type Authenticator interface {
	// IssueToken assina um token HS256 para uso na API de operação
	IssueToken(subject string, ttl time.Duration, scopes ...string) (string, error)
	ValidateToken(tokenString string) (*domain.Claims, error)
}

type Service struct {
	secret []byte
	now    func() time.Time
}

func NewService(cfg config.Auth) Authenticator {
	return &Service{
		secret: []byte(cfg.Secret),
		now:    time.Now,
	}
}

func (s *Service) IssueToken(subject string, ttl time.Duration, scopes ...string) (string, error) {
	if len(s.secret) == 0 {
		return "", NewAuthError(ErrMissingSecret, apiErrors.ErrInternalServer, "defina AUTH_SECRET")
	}
	if subject == "" {
		return "", NewAuthError(ErrMissingSubject, apiErrors.ErrMissingRequiredData, "")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if len(scopes) == 0 {
		scopes = domain.AllScopes
	}
	for _, scope := range scopes {
		if !slices.Contains(domain.AllScopes, scope) {
			return "", NewAuthError(ErrUnknownScope, apiErrors.ErrInvalidRequest, scope)
		}
	}

	now := s.now()
	claims := domain.Claims{
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}

	logrus.WithFields(logrus.Fields{
		"subject":    subject,
		"scopes":     scopes,
		"expires_at": claims.ExpiresAt.Time.Format(time.RFC3339),
	}).Info("Token de acesso emitido")

	return signed, nil
}

func (s *Service) ValidateToken(tokenString string) (*domain.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &domain.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, NewAuthError(ErrExpiredToken, apiErrors.ErrExpiredToken, "")
		}
		return nil, NewAuthError(ErrInvalidToken, apiErrors.ErrInvalidToken, err.Error())
	}

	if claims, ok := token.Claims.(*domain.Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, NewAuthError(ErrInvalidToken, apiErrors.ErrInvalidToken, "")
}
