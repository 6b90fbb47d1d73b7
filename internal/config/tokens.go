package config

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/vfg2006/csfa-report/internal/domain"
)

const minTokenLength = 10

// TokenBundle é o conjunto de credenciais de sessão usado pelo cliente do CSFA.
// É somente leitura durante uma execução; o cliente não renova tokens.
type TokenBundle struct {
	BaseURL       string
	AccessToken   string // Bearer das rotas /api/v1
	LaravelToken  string // Cookie laravel_token da rota /timesheet-list
	SessionToken  string // Cookie sat_session
	XSRFToken     string // Cookie XSRF-TOKEN
	SessionUserID string // Cookie sat_user_id
}

// CleanToken remove espaços, aspas e caracteres de controle e rejeita tokens mascarados
// pelo CI ("***") ou curtos demais
func CleanToken(raw string) (string, error) {
	token := strings.TrimSpace(raw)
	if token == "" {
		return "", fmt.Errorf("%w: token vazio", domain.ErrInvalidToken)
	}

	token = strings.Trim(token, `"'`)
	token = strings.Map(func(r rune) rune {
		if r < 32 || r == utf8.RuneError {
			return -1
		}
		return r
	}, token)

	if strings.HasPrefix(token, "***") {
		return "", fmt.Errorf("%w: token mascarado, verifique os secrets do ambiente", domain.ErrInvalidToken)
	}

	if len(token) < minTokenLength {
		return "", fmt.Errorf("%w: token curto demais (%d caracteres)", domain.ErrInvalidToken, len(token))
	}

	return token, nil
}

// Tokens valida e devolve o bundle de credenciais configurado
func (c CSFA) Tokens() (TokenBundle, error) {
	access, err := CleanToken(c.AccessToken)
	if err != nil {
		return TokenBundle{}, fmt.Errorf("ACCESS_TOKEN: %w", err)
	}

	bundle := TokenBundle{
		BaseURL:       strings.TrimRight(strings.TrimSpace(c.BaseURL), "/"),
		AccessToken:   access,
		LaravelToken:  access,
		SessionUserID: strings.TrimSpace(c.SessionUserID),
	}

	// laravel_token costuma ser o próprio access token
	if c.LaravelToken != "" {
		if bundle.LaravelToken, err = CleanToken(c.LaravelToken); err != nil {
			return TokenBundle{}, fmt.Errorf("LARAVEL_TOKEN: %w", err)
		}
	}
	if bundle.SessionToken, err = CleanToken(c.SessionToken); err != nil {
		return TokenBundle{}, fmt.Errorf("SAT_SESSION: %w", err)
	}
	if bundle.XSRFToken, err = CleanToken(c.XSRFToken); err != nil {
		return TokenBundle{}, fmt.Errorf("XSRF_TOKEN: %w", err)
	}

	if bundle.BaseURL == "" {
		return TokenBundle{}, fmt.Errorf("%w: CSFA_BASE_URL não configurada", domain.ErrInvalidToken)
	}

	return bundle, nil
}

// TokenDiagnostic descreve o estado de uma variável de token sem expor o valor
type TokenDiagnostic struct {
	Name     string   `json:"name"`
	Set      bool     `json:"set"`
	Length   int      `json:"length"`
	Preview  string   `json:"preview,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// OK indica que o token passou pela limpeza
func (d TokenDiagnostic) OK() bool {
	return d.Set && d.Error == ""
}

// Diagnose inspeciona cada token configurado
func (c CSFA) Diagnose() []TokenDiagnostic {
	vars := []struct {
		name  string
		value string
	}{
		{"ACCESS_TOKEN", c.AccessToken},
		{"LARAVEL_TOKEN", c.LaravelToken},
		{"SAT_SESSION", c.SessionToken},
		{"XSRF_TOKEN", c.XSRFToken},
	}

	out := make([]TokenDiagnostic, 0, len(vars))
	for _, v := range vars {
		out = append(out, diagnoseToken(v.name, v.value))
	}
	return out
}

func diagnoseToken(name, value string) TokenDiagnostic {
	d := TokenDiagnostic{Name: name, Set: value != "", Length: len(value)}
	if !d.Set {
		d.Error = "não configurado"
		return d
	}

	d.Preview = maskToken(value)
	if value != strings.TrimSpace(value) {
		d.Warnings = append(d.Warnings, "espaços no início ou no fim")
	}
	if strings.HasPrefix(value, `"`) || strings.HasPrefix(value, "'") {
		d.Warnings = append(d.Warnings, "começa com aspas")
	}
	if n := strings.IndexFunc(value, func(r rune) bool { return r < 32 }); n >= 0 {
		d.Warnings = append(d.Warnings, "contém caracteres de controle")
	}
	if len(value) < 50 {
		d.Warnings = append(d.Warnings, "curto para um JWT (menos de 50 caracteres)")
	}

	if _, err := CleanToken(value); err != nil {
		d.Error = err.Error()
	}
	return d
}

// maskToken mostra só o começo e o fim do token
func maskToken(value string) string {
	if len(value) <= 12 {
		return strings.Repeat("*", len(value))
	}
	return value[:6] + "..." + value[len(value)-6:]
}

// applySecrets preenche os tokens ainda vazios com secret files de mesmo nome
func (c *CSFA) applySecrets(secrets map[string]string, names []string) {
	targets := map[string]*string{
		"ACCESS_TOKEN":  &c.AccessToken,
		"LARAVEL_TOKEN": &c.LaravelToken,
		"SAT_SESSION":   &c.SessionToken,
		"XSRF_TOKEN":    &c.XSRFToken,
	}
	for _, name := range names {
		key := strings.ToUpper(name)
		target, ok := targets[key]
		if !ok || *target != "" {
			continue
		}
		if v, ok := secrets[name]; ok {
			*target = strings.TrimSpace(v)
		}
	}
}
