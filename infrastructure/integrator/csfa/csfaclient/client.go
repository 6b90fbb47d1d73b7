package csfaclient

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/csfa-report/internal/config"
	"github.com/vfg2006/csfa-report/internal/domain"
)

// Números chegam como json.Number para que valores monetários não percam precisão
var json = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// Doer executa uma requisição HTTP. *http.Client e RetryingDoer satisfazem a interface.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client interface {
	GetOrders(ctx context.Context, params OrdersParams) (PageResponse, error)
	GetCalls(ctx context.Context, params OrdersParams) (PageResponse, error)
	GetTimesheet(ctx context.Context, params TimesheetParams) (TimesheetResponse, error)
	GetOrderDetails(ctx context.Context, orderID string) (OrderDetailsResponse, error)
}

type CSFAClient struct {
	doer   Doer
	tokens config.TokenBundle
	cfg    config.CSFA
}

// NewClient cria o cliente com o bundle de tokens já validado
func NewClient(cfg config.CSFA, tokens config.TokenBundle, doer Doer) Client {
	return &CSFAClient{
		doer:   doer,
		tokens: tokens,
		cfg:    cfg,
	}
}

// NewHTTPClient não segue redirecionamentos: um redirect para /login indica sessão expirada
func NewHTTPClient(cfg config.CSFA) *http.Client {
	return &http.Client{
		Timeout: cfg.RequestTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (c *CSFAClient) endpoint(path string, query url.Values) (string, error) {
	endpoint, err := url.Parse(c.tokens.BaseURL + path)
	if err != nil {
		return "", errors.Wrap(err, "erro ao analisar a URL base")
	}
	if query != nil {
		endpoint.RawQuery = query.Encode()
	}
	return endpoint.String(), nil
}

// bearerRequest monta uma requisição para as rotas /api/v1
func (c *CSFAClient) bearerRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao criar a requisição")
	}
	req.Header.Set("Authorization", "Bearer "+c.tokens.AccessToken)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// sessionRequest monta uma requisição autenticada pela sessão web (cookies e cabeçalhos)
func (c *CSFAClient) sessionRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao criar a requisição")
	}

	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Referer", c.tokens.BaseURL+"/timesheet")
	req.Header.Set("X-XSRF-TOKEN", decodeCookieValue(c.tokens.XSRFToken))

	cookies := []*http.Cookie{
		{Name: "sat_user_id", Value: c.tokens.SessionUserID},
		{Name: "laravel_token", Value: c.tokens.LaravelToken},
		{Name: "XSRF-TOKEN", Value: c.tokens.XSRFToken},
		{Name: "sat_session", Value: c.tokens.SessionToken},
	}
	for _, cookie := range cookies {
		if cookie.Value != "" {
			req.AddCookie(cookie)
		}
	}
	return req, nil
}

// do executa a requisição e decodifica o corpo em out, classificando falhas
func (c *CSFAClient) do(req *http.Request, out any) error {
	resp, err := c.doer.Do(req)
	if err != nil {
		var fetchErr *domain.FetchError
		if errors.As(err, &fetchErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return domain.NewFetchError(domain.ErrTransientFetch, "", 0, err)
	}
	defer resp.Body.Close()

	if isLoginRedirect(resp) {
		return domain.NewFetchError(domain.ErrAuthentication, "", resp.StatusCode,
			errors.Errorf("redirecionado para %s", resp.Header.Get("Location")))
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden,
		resp.StatusCode == statusPageExpired:
		return domain.NewFetchError(domain.ErrAuthentication, "", resp.StatusCode, errors.New(snippet(resp.Body)))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return domain.NewFetchError(domain.ErrMalformedResponse, "", resp.StatusCode,
			errors.Errorf("requisição falhou com status: %s", resp.Status))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewFetchError(domain.ErrMalformedResponse, "", resp.StatusCode,
			errors.Wrap(err, "erro ao decodificar a resposta"))
	}

	logrus.WithFields(logrus.Fields{
		"path":   req.URL.Path,
		"status": resp.StatusCode,
	}).Debug("Resposta recebida da API do CSFA")

	return nil
}

// statusPageExpired é o 419 do Laravel para token CSRF expirado
const statusPageExpired = 419

func isLoginRedirect(resp *http.Response) bool {
	if resp.StatusCode < 300 || resp.StatusCode > 399 {
		return false
	}
	return strings.Contains(strings.ToLower(resp.Header.Get("Location")), "login")
}

func snippet(body io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(body, 256))
	if len(b) == 0 {
		return "sem corpo"
	}
	return strings.TrimSpace(string(b))
}

// decodeCookieValue desfaz o URL-encoding que o Laravel aplica ao cookie XSRF-TOKEN
func decodeCookieValue(v string) string {
	decoded, err := url.QueryUnescape(v)
	if err != nil {
		return v
	}
	return decoded
}
