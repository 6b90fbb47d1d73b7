package csfaclient

import (
	"bytes"
	"context"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/csfa-report/internal/config"
	"github.com/vfg2006/csfa-report/internal/domain"
	"golang.org/x/time/rate"
)

// RetryingDoer decora um Doer repetindo falhas transitórias (erros de conexão, timeouts,
// corpo truncado, 5xx e 429) com backoff exponencial e jitter. Respostas não transitórias
// são devolvidas na primeira tentativa para o chamador classificar.
type RetryingDoer struct {
	Next           Doer
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Limiter        *rate.Limiter

	// Sleep aguarda entre tentativas; substituível nos testes
	Sleep func(ctx context.Context, d time.Duration) error
	// Jitter sorteia a espera real em [0, d]
	Jitter func(d time.Duration) time.Duration
}

// NewRetryingDoer monta o decorator com os limites configurados
func NewRetryingDoer(next Doer, cfg config.CSFA) *RetryingDoer {
	var limiter *rate.Limiter
	if cfg.RequestsPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1)
	}

	return &RetryingDoer{
		Next:           next,
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxBackoff:     cfg.MaxBackoff,
		Limiter:        limiter,
	}
}

func (d *RetryingDoer) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	maxRetries := d.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	var (
		lastErr    error
		lastStatus int
		attempts   int
	)

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			wait := d.backoff(attempt)
			if ra := retryAfter(lastStatus, lastErr); ra > wait {
				wait = ra
			}
			logrus.WithFields(logrus.Fields{
				"path":    req.URL.Path,
				"attempt": attempt + 1,
				"status":  lastStatus,
				"wait":    wait.String(),
			}).Warn("Falha transitória na API do CSFA, tentando novamente")

			if err := d.sleep(ctx, wait); err != nil {
				return nil, err
			}
		}

		if d.Limiter != nil {
			if err := d.Limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		attempts++
		resp, err := d.Next.Do(req.Clone(ctx))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr, lastStatus = err, 0
			continue
		}

		if isTransientStatus(resp.StatusCode) {
			lastStatus = resp.StatusCode
			lastErr = &statusError{status: resp.Status, retryAfter: resp.Header.Get("Retry-After")}
			drain(resp)
			continue
		}

		// O corpo é lido aqui para que uma conexão interrompida no meio seja repetida
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr, lastStatus = errors.Wrap(err, "erro ao ler o corpo da resposta"), resp.StatusCode
			continue
		}
		resp.Body = io.NopCloser(bytes.NewReader(body))

		return resp, nil
	}

	fetchErr := domain.NewFetchError(domain.ErrTransientFetch, "", lastStatus, lastErr)
	fetchErr.Attempts = attempts
	return nil, fetchErr
}

// backoff é InitialBackoff * 2^(attempt-1), limitado a MaxBackoff, com jitter completo
func (d *RetryingDoer) backoff(attempt int) time.Duration {
	base := d.InitialBackoff
	if base <= 0 {
		return 0
	}
	wait := base
	for i := 1; i < attempt; i++ {
		wait *= 2
		if d.MaxBackoff > 0 && wait >= d.MaxBackoff {
			wait = d.MaxBackoff
			break
		}
	}
	if d.MaxBackoff > 0 && wait > d.MaxBackoff {
		wait = d.MaxBackoff
	}

	if d.Jitter != nil {
		return d.Jitter(wait)
	}
	return time.Duration(rand.Int63n(int64(wait) + 1))
}

func (d *RetryingDoer) sleep(ctx context.Context, wait time.Duration) error {
	if d.Sleep != nil {
		return d.Sleep(ctx, wait)
	}
	if wait <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isTransientStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

type statusError struct {
	status     string
	retryAfter string
}

func (e *statusError) Error() string {
	return "resposta transitória: " + e.status
}

// retryAfter interpreta o cabeçalho Retry-After em segundos de uma resposta 429 ou 503
func retryAfter(status int, err error) time.Duration {
	if status != http.StatusTooManyRequests && status != http.StatusServiceUnavailable {
		return 0
	}
	var se *statusError
	if !errors.As(err, &se) || se.retryAfter == "" {
		return 0
	}
	if secs, err := strconv.Atoi(se.retryAfter); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(se.retryAfter); err == nil {
		if wait := time.Until(at); wait > 0 {
			return wait
		}
	}
	return 0
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}
