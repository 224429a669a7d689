package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultRatePerSec = 2
	defaultBurst      = 2

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
	maxRetryAfter = 30 * time.Second
	maxErrorBody  = 512
)

var (
	// ErrMalformedResponse indica un 2xx cuyo body no es el JSON esperado. No se reintenta.
	ErrMalformedResponse = errors.New("malformed feed response")
	// ErrRetriesExhausted indica que todos los intentos fallaron con errores transitorios.
	ErrRetriesExhausted = errors.New("feed retries exhausted")
)

// StatusError es una respuesta no 2xx del feed.
// RetryAfter es negativo si el feed no mandó Retry-After.
type StatusError struct {
	Code       int
	Body       string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.Code)
	}
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// Temporary devuelve true para 429 y 5xx.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// client es el HTTP client compartido por los feeds, con rate limiting y retries.
type client struct {
	http    *http.Client
	limiter *rate.Limiter
}

// newClient crea un client limitado a ratePerSec requests por segundo (<= 0 usa el default).
func newClient(ratePerSec float64) *client {
	if ratePerSec <= 0 {
		ratePerSec = defaultRatePerSec
	}
	return &client{
		http:    &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), defaultBurst),
	}
}

// get hace un GET y decodifica el JSON en out. Reintenta errores de transporte,
// 429 y 5xx; si el feed manda Retry-After se respeta en vez del backoff.
func (c *client) get(ctx context.Context, url string, out any) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			if err := pause(ctx, retryDelay(attempt-1, lastErr)); err != nil {
				return fmt.Errorf("waiting to retry: %w (last: %w)", err, lastErr)
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		lastErr = c.getOnce(ctx, url, out)
		if lastErr == nil {
			return nil
		}
		if !retryable(ctx, lastErr) {
			return lastErr
		}
		slog.Warn("feed request failed, retrying", "url", url, "attempt", attempt+1, "error", lastErr)
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, maxRetries+1, lastErr)
}

// getOnce hace un único intento.
func (c *client) getOnce(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Code:       resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return !errors.Is(err, ErrMalformedResponse)
}

// retryDelay usa el Retry-After del feed si vino; si no, 2^attempt × baseRetryWait.
func retryDelay(attempt int, err error) time.Duration {
	var se *StatusError
	if errors.As(err, &se) && se.RetryAfter >= 0 {
		return min(se.RetryAfter, maxRetryAfter)
	}
	return baseRetryWait << attempt
}

// parseRetryAfter acepta segundos o fecha HTTP. Devuelve -1 si falta o no se entiende.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return -1
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return -1
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		return max(at.Sub(now), 0)
	}
	return -1
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
