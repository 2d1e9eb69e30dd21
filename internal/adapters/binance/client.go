package binance

// client.go — cliente REST de klines históricos con rate limiting y retries.
//
// Solo datos públicos de mercado: sin claves, sin firmas. El límite se fija
// muy por debajo del weight limit documentado para no competir con otros
// consumidores de la misma IP.

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/oyakov/macdbot/internal/domain"
)

const (
	defaultBaseURL = "https://api.binance.com"

	// /api/v3/klines pesa 2 con limit ≤ 1000; 6000 weight/min documentado.
	// 10 req/s nos deja margen de sobra.
	klinesRatePerSec = 10
	klinesPageLimit  = 1000

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client implementa ports.BarSource contra el API REST de Binance.
type Client struct {
	http    *http.Client
	baseURL string
	limiter *rate.Limiter
}

// NewClient crea un Client. Con baseURL vacío usa producción.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		limiter: rate.NewLimiter(klinesRatePerSec, 5),
	}
}

// FetchRange descarga todas las velas de [start, end) paginando de 1000 en
// 1000. Sin datos en el rango devuelve la lista vacía, no un error.
func (c *Client) FetchRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]domain.Bar, error) {
	var bars []domain.Bar
	cursor := start.UnixMilli()
	endMs := end.UnixMilli()

	for cursor < endMs {
		page, err := c.klinesPage(ctx, symbol, interval, cursor, endMs)
		if err != nil {
			return nil, fmt.Errorf("binance.FetchRange: %s %s: %w", symbol, interval, err)
		}
		if len(page) == 0 {
			break
		}
		bars = append(bars, page...)

		last := page[len(page)-1].CloseTime.UnixMilli()
		if last <= cursor {
			break
		}
		cursor = last + 1
	}

	slog.Debug("binance: fetched range",
		"symbol", symbol,
		"interval", interval,
		"bars", len(bars),
	)
	return bars, nil
}

// FetchLastNDays descarga los últimos n días de velas.
func (c *Client) FetchLastNDays(ctx context.Context, symbol, interval string, days int) ([]domain.Bar, error) {
	end := time.Now().UTC()
	start := end.Add(-time.Duration(days) * 24 * time.Hour)
	return c.FetchRange(ctx, symbol, interval, start, end)
}

// klinesPage descarga una página de velas.
func (c *Client) klinesPage(ctx context.Context, symbol, interval string, startMs, endMs int64) ([]domain.Bar, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("startTime", fmt.Sprintf("%d", startMs))
	q.Set("endTime", fmt.Sprintf("%d", endMs))
	q.Set("limit", fmt.Sprintf("%d", klinesPageLimit))

	endpoint := fmt.Sprintf("%s/api/v3/klines?%s", c.baseURL, q.Encode())

	var raw [][]json.RawMessage
	if err := c.get(ctx, endpoint, &raw); err != nil {
		return nil, err
	}

	bars := make([]domain.Bar, 0, len(raw))
	for _, k := range raw {
		bar, err := parseKline(symbol, interval, k)
		if err != nil {
			return nil, err
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// get hace un GET con rate limiting y retries con backoff.
func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
		} else {
			body, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = readErr
			case resp.StatusCode == http.StatusOK:
				return json.Unmarshal(body, out)
			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
				lastErr = fmt.Errorf("status %d: %s", resp.StatusCode, body)
			default:
				// 4xx que no es rate limit: reintentar no va a ayudar.
				return fmt.Errorf("status %d: %s", resp.StatusCode, body)
			}
		}

		wait := baseRetryWait * time.Duration(1<<attempt)
		slog.Debug("binance: retrying request", "attempt", attempt+1, "wait", wait, "err", lastErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}
