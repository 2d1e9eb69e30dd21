package binance_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oyakov/macdbot/internal/adapters/binance"
)

// kline fabrica un kline posicional de una hora a partir de su open time.
func kline(openMs int64, close string) []any {
	return []any{
		openMs,
		close, close, close, close, "10",
		openMs + 3600_000 - 1,
	}
}

func TestClient_FetchRangePaginates(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	requests := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/klines", r.URL.Path)
		require.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		requests++

		// Primera página: dos velas; las siguientes: vacío.
		var page [][]any
		if requests == 1 {
			page = [][]any{
				kline(base.UnixMilli(), "50000"),
				kline(base.Add(time.Hour).UnixMilli(), "50100"),
			}
		}
		json.NewEncoder(w).Encode(page)
	}))
	defer srv.Close()

	client := binance.NewClient(srv.URL)
	bars, err := client.FetchRange(context.Background(), "BTCUSDT", "1h", base, base.Add(24*time.Hour))
	require.NoError(t, err)

	require.Len(t, bars, 2)
	assert.Equal(t, "50000", bars[0].Close.String())
	assert.Equal(t, "50100", bars[1].Close.String())
	assert.True(t, bars[1].CloseTime.After(bars[0].CloseTime))
	assert.Equal(t, 2, requests)
}

func TestClient_FetchRangeEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "[]")
	}))
	defer srv.Close()

	client := binance.NewClient(srv.URL)
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	bars, err := client.FetchRange(context.Background(), "BTCUSDT", "1h", start, start.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestClient_BadRequestIsNotRetried(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		http.Error(w, `{"code":-1121,"msg":"Invalid symbol."}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	client := binance.NewClient(srv.URL)
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err := client.FetchRange(context.Background(), "NOPE", "1h", start, start.Add(time.Hour))

	require.Error(t, err)
	assert.Equal(t, 1, requests)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		if requests < 3 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, "[]")
	}))
	defer srv.Close()

	client := binance.NewClient(srv.URL)
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	bars, err := client.FetchRange(context.Background(), "BTCUSDT", "1h", start, start.Add(time.Hour))

	require.NoError(t, err)
	assert.Empty(t, bars)
	assert.Equal(t, 3, requests)
}
