package binance

// parse.go — parsing del formato de kline posicional de Binance.
//
// Cada kline llega como array heterogéneo:
//   [openTime, open, high, low, close, volume, closeTime, ...]
// Los precios vienen como strings, los timestamps como millis. Se parsean
// directamente a decimal sin pasar por float64.

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oyakov/macdbot/internal/domain"
)

// parseKline convierte un kline posicional en una vela de dominio.
func parseKline(symbol, interval string, k []json.RawMessage) (domain.Bar, error) {
	if len(k) < 7 {
		return domain.Bar{}, fmt.Errorf("binance.parseKline: kline with %d fields", len(k))
	}

	openMs, err := parseMillis(k[0])
	if err != nil {
		return domain.Bar{}, fmt.Errorf("binance.parseKline: open time: %w", err)
	}
	closeMs, err := parseMillis(k[6])
	if err != nil {
		return domain.Bar{}, fmt.Errorf("binance.parseKline: close time: %w", err)
	}

	bar := domain.Bar{
		Symbol:    symbol,
		Interval:  interval,
		OpenTime:  time.UnixMilli(openMs).UTC(),
		CloseTime: time.UnixMilli(closeMs).UTC(),
	}

	fields := []struct {
		name string
		raw  json.RawMessage
		dst  *decimal.Decimal
	}{
		{"open", k[1], &bar.Open},
		{"high", k[2], &bar.High},
		{"low", k[3], &bar.Low},
		{"close", k[4], &bar.Close},
		{"volume", k[5], &bar.Volume},
	}
	for _, f := range fields {
		var s string
		if err := json.Unmarshal(f.raw, &s); err != nil {
			return domain.Bar{}, fmt.Errorf("binance.parseKline: %s: %w", f.name, err)
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return domain.Bar{}, fmt.Errorf("binance.parseKline: %s %q: %w", f.name, s, err)
		}
		*f.dst = d
	}

	return bar, nil
}

func parseMillis(raw json.RawMessage) (int64, error) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}
	return n.Int64()
}
