package backtest

// synthetic.go — generador de datasets sintéticos para smoke runs.
//
// Precio con tendencia + componente sinusoidal + ruido determinista por
// seed, suficiente para producir crossovers en ambas direcciones sin
// depender de ninguna API.

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oyakov/macdbot/internal/domain"
)

// GenerateSyntheticDataset produce n velas horarias del símbolo dado,
// terminando en el instante actual. El mismo seed produce el mismo dataset.
func GenerateSyntheticDataset(symbol, interval string, n int, seed int64) domain.Dataset {
	rng := rand.New(rand.NewSource(seed))

	barDuration := intervalDuration(interval)
	end := time.Now().UTC().Truncate(barDuration)
	start := end.Add(-time.Duration(n) * barDuration)

	const basePrice = 50000.0
	bars := make([]domain.Bar, 0, n)
	prev := basePrice
	for i := 0; i < n; i++ {
		trend := float64(i) * 12.5
		cycle := 800 * math.Sin(float64(i)/12)
		noise := (rng.Float64() - 0.5) * 300
		price := basePrice + trend + cycle + noise

		openTime := start.Add(time.Duration(i) * barDuration)
		closeTime := openTime.Add(barDuration)

		high := math.Max(prev, price) + rng.Float64()*50
		low := math.Min(prev, price) - rng.Float64()*50

		bars = append(bars, domain.Bar{
			Symbol:    symbol,
			Interval:  interval,
			OpenTime:  openTime,
			CloseTime: closeTime,
			Open:      decimal.NewFromFloat(prev).Round(2),
			High:      decimal.NewFromFloat(high).Round(2),
			Low:       decimal.NewFromFloat(low).Round(2),
			Close:     decimal.NewFromFloat(price).Round(2),
			Volume:    decimal.NewFromFloat(10 + rng.Float64()*90).Round(4),
		})
		prev = price
	}

	return domain.Dataset{
		Name:        fmt.Sprintf("synthetic_%s_%s_%d", symbol, interval, n),
		Symbol:      symbol,
		Interval:    interval,
		CollectedAt: time.Now().UTC(),
		Bars:        bars,
	}
}

// intervalDuration mapea los intervalos estilo Binance a duración.
// Intervalos desconocidos se tratan como 1h.
func intervalDuration(interval string) time.Duration {
	switch interval {
	case "1m":
		return time.Minute
	case "5m":
		return 5 * time.Minute
	case "15m":
		return 15 * time.Minute
	case "1h":
		return time.Hour
	case "4h":
		return 4 * time.Hour
	case "1d":
		return 24 * time.Hour
	default:
		return time.Hour
	}
}
