package indicator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oyakov/macdbot/internal/domain"
)

var smallParams = domain.MACDParameters{FastPeriod: 2, SlowPeriod: 3, SignalPeriod: 2}

func TestMACD_InsufficientData(t *testing.T) {
	// MinDataPoints para (2,3,2) es 5.
	_, err := MACD(decs("1", "2", "3", "4"), smallParams)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = MACD(nil, domain.DefaultMACDParameters())
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestMACD_ConstantSeriesIsAllZero(t *testing.T) {
	closes := make([]decimal.Decimal, 6)
	for i := range closes {
		closes[i] = dec("100")
	}

	res, err := MACD(closes, smallParams)
	require.NoError(t, err)

	for _, v := range res.MACD {
		assert.True(t, v.IsZero(), "macd: %s", v)
	}
	for _, v := range res.Signal {
		assert.True(t, v.IsZero(), "signal: %s", v)
	}
	for _, v := range res.Histogram {
		assert.True(t, v.IsZero(), "histogram: %s", v)
	}
}

func TestMACD_SeriesLengthsAndOffset(t *testing.T) {
	closes := make([]decimal.Decimal, 10)
	for i := range closes {
		closes[i] = decimal.NewFromInt(int64(100 + i))
	}

	res, err := MACD(closes, smallParams)
	require.NoError(t, err)

	// macd cubre len − slow + 1 velas; signal recorta signalPeriod − 1 más.
	assert.Len(t, res.MACD, 8)
	assert.Len(t, res.Signal, 7)
	assert.Len(t, res.Histogram, 7)
	assert.Equal(t, smallParams.SlowPeriod-1, res.Offset)
}

func TestMACD_RisingSeriesIsPositive(t *testing.T) {
	closes := make([]decimal.Decimal, 40)
	for i := range closes {
		closes[i] = decimal.NewFromInt(int64(100 + 3*i))
	}

	res, err := MACD(closes, domain.DefaultMACDParameters())
	require.NoError(t, err)

	// Tendencia alcista sostenida: la EMA rápida va por encima de la lenta.
	last := res.MACD[len(res.MACD)-1]
	assert.True(t, last.GreaterThan(decimal.Zero), "macd: %s", last)
}

func TestPoints_OnePointPerCoveredBar(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]domain.Bar, 10)
	for i := range bars {
		bars[i] = domain.Bar{
			Symbol:    "BTCUSDT",
			Interval:  "1h",
			OpenTime:  base.Add(time.Duration(i) * time.Hour),
			CloseTime: base.Add(time.Duration(i+1) * time.Hour),
			Close:     decimal.NewFromInt(int64(100 + i)),
		}
	}

	points, err := Points(bars, smallParams)
	require.NoError(t, err)
	require.Len(t, points, 7)

	for i := 1; i < len(points); i++ {
		assert.True(t, points[i].Timestamp.After(points[i-1].Timestamp))
	}
	// El último punto corresponde a la última vela.
	lastBar := bars[len(bars)-1]
	assert.Equal(t, lastBar.CloseTime, points[len(points)-1].Timestamp)
	assert.True(t, lastBar.Close.Equal(points[len(points)-1].Price))
}

func TestPoints_InsufficientData(t *testing.T) {
	bars := []domain.Bar{{Close: dec("100")}, {Close: dec("101")}}
	_, err := Points(bars, smallParams)
	assert.ErrorIs(t, err, ErrInsufficientData)
}
