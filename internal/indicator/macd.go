package indicator

// macd.go — línea MACD, línea de señal e histograma.
//
// Alineación: emaFast y emaSlow difieren en longitud exactamente en
// slowPeriod−fastPeriod, así que la serie rápida se trunca por delante para
// casarlas por la derecha. Si el offset saliera negativo los parámetros no
// casan con el volumen de datos — se devuelve "insufficient data", nunca
// se aborta el replay.

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oyakov/macdbot/internal/domain"
)

// ErrInsufficientData indica que no hay velas suficientes para producir un
// resultado fiable. Es una condición local y recuperable: el caller la
// comprueba con errors.Is y sigue adelante sin señal.
var ErrInsufficientData = errors.New("indicator: insufficient data")

// Result son las series MACD calculadas sobre una ventana de cierres.
type Result struct {
	MACD      []decimal.Decimal
	Signal    []decimal.Decimal
	Histogram []decimal.Decimal

	// Offset es el índice de la primera vela de la ventana cubierta por la
	// línea MACD (slowPeriod−1 en la práctica).
	Offset int
}

// IndicatorPoint es el valor del indicador en una vela concreta, una vez
// hay historia suficiente. Nunca se muta.
type IndicatorPoint struct {
	Timestamp time.Time
	Price     decimal.Decimal
	EMAFast   decimal.Decimal
	EMASlow   decimal.Decimal
	MACD      decimal.Decimal
	Signal    decimal.Decimal
	Histogram decimal.Decimal
}

// MACD calcula las tres series sobre los precios de cierre dados.
// Precondición: len(closes) ≥ params.MinDataPoints(); si no, devuelve
// ErrInsufficientData en lugar de un resultado parcial engañoso.
func MACD(closes []decimal.Decimal, params domain.MACDParameters) (Result, error) {
	if len(closes) < params.MinDataPoints() {
		return Result{}, ErrInsufficientData
	}

	emaFast := EMA(closes, params.FastPeriod)
	emaSlow := EMA(closes, params.SlowPeriod)

	offset := len(emaFast) - len(emaSlow)
	if offset < 0 {
		// Slow period demasiado pequeño respecto a los datos: error de
		// configuración, se trata igual que la falta de datos.
		return Result{}, ErrInsufficientData
	}

	aligned := emaFast[offset:]
	macd := make([]decimal.Decimal, len(emaSlow))
	for i := range emaSlow {
		macd[i] = aligned[i].Sub(emaSlow[i]).Round(Scale)
	}

	signal := EMA(macd, params.SignalPeriod)
	if len(signal) < 2 || len(macd) < 2 {
		return Result{}, ErrInsufficientData
	}

	// Histograma alineado sobre el rango (más corto) de la línea de señal.
	histOffset := len(macd) - len(signal)
	hist := make([]decimal.Decimal, len(signal))
	for i := range signal {
		hist[i] = macd[histOffset+i].Sub(signal[i]).Round(Scale)
	}

	return Result{
		MACD:      macd,
		Signal:    signal,
		Histogram: hist,
		Offset:    params.SlowPeriod - 1,
	}, nil
}

// Points calcula la serie de IndicatorPoint por vela para las velas que
// tienen historia suficiente. Ordena defensivamente por closeTime.
func Points(bars []domain.Bar, params domain.MACDParameters) ([]IndicatorPoint, error) {
	sorted := make([]domain.Bar, len(bars))
	copy(sorted, bars)
	domain.SortBars(sorted)

	closes := domain.Closes(sorted)
	res, err := MACD(closes, params)
	if err != nil {
		return nil, err
	}

	emaFast := EMA(closes, params.FastPeriod)
	emaSlow := EMA(closes, params.SlowPeriod)
	fastOffset := len(emaFast) - len(emaSlow)

	// La línea de señal cubre las últimas len(signal) velas.
	macdOffset := len(res.MACD) - len(res.Signal)
	points := make([]IndicatorPoint, 0, len(res.Signal))
	for i := range res.Signal {
		barIdx := res.Offset + macdOffset + i
		bar := sorted[barIdx]
		points = append(points, IndicatorPoint{
			Timestamp: bar.CloseTime,
			Price:     bar.Close,
			EMAFast:   emaFast[fastOffset+macdOffset+i],
			EMASlow:   emaSlow[macdOffset+i],
			MACD:      res.MACD[macdOffset+i],
			Signal:    res.Signal[i],
			Histogram: res.Histogram[i],
		})
	}

	return points, nil
}
