package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Bar es una vela OHLCV inmutable de un símbolo e intervalo concretos.
// La produce una fuente externa (API o dataset); aquí solo se lee.
type Bar struct {
	Symbol    string
	Interval  string
	OpenTime  time.Time
	CloseTime time.Time
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    decimal.Decimal
}

// SortBars ordena las velas por closeTime ascendente, in place.
// Orden defensivo: los datasets deberían venir ordenados, pero un replay
// sobre velas desordenadas produciría señales sin sentido.
func SortBars(bars []Bar) {
	sort.Slice(bars, func(i, j int) bool {
		return bars[i].CloseTime.Before(bars[j].CloseTime)
	})
}

// Closes extrae la serie de precios de cierre en el orden dado.
func Closes(bars []Bar) []decimal.Decimal {
	closes := make([]decimal.Decimal, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
