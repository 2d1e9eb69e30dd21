package domain

import "time"

// Dataset es una serie ordenada de velas con identidad propia,
// lista para un replay de backtest.
type Dataset struct {
	Name        string
	Symbol      string
	Interval    string
	CollectedAt time.Time
	Bars        []Bar
}

// Empty indica que el dataset no tiene velas. Un replay sobre un dataset
// vacío es un resultado válido con cero trades, no un error.
func (d Dataset) Empty() bool {
	return len(d.Bars) == 0
}
