package ports

import "github.com/oyakov/macdbot/internal/domain"

// MetricsSink recibe eventos de observabilidad del orquestador. Sustituye a
// contadores globales mutables: el sink se pasa explícitamente y cada run
// emite sus eventos contra él.
type MetricsSink interface {
	// RunCompleted se emite al terminar cada replay, con su resultado.
	RunCompleted(result domain.BacktestResult)

	// OpensRejected se emite al final de un replay con el número de
	// aperturas rechazadas por la política de una-posición-por-símbolo.
	OpensRejected(symbol string, count int)
}

// NopSink descarta todos los eventos.
type NopSink struct{}

func (NopSink) RunCompleted(domain.BacktestResult) {}
func (NopSink) OpensRejected(string, int)          {}
