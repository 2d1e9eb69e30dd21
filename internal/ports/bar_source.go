package ports

import (
	"context"
	"time"

	"github.com/oyakov/macdbot/internal/domain"
)

// BarSource obtiene velas históricas de una fuente externa (API o fichero).
// Las velas deberían venir ordenadas por closeTime; el replay ordena
// defensivamente de todos modos.
type BarSource interface {
	// FetchRange devuelve las velas del símbolo/intervalo en [start, end).
	// Sin datos en el rango devuelve la lista vacía, no un error.
	FetchRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]domain.Bar, error)
}
