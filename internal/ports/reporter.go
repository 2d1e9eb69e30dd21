package ports

import (
	"context"

	"github.com/oyakov/macdbot/internal/domain"
)

// Reporter presenta los resultados de backtest al usuario.
type Reporter interface {
	// Report muestra uno o varios resultados. Con varios, añade el ranking
	// comparativo del sweep.
	Report(ctx context.Context, results []domain.BacktestResult) error
}
