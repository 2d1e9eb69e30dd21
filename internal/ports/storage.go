package ports

import (
	"context"
	"time"

	"github.com/oyakov/macdbot/internal/domain"
)

// ResultStorage persiste los resultados de cada replay.
type ResultStorage interface {
	// SaveResult persiste un resultado con sus trades cerrados.
	SaveResult(ctx context.Context, result domain.BacktestResult) error

	// History devuelve los resultados guardados en el rango de tiempo dado,
	// ordenados por net profit descendente.
	History(ctx context.Context, from, to time.Time) ([]domain.BacktestResult, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
