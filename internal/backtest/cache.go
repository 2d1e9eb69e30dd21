package backtest

// cache.go — caché read-through de velas compartida entre replays.
//
// Un sweep de N combinaciones de parámetros sobre el mismo símbolo no
// debería descargar N veces el mismo histórico. La caché se puebla como
// máximo una vez por clave (symbol, interval, rango); las velas de un
// periodo cerrado no cambian, así que el staleness no es un problema de
// corrección. Cada clave guarda un snapshot inmutable — los lectores
// concurrentes no necesitan más sincronización que la del lookup.

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oyakov/macdbot/internal/domain"
	"github.com/oyakov/macdbot/internal/ports"
)

// BarCache memoriza rangos de velas por (symbol, interval, start, end).
type BarCache struct {
	source ports.BarSource

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	once sync.Once
	bars []domain.Bar
	err  error
}

// NewBarCache envuelve la fuente con la caché.
func NewBarCache(source ports.BarSource) *BarCache {
	return &BarCache{
		source:  source,
		entries: make(map[string]*cacheEntry),
	}
}

// FetchRange devuelve el rango cacheado, descargándolo la primera vez.
// El snapshot devuelto es compartido: los callers no deben mutarlo.
func (c *BarCache) FetchRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]domain.Bar, error) {
	key := fmt.Sprintf("%s|%s|%d|%d", symbol, interval, start.UnixMilli(), end.UnixMilli())

	c.mu.Lock()
	entry, ok := c.entries[key]
	if !ok {
		entry = &cacheEntry{}
		c.entries[key] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		entry.bars, entry.err = c.source.FetchRange(ctx, symbol, interval, start, end)
		if entry.err == nil {
			domain.SortBars(entry.bars)
		}
	})
	if entry.err != nil {
		// No cachear fallos: el siguiente caller reintenta la descarga.
		c.mu.Lock()
		if c.entries[key] == entry {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, fmt.Errorf("backtest.BarCache: fetch %s %s: %w", symbol, interval, entry.err)
	}
	return entry.bars, nil
}
