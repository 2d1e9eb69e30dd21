package main

// sweep.go — expansión del grid de parámetros y ejecución del barrido.
//
// El grid completo es symbols × intervals × fast × slow × signal; las
// combinaciones con fast >= slow se descartan antes de lanzar nada. El
// histórico se descarga una vez por (symbol, interval) vía BarCache y se
// comparte entre todos los replays de esa serie.

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/oyakov/macdbot/config"
	"github.com/oyakov/macdbot/internal/adapters/binance"
	"github.com/oyakov/macdbot/internal/adapters/notify"
	"github.com/oyakov/macdbot/internal/adapters/storage"
	"github.com/oyakov/macdbot/internal/backtest"
	"github.com/oyakov/macdbot/internal/domain"
)

func runSweep(ctx context.Context, cfg *config.Config, orchestrator *backtest.Orchestrator, client *binance.Client, store *storage.SQLiteStorage, reporter *notify.Console) {
	cache := backtest.NewBarCache(client)

	end := time.Now().UTC()
	start := end.Add(-time.Duration(cfg.Backtest.Days) * 24 * time.Hour)

	jobs, err := buildJobs(ctx, cfg.Sweep, cache, start, end)
	if err != nil {
		slog.Error("failed to prepare sweep", "err", err)
		os.Exit(1)
	}
	if len(jobs) == 0 {
		slog.Warn("sweep grid is empty — nothing to run")
		return
	}

	results := orchestrator.Sweep(ctx, jobs, cfg.Sweep.Workers)

	for _, result := range results {
		if err := store.SaveResult(ctx, result); err != nil {
			slog.Warn("failed to persist result", "err", err, "run_id", result.RunID)
		}
	}
	if err := reporter.Report(ctx, results); err != nil {
		slog.Warn("reporter error", "err", err)
	}
}

// buildJobs expande el grid en jobs concretos, descargando cada serie una
// sola vez. Las combinaciones de periodos inválidas se saltan en silencio:
// son un artefacto de cruzar listas, no un error del usuario.
func buildJobs(ctx context.Context, sweep config.SweepConfig, cache *backtest.BarCache, start, end time.Time) ([]backtest.Job, error) {
	var jobs []backtest.Job
	for _, symbol := range sweep.Symbols {
		for _, interval := range sweep.Intervals {
			bars, err := cache.FetchRange(ctx, symbol, interval, start, end)
			if err != nil {
				return nil, err
			}
			ds := domain.Dataset{
				Name:        symbol + "_" + interval,
				Symbol:      symbol,
				Interval:    interval,
				CollectedAt: time.Now().UTC(),
				Bars:        bars,
			}

			for _, fast := range sweep.FastPeriods {
				for _, slow := range sweep.SlowPeriods {
					for _, signal := range sweep.SignalPeriods {
						params := domain.MACDParameters{
							FastPeriod:   fast,
							SlowPeriod:   slow,
							SignalPeriod: signal,
						}
						if params.Validate() != nil {
							continue
						}
						jobs = append(jobs, backtest.Job{Dataset: ds, Parameters: params})
					}
				}
			}
		}
	}
	return jobs, nil
}
