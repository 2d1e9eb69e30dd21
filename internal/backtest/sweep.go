package backtest

// sweep.go — worker pool para barridos de parámetros/símbolos.
//
// El paralelismo existe solo entre replays independientes: cada job recibe
// su propio engine y ledger, así que no hay locking entre runs. El deadline
// se impone sobre el batch completo vía contexto; un replay que lo agota
// devuelve su lista parcial de trades, que sigue siendo utilizable.

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/oyakov/macdbot/internal/domain"
)

// Job es un replay pendiente dentro de un sweep.
type Job struct {
	Dataset    domain.Dataset
	Parameters domain.MACDParameters
}

// Sweep ejecuta todos los jobs en paralelo sobre un worker pool acotado y
// devuelve los resultados en el orden en que terminan.
//
// Si workers <= 0 usa runtime.NumCPU().
func (o *Orchestrator) Sweep(ctx context.Context, jobs []Job, workers int) []domain.BacktestResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	jobCh := make(chan Job, len(jobs))
	resultCh := make(chan domain.BacktestResult, len(jobs))

	// Worker pool: cada worker toma jobs de jobCh y envía resultados a resultCh.
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				result, err := o.Run(ctx, job.Dataset, job.Parameters)
				if err != nil {
					slog.Warn("sweep: replay rejected",
						"dataset", job.Dataset.Name,
						"params", job.Parameters.String(),
						"err", err,
					)
					continue
				}
				resultCh <- result
			}
		}()
	}

	for _, job := range jobs {
		jobCh <- job
	}
	close(jobCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]domain.BacktestResult, 0, len(jobs))
	for result := range resultCh {
		results = append(results, result)
	}

	slog.Info("sweep: complete",
		"jobs", len(jobs),
		"results", len(results),
		"workers", workers,
	)
	return results
}
