package backtest

// runner.go — replay de un dataset contra una instancia del engine.
//
// Cada run construye su propio ledger y engine: aislamiento total, nada se
// comparte entre replays concurrentes. La cancelación se comprueba entre
// velas; un replay cancelado devuelve los trades cerrados hasta ese momento
// con métricas calculadas sobre ellos — resultado parcial utilizable, no
// descartado.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oyakov/macdbot/internal/domain"
	"github.com/oyakov/macdbot/internal/engine"
	"github.com/oyakov/macdbot/internal/ledger"
	"github.com/oyakov/macdbot/internal/metrics"
	"github.com/oyakov/macdbot/internal/ports"
)

// Config controla los replays que lanza el orquestador.
type Config struct {
	WindowSize    int
	Quantity      decimal.Decimal
	TakeProfitPct decimal.Decimal
	StopLossPct   decimal.Decimal
}

// Orchestrator reproduce datasets contra engines aislados y agrega métricas.
type Orchestrator struct {
	cfg  Config
	sink ports.MetricsSink
}

// New crea un orquestador. Con sink nil los eventos se descartan.
func New(cfg Config, sink ports.MetricsSink) *Orchestrator {
	if sink == nil {
		sink = ports.NopSink{}
	}
	return &Orchestrator{cfg: cfg, sink: sink}
}

// Run reproduce el dataset completo con los parámetros dados y devuelve el
// resultado combinado. El único error posible es la violación de una
// precondición estructural (parámetros inválidos), rechazada antes de
// procesar la primera vela.
func (o *Orchestrator) Run(ctx context.Context, dataset domain.Dataset, params domain.MACDParameters) (domain.BacktestResult, error) {
	started := time.Now().UTC()

	lgr := ledger.NewSimulated()
	eng, err := engine.New(engine.Config{
		WindowSize:    o.cfg.WindowSize,
		Quantity:      o.cfg.Quantity,
		TakeProfitPct: o.cfg.TakeProfitPct,
		StopLossPct:   o.cfg.StopLossPct,
	}, params, lgr)
	if err != nil {
		return domain.BacktestResult{}, fmt.Errorf("backtest.Run: %w", err)
	}

	slog.Info("backtest: replay started",
		"dataset", dataset.Name,
		"params", params.String(),
		"bars", len(dataset.Bars),
	)

	// Orden defensivo: un dataset desordenado produciría señales absurdas.
	bars := make([]domain.Bar, len(dataset.Bars))
	copy(bars, dataset.Bars)
	domain.SortBars(bars)

	status := "OK"
	for _, bar := range bars {
		if ctx.Err() != nil {
			status = fmt.Sprintf("aborted: %v", ctx.Err())
			break
		}
		eng.OnBar(bar)
	}

	trades := lgr.ClosedTrades()
	result := domain.BacktestResult{
		RunID:       uuid.New().String(),
		DatasetName: dataset.Name,
		Symbol:      dataset.Symbol,
		Interval:    dataset.Interval,
		Parameters:  params,
		Metrics:     metrics.Calculate(dataset.Name, dataset.Symbol, dataset.Interval, bars, trades),
		Trades:      trades,
		Success:     status == "OK",
		Status:      status,
		StartedAt:   started,
		FinishedAt:  time.Now().UTC(),
	}
	symbol := dataset.Symbol
	if symbol == "" && len(bars) > 0 {
		symbol = bars[0].Symbol
	}
	if pos, ok := lgr.ActivePosition(symbol); ok {
		result.OpenAtEnd = &pos
	}

	if rejected := lgr.RejectedOpens(); rejected > 0 {
		o.sink.OpensRejected(dataset.Symbol, rejected)
	}
	o.sink.RunCompleted(result)

	slog.Info("backtest: replay finished",
		"dataset", dataset.Name,
		"params", params.String(),
		"trades", len(trades),
		"netProfit", result.Metrics.NetProfit,
		"status", status,
	)
	return result, nil
}
