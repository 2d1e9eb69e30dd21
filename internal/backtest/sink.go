package backtest

import (
	"log/slog"

	"github.com/oyakov/macdbot/internal/domain"
)

// LogSink emite los eventos del orquestador como logs estructurados.
type LogSink struct{}

func (LogSink) RunCompleted(result domain.BacktestResult) {
	slog.Info("run completed",
		"run_id", result.RunID,
		"symbol", result.Symbol,
		"params", result.Parameters.String(),
		"trades", result.Metrics.TotalTrades,
		"netProfit", result.Metrics.NetProfit,
		"winRate", result.Metrics.WinRate,
	)
}

func (LogSink) OpensRejected(symbol string, count int) {
	slog.Warn("opens rejected while a position was active",
		"symbol", symbol,
		"count", count,
	)
}
