package notify_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oyakov/macdbot/internal/adapters/notify"
	"github.com/oyakov/macdbot/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func makeResult(runID, netProfit string, pfDefined bool) domain.BacktestResult {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return domain.BacktestResult{
		RunID:       runID,
		DatasetName: "btc_1h",
		Symbol:      "BTCUSDT",
		Interval:    "1h",
		Parameters:  domain.DefaultMACDParameters(),
		Metrics: domain.BacktestMetrics{
			TotalTrades:         2,
			WinningTrades:       2,
			NetProfit:           dec(netProfit),
			WinRate:             dec("1"),
			ProfitFactor:        dec("2"),
			ProfitFactorDefined: pfDefined,
		},
		Trades: []domain.SimulatedTrade{{
			OrderID:    runID + "-t1",
			Symbol:     "BTCUSDT",
			Side:       domain.SideBuy,
			Quantity:   dec("1"),
			EntryPrice: dec("101"),
			EntryTime:  now.Add(-2 * time.Hour),
			ExitPrice:  dec("108"),
			ExitTime:   now,
			ExitReason: domain.ExitTakeProfit,
			Profit:     dec("7"),
			ReturnPct:  dec("0.0693"),
		}},
		Success:    true,
		Status:     "OK",
		StartedAt:  now.Add(-time.Minute),
		FinishedAt: now,
	}
}

func TestConsole_ReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, false, false)

	require.NoError(t, c.Report(context.Background(), nil))
	assert.Contains(t, buf.String(), "no backtest results")
}

func TestConsole_SingleResultPrintsMetrics(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, false, false)

	require.NoError(t, c.Report(context.Background(), []domain.BacktestResult{
		makeResult("run-a", "14", true),
	}))

	out := buf.String()
	assert.Contains(t, out, "MACD(12,26,9)")
	assert.Contains(t, out, "Net profit")
	assert.Contains(t, out, "14.00")
	assert.Contains(t, out, "2.0000") // profit factor definido
}

func TestConsole_UndefinedProfitFactorPrintsINF(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, false, false)

	require.NoError(t, c.Report(context.Background(), []domain.BacktestResult{
		makeResult("run-a", "14", false),
	}))

	assert.Contains(t, buf.String(), "INF")
}

func TestConsole_SweepRankedByNetProfit(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, false, false)

	require.NoError(t, c.Report(context.Background(), []domain.BacktestResult{
		makeResult("run-low", "3", true),
		makeResult("run-high", "14", true),
	}))

	out := buf.String()
	assert.Contains(t, out, "sweep — 2 runs")
	assert.Contains(t, out, "BEST RUN")
	// El mejor (14) aparece en el ranking antes que el peor (3).
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("14.00")), bytes.Index(buf.Bytes(), []byte("3.00")))
}

func TestConsole_VerboseIncludesTradeTable(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, true, true)

	require.NoError(t, c.Report(context.Background(), []domain.BacktestResult{
		makeResult("run-a", "7", true),
	}))

	out := buf.String()
	assert.Contains(t, out, "TAKE_PROFIT")
	assert.Contains(t, out, "101.00")
	assert.Contains(t, out, "108.00")
}
