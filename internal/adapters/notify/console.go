package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	"github.com/oyakov/macdbot/internal/domain"
)

// Console implementa ports.Reporter.
type Console struct {
	out     io.Writer
	table   bool
	verbose bool
}

// NewConsole crea un reporter que escribe a stdout.
func NewConsole(table, verbose bool) *Console {
	return &Console{out: os.Stdout, table: table, verbose: verbose}
}

// NewConsoleWriter crea un reporter para tests.
func NewConsoleWriter(w io.Writer, table, verbose bool) *Console {
	return &Console{out: w, table: table, verbose: verbose}
}

// Report imprime los resultados en el modo configurado. Con un único
// resultado imprime el detalle completo; con varios, el ranking del sweep
// y el detalle del mejor.
func (c *Console) Report(_ context.Context, results []domain.BacktestResult) error {
	if len(results) == 0 {
		fmt.Fprintf(c.out, "[%s] no backtest results\n", time.Now().Format("15:04:05"))
		return nil
	}

	if len(results) == 1 {
		c.printResult(results[0])
		return nil
	}

	ranked := make([]domain.BacktestResult, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Metrics.NetProfit.GreaterThan(ranked[j].Metrics.NetProfit)
	})

	c.printSweep(ranked)
	fmt.Fprintln(c.out, "\n=== BEST RUN ===")
	c.printResult(ranked[0])
	return nil
}

// printResult imprime el detalle de un replay.
func (c *Console) printResult(r domain.BacktestResult) {
	m := r.Metrics
	fmt.Fprintf(c.out, "\n[%s] %s %s %s — %d trades, status %s\n",
		r.FinishedAt.Format("15:04:05"), r.Symbol, r.Interval, r.Parameters.String(),
		m.TotalTrades, r.Status)

	table := tablewriter.NewWriter(c.out)
	table.Header("Metric", "Value")

	rows := [][2]string{
		{"Total trades", fmt.Sprintf("%d", m.TotalTrades)},
		{"Winning / losing / even", fmt.Sprintf("%d / %d / %d", m.WinningTrades, m.LosingTrades, m.BreakEvenTrades)},
		{"Net profit", m.NetProfit.StringFixed(2)},
		{"Win rate", pctLabel(m.WinRate)},
		{"Average win / loss", fmt.Sprintf("%s / %s", m.AverageWin.StringFixed(2), m.AverageLoss.StringFixed(2))},
		{"Best / worst trade", fmt.Sprintf("%s / %s", m.BestTrade.StringFixed(2), m.WorstTrade.StringFixed(2))},
		{"Max drawdown", fmt.Sprintf("%s (%s)", m.MaxDrawdown.StringFixed(2), pctLabel(m.MaxDrawdownPct))},
		{"Sharpe / Sortino", fmt.Sprintf("%s / %s", m.SharpeRatio.StringFixed(4), m.SortinoRatio.StringFixed(4))},
		{"Profit factor", profitFactorLabel(m)},
		{"Recovery factor", m.RecoveryFactor.StringFixed(4)},
		{"Max consecutive W/L", fmt.Sprintf("%d / %d", m.MaxConsecutiveWins, m.MaxConsecutiveLosses)},
		{"Expectancy", m.Expectancy.StringFixed(2)},
		{"Kelly %", pctLabel(m.KellyPercentage)},
		{"Avg trade duration", fmt.Sprintf("%sh", m.AverageTradeDurationHours.StringFixed(1))},
		{"Trades per day", m.TradingFrequency.StringFixed(2)},
		{"Market return", pctLabel(m.MarketReturn)},
		{"Strategy vs market", pctLabel(m.StrategyOutperformance)},
	}
	for _, row := range rows {
		table.Append(row[0], row[1])
	}
	table.Render()

	if r.OpenAtEnd != nil {
		p := r.OpenAtEnd
		fmt.Fprintf(c.out, "  Open at end: %s %s @ %s (sl %s / tp %s)\n",
			p.Side, p.Symbol, p.EntryPrice.StringFixed(2),
			p.StopLoss.StringFixed(2), p.TakeProfit.StringFixed(2))
	}

	if c.verbose && len(r.Trades) > 0 {
		c.printTrades(r.Trades)
	}
}

// printTrades imprime el log trade a trade.
func (c *Console) printTrades(trades []domain.SimulatedTrade) {
	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Side", "Entry", "Exit", "Reason", "Profit", "Return", "Held")

	for i, t := range trades {
		table.Append(
			fmt.Sprintf("%d", i+1),
			string(t.Side),
			t.EntryPrice.StringFixed(2),
			t.ExitPrice.StringFixed(2),
			string(t.ExitReason),
			t.Profit.StringFixed(2),
			pctLabel(t.ReturnPct),
			fmt.Sprintf("%.1fh", t.Duration().Hours()),
		)
	}
	table.Render()
}

// printSweep imprime el ranking de un sweep, mejores primero.
func (c *Console) printSweep(ranked []domain.BacktestResult) {
	fmt.Fprintf(c.out, "\n[%s] sweep — %d runs\n", time.Now().Format("15:04:05"), len(ranked))

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Symbol", "Interval", "Params", "Trades", "NetProfit", "WinRate", "PF", "MaxDD", "Sharpe")

	for i, r := range ranked {
		m := r.Metrics
		table.Append(
			fmt.Sprintf("%d", i+1),
			r.Symbol,
			r.Interval,
			r.Parameters.String(),
			fmt.Sprintf("%d", m.TotalTrades),
			m.NetProfit.StringFixed(2),
			pctLabel(m.WinRate),
			profitFactorLabel(m),
			m.MaxDrawdown.StringFixed(2),
			m.SharpeRatio.StringFixed(4),
		)
	}
	table.Render()
}

// --- helpers ---

var hundred = decimal.NewFromInt(100)

// pctLabel formatea una fracción como porcentaje legible.
func pctLabel(frac decimal.Decimal) string {
	return frac.Mul(hundred).StringFixed(2) + "%"
}

// profitFactorLabel respeta el caso "sin pérdidas": el factor no está
// definido y se muestra como INF, nunca como un número inventado.
func profitFactorLabel(m domain.BacktestMetrics) string {
	if !m.ProfitFactorDefined {
		if m.TotalTrades == 0 {
			return "-"
		}
		return "INF"
	}
	return m.ProfitFactor.StringFixed(4)
}
