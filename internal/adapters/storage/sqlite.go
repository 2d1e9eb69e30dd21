package storage

// sqlite.go — persistencia de resultados de backtest.
//
// Estrategia:
//   - `runs`: una fila por replay con parámetros y métricas agregadas.
//   - `trades`: una fila por trade cerrado, ligada al run por run_id.
//   - Decimales como TEXT: REAL perdería precisión y los valores solo se
//     leen para mostrar o re-agregar, nunca para aritmética en SQL.
//   - Prune automático al arrancar: runs de más de 90 días (y sus trades).

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/oyakov/macdbot/internal/domain"
)

const schema = `
-- Una fila por replay de backtest
CREATE TABLE IF NOT EXISTS runs (
    run_id        TEXT PRIMARY KEY,
    dataset       TEXT     NOT NULL,
    symbol        TEXT     NOT NULL,
    interval      TEXT     NOT NULL,
    fast_period   INTEGER  NOT NULL,
    slow_period   INTEGER  NOT NULL,
    signal_period INTEGER  NOT NULL,
    total_trades  INTEGER  NOT NULL DEFAULT 0,
    winning       INTEGER  NOT NULL DEFAULT 0,
    losing        INTEGER  NOT NULL DEFAULT 0,
    net_profit    TEXT     NOT NULL DEFAULT '0',
    win_rate      TEXT     NOT NULL DEFAULT '0',
    profit_factor TEXT     NOT NULL DEFAULT '0',
    pf_defined    INTEGER  NOT NULL DEFAULT 0,
    max_drawdown  TEXT     NOT NULL DEFAULT '0',
    sharpe        TEXT     NOT NULL DEFAULT '0',
    expectancy    TEXT     NOT NULL DEFAULT '0',
    kelly         TEXT     NOT NULL DEFAULT '0',
    success       INTEGER  NOT NULL DEFAULT 0,
    status        TEXT     NOT NULL DEFAULT '',
    started_at    INTEGER  NOT NULL,
    finished_at   INTEGER  NOT NULL
);

-- Una fila por trade cerrado
CREATE TABLE IF NOT EXISTS trades (
    order_id    TEXT PRIMARY KEY,
    run_id      TEXT NOT NULL REFERENCES runs(run_id),
    symbol      TEXT NOT NULL,
    side        TEXT NOT NULL,
    quantity    TEXT NOT NULL,
    entry_price TEXT NOT NULL,
    exit_price  TEXT NOT NULL,
    entry_time  INTEGER NOT NULL,
    exit_time   INTEGER NOT NULL,
    exit_reason TEXT NOT NULL,
    profit      TEXT NOT NULL,
    return_pct  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_finished ON runs(finished_at DESC);
CREATE INDEX IF NOT EXISTS idx_runs_symbol   ON runs(symbol, interval);
CREATE INDEX IF NOT EXISTS idx_trades_run    ON trades(run_id);
`

const retentionRuns = 90 * 24 * time.Hour

// SQLiteStorage implementa ports.ResultStorage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia runs antiguos.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveResult persiste el run y todos sus trades en una sola transacción.
func (s *SQLiteStorage) SaveResult(ctx context.Context, result domain.BacktestResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveResult: begin tx: %w", err)
	}
	defer tx.Rollback()

	m := result.Metrics
	success := 0
	if result.Success {
		success = 1
	}
	pfDefined := 0
	if m.ProfitFactorDefined {
		pfDefined = 1
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs
			(run_id, dataset, symbol, interval,
			 fast_period, slow_period, signal_period,
			 total_trades, winning, losing,
			 net_profit, win_rate, profit_factor, pf_defined,
			 max_drawdown, sharpe, expectancy, kelly,
			 success, status, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		result.RunID, result.DatasetName, result.Symbol, result.Interval,
		result.Parameters.FastPeriod, result.Parameters.SlowPeriod, result.Parameters.SignalPeriod,
		m.TotalTrades, m.WinningTrades, m.LosingTrades,
		m.NetProfit.String(), m.WinRate.String(), m.ProfitFactor.String(), pfDefined,
		m.MaxDrawdown.String(), m.SharpeRatio.String(), m.Expectancy.String(), m.KellyPercentage.String(),
		success, result.Status, result.StartedAt.UnixMilli(), result.FinishedAt.UnixMilli(),
	); err != nil {
		return fmt.Errorf("storage.SaveResult: insert run %s: %w", result.RunID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trades
			(order_id, run_id, symbol, side, quantity,
			 entry_price, exit_price, entry_time, exit_time,
			 exit_reason, profit, return_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("storage.SaveResult: prepare: %w", err)
	}
	defer stmt.Close()

	for _, t := range result.Trades {
		if _, err := stmt.ExecContext(ctx,
			t.OrderID, result.RunID, t.Symbol, string(t.Side), t.Quantity.String(),
			t.EntryPrice.String(), t.ExitPrice.String(), t.EntryTime.UnixMilli(), t.ExitTime.UnixMilli(),
			string(t.ExitReason), t.Profit.String(), t.ReturnPct.String(),
		); err != nil {
			return fmt.Errorf("storage.SaveResult: insert trade %s: %w", t.OrderID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveResult: commit: %w", err)
	}
	return nil
}

// History devuelve los runs cuyo finished_at está en el rango dado, con sus
// trades, ordenados por net_profit desc — los mejores primero.
func (s *SQLiteStorage) History(ctx context.Context, from, to time.Time) ([]domain.BacktestResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, dataset, symbol, interval,
		       fast_period, slow_period, signal_period,
		       total_trades, winning, losing,
		       net_profit, win_rate, profit_factor, pf_defined,
		       max_drawdown, sharpe, expectancy, kelly,
		       success, status, started_at, finished_at
		FROM runs
		WHERE finished_at BETWEEN ? AND ?
		ORDER BY CAST(net_profit AS REAL) DESC
	`, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("storage.History: query runs: %w", err)
	}
	defer rows.Close()

	var results []domain.BacktestResult
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("storage.History: scan run: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.History: %w", err)
	}

	for i := range results {
		trades, err := s.tradesForRun(ctx, results[i].RunID)
		if err != nil {
			return nil, err
		}
		results[i].Trades = trades
	}
	return results, nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

func scanRun(rows *sql.Rows) (domain.BacktestResult, error) {
	var r domain.BacktestResult
	var netProfit, winRate, profitFactor, maxDrawdown, sharpe, expectancy, kelly string
	var success, pfDefined int
	var startedMs, finishedMs int64

	if err := rows.Scan(
		&r.RunID, &r.DatasetName, &r.Symbol, &r.Interval,
		&r.Parameters.FastPeriod, &r.Parameters.SlowPeriod, &r.Parameters.SignalPeriod,
		&r.Metrics.TotalTrades, &r.Metrics.WinningTrades, &r.Metrics.LosingTrades,
		&netProfit, &winRate, &profitFactor, &pfDefined,
		&maxDrawdown, &sharpe, &expectancy, &kelly,
		&success, &r.Status, &startedMs, &finishedMs,
	); err != nil {
		return domain.BacktestResult{}, err
	}

	r.StartedAt = time.UnixMilli(startedMs).UTC()
	r.FinishedAt = time.UnixMilli(finishedMs).UTC()
	r.Success = success == 1
	r.Metrics.ProfitFactorDefined = pfDefined == 1

	fields := []struct {
		val string
		dst *decimal.Decimal
	}{
		{netProfit, &r.Metrics.NetProfit},
		{winRate, &r.Metrics.WinRate},
		{profitFactor, &r.Metrics.ProfitFactor},
		{maxDrawdown, &r.Metrics.MaxDrawdown},
		{sharpe, &r.Metrics.SharpeRatio},
		{expectancy, &r.Metrics.Expectancy},
		{kelly, &r.Metrics.KellyPercentage},
	}
	for _, f := range fields {
		d, err := decimal.NewFromString(f.val)
		if err != nil {
			return domain.BacktestResult{}, err
		}
		*f.dst = d
	}
	return r, nil
}

func (s *SQLiteStorage) tradesForRun(ctx context.Context, runID string) ([]domain.SimulatedTrade, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT order_id, symbol, side, quantity,
		       entry_price, exit_price, entry_time, exit_time,
		       exit_reason, profit, return_pct
		FROM trades
		WHERE run_id = ?
		ORDER BY exit_time ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("storage.History: query trades %s: %w", runID, err)
	}
	defer rows.Close()

	var trades []domain.SimulatedTrade
	for rows.Next() {
		var t domain.SimulatedTrade
		var side, reason string
		var quantity, entryPrice, exitPrice, profit, returnPct string
		var entryMs, exitMs int64

		if err := rows.Scan(
			&t.OrderID, &t.Symbol, &side, &quantity,
			&entryPrice, &exitPrice, &entryMs, &exitMs,
			&reason, &profit, &returnPct,
		); err != nil {
			return nil, fmt.Errorf("storage.History: scan trade: %w", err)
		}
		t.EntryTime = time.UnixMilli(entryMs).UTC()
		t.ExitTime = time.UnixMilli(exitMs).UTC()
		t.Side = domain.Side(side)
		t.ExitReason = domain.ExitReason(reason)

		fields := []struct {
			val string
			dst *decimal.Decimal
		}{
			{quantity, &t.Quantity},
			{entryPrice, &t.EntryPrice},
			{exitPrice, &t.ExitPrice},
			{profit, &t.Profit},
			{returnPct, &t.ReturnPct},
		}
		for _, f := range fields {
			d, err := decimal.NewFromString(f.val)
			if err != nil {
				return nil, fmt.Errorf("storage.History: trade %s: %w", t.OrderID, err)
			}
			*f.dst = d
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// pruneOld elimina runs antiguos (y sus trades) para mantener la DB ligera.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionRuns).UnixMilli()
	s.db.ExecContext(ctx, `DELETE FROM trades WHERE run_id IN (SELECT run_id FROM runs WHERE finished_at < ?)`, cutoff)
	s.db.ExecContext(ctx, `DELETE FROM runs WHERE finished_at < ?`, cutoff)
}
