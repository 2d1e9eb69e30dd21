package engine

// engine.go — sliding-window trade simulation state machine.
//
// One engine instance consumes one chronological bar stream. It keeps a
// fixed-capacity FIFO window of recent bars, re-derives the MACD signal on
// every full window, and drives position opens/closes through the ledger.
// A replay is single-threaded by contract: every transition completes
// before the next bar is processed.

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/oyakov/macdbot/internal/domain"
	"github.com/oyakov/macdbot/internal/indicator"
	"github.com/oyakov/macdbot/internal/ledger"
)

// Config controls one simulation run.
type Config struct {
	// WindowSize is the sliding-window capacity and the minimum sample
	// size: no signal is evaluated until the window is full. Zero means
	// params.MinDataPoints().
	WindowSize int

	// Quantity is the fixed position size for every simulated order.
	Quantity decimal.Decimal

	// TakeProfitPct and StopLossPct are fractional offsets from the entry
	// price (0.03 = 3%). Direction-aware: for a BUY the stop sits below
	// entry and the take above; inverted for a SELL.
	TakeProfitPct decimal.Decimal
	StopLossPct   decimal.Decimal
}

// Engine is the per-run simulation state machine.
type Engine struct {
	cfg    Config
	params domain.MACDParameters
	ledger ledger.Service
	window []domain.Bar
}

// New validates the configuration and builds an engine. Structural
// precondition violations are rejected here, before any bar is processed.
func New(cfg Config, params domain.MACDParameters, lgr ledger.Service) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("engine.New: %w", err)
	}
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = params.MinDataPoints()
	}
	if cfg.WindowSize < params.MinDataPoints() {
		return nil, fmt.Errorf("engine.New: window size %d below minimum sample size %d",
			cfg.WindowSize, params.MinDataPoints())
	}
	if cfg.Quantity.Sign() <= 0 {
		return nil, fmt.Errorf("engine.New: quantity must be positive, got %s", cfg.Quantity)
	}
	if cfg.TakeProfitPct.Sign() < 0 || cfg.StopLossPct.Sign() < 0 {
		return nil, fmt.Errorf("engine.New: negative exit thresholds (tp=%s sl=%s)",
			cfg.TakeProfitPct, cfg.StopLossPct)
	}
	return &Engine{
		cfg:    cfg,
		params: params,
		ledger: lgr,
		window: make([]domain.Bar, 0, cfg.WindowSize),
	}, nil
}

// OnBar feeds one bar through the state machine.
func (e *Engine) OnBar(bar domain.Bar) {
	e.window = append(e.window, bar)
	if len(e.window) > e.cfg.WindowSize {
		// Strict FIFO of fixed size: drop the oldest bar.
		copy(e.window, e.window[1:])
		e.window = e.window[:e.cfg.WindowSize]
	}

	if len(e.window) < e.cfg.WindowSize {
		return
	}

	e.process(bar)
}

// process runs calculator + detector over the window and applies the
// position policy for the triggering bar.
func (e *Engine) process(bar domain.Bar) {
	res, err := indicator.MACD(domain.Closes(e.window), e.params)
	sig := domain.SignalNone
	if err != nil {
		// Insufficient data / alignment failure: a local no-result, the
		// replay continues. Exits are still evaluated below.
		if !errors.Is(err, indicator.ErrInsufficientData) {
			slog.Warn("engine: indicator failure", "symbol", bar.Symbol, "err", err)
		}
	} else {
		sig = indicator.Detect(res.MACD, res.Signal)
	}

	if sig == domain.SignalNone {
		e.evaluateExits(bar)
		return
	}

	pos, open := e.ledger.ActivePosition(bar.Symbol)
	if !open {
		e.openPosition(sig, bar)
		return
	}

	if pos.Side == sig.Side() {
		// Same direction while a position is open: no pyramiding.
		slog.Debug("engine: signal in open direction ignored",
			"symbol", bar.Symbol, "side", pos.Side)
		return
	}

	if _, err := e.ledger.Close(pos.OrderID, bar.Close, bar.CloseTime, domain.ExitSignalReversal); err != nil {
		slog.Warn("engine: reversal close failed", "orderID", pos.OrderID, "err", err)
	}
}

// openPosition opens in the signal's direction at the bar's close price,
// with direction-aware stop-loss/take-profit levels fixed at entry.
func (e *Engine) openPosition(sig domain.Signal, bar domain.Bar) {
	side := sig.Side()
	entry := bar.Close

	var stopLoss, takeProfit decimal.Decimal
	if side == domain.SideBuy {
		stopLoss = entry.Mul(decimal.NewFromInt(1).Sub(e.cfg.StopLossPct)).Round(indicator.Scale)
		takeProfit = entry.Mul(decimal.NewFromInt(1).Add(e.cfg.TakeProfitPct)).Round(indicator.Scale)
	} else {
		stopLoss = entry.Mul(decimal.NewFromInt(1).Add(e.cfg.StopLossPct)).Round(indicator.Scale)
		takeProfit = entry.Mul(decimal.NewFromInt(1).Sub(e.cfg.TakeProfitPct)).Round(indicator.Scale)
	}

	pos, err := e.ledger.Open(ledger.OpenRequest{
		Symbol:     bar.Symbol,
		Side:       side,
		Quantity:   e.cfg.Quantity,
		EntryPrice: entry,
		EntryTime:  bar.CloseTime,
		StopLoss:   stopLoss,
		TakeProfit: takeProfit,
	})
	if err != nil {
		if errors.Is(err, ledger.ErrCapacityReached) {
			// Single-position-per-instrument policy: a no-op, not a fault.
			slog.Warn("engine: open rejected, capacity reached", "symbol", bar.Symbol)
			return
		}
		slog.Warn("engine: open failed", "symbol", bar.Symbol, "err", err)
		return
	}

	slog.Debug("engine: opened position",
		"orderID", pos.OrderID,
		"symbol", pos.Symbol,
		"side", pos.Side,
		"entry", pos.EntryPrice,
		"stopLoss", pos.StopLoss,
		"takeProfit", pos.TakeProfit,
	)
}

// evaluateExits checks stop-loss/take-profit against the bar's close when no
// signal fired. The take-profit check runs first: when both thresholds could
// trigger on the same bar the more optimistic outcome wins. That ordering is
// load-bearing for reproducibility — do not reorder.
func (e *Engine) evaluateExits(bar domain.Bar) {
	pos, open := e.ledger.ActivePosition(bar.Symbol)
	if !open {
		return
	}

	price := bar.Close
	reason := domain.ExitReason("")

	if pos.Side == domain.SideBuy {
		switch {
		case price.GreaterThanOrEqual(pos.TakeProfit):
			reason = domain.ExitTakeProfit
		case price.LessThanOrEqual(pos.StopLoss):
			reason = domain.ExitStopLoss
		}
	} else {
		switch {
		case price.LessThanOrEqual(pos.TakeProfit):
			reason = domain.ExitTakeProfit
		case price.GreaterThanOrEqual(pos.StopLoss):
			reason = domain.ExitStopLoss
		}
	}

	if reason == "" {
		return
	}

	if _, err := e.ledger.Close(pos.OrderID, price, bar.CloseTime, reason); err != nil {
		slog.Warn("engine: exit close failed", "orderID", pos.OrderID, "err", err)
	}
}
