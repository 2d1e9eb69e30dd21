package ledger

// simulated.go — ledger en memoria para backtests.
//
// Un replay es estrictamente secuencial, así que no hay locking: cada run
// del orquestador recibe su propia instancia y nada se comparte entre runs
// concurrentes.

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oyakov/macdbot/internal/domain"
)

// returnScale es la escala del porcentaje de retorno por trade.
const returnScale = 8

// Simulated implementa Service en memoria.
type Simulated struct {
	active        map[string]domain.Position // símbolo → posición abierta
	closed        []domain.SimulatedTrade
	rejectedOpens int
}

// NewSimulated crea un ledger vacío.
func NewSimulated() *Simulated {
	return &Simulated{active: make(map[string]domain.Position)}
}

// Open abre una posición para el símbolo si no hay ninguna activa.
func (l *Simulated) Open(req OpenRequest) (domain.Position, error) {
	if _, exists := l.active[req.Symbol]; exists {
		l.rejectedOpens++
		slog.Debug("ledger: open rejected, active position exists",
			"symbol", req.Symbol,
			"side", req.Side,
		)
		return domain.Position{}, ErrCapacityReached
	}

	pos := domain.Position{
		OrderID:    uuid.New().String(),
		Symbol:     req.Symbol,
		Side:       req.Side,
		Quantity:   req.Quantity,
		EntryPrice: req.EntryPrice,
		EntryTime:  req.EntryTime,
		StopLoss:   req.StopLoss,
		TakeProfit: req.TakeProfit,
	}
	l.active[req.Symbol] = pos

	slog.Debug("ledger: opened position",
		"orderID", pos.OrderID,
		"symbol", pos.Symbol,
		"side", pos.Side,
		"entry", pos.EntryPrice,
	)
	return pos, nil
}

// Close cierra la posición y añade el trade a la lista de cerrados.
//
// Profit = (exit − entry) × qty × signo de dirección (+1 long, −1 short).
// Retorno = profit / (entry × qty); con denominador cero el retorno es cero,
// nunca NaN ni error.
func (l *Simulated) Close(orderID string, exitPrice decimal.Decimal, exitTime time.Time, reason domain.ExitReason) (domain.SimulatedTrade, error) {
	var pos domain.Position
	found := false
	for _, p := range l.active {
		if p.OrderID == orderID {
			pos = p
			found = true
			break
		}
	}
	if !found {
		slog.Warn("ledger: attempted to close unknown order", "orderID", orderID)
		return domain.SimulatedTrade{}, ErrUnknownOrder
	}
	delete(l.active, pos.Symbol)

	profit := exitPrice.Sub(pos.EntryPrice).Mul(pos.Quantity).Mul(pos.Side.Sign())
	denominator := pos.EntryPrice.Mul(pos.Quantity)
	returnPct := decimal.Zero
	if !denominator.IsZero() {
		returnPct = profit.DivRound(denominator, returnScale)
	}

	trade := domain.SimulatedTrade{
		OrderID:    pos.OrderID,
		Symbol:     pos.Symbol,
		Side:       pos.Side,
		Quantity:   pos.Quantity,
		EntryPrice: pos.EntryPrice,
		EntryTime:  pos.EntryTime,
		ExitPrice:  exitPrice,
		ExitTime:   exitTime,
		ExitReason: reason,
		Profit:     profit,
		ReturnPct:  returnPct,
	}
	l.closed = append(l.closed, trade)

	slog.Debug("ledger: closed position",
		"orderID", trade.OrderID,
		"reason", reason,
		"profit", profit,
	)
	return trade, nil
}

// ActivePosition devuelve la posición abierta del símbolo, si existe.
func (l *Simulated) ActivePosition(symbol string) (domain.Position, bool) {
	pos, ok := l.active[symbol]
	return pos, ok
}

// HasActivePosition indica si el símbolo tiene una posición abierta.
func (l *Simulated) HasActivePosition(symbol string) bool {
	_, ok := l.active[symbol]
	return ok
}

// ClosedTrades devuelve los trades cerrados en orden de inserción.
func (l *Simulated) ClosedTrades() []domain.SimulatedTrade {
	return l.closed
}

// RejectedOpens es el contador de aperturas rechazadas por capacidad,
// observable para diagnóstico.
func (l *Simulated) RejectedOpens() int {
	return l.rejectedOpens
}
