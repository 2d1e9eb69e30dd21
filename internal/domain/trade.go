package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side es la dirección de una posición simulada.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Sign devuelve +1 para long y -1 para short, como factor decimal.
func (s Side) Sign() decimal.Decimal {
	if s == SideSell {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(1)
}

// Opposite devuelve la dirección contraria.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// Signal es la clasificación de un crossover MACD en un punto del tiempo.
// No tiene identidad propia: siempre se re-deriva de las series, nunca se
// persiste como estado.
type Signal int

const (
	SignalNone Signal = iota
	SignalBuy
	SignalSell
)

func (s Signal) String() string {
	switch s {
	case SignalBuy:
		return "BUY"
	case SignalSell:
		return "SELL"
	default:
		return "NONE"
	}
}

// Side traduce la señal a dirección de posición. Solo válido para BUY/SELL.
func (s Signal) Side() Side {
	if s == SignalSell {
		return SideSell
	}
	return SideBuy
}

// ExitReason indica por qué se cerró una posición simulada.
type ExitReason string

const (
	ExitTakeProfit     ExitReason = "TAKE_PROFIT"
	ExitStopLoss       ExitReason = "STOP_LOSS"
	ExitSignalReversal ExitReason = "SIGNAL_REVERSAL"
)

// Position es una posición abierta. Como máximo hay una por símbolo;
// el ledger rechaza el segundo intento de apertura sin error.
type Position struct {
	OrderID    string
	Symbol     string
	Side       Side
	Quantity   decimal.Decimal
	EntryPrice decimal.Decimal
	EntryTime  time.Time

	// Niveles de salida fijados en la apertura, direccionales:
	// para un BUY el stop queda debajo de la entrada y el take encima;
	// para un SELL al revés.
	StopLoss   decimal.Decimal
	TakeProfit decimal.Decimal
}

// SimulatedTrade es una posición cerrada. Inmutable una vez creada;
// se añade a la lista de trades cerrados y nunca se elimina.
type SimulatedTrade struct {
	OrderID    string
	Symbol     string
	Side       Side
	Quantity   decimal.Decimal
	EntryPrice decimal.Decimal
	EntryTime  time.Time
	ExitPrice  decimal.Decimal
	ExitTime   time.Time
	ExitReason ExitReason
	Profit     decimal.Decimal
	ReturnPct  decimal.Decimal
}

// Duration es el tiempo que estuvo abierta la posición.
func (t SimulatedTrade) Duration() time.Duration {
	return t.ExitTime.Sub(t.EntryTime)
}
