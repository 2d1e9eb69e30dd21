package ledger

// ledger.go — contrato del backend de ejecución de órdenes.
//
// El engine de simulación depende solo de este conjunto de operaciones, de
// modo que un ledger simulado en memoria y un adaptador contra un exchange
// real son variantes intercambiables: el engine corre sin cambios contra
// cualquiera de los dos.

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oyakov/macdbot/internal/domain"
)

// ErrCapacityReached señala el intento de abrir una segunda posición para un
// símbolo que ya tiene una abierta. Es política deliberada de una-posición-
// por-instrumento, no un fallo: el caller lo trata como no-op y sigue.
var ErrCapacityReached = errors.New("ledger: active position already exists for symbol")

// ErrUnknownOrder señala el cierre de una orden que el ledger no conoce.
var ErrUnknownOrder = errors.New("ledger: unknown order id")

// OpenRequest son los datos de apertura de una posición.
type OpenRequest struct {
	Symbol     string
	Side       domain.Side
	Quantity   decimal.Decimal
	EntryPrice decimal.Decimal
	EntryTime  time.Time
	StopLoss   decimal.Decimal
	TakeProfit decimal.Decimal
}

// Service es el conjunto de capacidades que el engine necesita de un
// backend de órdenes, simulado o real.
type Service interface {
	// Open abre una posición si el símbolo no tiene ninguna activa.
	// Devuelve ErrCapacityReached si ya existe una.
	Open(req OpenRequest) (domain.Position, error)

	// Close cierra la posición identificada por orderID al precio dado y
	// devuelve el trade resultante con profit y retorno calculados.
	Close(orderID string, exitPrice decimal.Decimal, exitTime time.Time, reason domain.ExitReason) (domain.SimulatedTrade, error)

	// ActivePosition devuelve la posición abierta del símbolo, si existe.
	ActivePosition(symbol string) (domain.Position, bool)

	// HasActivePosition indica si el símbolo tiene una posición abierta.
	HasActivePosition(symbol string) bool
}
