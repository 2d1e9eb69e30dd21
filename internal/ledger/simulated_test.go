package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oyakov/macdbot/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func openRequest(symbol string, side domain.Side, entry string) OpenRequest {
	return OpenRequest{
		Symbol:     symbol,
		Side:       side,
		Quantity:   dec("2"),
		EntryPrice: dec(entry),
		EntryTime:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		StopLoss:   dec("90"),
		TakeProfit: dec("120"),
	}
}

func TestSimulated_OpenAssignsOrderID(t *testing.T) {
	l := NewSimulated()

	pos, err := l.Open(openRequest("BTCUSDT", domain.SideBuy, "100"))
	require.NoError(t, err)
	assert.NotEmpty(t, pos.OrderID)
	assert.True(t, l.HasActivePosition("BTCUSDT"))
	assert.False(t, l.HasActivePosition("ETHUSDT"))
}

func TestSimulated_SecondOpenIsRejected(t *testing.T) {
	l := NewSimulated()

	_, err := l.Open(openRequest("BTCUSDT", domain.SideBuy, "100"))
	require.NoError(t, err)

	// Capacidad 1 por símbolo: el segundo intento es un no-op contabilizado.
	_, err = l.Open(openRequest("BTCUSDT", domain.SideSell, "101"))
	assert.ErrorIs(t, err, ErrCapacityReached)
	assert.Equal(t, 1, l.RejectedOpens())

	// La posición original queda intacta.
	pos, ok := l.ActivePosition("BTCUSDT")
	require.True(t, ok)
	assert.Equal(t, domain.SideBuy, pos.Side)
	assert.True(t, dec("100").Equal(pos.EntryPrice))
}

func TestSimulated_OpensOnDistinctSymbolsCoexist(t *testing.T) {
	l := NewSimulated()

	_, err := l.Open(openRequest("BTCUSDT", domain.SideBuy, "100"))
	require.NoError(t, err)
	_, err = l.Open(openRequest("ETHUSDT", domain.SideSell, "2000"))
	require.NoError(t, err)

	assert.True(t, l.HasActivePosition("BTCUSDT"))
	assert.True(t, l.HasActivePosition("ETHUSDT"))
	assert.Zero(t, l.RejectedOpens())
}

func TestSimulated_CloseLongComputesProfitAndReturn(t *testing.T) {
	l := NewSimulated()
	pos, err := l.Open(openRequest("BTCUSDT", domain.SideBuy, "100"))
	require.NoError(t, err)

	exitTime := pos.EntryTime.Add(3 * time.Hour)
	trade, err := l.Close(pos.OrderID, dec("110"), exitTime, domain.ExitTakeProfit)
	require.NoError(t, err)

	// (110−100) × 2 = 20; retorno 20/(100×2) = 0.1
	assert.True(t, dec("20").Equal(trade.Profit), "profit: %s", trade.Profit)
	assert.True(t, dec("0.1").Equal(trade.ReturnPct), "return: %s", trade.ReturnPct)
	assert.Equal(t, domain.ExitTakeProfit, trade.ExitReason)
	assert.Equal(t, 3*time.Hour, trade.Duration())
	assert.False(t, l.HasActivePosition("BTCUSDT"))
}

func TestSimulated_CloseShortInvertsSign(t *testing.T) {
	l := NewSimulated()
	pos, err := l.Open(openRequest("BTCUSDT", domain.SideSell, "100"))
	require.NoError(t, err)

	trade, err := l.Close(pos.OrderID, dec("90"), pos.EntryTime.Add(time.Hour), domain.ExitTakeProfit)
	require.NoError(t, err)

	// Short: la caída de precio es ganancia. (90−100) × 2 × (−1) = 20.
	assert.True(t, dec("20").Equal(trade.Profit), "profit: %s", trade.Profit)
	assert.True(t, dec("0.1").Equal(trade.ReturnPct), "return: %s", trade.ReturnPct)
}

func TestSimulated_CloseUnknownOrder(t *testing.T) {
	l := NewSimulated()
	_, err := l.Close("no-such-order", dec("100"), time.Now(), domain.ExitStopLoss)
	assert.ErrorIs(t, err, ErrUnknownOrder)
}

func TestSimulated_ZeroNotionalReturnIsZero(t *testing.T) {
	l := NewSimulated()
	req := openRequest("BTCUSDT", domain.SideBuy, "0")
	pos, err := l.Open(req)
	require.NoError(t, err)

	trade, err := l.Close(pos.OrderID, dec("10"), pos.EntryTime.Add(time.Hour), domain.ExitSignalReversal)
	require.NoError(t, err)

	// Denominador cero: retorno cero, nunca NaN ni pánico.
	assert.True(t, trade.ReturnPct.IsZero())
	assert.True(t, dec("20").Equal(trade.Profit))
}

func TestSimulated_ClosedTradesKeepInsertionOrder(t *testing.T) {
	l := NewSimulated()

	for i, symbol := range []string{"AAA", "BBB", "CCC"} {
		pos, err := l.Open(openRequest(symbol, domain.SideBuy, "100"))
		require.NoError(t, err)
		_, err = l.Close(pos.OrderID, dec("101"), pos.EntryTime.Add(time.Duration(i)*time.Hour), domain.ExitTakeProfit)
		require.NoError(t, err)
	}

	trades := l.ClosedTrades()
	require.Len(t, trades, 3)
	assert.Equal(t, "AAA", trades[0].Symbol)
	assert.Equal(t, "BBB", trades[1].Symbol)
	assert.Equal(t, "CCC", trades[2].Symbol)
}
