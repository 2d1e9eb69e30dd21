package indicator

// detector.go — clasificación de crossovers MACD/señal.

import (
	"github.com/shopspring/decimal"

	"github.com/oyakov/macdbot/internal/domain"
)

// Detect clasifica la señal en el punto más reciente de las series,
// comparando las dos últimas diferencias macd−signal:
//
//	diff[i-1] ≤ 0 y diff[i] > 0 → BUY  (MACD cruza la señal desde abajo)
//	diff[i-1] ≥ 0 y diff[i] < 0 → SELL (cruza desde arriba)
//	en otro caso → NONE
//
// El empate en cero es deliberadamente asimétrico: una secuencia 0→0 nunca
// dispara, pero 0→positivo dispara BUY y 0→negativo dispara SELL. Cambiar
// los ≤/≥ movería la señal de vela y haría incomparables los backtests.
func Detect(macd, signal []decimal.Decimal) domain.Signal {
	if len(signal) < 2 || len(macd) < 2 {
		return domain.SignalNone
	}

	// La línea de señal va alineada por la derecha sobre la línea MACD.
	offset := len(macd) - len(signal)
	last := len(signal) - 1

	prevDiff := macd[offset+last-1].Sub(signal[last-1])
	currDiff := macd[offset+last].Sub(signal[last])

	switch {
	case prevDiff.Sign() <= 0 && currDiff.Sign() > 0:
		return domain.SignalBuy
	case prevDiff.Sign() >= 0 && currDiff.Sign() < 0:
		return domain.SignalSell
	default:
		return domain.SignalNone
	}
}
