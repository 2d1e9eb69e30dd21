package metrics

// calculator.go — agregador de métricas de backtest.
//
// Función pura de la lista de trades cerrados (+ la serie de velas para la
// comparación contra mercado) al registro de métricas. Sin estado
// incremental: se recalcula desde cero en cada llamada.
//
// Política de denominador cero, explícita en cada métrica:
//   - win rate / loss rate / average return: cero sin trades.
//   - drawdown %: solo se calcula con peak > 0.
//   - sharpe / sortino: cero con desviación cero, nunca infinito.
//   - profit factor: flag ProfitFactorDefined=false sin trades perdedores.
//   - kelly: cero con pérdida media cero.

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/oyakov/macdbot/internal/domain"
)

const (
	// Escalas de presentación; el cálculo intermedio va a divScale.
	moneyScale   = 2
	percentScale = 4
	divScale     = 10
)

var hoursPerDay = decimal.NewFromInt(24)

// Calculate agrega la lista de trades cerrados de un replay en un registro
// de métricas. bars puede ser nil: en ese caso se omite la comparación
// contra mercado. Una lista vacía produce un registro con conteos a cero,
// que es un resultado válido, no un error.
func Calculate(datasetName, symbol, interval string, bars []domain.Bar, trades []domain.SimulatedTrade) domain.BacktestMetrics {
	m := domain.BacktestMetrics{
		DatasetName:         datasetName,
		Symbol:              symbol,
		Interval:            interval,
		ProfitFactorDefined: true,
	}
	fillMarket(&m, bars)

	if len(trades) == 0 {
		m.ProfitFactorDefined = false
		return m
	}

	total := decimal.NewFromInt(int64(len(trades)))

	// Conteos y agregados en una sola pasada cronológica.
	var (
		netProfit   = decimal.Zero
		sumReturns  = decimal.Zero
		grossProfit = decimal.Zero
		grossLoss   = decimal.Zero
		best        = trades[0].Profit
		worst       = trades[0].Profit

		equity      = decimal.Zero
		peak        = decimal.Zero
		maxDrawdown = decimal.Zero
		maxDDPct    = decimal.Zero

		winStreak, lossStreak       int
		maxWinStreak, maxLossStreak int

		sumDuration time.Duration
	)

	for _, t := range trades {
		netProfit = netProfit.Add(t.Profit)
		sumReturns = sumReturns.Add(t.ReturnPct)
		sumDuration += t.Duration()

		switch t.Profit.Sign() {
		case 1:
			m.WinningTrades++
			grossProfit = grossProfit.Add(t.Profit)
			winStreak++
			lossStreak = 0
			maxWinStreak = max(maxWinStreak, winStreak)
		case -1:
			m.LosingTrades++
			grossLoss = grossLoss.Add(t.Profit.Abs())
			lossStreak++
			winStreak = 0
			maxLossStreak = max(maxLossStreak, lossStreak)
		default:
			m.BreakEvenTrades++
			winStreak = 0
			lossStreak = 0
		}

		if t.Profit.GreaterThan(best) {
			best = t.Profit
		}
		if t.Profit.LessThan(worst) {
			worst = t.Profit
		}

		// Curva de equity: drawdown = pico − equity; el porcentaje divide
		// por el pico en ese punto, nunca por un pico cero o negativo.
		equity = equity.Add(t.Profit)
		if equity.GreaterThan(peak) {
			peak = equity
		}
		dd := peak.Sub(equity)
		if dd.GreaterThan(maxDrawdown) && peak.Sign() > 0 {
			maxDrawdown = dd
			maxDDPct = dd.DivRound(peak, divScale)
		}
	}

	m.TotalTrades = len(trades)
	m.NetProfit = scaleMoney(netProfit)
	m.BestTrade = scaleMoney(best)
	m.WorstTrade = scaleMoney(worst)
	m.MaxDrawdown = scaleMoney(maxDrawdown)
	m.MaxDrawdownPct = scalePercent(maxDDPct)
	m.MaxConsecutiveWins = maxWinStreak
	m.MaxConsecutiveLosses = maxLossStreak

	m.WinRate = scalePercent(decimal.NewFromInt(int64(m.WinningTrades)).DivRound(total, divScale))
	m.LossRate = scalePercent(decimal.NewFromInt(int64(m.LosingTrades)).DivRound(total, divScale))

	averageWin := decimal.Zero
	if m.WinningTrades > 0 {
		averageWin = grossProfit.DivRound(decimal.NewFromInt(int64(m.WinningTrades)), divScale)
	}
	averageLoss := decimal.Zero
	if m.LosingTrades > 0 {
		averageLoss = grossLoss.DivRound(decimal.NewFromInt(int64(m.LosingTrades)), divScale)
	}
	m.AverageWin = scaleMoney(averageWin)
	m.AverageLoss = scaleMoney(averageLoss.Neg())

	averageReturn := sumReturns.DivRound(total, divScale)
	m.AverageReturn = scalePercent(averageReturn)

	m.SharpeRatio = scalePercent(sharpe(trades, averageReturn))
	m.SortinoRatio = scalePercent(sortino(trades, averageReturn))

	// Profit factor: grossProfit / grossLoss. Sin pérdidas el factor es
	// "infinito"; se marca indefinido en vez de dividir por cero.
	if grossLoss.IsZero() {
		m.ProfitFactor = decimal.Zero
		m.ProfitFactorDefined = false
	} else {
		m.ProfitFactor = scalePercent(grossProfit.DivRound(grossLoss, divScale))
	}

	if maxDrawdown.Sign() > 0 {
		m.RecoveryFactor = scalePercent(netProfit.DivRound(maxDrawdown, divScale))
	}

	m.Expectancy = scaleMoney(netProfit.DivRound(total, divScale))
	m.KellyPercentage = scalePercent(kelly(m.WinRate, averageWin, averageLoss))

	fillTime(&m, trades, sumDuration)
	fillOutperformance(&m, netProfit)

	return m
}

// sharpe es la estadística tipo Sharpe del spec de la estrategia: retorno
// medio por trade dividido por la desviación estándar poblacional de los
// retornos. Con desviación cero devuelve cero.
func sharpe(trades []domain.SimulatedTrade, mean decimal.Decimal) decimal.Decimal {
	variance := decimal.Zero
	for _, t := range trades {
		d := t.ReturnPct.Sub(mean)
		variance = variance.Add(d.Mul(d))
	}
	variance = variance.DivRound(decimal.NewFromInt(int64(len(trades))), divScale)

	stdDev := sqrt(variance)
	if stdDev.IsZero() {
		return decimal.Zero
	}
	return mean.DivRound(stdDev, divScale)
}

// sortino divide el retorno medio por la desviación de los retornos
// negativos únicamente. Cero si no hay retornos negativos.
func sortino(trades []domain.SimulatedTrade, mean decimal.Decimal) decimal.Decimal {
	downside := decimal.Zero
	for _, t := range trades {
		if t.ReturnPct.Sign() < 0 {
			downside = downside.Add(t.ReturnPct.Mul(t.ReturnPct))
		}
	}
	downside = downside.DivRound(decimal.NewFromInt(int64(len(trades))), divScale)

	stdDev := sqrt(downside)
	if stdDev.IsZero() {
		return decimal.Zero
	}
	return mean.DivRound(stdDev, divScale)
}

// kelly aplica f* = winRate − (1−winRate)/payoffRatio con
// payoffRatio = averageWin/|averageLoss|, acotado a [0,1].
// Con pérdida media cero no hay payoff ratio definido: cero.
func kelly(winRate, averageWin, averageLoss decimal.Decimal) decimal.Decimal {
	if averageLoss.IsZero() || averageWin.IsZero() {
		return decimal.Zero
	}
	payoff := averageWin.DivRound(averageLoss.Abs(), divScale)
	if payoff.IsZero() {
		return decimal.Zero
	}
	one := decimal.NewFromInt(1)
	f := winRate.Sub(one.Sub(winRate).DivRound(payoff, divScale))
	if f.Sign() < 0 {
		return decimal.Zero
	}
	if f.GreaterThan(one) {
		return one
	}
	return f
}

// fillTime rellena el análisis temporal del replay.
func fillTime(m *domain.BacktestMetrics, trades []domain.SimulatedTrade, sumDuration time.Duration) {
	start := trades[0].EntryTime
	end := trades[0].ExitTime
	for _, t := range trades {
		if t.EntryTime.Before(start) {
			start = t.EntryTime
		}
		if t.ExitTime.After(end) {
			end = t.ExitTime
		}
	}
	m.StartTime = start
	m.EndTime = end

	total := decimal.NewFromInt(int64(len(trades)))
	avgHours := decimal.NewFromFloat(sumDuration.Hours()).DivRound(total, divScale)
	m.AverageTradeDurationHours = scaleMoney(avgHours)

	totalHours := decimal.NewFromFloat(end.Sub(start).Hours())
	m.TotalTradingTimeHours = scaleMoney(totalHours)

	days := totalHours.DivRound(hoursPerDay, divScale)
	if days.Sign() > 0 {
		m.TradingFrequency = scalePercent(total.DivRound(days, divScale))
	}
}

// fillMarket rellena precios inicial/final y retorno de mercado (buy & hold).
func fillMarket(m *domain.BacktestMetrics, bars []domain.Bar) {
	if len(bars) == 0 {
		return
	}
	m.InitialPrice = bars[0].Close
	m.FinalPrice = bars[len(bars)-1].Close
	if m.InitialPrice.Sign() > 0 {
		m.MarketReturn = scalePercent(
			m.FinalPrice.Sub(m.InitialPrice).DivRound(m.InitialPrice, divScale))
	}
}

// fillOutperformance compara el retorno de la estrategia con el de mercado.
// El capital de referencia es el notional de entrada del primer trade.
func fillOutperformance(m *domain.BacktestMetrics, netProfit decimal.Decimal) {
	if m.InitialPrice.Sign() <= 0 || m.TotalTrades == 0 {
		return
	}
	// Sin capital inicial externo, el retorno neto se referencia al precio
	// inicial de la serie para que sea comparable con MarketReturn.
	m.NetProfitPct = scalePercent(netProfit.DivRound(m.InitialPrice, divScale))
	m.StrategyOutperformance = scalePercent(m.NetProfitPct.Sub(m.MarketReturn))
}

// sqrt calcula la raíz cuadrada por Newton-Raphson sobre decimales.
// Valores no positivos devuelven cero.
func sqrt(value decimal.Decimal) decimal.Decimal {
	if value.Sign() <= 0 {
		return decimal.Zero
	}

	tolerance := decimal.New(1, -divScale) // 1e-10
	two := decimal.NewFromInt(2)

	x := value
	y := value.Add(decimal.NewFromInt(1)).DivRound(two, divScale)
	for i := 0; i < 64 && y.Sub(x).Abs().GreaterThan(tolerance); i++ {
		x = y
		y = value.DivRound(x, divScale).Add(x).DivRound(two, divScale)
	}
	return y
}

func scaleMoney(v decimal.Decimal) decimal.Decimal {
	return v.Round(moneyScale)
}

func scalePercent(v decimal.Decimal) decimal.Decimal {
	return v.Round(percentScale)
}
