package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BacktestMetrics es el registro agregado de un replay. Se deriva por
// completo de la lista de trades cerrados (más la serie de velas para la
// comparación contra mercado) y se recalcula desde cero en cada petición.
//
// Todos los ratios definen explícitamente su comportamiento con denominador
// cero: win rate y sharpe devuelven cero, el profit factor usa el flag
// ProfitFactorDefined en lugar de dividir por cero.
type BacktestMetrics struct {
	DatasetName string
	Symbol      string
	Interval    string

	StartTime time.Time
	EndTime   time.Time

	// Conteos
	TotalTrades     int
	WinningTrades   int
	LosingTrades    int
	BreakEvenTrades int

	// Rentabilidad
	NetProfit     decimal.Decimal
	AverageReturn decimal.Decimal
	WinRate       decimal.Decimal
	LossRate      decimal.Decimal
	AverageWin    decimal.Decimal
	AverageLoss   decimal.Decimal
	BestTrade     decimal.Decimal
	WorstTrade    decimal.Decimal

	// Riesgo
	MaxDrawdown         decimal.Decimal
	MaxDrawdownPct      decimal.Decimal
	SharpeRatio         decimal.Decimal
	SortinoRatio        decimal.Decimal
	ProfitFactor        decimal.Decimal
	ProfitFactorDefined bool // false = sin trades perdedores, factor "infinito"
	RecoveryFactor      decimal.Decimal

	// Rachas
	MaxConsecutiveWins   int
	MaxConsecutiveLosses int

	// Sizing
	Expectancy      decimal.Decimal
	KellyPercentage decimal.Decimal

	// Análisis temporal
	AverageTradeDurationHours decimal.Decimal
	TotalTradingTimeHours     decimal.Decimal
	TradingFrequency          decimal.Decimal // trades por día

	// Comparación contra mercado (buy & hold sobre la misma serie)
	InitialPrice           decimal.Decimal
	FinalPrice             decimal.Decimal
	MarketReturn           decimal.Decimal
	NetProfitPct           decimal.Decimal
	StrategyOutperformance decimal.Decimal
}

// BacktestResult combina la identidad del run con sus métricas y trades.
type BacktestResult struct {
	RunID       string
	DatasetName string
	Symbol      string
	Interval    string
	Parameters  MACDParameters
	Metrics     BacktestMetrics
	Trades      []SimulatedTrade
	OpenAtEnd   *Position // posición que quedó abierta al agotar el dataset, si hay
	Success     bool
	Status      string
	StartedAt   time.Time
	FinishedAt  time.Time
}
