package domain

import "fmt"

// MACDParameters define los periodos del indicador para un run.
// Inmutable una vez validado.
type MACDParameters struct {
	FastPeriod   int
	SlowPeriod   int
	SignalPeriod int
}

// DefaultMACDParameters son los parámetros clásicos MACD(12,26,9).
func DefaultMACDParameters() MACDParameters {
	return MACDParameters{FastPeriod: 12, SlowPeriod: 26, SignalPeriod: 9}
}

// Validate rechaza configuraciones estructuralmente inválidas.
// Se llama antes de procesar la primera vela: fail fast en setup,
// nunca a mitad de un replay.
func (p MACDParameters) Validate() error {
	if p.FastPeriod <= 0 || p.SlowPeriod <= 0 || p.SignalPeriod <= 0 {
		return fmt.Errorf("domain.MACDParameters: periods must be positive, got %s", p)
	}
	if p.FastPeriod >= p.SlowPeriod {
		return fmt.Errorf("domain.MACDParameters: fast period %d must be < slow period %d",
			p.FastPeriod, p.SlowPeriod)
	}
	return nil
}

// MinDataPoints es el mínimo de velas necesario para extraer una señal.
func (p MACDParameters) MinDataPoints() int {
	return p.SlowPeriod + p.SignalPeriod
}

func (p MACDParameters) String() string {
	return fmt.Sprintf("MACD(%d,%d,%d)", p.FastPeriod, p.SlowPeriod, p.SignalPeriod)
}
