package indicator

// strength.go — clasificación presentacional de la fuerza de una señal.
//
// Es una función pura del histograma relativo al precio; queda fuera del
// contrato del detector porque no participa en ninguna decisión de trading,
// solo en reporting.

import "github.com/shopspring/decimal"

// Strength es la magnitud cualitativa de un crossover.
type Strength int

const (
	StrengthWeak Strength = iota
	StrengthModerate
	StrengthStrong
)

func (s Strength) String() string {
	switch s {
	case StrengthStrong:
		return "STRONG"
	case StrengthModerate:
		return "MODERATE"
	default:
		return "WEAK"
	}
}

var (
	moderateThreshold = decimal.RequireFromString("0.0005")
	strongThreshold   = decimal.RequireFromString("0.002")
)

// Classify mapea |histograma|/precio a un bucket de fuerza.
// Con precio cero (serie degenerada) devuelve WEAK.
func Classify(histogram, price decimal.Decimal) Strength {
	if price.IsZero() {
		return StrengthWeak
	}
	ratio := histogram.Abs().DivRound(price.Abs(), Scale)
	switch {
	case ratio.GreaterThanOrEqual(strongThreshold):
		return StrengthStrong
	case ratio.GreaterThanOrEqual(moderateThreshold):
		return StrengthModerate
	default:
		return StrengthWeak
	}
}
