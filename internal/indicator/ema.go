package indicator

// ema.go — media móvil exponencial sobre decimales de punto fijo.
//
// Toda la aritmética del indicador usa github.com/shopspring/decimal con
// escala 10 y redondeo half-up en cada paso. Los backtests tienen que ser
// deterministas y reproducibles entre máquinas; con float64 el orden de las
// operaciones cambia el resultado.

import "github.com/shopspring/decimal"

// Scale es la escala decimal de todo el cálculo de indicadores.
const Scale = 10

var two = decimal.NewFromInt(2)

// Multiplier devuelve el factor de suavizado k = 2/(period+1) a escala fija.
func Multiplier(period int) decimal.Decimal {
	return two.DivRound(decimal.NewFromInt(int64(period)+1), Scale)
}

// EMA calcula la serie EMA de values con el periodo dado.
//
// El primer valor es la media aritmética de los primeros `period` puntos;
// cada valor siguiente es value·k + prev·(1−k), redondeado a escala 10.
// Con menos de `period` puntos devuelve la serie vacía, no un error.
func EMA(values []decimal.Decimal, period int) []decimal.Decimal {
	if len(values) < period {
		return nil
	}

	sum := decimal.Zero
	for _, v := range values[:period] {
		sum = sum.Add(v)
	}
	seed := sum.DivRound(decimal.NewFromInt(int64(period)), Scale)

	k := Multiplier(period)
	ema := make([]decimal.Decimal, 0, len(values)-period+1)
	ema = append(ema, seed)

	for _, v := range values[period:] {
		prev := ema[len(ema)-1]
		next := v.Sub(prev).Mul(k).Add(prev).Round(Scale)
		ema = append(ema, next)
	}

	return ema
}
