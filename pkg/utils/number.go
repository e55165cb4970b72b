package utils

import "math"

// RoundWithTwoDecimalPlace arredonda para duas casas decimais na apresentação.
// Agregações intermediárias nunca devem ser arredondadas.
func RoundWithTwoDecimalPlace(f float64) float64 {
	if f == 0 {
		return 0
	}

	return math.Round(f*100) / 100
}

// SafeRatio divide num por den retornando 0 quando o denominador é 0,
// para nunca propagar NaN/Infinity para a geração de texto.
func SafeRatio(num, den float64) float64 {
	if den == 0 {
		return 0
	}

	return num / den
}
