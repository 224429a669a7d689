package domain

import (
	"math"
	"strconv"
	"strings"
)

// minusReplacer lleva a '-' los signos menos que llegan mal codificados
// desde la extracción de texto de las casas (U+2212, en-dash y su mojibake).
var minusReplacer = strings.NewReplacer(
	"âˆ’", "-",
	"−", "-",
	"–", "-",
)

// ToDecimal convierte una cuota cruda a cuota decimal.
//
//	"+150" → 2.50 (americana positiva: N/100 + 1)
//	"-200" → 1.50 (americana negativa: 100/N + 1)
//	"1.85" → 1.85 (ya decimal)
//
// Devuelve ok=false para OddsUnavailable o cualquier valor no interpretable.
// Nunca entra en pánico.
func ToDecimal(raw string) (float64, bool) {
	if raw == OddsUnavailable {
		return 0, false
	}

	s := strings.TrimSpace(minusReplacer.Replace(raw))
	if s == "" {
		return 0, false
	}

	switch s[0] {
	case '+':
		n, ok := parseMagnitude(s[1:])
		if !ok {
			return 0, false
		}
		return n/100 + 1, true
	case '-':
		n, ok := parseMagnitude(s[1:])
		if !ok || n == 0 {
			return 0, false
		}
		return 100/n + 1, true
	default:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	}
}

// parseMagnitude parsea la parte numérica de una cuota americana (sin signo).
func parseMagnitude(s string) (float64, bool) {
	if s == "" || s[0] == '+' || s[0] == '-' {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// ImpliedProbability devuelve 1/decimal; 0 si la cuota no es válida.
func ImpliedProbability(decimal float64) float64 {
	if decimal <= 0 {
		return 0
	}
	return 1 / decimal
}
