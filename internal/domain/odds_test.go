package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToDecimal_AmericanPositive(t *testing.T) {
	v, ok := ToDecimal("+150")
	assert.True(t, ok)
	assert.InDelta(t, 2.5, v, 1e-9)
}

func TestToDecimal_AmericanNegative(t *testing.T) {
	v, ok := ToDecimal("-200")
	assert.True(t, ok)
	assert.InDelta(t, 1.5, v, 1e-9)
}

func TestToDecimal_AmericanFormula(t *testing.T) {
	for _, n := range []float64{100, 105, 110, 120, 140, 250, 1000} {
		v, ok := ToDecimal("+" + formatInt(n))
		assert.True(t, ok)
		assert.InDelta(t, n/100+1, v, 1e-9, "+%v", n)

		v, ok = ToDecimal("-" + formatInt(n))
		assert.True(t, ok)
		assert.InDelta(t, 100/n+1, v, 1e-9, "-%v", n)
	}
}

func TestToDecimal_UnicodeMinus(t *testing.T) {
	// Los feeds a veces traen U+2212 o su mojibake en lugar de '-'
	for _, raw := range []string{"−110", "âˆ’110", "–110", " -110 "} {
		v, ok := ToDecimal(raw)
		assert.True(t, ok, raw)
		assert.InDelta(t, 100.0/110+1, v, 1e-9, raw)
	}
}

func TestToDecimal_Decimal(t *testing.T) {
	v, ok := ToDecimal("1.85")
	assert.True(t, ok)
	assert.InDelta(t, 1.85, v, 1e-9)
}

func TestToDecimal_Unavailable(t *testing.T) {
	_, ok := ToDecimal(OddsUnavailable)
	assert.False(t, ok)
}

func TestToDecimal_Invalid(t *testing.T) {
	for _, raw := range []string{"", "   ", "-0", "-", "+", "abc", "+abc", "--110", "+-110", "N/A", "NaN", "Inf"} {
		_, ok := ToDecimal(raw)
		assert.False(t, ok, "%q debe ser inválido", raw)
	}
}

func TestToDecimal_SentinelIsCaseSensitive(t *testing.T) {
	// "Unavailable" no es el centinela pero tampoco es numérico → inválido igualmente
	_, ok := ToDecimal("Unavailable")
	assert.False(t, ok)
}

func formatInt(n float64) string {
	digits := []byte{}
	for i := int(n); i > 0; i /= 10 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
	}
	return string(digits)
}
