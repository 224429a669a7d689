package domain

import (
	"errors"
	"math"
)

var (
	// ErrInvalidOdds indica una cuota decimal ausente o <= 1.
	ErrInvalidOdds = errors.New("invalid decimal odds")
	// ErrInvalidStake indica un stake total que no es un número finito > 0.
	ErrInvalidStake = errors.New("stake must be > 0")
)

// ArbResult es el reparto de stake que garantiza el mismo payout en ambos lados.
type ArbResult struct {
	ArbPercentage float64 // 1/oddsA + 1/oddsB (< 1 = hay arbitraje)
	StakeA        float64
	StakeB        float64
	Payout        float64 // StakeA × oddsA == StakeB × oddsB
	Profit        float64 // Payout - stake
	ProfitPct     float64 // 100 × Profit / stake
}

// EvaluateArbitrage calcula el arbitraje entre dos resultados complementarios.
//
// Con pA = 1/oddsA y pB = 1/oddsB, si pA+pB >= 1 no hay arbitraje (ok=false,
// el resultado negativo normal). Si no:
//
//	stakeA = stake × pA / (pA+pB)
//	stakeB = stake × pB / (pA+pB)
//	payout = stake / (pA+pB)
//
// Las cuotas deben validarse antes con ValidOdds; para entradas inválidas
// también devuelve ok=false.
func EvaluateArbitrage(stake, oddsA, oddsB float64) (ArbResult, bool) {
	if !ValidStake(stake) || !ValidOdds(oddsA) || !ValidOdds(oddsB) {
		return ArbResult{}, false
	}

	pA := ImpliedProbability(oddsA)
	pB := ImpliedProbability(oddsB)
	total := pA + pB
	if total >= 1 {
		return ArbResult{}, false
	}

	stakeA := stake * pA / total
	stakeB := stake * pB / total
	payout := stakeA * oddsA
	profit := payout - stake

	return ArbResult{
		ArbPercentage: total,
		StakeA:        stakeA,
		StakeB:        stakeB,
		Payout:        payout,
		Profit:        profit,
		ProfitPct:     100 * profit / stake,
	}, true
}

// ValidStake devuelve true si el stake es un número finito mayor que 0.
// NaN e Inf no pasan.
func ValidStake(stake float64) bool {
	return stake > 0 && !math.IsInf(stake, 0)
}

// ValidOdds devuelve true si la cuota decimal puede entrar en el cálculo.
func ValidOdds(decimal float64) bool {
	return decimal > 1 && !math.IsInf(decimal, 0)
}
