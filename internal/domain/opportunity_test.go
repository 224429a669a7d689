package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeOpportunity(t *testing.T, oddsA, oddsB float64) Opportunity {
	t.Helper()
	res, ok := EvaluateArbitrage(100, oddsA, oddsB)
	require.True(t, ok)
	return Opportunity{
		Game:      NewGameKey("bostonbruins", "torontomapleleafs"),
		GameLabel: "Bruins vs Maple Leafs",
		Category:  CategoryMoneyline,
		Side1:     Side{Label: "Bruins", Odds: oddsA, Source: "BetMGM"},
		Side2:     Side{Label: "Maple Leafs", Odds: oddsB, Source: "DraftKings"},
		Stake:     100,
		Result:    res,
	}
}

func TestOpportunity_Display(t *testing.T) {
	opp := makeOpportunity(t, 2.5, 1.8)
	row := opp.Display()

	assert.Equal(t, "Bruins vs Maple Leafs", row.Game)
	assert.Equal(t, "Moneyline", row.BetType)
	assert.Equal(t, "Bruins: 2.50 (BetMGM)", row.Side1)
	assert.Equal(t, "Maple Leafs: 1.80 (DraftKings)", row.Side2)
	assert.Equal(t, "95.56%", row.ArbPct)
	assert.Equal(t, "$41.86", row.Stake1)
	assert.Equal(t, "$58.14", row.Stake2)
	assert.Equal(t, "$4.65", row.Profit)
	assert.Equal(t, "4.65%", row.ProfitPct)
	assert.Len(t, row.Cells(), len(DisplayHeaders))
}

func TestOpportunity_Identity(t *testing.T) {
	a := makeOpportunity(t, 2.5, 1.8)
	b := makeOpportunity(t, 2.6, 1.75)

	assert.Equal(t, a.Identity(), b.Identity())
	assert.Equal(t, "bostonbruins|torontomapleleafs|Moneyline", a.Identity().String())
	assert.False(t, a.SameFigures(b))
	assert.True(t, a.SameFigures(a))
}

func TestOpportunity_PayoutSpread(t *testing.T) {
	opp := makeOpportunity(t, 2.3, 2.05)
	assert.InDelta(t, 0, opp.PayoutSpread(), 1e-6)
}

func TestBetCategory_ParseRoundTrip(t *testing.T) {
	for _, c := range BetCategories {
		got, err := ParseBetCategory(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	_, err := ParseBetCategory("Props")
	assert.Error(t, err)
}

func TestGameRecord_SwapTeams(t *testing.T) {
	g := GameRecord{
		Team1:     "Boston",
		Team2:     "Toronto",
		Moneyline: OddsPair{"+120", "-140"},
		Spread:    OddsPair{"-150", "+130"},
		Total:     OddsPair{"-110", "-110"},
	}
	s := g.SwapTeams()
	assert.Equal(t, "Toronto", s.Team1)
	assert.Equal(t, OddsPair{"-140", "+120"}, s.Moneyline)
	assert.Equal(t, OddsPair{"+130", "-150"}, s.Spread)
	assert.Equal(t, g.Total, s.Total, "los totales son posicionales")
}
