package scanner

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/nhlarb/internal/domain"
)

const (
	overLabel  = "Over"
	underLabel = "Under"
)

// Analyzer evalúa las tres categorías de apuesta de un partido emparejado.
type Analyzer struct {
	stake     float64
	primary   string
	secondary string
	evaluate  func(stake, oddsA, oddsB float64) (domain.ArbResult, bool)
}

// NewAnalyzer crea un Analyzer con el stake total por oportunidad y los
// nombres de los dos feeds (para indicar de dónde sale cada cuota).
func NewAnalyzer(stake float64, primary, secondary string) *Analyzer {
	return &Analyzer{
		stake:     stake,
		primary:   primary,
		secondary: secondary,
		evaluate:  domain.EvaluateArbitrage,
	}
}

// Analyze devuelve las oportunidades de arbitraje del partido.
// Un fallo en una categoría (cuotas ilegibles, incluso un panic) se registra y
// se salta; nunca impide evaluar las demás.
func (a *Analyzer) Analyze(game domain.MatchedGame, now time.Time) []domain.Opportunity {
	var opps []domain.Opportunity
	for _, cat := range domain.BetCategories {
		opp, found, err := a.analyzeCategory(game, cat)
		if err != nil {
			slog.Debug("bet category skipped",
				"game", game.Key.String(),
				"category", cat.String(),
				"err", err,
			)
			continue
		}
		if !found {
			continue
		}
		opp.ScannedAt = now
		opps = append(opps, opp)
	}
	return opps
}

// analyzeCategory elige la mejor cuota por lado entre ambos feeds y calcula el arbitraje.
func (a *Analyzer) analyzeCategory(game domain.MatchedGame, cat domain.BetCategory) (opp domain.Opportunity, found bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analyzer.analyzeCategory: recovered: %v", r)
		}
	}()

	if !domain.ValidStake(a.stake) {
		return opp, false, domain.ErrInvalidStake
	}

	pOdds := game.Primary.Odds(cat)
	sOdds := game.Secondary.Odds(cat)

	p1, err := convert(pOdds.Side1, a.primary, 1)
	if err != nil {
		return opp, false, err
	}
	s1, err := convert(sOdds.Side1, a.secondary, 1)
	if err != nil {
		return opp, false, err
	}
	p2, err := convert(pOdds.Side2, a.primary, 2)
	if err != nil {
		return opp, false, err
	}
	s2, err := convert(sOdds.Side2, a.secondary, 2)
	if err != nil {
		return opp, false, err
	}

	best1, src1 := a.bestOf(p1, s1)
	best2, src2 := a.bestOf(p2, s2)

	res, ok := a.evaluate(a.stake, best1, best2)
	if !ok {
		return opp, false, nil
	}

	label1, label2 := domain.DisplayTeam(game.Primary.Team1), domain.DisplayTeam(game.Primary.Team2)
	gameLabel := label1 + " vs " + label2
	if cat == domain.CategoryTotal {
		label1, label2 = overLabel, underLabel
	}

	return domain.Opportunity{
		Game:      game.Key,
		GameLabel: gameLabel,
		Category:  cat,
		Side1:     domain.Side{Label: label1, Odds: best1, Source: src1},
		Side2:     domain.Side{Label: label2, Odds: best2, Source: src2},
		Stake:     a.stake,
		Result:    res,
	}, true, nil
}

// bestOf devuelve la mayor cuota y su feed. En empate gana el feed primario.
func (a *Analyzer) bestOf(primary, secondary float64) (float64, string) {
	if secondary > primary {
		return secondary, a.secondary
	}
	return primary, a.primary
}

// convert pasa una cuota cruda a decimal y la valida.
func convert(raw, source string, side int) (float64, error) {
	v, ok := domain.ToDecimal(raw)
	if !ok || !domain.ValidOdds(v) {
		return 0, fmt.Errorf("%s side %d %q: %w", source, side, raw, domain.ErrInvalidOdds)
	}
	return v, nil
}
