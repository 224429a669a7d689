package domain

import "fmt"

// OddsUnavailable es el valor que los feeds usan cuando una cuota no está publicada.
const OddsUnavailable = "unavailable"

// BetCategory es el tipo de apuesta evaluado para cada partido.
type BetCategory int

const (
	CategoryMoneyline BetCategory = iota
	CategorySpread                // puckline en NHL
	CategoryTotal                 // over/under
)

// BetCategories es el orden en el que el scanner evalúa las categorías.
var BetCategories = [...]BetCategory{CategoryMoneyline, CategorySpread, CategoryTotal}

// String devuelve el nombre legible de la categoría.
func (c BetCategory) String() string {
	switch c {
	case CategoryMoneyline:
		return "Moneyline"
	case CategorySpread:
		return "Spread"
	case CategoryTotal:
		return "Total"
	default:
		return fmt.Sprintf("BetCategory(%d)", int(c))
	}
}

// ParseBetCategory es la inversa de String; se usa al leer el histórico.
func ParseBetCategory(s string) (BetCategory, error) {
	for _, c := range BetCategories {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("domain.ParseBetCategory: unknown category %q", s)
}

// OddsPair son las cuotas crudas de un mercado, una por lado.
// Side1 corresponde a Team1 (u Over en totales), Side2 a Team2 (o Under).
type OddsPair struct {
	Side1 string
	Side2 string
}

// Swapped devuelve el par con los lados invertidos.
func (p OddsPair) Swapped() OddsPair {
	return OddsPair{Side1: p.Side2, Side2: p.Side1}
}

// GameRecord es un partido tal y como lo publica un feed.
// Inmutable una vez obtenido; vive solo durante el scan que lo produjo.
type GameRecord struct {
	Team1     string
	Team2     string
	Moneyline OddsPair
	Spread    OddsPair
	Total     OddsPair
}

// Odds devuelve el par de cuotas de la categoría dada.
func (g GameRecord) Odds(c BetCategory) OddsPair {
	switch c {
	case CategoryMoneyline:
		return g.Moneyline
	case CategorySpread:
		return g.Spread
	case CategoryTotal:
		return g.Total
	default:
		return OddsPair{Side1: OddsUnavailable, Side2: OddsUnavailable}
	}
}

// SwapTeams devuelve el registro con los equipos invertidos.
// Los totales son posicionales (primero Over) y no se tocan.
func (g GameRecord) SwapTeams() GameRecord {
	return GameRecord{
		Team1:     g.Team2,
		Team2:     g.Team1,
		Moneyline: g.Moneyline.Swapped(),
		Spread:    g.Spread.Swapped(),
		Total:     g.Total,
	}
}

// MatchedGame une los registros de ambos feeds que representan el mismo partido.
// Secondary ya viene alineado: su Team1 es el mismo equipo que el Team1 de Primary.
type MatchedGame struct {
	Key       GameKey
	Primary   GameRecord
	Secondary GameRecord
}
