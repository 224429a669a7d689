package domain

import (
	"fmt"
	"math"
	"time"
)

// Identity identifica una oportunidad entre scans: mismo partido y misma categoría.
// Las cuotas y stakes pueden cambiar; la identidad no.
type Identity struct {
	Game     GameKey
	Category BetCategory
}

// String devuelve la forma "a|b|Moneyline", usada como clave en storage y eventos.
func (id Identity) String() string {
	return id.Game.String() + "|" + id.Category.String()
}

// Side es un lado de la apuesta con la mejor cuota encontrada entre los feeds.
type Side struct {
	Label  string  // nombre del equipo, u "Over"/"Under" en totales
	Odds   float64 // cuota decimal
	Source string  // feed del que viene la cuota
}

// Descriptor devuelve "<label>: <odds> (<source>)" con 2 decimales.
func (s Side) Descriptor() string {
	return fmt.Sprintf("%s: %.2f (%s)", s.Label, s.Odds, s.Source)
}

// Opportunity es un arbitraje detectado en un scan.
// Se crea de cero en cada scan; solo el reconciliador decide qué se muestra.
type Opportunity struct {
	Game      GameKey
	GameLabel string // "Bruins vs Maple Leafs"
	Category  BetCategory
	Side1     Side
	Side2     Side
	Stake     float64
	Result    ArbResult
	ScannedAt time.Time
}

// Identity devuelve la clave estable de la oportunidad.
func (o Opportunity) Identity() Identity {
	return Identity{Game: o.Game, Category: o.Category}
}

// SameFigures devuelve true si las cifras mostradas (a 2 decimales) no cambiaron.
func (o Opportunity) SameFigures(other Opportunity) bool {
	return o.Display() == other.Display()
}

// DisplayRow son los campos ya formateados que consume un sink.
type DisplayRow struct {
	Game      string
	BetType   string
	Side1     string
	Side2     string
	ArbPct    string
	Stake1    string
	Stake2    string
	Profit    string
	ProfitPct string
}

// Display formatea la oportunidad con precisión fija de 2 decimales.
func (o Opportunity) Display() DisplayRow {
	return DisplayRow{
		Game:      o.GameLabel,
		BetType:   o.Category.String(),
		Side1:     o.Side1.Descriptor(),
		Side2:     o.Side2.Descriptor(),
		ArbPct:    fmt.Sprintf("%.2f%%", o.Result.ArbPercentage*100),
		Stake1:    fmt.Sprintf("$%.2f", o.Result.StakeA),
		Stake2:    fmt.Sprintf("$%.2f", o.Result.StakeB),
		Profit:    fmt.Sprintf("$%.2f", o.Result.Profit),
		ProfitPct: fmt.Sprintf("%.2f%%", o.Result.ProfitPct),
	}
}

// Cells devuelve la fila en el orden de columnas de la tabla.
func (r DisplayRow) Cells() []string {
	return []string{r.Game, r.BetType, r.Side1, r.Side2, r.ArbPct, r.Stake1, r.Stake2, r.Profit, r.ProfitPct}
}

// DisplayHeaders son los encabezados que acompañan a DisplayRow.Cells.
var DisplayHeaders = []string{
	"Game", "Bet Type", "Team1 (Odds, Source)", "Team2 (Odds, Source)",
	"Arb %", "Stake1", "Stake2", "Profit", "Profit %",
}

// PayoutSpread devuelve |stakeA×oddsA - stakeB×oddsB|; ~0 si el reparto es correcto.
func (o Opportunity) PayoutSpread() float64 {
	return math.Abs(o.Result.StakeA*o.Side1.Odds - o.Result.StakeB*o.Side2.Odds)
}
