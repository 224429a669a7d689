package domain

import "time"

// EventKind es el tipo de cambio que un sink debe aplicar a lo que muestra.
type EventKind string

const (
	EventAdd    EventKind = "add"
	EventUpdate EventKind = "update"
	EventRemove EventKind = "remove"
)

// RenderEvent es un cambio sobre el conjunto mostrado.
// Handle es estable mientras la identidad siga mostrándose; en EventRemove
// Opportunity lleva la última versión mostrada.
type RenderEvent struct {
	Kind        EventKind
	Handle      string
	Identity    Identity
	Opportunity Opportunity
	ScanID      string
}

// ScanResult resume un ciclo completo para logging y persistencia.
type ScanResult struct {
	ID             string
	StartedAt      time.Time
	Duration       time.Duration
	PrimaryGames   int
	SecondaryGames int
	Matched        int
	Opportunities  []Opportunity
}

// BestProfitPct devuelve el mayor ProfitPct del ciclo (0 si no hay oportunidades).
func (r ScanResult) BestProfitPct() float64 {
	best := 0.0
	for _, o := range r.Opportunities {
		if o.Result.ProfitPct > best {
			best = o.Result.ProfitPct
		}
	}
	return best
}
