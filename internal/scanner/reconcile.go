package scanner

import (
	"sort"

	"github.com/alejandrodnm/nhlarb/internal/domain"
	"github.com/google/uuid"
)

// Diff es el cambio entre lo mostrado y el resultado de un scan.
type Diff struct {
	ToAdd    []domain.Opportunity // identidades nuevas
	ToUpdate []domain.Opportunity // misma identidad, cifras distintas
	ToRemove []domain.Identity    // identidades que ya no aparecen
}

// Empty devuelve true si no hay nada que aplicar.
func (d Diff) Empty() bool {
	return len(d.ToAdd) == 0 && len(d.ToUpdate) == 0 && len(d.ToRemove) == 0
}

// displayedEntry es lo que se recuerda de una oportunidad mostrada.
type displayedEntry struct {
	handle string
	opp    domain.Opportunity
}

// DisplayedSet es el conjunto de oportunidades que los sinks están mostrando,
// indexado por identidad. No es seguro para uso concurrente: lo posee una sola
// goroutine (la del loop del scanner).
type DisplayedSet struct {
	entries   map[domain.Identity]displayedEntry
	newHandle func() string
}

// NewDisplayedSet crea un conjunto vacío que asigna handles UUID.
func NewDisplayedSet() *DisplayedSet {
	return &DisplayedSet{
		entries:   make(map[domain.Identity]displayedEntry),
		newHandle: func() string { return uuid.New().String() },
	}
}

// Len devuelve el número de oportunidades mostradas.
func (s *DisplayedSet) Len() int {
	return len(s.entries)
}

// Handle devuelve el handle de render de una identidad mostrada.
func (s *DisplayedSet) Handle(id domain.Identity) (string, bool) {
	e, ok := s.entries[id]
	return e.handle, ok
}

// Reconcile compara lo mostrado con current sin modificar nada.
// Si current repite una identidad gana la última aparición.
func Reconcile(previous *DisplayedSet, current []domain.Opportunity) Diff {
	latest := make(map[domain.Identity]domain.Opportunity, len(current))
	order := make([]domain.Identity, 0, len(current))
	for _, opp := range current {
		id := opp.Identity()
		if _, seen := latest[id]; !seen {
			order = append(order, id)
		}
		latest[id] = opp
	}

	var d Diff
	for _, id := range order {
		opp := latest[id]
		prev, shown := previous.entries[id]
		switch {
		case !shown:
			d.ToAdd = append(d.ToAdd, opp)
		case !prev.opp.SameFigures(opp):
			d.ToUpdate = append(d.ToUpdate, opp)
		}
	}

	for id := range previous.entries {
		if _, ok := latest[id]; !ok {
			d.ToRemove = append(d.ToRemove, id)
		}
	}
	sort.Slice(d.ToRemove, func(i, j int) bool {
		return d.ToRemove[i].String() < d.ToRemove[j].String()
	})
	return d
}

// Apply aplica el diff y devuelve los eventos de render en orden:
// primero las bajas, luego actualizaciones y altas. Tras Apply el conjunto
// contiene exactamente las identidades del scan que produjo el diff.
func (s *DisplayedSet) Apply(d Diff, scanID string) []domain.RenderEvent {
	events := make([]domain.RenderEvent, 0, len(d.ToAdd)+len(d.ToUpdate)+len(d.ToRemove))

	for _, id := range d.ToRemove {
		e, ok := s.entries[id]
		if !ok {
			continue
		}
		delete(s.entries, id)
		events = append(events, domain.RenderEvent{
			Kind: domain.EventRemove, Handle: e.handle, Identity: id, Opportunity: e.opp, ScanID: scanID,
		})
	}

	for _, opp := range d.ToUpdate {
		id := opp.Identity()
		e, ok := s.entries[id]
		if !ok {
			continue
		}
		e.opp = opp
		s.entries[id] = e
		events = append(events, domain.RenderEvent{
			Kind: domain.EventUpdate, Handle: e.handle, Identity: id, Opportunity: opp, ScanID: scanID,
		})
	}

	for _, opp := range d.ToAdd {
		id := opp.Identity()
		e := displayedEntry{handle: s.newHandle(), opp: opp}
		s.entries[id] = e
		events = append(events, domain.RenderEvent{
			Kind: domain.EventAdd, Handle: e.handle, Identity: id, Opportunity: opp, ScanID: scanID,
		})
	}

	return events
}

// Reconcile calcula el diff contra current y lo aplica.
func (s *DisplayedSet) Reconcile(current []domain.Opportunity, scanID string) []domain.RenderEvent {
	return s.Apply(Reconcile(s, current), scanID)
}
