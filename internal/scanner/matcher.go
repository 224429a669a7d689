package scanner

import (
	"log/slog"

	"github.com/alejandrodnm/nhlarb/internal/domain"
)

// MatchStats resume un matching para observabilidad. Cero matches no es un error.
type MatchStats struct {
	Primary    int
	Secondary  int
	Matched    int
	Duplicates int // claves repetidas dentro del feed secundario (gana la última)
}

// Matcher empareja los partidos de dos feeds que representan el mismo evento.
type Matcher struct {
	aliases domain.TeamAliases
}

// NewMatcher crea un Matcher. Con aliases nil la identidad de un equipo es
// solo su nombre normalizado.
func NewMatcher(aliases domain.TeamAliases) *Matcher {
	return &Matcher{aliases: aliases}
}

// TeamID devuelve el identificador canónico de un nombre de equipo.
func (m *Matcher) TeamID(name string) string {
	return m.aliases.Resolve(domain.NormalizeTeam(name))
}

// BuildKey devuelve la GameKey no ordenada de un registro.
func (m *Matcher) BuildKey(g domain.GameRecord) domain.GameKey {
	return domain.NewGameKey(m.TeamID(g.Team1), m.TeamID(g.Team2))
}

// Match indexa secondary por GameKey y busca cada partido de primary en el índice.
// Los partidos sin pareja se descartan en silencio. El registro secundario se
// devuelve alineado con el primario (mismo equipo en Team1).
func (m *Matcher) Match(primary, secondary []domain.GameRecord) ([]domain.MatchedGame, MatchStats) {
	stats := MatchStats{Primary: len(primary), Secondary: len(secondary)}

	index := make(map[domain.GameKey]domain.GameRecord, len(secondary))
	for _, g := range secondary {
		key := m.BuildKey(g)
		if _, dup := index[key]; dup {
			stats.Duplicates++
			slog.Debug("duplicate game key in feed, keeping last", "key", key.String())
		}
		index[key] = g
	}

	matched := make([]domain.MatchedGame, 0, min(len(primary), len(index)))
	for _, p := range primary {
		key := m.BuildKey(p)
		s, ok := index[key]
		if !ok {
			slog.Debug("no counterpart for game", "team1", p.Team1, "team2", p.Team2)
			continue
		}
		matched = append(matched, domain.MatchedGame{
			Key:       key,
			Primary:   p,
			Secondary: m.align(p, s),
		})
	}

	stats.Matched = len(matched)
	return matched, stats
}

// align invierte secondary si lista los equipos en el orden contrario a primary.
func (m *Matcher) align(primary, secondary domain.GameRecord) domain.GameRecord {
	p1 := m.TeamID(primary.Team1)
	s1 := m.TeamID(secondary.Team1)
	if s1 != p1 && s1 == m.TeamID(primary.Team2) {
		return secondary.SwapTeams()
	}
	return secondary
}
