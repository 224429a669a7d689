package feed

import (
	"strings"

	"github.com/alejandrodnm/nhlarb/internal/domain"
)

// mapGames convierte los DTOs a domain.GameRecord, descartando los partidos
// a los que les falta algún equipo.
func mapGames(raw []gameDTO) []domain.GameRecord {
	games := make([]domain.GameRecord, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r.Team1) == "" || strings.TrimSpace(r.Team2) == "" {
			continue
		}
		games = append(games, mapGame(r))
	}
	return games
}

// mapGame convierte un gameDTO a domain.GameRecord.
func mapGame(r gameDTO) domain.GameRecord {
	return domain.GameRecord{
		Team1:     r.Team1,
		Team2:     r.Team2,
		Moneyline: pair(r.MoneylineTeam1, r.MoneylineTeam2),
		Spread:    pair(r.SpreadTeam1, r.SpreadTeam2),
		Total:     pair(r.TotalTeam1, r.TotalTeam2),
	}
}

func pair(side1, side2 string) domain.OddsPair {
	return domain.OddsPair{Side1: oddsOrUnavailable(side1), Side2: oddsOrUnavailable(side2)}
}

// oddsOrUnavailable normaliza los marcadores de "sin cuota" de las casas.
func oddsOrUnavailable(s string) string {
	switch strings.TrimSpace(s) {
	case "", "N/A", "-", "\u2014":
		return domain.OddsUnavailable
	default:
		return s
	}
}
