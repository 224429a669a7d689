package ports

import (
	"context"

	"github.com/alejandrodnm/nhlarb/internal/domain"
)

// FeedProvider obtiene los partidos publicados por una casa de apuestas.
type FeedProvider interface {
	// Name identifica la casa en las oportunidades ("BetMGM", "DraftKings").
	Name() string

	// FetchGames devuelve los partidos disponibles en este momento.
	// Un feed sin partidos devuelve una lista vacía, no un error.
	FetchGames(ctx context.Context) ([]domain.GameRecord, error)
}
