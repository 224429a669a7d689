package feed

// feed.go: fuentes de partidos para el scanner.
//
// HTTPFeed consulta un endpoint JSON (un scraper externo, un proxy de la casa);
// FileFeed lee el mismo formato desde disco y se usa con -dry-run.

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/alejandrodnm/nhlarb/internal/domain"
)

// HTTPFeed implementa ports.FeedProvider sobre un endpoint JSON.
type HTTPFeed struct {
	name   string
	url    string
	client *client
}

// NewHTTPFeed crea un feed con nombre name que consulta url a como mucho
// ratePerSec requests por segundo.
func NewHTTPFeed(name, url string, ratePerSec float64) *HTTPFeed {
	return &HTTPFeed{name: name, url: url, client: newClient(ratePerSec)}
}

// Name devuelve el nombre de la casa.
func (f *HTTPFeed) Name() string { return f.name }

// FetchGames descarga y mapea los partidos publicados.
func (f *HTTPFeed) FetchGames(ctx context.Context) ([]domain.GameRecord, error) {
	var resp gamesResponse
	if err := f.client.get(ctx, f.url, &resp); err != nil {
		return nil, fmt.Errorf("feed.FetchGames %s: %w", f.name, err)
	}

	games := mapGames(resp.Games)
	slog.Debug("feed fetched", "feed", f.name, "raw", len(resp.Games), "games", len(games))
	return games, nil
}

// FileFeed implementa ports.FeedProvider leyendo un fichero JSON en cada llamada.
type FileFeed struct {
	name string
	path string
}

// NewFileFeed crea un feed que lee path.
func NewFileFeed(name, path string) *FileFeed {
	return &FileFeed{name: name, path: path}
}

// Name devuelve el nombre de la casa.
func (f *FileFeed) Name() string { return f.name }

// FetchGames lee el fichero y mapea los partidos. Se relee en cada scan para
// poder editar el fixture con el scanner corriendo.
func (f *FileFeed) FetchGames(ctx context.Context) ([]domain.GameRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("feed.FetchGames %s: read %q: %w", f.name, f.path, err)
	}

	var resp gamesResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("feed.FetchGames %s: parse %q: %w", f.name, f.path, err)
	}
	return mapGames(resp.Games), nil
}
