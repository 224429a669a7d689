package storage

// sqlite.go: log de arbitrajes detectados, no histórico de cuotas.
//
// Estrategia:
//   - `cycles`: una fila por scan (conteos de partidos, oportunidades, mejor profit).
//   - `opportunities`: UNA fila por identidad (partido + categoría), UPSERT.
//     Guarda las últimas cifras, first_seen, last_seen y el pico de profit.
//   - Cache en memoria: no reescribe una identidad si sus cifras mostradas no
//     cambiaron y se tocó hace menos de touchInterval.
//   - Prune automático al arrancar: cycles > 30d, opportunities no vistas en 14d.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alejandrodnm/nhlarb/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS cycles (
    scan_id         TEXT PRIMARY KEY,
    scanned_at      TEXT    NOT NULL,
    duration_ms     INTEGER NOT NULL DEFAULT 0,
    primary_games   INTEGER NOT NULL DEFAULT 0,
    secondary_games INTEGER NOT NULL DEFAULT 0,
    matched         INTEGER NOT NULL DEFAULT 0,
    opportunities   INTEGER NOT NULL DEFAULT 0,
    best_profit_pct REAL    NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS opportunities (
    identity        TEXT PRIMARY KEY,
    game_key        TEXT NOT NULL,
    category        TEXT NOT NULL,
    game_label      TEXT NOT NULL,
    side1_label     TEXT NOT NULL,
    side1_odds      REAL NOT NULL,
    side1_source    TEXT NOT NULL,
    side2_label     TEXT NOT NULL,
    side2_odds      REAL NOT NULL,
    side2_source    TEXT NOT NULL,
    stake           REAL NOT NULL,
    arb_pct         REAL NOT NULL,
    stake1          REAL NOT NULL,
    stake2          REAL NOT NULL,
    payout          REAL NOT NULL,
    profit          REAL NOT NULL,
    profit_pct      REAL NOT NULL,
    first_seen      TEXT NOT NULL,
    last_seen       TEXT NOT NULL,
    last_scan_id    TEXT NOT NULL,
    peak_profit_pct REAL NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_cycles_at  ON cycles(scanned_at DESC);
CREATE INDEX IF NOT EXISTS idx_opp_last   ON opportunities(last_seen DESC);
CREATE INDEX IF NOT EXISTS idx_opp_profit ON opportunities(profit_pct DESC);
`

const (
	retentionCycles = 30 * 24 * time.Hour
	retentionOpps   = 14 * 24 * time.Hour
	touchInterval   = 5 * time.Minute // refresca last_seen aunque no cambien las cifras
)

// timeLayout es de ancho fijo para que las comparaciones de texto en SQL
// ordenen igual que los instantes.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// cachedState es lo último que se escribió de una identidad.
type cachedState struct {
	row     domain.DisplayRow
	written time.Time
}

// SQLiteStorage implementa ports.Storage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db    *sql.DB
	cache map[string]cachedState // identity → último estado escrito
	mu    sync.Mutex
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema, limpia datos antiguos y precarga la cache.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer; :memory: además vive en una sola conexión
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{
		db:    db,
		cache: make(map[string]cachedState),
	}
	s.pruneOld(context.Background(), time.Now())
	s.warmCache(context.Background())
	return s, nil
}

// SaveScan registra el ciclo y hace upsert de las oportunidades que cambiaron.
func (s *SQLiteStorage) SaveScan(ctx context.Context, scan domain.ScanResult) error {
	at := scan.StartedAt.UTC()
	if at.IsZero() {
		at = time.Now().UTC()
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO cycles
			(scan_id, scanned_at, duration_ms, primary_games, secondary_games, matched, opportunities, best_profit_pct)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		scan.ID, formatTime(at), scan.Duration.Milliseconds(),
		scan.PrimaryGames, scan.SecondaryGames, scan.Matched,
		len(scan.Opportunities), scan.BestProfitPct(),
	); err != nil {
		return fmt.Errorf("storage.SaveScan: insert cycle: %w", err)
	}

	toWrite := s.filterChanged(scan.Opportunities, at)
	if len(toWrite) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveScan: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO opportunities
			(identity, game_key, category, game_label,
			 side1_label, side1_odds, side1_source,
			 side2_label, side2_odds, side2_source,
			 stake, arb_pct, stake1, stake2, payout, profit, profit_pct,
			 first_seen, last_seen, last_scan_id, peak_profit_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(identity) DO UPDATE SET
			game_label      = excluded.game_label,
			side1_label     = excluded.side1_label,
			side1_odds      = excluded.side1_odds,
			side1_source    = excluded.side1_source,
			side2_label     = excluded.side2_label,
			side2_odds      = excluded.side2_odds,
			side2_source    = excluded.side2_source,
			stake           = excluded.stake,
			arb_pct         = excluded.arb_pct,
			stake1          = excluded.stake1,
			stake2          = excluded.stake2,
			payout          = excluded.payout,
			profit          = excluded.profit,
			profit_pct      = excluded.profit_pct,
			last_seen       = excluded.last_seen,
			last_scan_id    = excluded.last_scan_id,
			peak_profit_pct = MAX(peak_profit_pct, excluded.profit_pct)
	`)
	if err != nil {
		return fmt.Errorf("storage.SaveScan: prepare: %w", err)
	}
	defer stmt.Close()

	ts := formatTime(at)
	for _, opp := range toWrite {
		id := opp.Identity().String()
		if _, err := stmt.ExecContext(ctx,
			id,
			opp.Game.String(),
			opp.Category.String(),
			opp.GameLabel,
			opp.Side1.Label, opp.Side1.Odds, opp.Side1.Source,
			opp.Side2.Label, opp.Side2.Odds, opp.Side2.Source,
			opp.Stake,
			opp.Result.ArbPercentage,
			opp.Result.StakeA,
			opp.Result.StakeB,
			opp.Result.Payout,
			opp.Result.Profit,
			opp.Result.ProfitPct,
			ts, // first_seen: ignorado en ON CONFLICT
			ts,
			scan.ID,
			opp.Result.ProfitPct,
		); err != nil {
			return fmt.Errorf("storage.SaveScan: upsert %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveScan: commit: %w", err)
	}
	s.remember(toWrite, at)
	return nil
}

// GetHistory devuelve las oportunidades cuyo last_seen está en [from, to],
// mejores primero. ScannedAt es el last_seen.
func (s *SQLiteStorage) GetHistory(ctx context.Context, from, to time.Time) ([]domain.Opportunity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT game_key, category, game_label,
		       side1_label, side1_odds, side1_source,
		       side2_label, side2_odds, side2_source,
		       stake, arb_pct, stake1, stake2, payout, profit, profit_pct,
		       last_seen
		FROM opportunities
		WHERE last_seen BETWEEN ? AND ?
		ORDER BY profit_pct DESC, identity
	`, formatTime(from.UTC()), formatTime(to.UTC()))
	if err != nil {
		return nil, fmt.Errorf("storage.GetHistory: query: %w", err)
	}
	defer rows.Close()

	var opps []domain.Opportunity
	for rows.Next() {
		var opp domain.Opportunity
		var gameKey, catStr, lastSeen string

		if err := rows.Scan(
			&gameKey, &catStr, &opp.GameLabel,
			&opp.Side1.Label, &opp.Side1.Odds, &opp.Side1.Source,
			&opp.Side2.Label, &opp.Side2.Odds, &opp.Side2.Source,
			&opp.Stake,
			&opp.Result.ArbPercentage,
			&opp.Result.StakeA,
			&opp.Result.StakeB,
			&opp.Result.Payout,
			&opp.Result.Profit,
			&opp.Result.ProfitPct,
			&lastSeen,
		); err != nil {
			return nil, fmt.Errorf("storage.GetHistory: scan row: %w", err)
		}

		cat, err := domain.ParseBetCategory(catStr)
		if err != nil {
			return nil, fmt.Errorf("storage.GetHistory: %w", err)
		}
		opp.Game = domain.ParseGameKey(gameKey)
		opp.Category = cat
		opp.ScannedAt, _ = time.Parse(timeLayout, lastSeen)
		opps = append(opps, opp)
	}

	return opps, rows.Err()
}

// PeakProfitPct devuelve el mayor profit % registrado para una identidad.
func (s *SQLiteStorage) PeakProfitPct(ctx context.Context, id domain.Identity) (float64, bool, error) {
	var peak float64
	err := s.db.QueryRowContext(ctx,
		`SELECT peak_profit_pct FROM opportunities WHERE identity = ?`, id.String(),
	).Scan(&peak)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("storage.PeakProfitPct: %w", err)
	}
	return peak, true, nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

// filterChanged devuelve las oportunidades que hay que escribir, sin tocar la cache.
// Si un scan repite una identidad se escribe solo la última.
func (s *SQLiteStorage) filterChanged(opps []domain.Opportunity, now time.Time) []domain.Opportunity {
	s.mu.Lock()
	defer s.mu.Unlock()

	latest := make(map[string]int, len(opps))
	for i, opp := range opps {
		latest[opp.Identity().String()] = i
	}

	var toWrite []domain.Opportunity
	for i, opp := range opps {
		id := opp.Identity().String()
		if latest[id] != i {
			continue
		}
		if prev, ok := s.cache[id]; ok && prev.row == opp.Display() && now.Sub(prev.written) < touchInterval {
			continue
		}
		toWrite = append(toWrite, opp)
	}
	return toWrite
}

// remember anota en la cache lo que ya está confirmado en disco.
func (s *SQLiteStorage) remember(written []domain.Opportunity, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, opp := range written {
		s.cache[opp.Identity().String()] = cachedState{row: opp.Display(), written: now}
	}
}

// pruneOld elimina datos antiguos para mantener la DB ligera.
func (s *SQLiteStorage) pruneOld(ctx context.Context, now time.Time) {
	cutoffCycles := formatTime(now.UTC().Add(-retentionCycles))
	cutoffOpps := formatTime(now.UTC().Add(-retentionOpps))
	s.db.ExecContext(ctx, `DELETE FROM cycles WHERE scanned_at < ?`, cutoffCycles)
	s.db.ExecContext(ctx, `DELETE FROM opportunities WHERE last_seen < ?`, cutoffOpps)
}

// warmCache precarga la cache desde la DB al arrancar, evitando escrituras
// redundantes en el primer ciclo tras un reinicio.
func (s *SQLiteStorage) warmCache(ctx context.Context) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT game_key, category, game_label,
		       side1_label, side1_odds, side1_source,
		       side2_label, side2_odds, side2_source,
		       arb_pct, stake1, stake2, profit, profit_pct, last_seen
		FROM opportunities`)
	if err != nil {
		return
	}
	defer rows.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for rows.Next() {
		var opp domain.Opportunity
		var gameKey, catStr, lastSeen string
		if err := rows.Scan(
			&gameKey, &catStr, &opp.GameLabel,
			&opp.Side1.Label, &opp.Side1.Odds, &opp.Side1.Source,
			&opp.Side2.Label, &opp.Side2.Odds, &opp.Side2.Source,
			&opp.Result.ArbPercentage, &opp.Result.StakeA, &opp.Result.StakeB,
			&opp.Result.Profit, &opp.Result.ProfitPct, &lastSeen,
		); err != nil {
			continue
		}
		cat, err := domain.ParseBetCategory(catStr)
		if err != nil {
			continue
		}
		opp.Game = domain.ParseGameKey(gameKey)
		opp.Category = cat
		written, _ := time.Parse(timeLayout, lastSeen)
		s.cache[opp.Identity().String()] = cachedState{row: opp.Display(), written: written}
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
