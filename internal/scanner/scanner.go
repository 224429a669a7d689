package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/alejandrodnm/nhlarb/internal/domain"
	"github.com/alejandrodnm/nhlarb/internal/ports"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	defaultStake        = 100
	defaultScanInterval = 15 * time.Second
	defaultFetchTimeout = 20 * time.Second
)

// Config contiene la configuración del scanner.
type Config struct {
	ScanInterval time.Duration // pausa entre el fin de un scan y el inicio del siguiente
	FetchTimeout time.Duration // límite por feed; 0 = sin límite
	Stake        float64       // stake total por oportunidad
	Filter       FilterConfig
	DryRun       bool
}

// DefaultConfig devuelve una configuración sensata para producción.
func DefaultConfig() Config {
	return Config{
		ScanInterval: defaultScanInterval,
		FetchTimeout: defaultFetchTimeout,
		Stake:        defaultStake,
		Filter:       DefaultFilterConfig(),
	}
}

// Scanner es el orquestador principal del loop de escaneo.
// La goroutine que llama a Run es la única dueña del DisplayedSet.
type Scanner struct {
	cfg       Config
	primary   ports.FeedProvider
	secondary ports.FeedProvider
	storage   ports.Storage
	notifier  ports.Notifier
	matcher   *Matcher
	analyzer  *Analyzer
	filter    *Filter
	displayed *DisplayedSet
}

// New crea un Scanner con todas las dependencias inyectadas.
// storage puede ser nil (no se persiste nada).
func New(
	cfg Config,
	primary, secondary ports.FeedProvider,
	aliases domain.TeamAliases,
	storage ports.Storage,
	notifier ports.Notifier,
) (*Scanner, error) {
	if !domain.ValidStake(cfg.Stake) {
		return nil, fmt.Errorf("scanner.New: stake %v: %w", cfg.Stake, domain.ErrInvalidStake)
	}
	return &Scanner{
		cfg:       cfg,
		primary:   primary,
		secondary: secondary,
		storage:   storage,
		notifier:  notifier,
		matcher:   NewMatcher(aliases),
		analyzer:  NewAnalyzer(cfg.Stake, primary.Name(), secondary.Name()),
		filter:    NewFilter(cfg.Filter),
		displayed: NewDisplayedSet(),
	}, nil
}

// Run ejecuta el loop de escaneo hasta que el contexto se cancele.
// El siguiente scan se programa solo cuando el anterior ya se entregó a los
// sinks, así que nunca hay dos scans solapados. Con cfg.DryRun ejecuta un ciclo.
func (s *Scanner) Run(ctx context.Context) error {
	slog.Info("scanner starting",
		"interval", s.cfg.ScanInterval,
		"stake", s.cfg.Stake,
		"primary", s.primary.Name(),
		"secondary", s.secondary.Name(),
		"dry_run", s.cfg.DryRun,
	)

	s.runCycle(ctx)
	if s.cfg.DryRun {
		return nil
	}

	timer := time.NewTimer(s.cfg.ScanInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("scanner stopped")
			return nil
		case <-timer.C:
			s.runCycle(ctx)
			timer.Reset(s.cfg.ScanInterval)
		}
	}
}

// RunOnce ejecuta exactamente un scan y devuelve las oportunidades, sin
// tocar el conjunto mostrado.
func (s *Scanner) RunOnce(ctx context.Context) []domain.Opportunity {
	return s.Scan(ctx).Opportunities
}

// runCycle hace scan → reconcile → notify → persist.
func (s *Scanner) runCycle(ctx context.Context) {
	scan := s.Scan(ctx)
	if ctx.Err() != nil {
		// Cancelado a mitad: el scan está incompleto y no debe borrar lo mostrado.
		return
	}

	events := s.displayed.Reconcile(scan.Opportunities, scan.ID)
	logNewArbitrage(events)

	if err := s.notifier.Notify(ctx, events); err != nil {
		slog.Warn("notifier error", "err", err)
	}

	if s.storage != nil {
		if err := s.storage.SaveScan(ctx, scan); err != nil {
			slog.Warn("storage error", "err", err)
		}
	}

	slog.Info("scan cycle complete",
		"scan_id", scan.ID,
		"opportunities", len(scan.Opportunities),
		"displayed", s.displayed.Len(),
		"events", len(events),
		"duration", scan.Duration.Round(time.Millisecond),
	)
}

// Scan hace fetch → match → analyze → filter → rank. Nunca falla: en el
// peor caso devuelve un resultado sin oportunidades.
func (s *Scanner) Scan(ctx context.Context) domain.ScanResult {
	start := time.Now()
	primaryGames, secondaryGames := s.fetchAll(ctx)

	matched, stats := s.matcher.Match(primaryGames, secondaryGames)
	slog.Info("games matched",
		"primary", s.primary.Name(),
		"primary_games", stats.Primary,
		"secondary", s.secondary.Name(),
		"secondary_games", stats.Secondary,
		"matched", stats.Matched,
		"duplicates", stats.Duplicates,
	)

	var opps []domain.Opportunity
	for _, game := range matched {
		opps = append(opps, s.analyzer.Analyze(game, start)...)
	}

	filtered := s.filter.Apply(opps)
	return domain.ScanResult{
		ID:             uuid.New().String(),
		StartedAt:      start,
		Duration:       time.Since(start),
		PrimaryGames:   stats.Primary,
		SecondaryGames: stats.Secondary,
		Matched:        stats.Matched,
		Opportunities:  rankByProfit(filtered),
	}
}

// fetchAll consulta ambos feeds en paralelo. Un feed que falla cuenta como vacío
// y no cancela al otro, por eso el grupo no lleva contexto propio.
func (s *Scanner) fetchAll(ctx context.Context) (primary, secondary []domain.GameRecord) {
	var (
		g                        errgroup.Group
		primaryErr, secondaryErr error
	)
	g.Go(func() error {
		primary, primaryErr = s.fetch(ctx, s.primary)
		return primaryErr
	})
	g.Go(func() error {
		secondary, secondaryErr = s.fetch(ctx, s.secondary)
		return secondaryErr
	})
	if err := g.Wait(); err != nil {
		for _, f := range []struct {
			feed ports.FeedProvider
			err  error
		}{{s.primary, primaryErr}, {s.secondary, secondaryErr}} {
			if f.err != nil {
				slog.Warn("feed fetch failed, continuing without it", "feed", f.feed.Name(), "err", f.err)
			}
		}
	}
	return primary, secondary
}

// fetch aplica el timeout en la frontera con el feed.
func (s *Scanner) fetch(ctx context.Context, feed ports.FeedProvider) ([]domain.GameRecord, error) {
	if s.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.FetchTimeout)
		defer cancel()
	}

	games, err := feed.FetchGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("scanner.fetch %s: %w", feed.Name(), err)
	}
	return games, nil
}

// logNewArbitrage registra cada oportunidad nueva a nivel WARN para que se vea
// aunque el sink de consola esté en modo compacto.
func logNewArbitrage(events []domain.RenderEvent) {
	for _, ev := range events {
		if ev.Kind != domain.EventAdd {
			continue
		}
		row := ev.Opportunity.Display()
		slog.Warn("NEW ARBITRAGE",
			"game", row.Game,
			"bet_type", row.BetType,
			"side1", row.Side1,
			"side2", row.Side2,
			"stake1", row.Stake1,
			"stake2", row.Stake2,
			"profit", row.Profit,
			"profit_pct", row.ProfitPct,
		)
	}
}

// rankByProfit ordena por ProfitPct descendente; el orden relativo de empates se mantiene.
func rankByProfit(opps []domain.Opportunity) []domain.Opportunity {
	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].Result.ProfitPct > opps[j].Result.ProfitPct
	})
	return opps
}
