package scanner_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/alejandrodnm/nhlarb/internal/domain"
	"github.com/alejandrodnm/nhlarb/internal/ports"
	"github.com/alejandrodnm/nhlarb/internal/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockFeed struct {
	name  string
	mu    sync.Mutex
	games []domain.GameRecord
	err   error
}

func (m *mockFeed) Name() string { return m.name }

func (m *mockFeed) FetchGames(_ context.Context) ([]domain.GameRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.games, m.err
}

func (m *mockFeed) set(games ...domain.GameRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games = games
}

type slowFeed struct{ name string }

func (s *slowFeed) Name() string { return s.name }

func (s *slowFeed) FetchGames(ctx context.Context) ([]domain.GameRecord, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// delayedFeed tarda delay en responder, respetando el contexto.
type delayedFeed struct {
	mockFeed
	delay time.Duration
}

func (d *delayedFeed) FetchGames(ctx context.Context) ([]domain.GameRecord, error) {
	select {
	case <-time.After(d.delay):
		return d.mockFeed.FetchGames(ctx)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type mockNotifier struct {
	batches [][]domain.RenderEvent
	err     error
	onCall  func(n int)
}

func (m *mockNotifier) Notify(_ context.Context, events []domain.RenderEvent) error {
	m.batches = append(m.batches, events)
	if m.onCall != nil {
		m.onCall(len(m.batches))
	}
	return m.err
}

func (m *mockNotifier) last() []domain.RenderEvent {
	if len(m.batches) == 0 {
		return nil
	}
	return m.batches[len(m.batches)-1]
}

type mockStorage struct {
	saved []domain.ScanResult
	err   error
}

func (m *mockStorage) SaveScan(_ context.Context, scan domain.ScanResult) error {
	m.saved = append(m.saved, scan)
	return m.err
}

func (m *mockStorage) GetHistory(_ context.Context, _, _ time.Time) ([]domain.Opportunity, error) {
	return nil, nil
}

func (m *mockStorage) Close() error { return nil }

// --- helpers ---

func game(team1, team2, ml1, ml2 string) domain.GameRecord {
	na := domain.OddsPair{Side1: domain.OddsUnavailable, Side2: domain.OddsUnavailable}
	return domain.GameRecord{
		Team1:     team1,
		Team2:     team2,
		Moneyline: domain.OddsPair{Side1: ml1, Side2: ml2},
		Spread:    na,
		Total:     na,
	}
}

func newTestScanner(t *testing.T, primary, secondary ports.FeedProvider, n ports.Notifier, s ports.Storage) *scanner.Scanner {
	t.Helper()
	cfg := scanner.DefaultConfig()
	cfg.DryRun = true
	sc, err := scanner.New(cfg, primary, secondary, domain.DefaultTeamAliases(), s, n)
	require.NoError(t, err)
	return sc
}

// --- tests ---

func TestScanner_New_RejectsInvalidStake(t *testing.T) {
	for _, stake := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		cfg := scanner.DefaultConfig()
		cfg.Stake = stake
		_, err := scanner.New(cfg, &mockFeed{name: "A"}, &mockFeed{name: "B"}, nil, nil, &mockNotifier{})
		assert.ErrorIs(t, err, domain.ErrInvalidStake, "stake %v", stake)
	}
}

func TestScanner_Scan_MatchesAcrossNamingStyles(t *testing.T) {
	primary := &mockFeed{name: "BetMGM"}
	primary.set(game("Bruins", "Leafs", "+120", "-140"))
	secondary := &mockFeed{name: "DraftKings"}
	secondary.set(game("Boston", "Toronto", "-110", "+105"))

	s := newTestScanner(t, primary, secondary, &mockNotifier{}, nil)
	res := s.Scan(context.Background())

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, 1, res.PrimaryGames)
	assert.Equal(t, 1, res.SecondaryGames)
	assert.Equal(t, 1, res.Matched)
	require.Len(t, res.Opportunities, 1)

	opp := res.Opportunities[0]
	assert.Equal(t, "BetMGM", opp.Side1.Source)
	assert.Equal(t, "DraftKings", opp.Side2.Source)
	assert.InDelta(t, 0, opp.PayoutSpread(), 1e-6)
}

func TestScanner_Scan_RankedByProfit(t *testing.T) {
	primary := &mockFeed{name: "A"}
	primary.set(
		game("Oilers", "Flames", "+105", "+105"),
		game("Kings", "Ducks", "+130", "+130"),
	)
	secondary := &mockFeed{name: "B"}
	secondary.set(
		game("Edmonton", "Calgary", "-110", "-110"),
		game("Los Angeles", "Anaheim", "-110", "-110"),
	)

	s := newTestScanner(t, primary, secondary, &mockNotifier{}, nil)
	opps := s.RunOnce(context.Background())

	require.Len(t, opps, 2)
	assert.Greater(t, opps[0].Result.ProfitPct, opps[1].Result.ProfitPct)
	assert.Equal(t, "Kings vs Ducks", opps[0].GameLabel)
}

func TestScanner_Scan_FeedFailureDegradesToNoMatches(t *testing.T) {
	primary := &mockFeed{name: "A", err: errors.New("site down")}
	secondary := &mockFeed{name: "B"}
	secondary.set(game("Oilers", "Flames", "+150", "+150"))

	s := newTestScanner(t, primary, secondary, &mockNotifier{}, nil)
	res := s.Scan(context.Background())

	assert.Equal(t, 0, res.PrimaryGames)
	assert.Equal(t, 1, res.SecondaryGames)
	assert.Equal(t, 0, res.Matched)
	assert.Empty(t, res.Opportunities)
}

func TestScanner_Scan_FastFailureDoesNotCancelSlowerFeed(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	primary := &mockFeed{name: "A", err: errors.New("site down")}
	secondary := &delayedFeed{mockFeed: mockFeed{name: "B"}, delay: 50 * time.Millisecond}
	secondary.set(game("Oilers", "Flames", "+150", "+150"))

	s := newTestScanner(t, primary, secondary, &mockNotifier{}, nil)
	res := s.Scan(context.Background())

	assert.Equal(t, 0, res.PrimaryGames)
	assert.Equal(t, 1, res.SecondaryGames)
	assert.Equal(t, 1, bytes.Count(logs.Bytes(), []byte("feed fetch failed")))
	assert.Contains(t, logs.String(), "feed=A")
	assert.Contains(t, logs.String(), "site down")
}

func TestScanner_Scan_FetchTimeoutAtFeedBoundary(t *testing.T) {
	secondary := &mockFeed{name: "B"}
	secondary.set(game("Oilers", "Flames", "+150", "+150"))

	cfg := scanner.DefaultConfig()
	cfg.FetchTimeout = 20 * time.Millisecond
	s, err := scanner.New(cfg, &slowFeed{name: "A"}, secondary, nil, nil, &mockNotifier{})
	require.NoError(t, err)

	res := s.Scan(context.Background())
	assert.Equal(t, 0, res.PrimaryGames)
	assert.Empty(t, res.Opportunities)
}

func TestScanner_Run_DryRunNotifiesAndPersists(t *testing.T) {
	primary := &mockFeed{name: "A"}
	primary.set(game("Oilers", "Flames", "+110", "+110"))
	secondary := &mockFeed{name: "B"}
	secondary.set(game("Oilers", "Flames", "-120", "-120"))

	notifier := &mockNotifier{}
	storage := &mockStorage{}
	s := newTestScanner(t, primary, secondary, notifier, storage)

	require.NoError(t, s.Run(context.Background()))

	require.Len(t, notifier.batches, 1)
	events := notifier.last()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventAdd, events[0].Kind)
	assert.NotEmpty(t, events[0].Handle)

	require.Len(t, storage.saved, 1)
	assert.Equal(t, events[0].ScanID, storage.saved[0].ID)
	assert.Len(t, storage.saved[0].Opportunities, 1)
}

func TestScanner_Run_ReconcilesAcrossCycles(t *testing.T) {
	primary := &mockFeed{name: "A"}
	secondary := &mockFeed{name: "B"}
	primary.set(game("Oilers", "Flames", "+110", "+110"))
	secondary.set(game("Oilers", "Flames", "-120", "-120"))

	notifier := &mockNotifier{}
	s := newTestScanner(t, primary, secondary, notifier, nil)
	ctx := context.Background()

	require.NoError(t, s.Run(ctx))
	require.Len(t, notifier.last(), 1)
	added := notifier.last()[0]

	// Mismo resultado → sin eventos
	require.NoError(t, s.Run(ctx))
	assert.Empty(t, notifier.last())

	// El partido desaparece de ambos feeds → baja con el mismo handle
	primary.set()
	secondary.set()
	require.NoError(t, s.Run(ctx))
	require.Len(t, notifier.last(), 1)
	removed := notifier.last()[0]
	assert.Equal(t, domain.EventRemove, removed.Kind)
	assert.Equal(t, added.Handle, removed.Handle)

	// Y no reaparece mientras no vuelva
	require.NoError(t, s.Run(ctx))
	assert.Empty(t, notifier.last())
}

func TestScanner_Run_NotifierErrorDoesNotStopLoop(t *testing.T) {
	primary := &mockFeed{name: "A"}
	secondary := &mockFeed{name: "B"}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifier := &mockNotifier{err: errors.New("sink broken")}
	notifier.onCall = func(n int) {
		if n == 3 {
			cancel()
		}
	}

	cfg := scanner.DefaultConfig()
	cfg.ScanInterval = time.Millisecond
	s, err := scanner.New(cfg, primary, secondary, nil, &mockStorage{err: errors.New("disk full")}, notifier)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scanner did not stop")
	}
	assert.GreaterOrEqual(t, len(notifier.batches), 3)
}
