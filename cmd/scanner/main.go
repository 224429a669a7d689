package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alejandrodnm/nhlarb/config"
	"github.com/alejandrodnm/nhlarb/internal/adapters/notify"
	"github.com/alejandrodnm/nhlarb/internal/adapters/storage"
	"github.com/alejandrodnm/nhlarb/internal/domain"
	"github.com/alejandrodnm/nhlarb/internal/ports"
	"github.com/alejandrodnm/nhlarb/internal/scanner"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one scan cycle and exit")
	dryRun := flag.Bool("dry-run", false, "use local fixtures instead of the live feeds (one cycle)")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print the full arbitrage table (default: compact 1-line per change)")
	history := flag.Duration("history", 0, "print arbitrage logged in this window (e.g. 24h) and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	console := notify.NewConsole(*table)

	if *history > 0 {
		runHistory(ctx, cfg, console, *history)
		return
	}

	slog.Info("nhlarb starting",
		"config", *configPath,
		"interval", cfg.ScanInterval(),
		"stake", cfg.Scanner.Stake,
		"dry_run", *dryRun,
		"once", *once,
	)

	primary, secondary, err := buildFeeds(cfg.Feeds, *dryRun)
	if err != nil {
		slog.Error("failed to configure feeds", "err", err)
		os.Exit(1)
	}

	var store ports.Storage
	if !*dryRun && cfg.Storage.DSN != "" {
		sqlite, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer sqlite.Close()
		store = sqlite
	}

	notifier, closeSinks := buildNotifier(ctx, cfg.Notify, console, *dryRun)
	defer closeSinks()

	scanCfg := scanner.DefaultConfig()
	scanCfg.ScanInterval = cfg.ScanInterval()
	scanCfg.FetchTimeout = cfg.FetchTimeout()
	scanCfg.Stake = cfg.Scanner.Stake
	scanCfg.DryRun = *dryRun || *once
	scanCfg.Filter = scanner.FilterConfig{
		MinProfitPct: cfg.Scanner.MinProfitPct,
		MaxProfitPct: cfg.Scanner.MaxProfitPct,
	}

	aliases := domain.DefaultTeamAliases().Merge(cfg.Teams.Aliases)

	s, err := scanner.New(scanCfg, primary, secondary, aliases, store, notifier)
	if err != nil {
		slog.Error("failed to create scanner", "err", err)
		os.Exit(1)
	}

	if err := s.Run(ctx); err != nil {
		slog.Error("scanner exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("nhlarb stopped cleanly")
}

// runHistory imprime el log de arbitrajes de la ventana dada.
func runHistory(ctx context.Context, cfg *config.Config, console *notify.Console, window time.Duration) {
	if cfg.Storage.DSN == "" {
		slog.Error("history needs storage.dsn")
		os.Exit(1)
	}
	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	now := time.Now()
	opps, err := store.GetHistory(ctx, now.Add(-window), now)
	if err != nil {
		slog.Error("failed to read history", "err", err)
		os.Exit(1)
	}
	console.PrintHistory(opps, window)
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
