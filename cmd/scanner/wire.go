package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/nhlarb/config"
	"github.com/alejandrodnm/nhlarb/internal/adapters/feed"
	"github.com/alejandrodnm/nhlarb/internal/adapters/notify"
	"github.com/alejandrodnm/nhlarb/internal/ports"
)

// buildFeeds crea los dos feeds: HTTP en modo normal, fixtures con -dry-run.
func buildFeeds(cfg config.FeedsConfig, dryRun bool) (primary, secondary ports.FeedProvider, err error) {
	primary, err = buildFeed(cfg.Primary, dryRun)
	if err != nil {
		return nil, nil, err
	}
	secondary, err = buildFeed(cfg.Secondary, dryRun)
	if err != nil {
		return nil, nil, err
	}
	return primary, secondary, nil
}

func buildFeed(cfg config.FeedConfig, dryRun bool) (ports.FeedProvider, error) {
	if dryRun {
		if cfg.Fixture == "" {
			return nil, fmt.Errorf("feed %s: -dry-run needs a fixture path", cfg.Name)
		}
		slog.Info("DRY RUN: using fixture", "feed", cfg.Name, "path", cfg.Fixture)
		return feed.NewFileFeed(cfg.Name, cfg.Fixture), nil
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("feed %s: url is required", cfg.Name)
	}
	return feed.NewHTTPFeed(cfg.Name, cfg.URL, cfg.RatePerSec), nil
}

// buildNotifier junta la consola con los sinks opcionales configurados.
// Un sink que no arranca se registra y se omite; la consola siempre queda.
func buildNotifier(ctx context.Context, cfg config.NotifyConfig, console *notify.Console, dryRun bool) (ports.Notifier, func()) {
	sinks := []ports.Notifier{console}
	closers := []func() error{}

	if cfg.Telegram.Token != "" && !dryRun {
		tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			slog.Warn("telegram disabled", "err", err)
		} else {
			sinks = append(sinks, tg)
		}
	}

	if cfg.Redis.Addr != "" {
		rd, err := notify.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Channel)
		if err != nil {
			slog.Warn("redis disabled", "err", err)
		} else {
			sinks = append(sinks, rd)
			closers = append(closers, rd.Close)
			slog.Info("publishing events to redis", "addr", cfg.Redis.Addr, "channel", cfg.Redis.Channel)
		}
	}

	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				slog.Warn("sink close failed", "err", err)
			}
		}
	}
	return notify.NewMulti(sinks...), closeAll
}
