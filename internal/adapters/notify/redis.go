package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alejandrodnm/nhlarb/internal/domain"
)

const defaultRedisChannel = "nhlarb:events"

// Publisher es la parte de *redis.Client que usa Redis.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Redis implementa ports.Notifier publicando cada evento como JSON en un
// canal Pub/Sub, para que otros procesos reproduzcan lo mostrado.
type Redis struct {
	pub     Publisher
	channel string
	client  *redis.Client // nil si el Publisher viene de fuera
}

// NewRedis conecta con Redis en addr y comprueba la conexión.
func NewRedis(ctx context.Context, addr, channel string) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("notify.NewRedis: ping %s: %w", addr, err)
	}
	r := NewRedisPublisher(rdb, channel)
	r.client = rdb
	return r, nil
}

// NewRedisPublisher crea un notificador sobre un Publisher ya construido.
func NewRedisPublisher(pub Publisher, channel string) *Redis {
	if channel == "" {
		channel = defaultRedisChannel
	}
	return &Redis{pub: pub, channel: channel}
}

// Notify publica los eventos en orden.
func (r *Redis) Notify(ctx context.Context, events []domain.RenderEvent) error {
	var errs []error
	for _, ev := range events {
		payload, err := json.Marshal(newEventPayload(ev))
		if err != nil {
			errs = append(errs, fmt.Errorf("redis: marshal %s: %w", ev.Handle, err))
			continue
		}
		if err := r.pub.Publish(ctx, r.channel, payload).Err(); err != nil {
			errs = append(errs, fmt.Errorf("redis: publish %s: %w", r.channel, err))
		}
	}
	return errors.Join(errs...)
}

// Close cierra la conexión si la abrió NewRedis.
func (r *Redis) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

// eventPayload es el formato JSON publicado.
type eventPayload struct {
	Kind      domain.EventKind `json:"kind"`
	Handle    string           `json:"handle"`
	Identity  string           `json:"identity"`
	ScanID    string           `json:"scan_id"`
	Game      string           `json:"game"`
	BetType   string           `json:"bet_type"`
	Side1     sidePayload      `json:"side1"`
	Side2     sidePayload      `json:"side2"`
	Stake     float64          `json:"stake"`
	Stake1    float64          `json:"stake1"`
	Stake2    float64          `json:"stake2"`
	ArbPct    float64          `json:"arb_pct"`
	Profit    float64          `json:"profit"`
	ProfitPct float64          `json:"profit_pct"`
	ScannedAt time.Time        `json:"scanned_at"`
}

type sidePayload struct {
	Label  string  `json:"label"`
	Odds   float64 `json:"odds"`
	Source string  `json:"source"`
}

func newEventPayload(ev domain.RenderEvent) eventPayload {
	o := ev.Opportunity
	return eventPayload{
		Kind:      ev.Kind,
		Handle:    ev.Handle,
		Identity:  ev.Identity.String(),
		ScanID:    ev.ScanID,
		Game:      o.GameLabel,
		BetType:   o.Category.String(),
		Side1:     sidePayload{Label: o.Side1.Label, Odds: o.Side1.Odds, Source: o.Side1.Source},
		Side2:     sidePayload{Label: o.Side2.Label, Odds: o.Side2.Odds, Source: o.Side2.Source},
		Stake:     o.Stake,
		Stake1:    o.Result.StakeA,
		Stake2:    o.Result.StakeB,
		ArbPct:    o.Result.ArbPercentage * 100,
		Profit:    o.Result.Profit,
		ProfitPct: o.Result.ProfitPct,
		ScannedAt: o.ScannedAt,
	}
}
