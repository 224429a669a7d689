package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/nhlarb/internal/adapters/notify"
	"github.com/alejandrodnm/nhlarb/internal/domain"
)

// --- fakes ---

type fakeBot struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, f.err
}

type published struct {
	channel string
	payload []byte
}

type fakePublisher struct {
	msgs []published
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	b, _ := message.([]byte)
	f.msgs = append(f.msgs, published{channel: channel, payload: b})
	return redis.NewIntResult(1, f.err)
}

type fakeSink struct {
	calls int
	err   error
}

func (f *fakeSink) Notify(_ context.Context, _ []domain.RenderEvent) error {
	f.calls++
	return f.err
}

// --- telegram ---

func TestTelegram_Notify_SendsAddsAndRemovesOnly(t *testing.T) {
	bot := &fakeBot{}
	tg := notify.NewTelegramSender(bot, 42, 0)

	opp := makeOpp("Bruins", "Maple Leafs", domain.CategoryMoneyline, 2.5, 1.8)
	err := tg.Notify(context.Background(), []domain.RenderEvent{
		event(domain.EventAdd, "h1", opp),
		event(domain.EventUpdate, "h1", opp),
		event(domain.EventRemove, "h1", opp),
	})
	require.NoError(t, err)
	require.Len(t, bot.sent, 2)

	assert.Equal(t, int64(42), bot.sent[0].ChatID)
	assert.Contains(t, bot.sent[0].Text, "NEW ARBITRAGE 4.65%")
	assert.Contains(t, bot.sent[0].Text, "Bruins vs Maple Leafs (Moneyline)")
	assert.Contains(t, bot.sent[0].Text, "stake $41.86")
	assert.Contains(t, bot.sent[1].Text, "GONE: Bruins vs Maple Leafs")
}

func TestTelegram_Notify_ErrorsAreJoined(t *testing.T) {
	bot := &fakeBot{err: errors.New("429 too many requests")}
	tg := notify.NewTelegramSender(bot, 1, 0)

	a := makeOpp("Bruins", "Maple Leafs", domain.CategoryMoneyline, 2.5, 1.8)
	b := makeOpp("Oilers", "Flames", domain.CategoryTotal, 2.1, 2.1)
	err := tg.Notify(context.Background(), []domain.RenderEvent{
		event(domain.EventAdd, "h1", a),
		event(domain.EventAdd, "h2", b),
	})
	require.Error(t, err)
	assert.Len(t, bot.sent, 2, "a failed send must not stop the rest")
	assert.Contains(t, err.Error(), "429")
}

// --- redis ---

func TestRedis_Notify_PublishesJSON(t *testing.T) {
	pub := &fakePublisher{}
	r := notify.NewRedisPublisher(pub, "")

	opp := makeOpp("Bruins", "Maple Leafs", domain.CategoryMoneyline, 2.5, 1.8)
	require.NoError(t, r.Notify(context.Background(), []domain.RenderEvent{event(domain.EventAdd, "h1", opp)}))
	require.Len(t, pub.msgs, 1)
	assert.Equal(t, "nhlarb:events", pub.msgs[0].channel)

	var got map[string]any
	require.NoError(t, json.Unmarshal(pub.msgs[0].payload, &got))
	assert.Equal(t, "add", got["kind"])
	assert.Equal(t, "h1", got["handle"])
	assert.Equal(t, "bruins|maple leafs|Moneyline", got["identity"])
	assert.Equal(t, "Moneyline", got["bet_type"])
	assert.InDelta(t, 4.65, got["profit_pct"].(float64), 0.01)

	side1 := got["side1"].(map[string]any)
	assert.Equal(t, "BetMGM", side1["source"])
}

func TestRedis_Notify_PublishError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("connection refused")}
	r := notify.NewRedisPublisher(pub, "arbs")

	opp := makeOpp("Kings", "Ducks", domain.CategorySpread, 2.3, 2.3)
	err := r.Notify(context.Background(), []domain.RenderEvent{event(domain.EventAdd, "h1", opp)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "arbs")
	assert.NoError(t, r.Close())
}

// --- multi ---

func TestMulti_Notify_DeliversToAllSinks(t *testing.T) {
	broken := &fakeSink{err: errors.New("boom")}
	ok := &fakeSink{}
	m := notify.NewMulti(broken, nil, ok)

	err := m.Notify(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, 1, broken.calls)
	assert.Equal(t, 1, ok.calls)
}
