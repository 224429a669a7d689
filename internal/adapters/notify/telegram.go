package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/alejandrodnm/nhlarb/internal/domain"
)

// Intervalo mínimo entre dos mensajes al mismo chat (límite de ~30/min de Telegram).
const telegramSendInterval = 2 * time.Second

// BotSender es la parte de *tgbotapi.BotAPI que usa Telegram.
type BotSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram implementa ports.Notifier enviando altas y bajas a un chat.
// Las actualizaciones de cifras no se envían: con cuotas moviéndose cada pocos
// segundos el chat sería ilegible.
type Telegram struct {
	bot     BotSender
	chatID  int64
	limiter *rate.Limiter
}

// NewTelegram conecta con la Bot API y valida el token.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("notify.NewTelegram: %w", err)
	}
	bot.Debug = false

	slog.Info("telegram notifier initialized", "bot", bot.Self.UserName, "chat_id", chatID)
	return NewTelegramSender(bot, chatID, telegramSendInterval), nil
}

// NewTelegramSender crea un notificador sobre un BotSender ya construido.
// interval = 0 desactiva el espaciado entre mensajes.
func NewTelegramSender(bot BotSender, chatID int64, interval time.Duration) *Telegram {
	return &Telegram{
		bot:     bot,
		chatID:  chatID,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Notify envía un mensaje por cada alta o baja. Un envío fallido no impide
// los siguientes; los errores se devuelven juntos.
func (t *Telegram) Notify(ctx context.Context, events []domain.RenderEvent) error {
	var errs []error
	for _, ev := range events {
		text, ok := telegramText(ev)
		if !ok {
			continue
		}
		if err := t.limiter.Wait(ctx); err != nil {
			return errors.Join(append(errs, fmt.Errorf("telegram: %w", err))...)
		}

		msg := tgbotapi.NewMessage(t.chatID, text)
		if _, err := t.bot.Send(msg); err != nil {
			slog.Warn("telegram send failed", "handle", ev.Handle, "err", err)
			errs = append(errs, fmt.Errorf("telegram: send %s: %w", ev.Identity.String(), err))
		}
	}
	return errors.Join(errs...)
}

// telegramText formatea el mensaje de un evento; ok=false si no se envía.
func telegramText(ev domain.RenderEvent) (string, bool) {
	row := ev.Opportunity.Display()
	var sb strings.Builder

	switch ev.Kind {
	case domain.EventAdd:
		fmt.Fprintf(&sb, "NEW ARBITRAGE %s\n", row.ProfitPct)
		fmt.Fprintf(&sb, "%s (%s)\n", row.Game, row.BetType)
		fmt.Fprintf(&sb, "%s → stake %s\n", row.Side1, row.Stake1)
		fmt.Fprintf(&sb, "%s → stake %s\n", row.Side2, row.Stake2)
		fmt.Fprintf(&sb, "Arb %s, profit %s", row.ArbPct, row.Profit)
	case domain.EventRemove:
		fmt.Fprintf(&sb, "GONE: %s (%s), last seen at %s", row.Game, row.BetType, row.ProfitPct)
	default:
		return "", false
	}
	return sb.String(), true
}
