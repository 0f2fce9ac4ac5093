package outbound

import (
	"context"
	"fmt"
	"strconv"

	"github.com/SscSPs/collectibles_market/internal/core/ports/external"
	"github.com/SscSPs/collectibles_market/internal/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// messageSender is the part of *tgbotapi.BotAPI the notifier uses.
type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier messages the Telegram user whose id is the account's external id.
type TelegramNotifier struct {
	bot messageSender
}

func NewTelegramNotifier(token string) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot}, nil
}

var _ external.Notifier = (*TelegramNotifier)(nil)

func (n *TelegramNotifier) Notify(_ context.Context, accountExternalID string, kind string, payload map[string]any) error {
	chatID, err := strconv.ParseInt(accountExternalID, 10, 64)
	if err != nil {
		return fmt.Errorf("external id %q is not a telegram chat: %w", accountExternalID, err)
	}
	msg := tgbotapi.NewMessage(chatID, renderNotification(kind, payload))
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send %s notification: %w", kind, err)
	}
	return nil
}

func renderNotification(kind string, payload map[string]any) string {
	ton := func(key string) string {
		if v, ok := payload[key].(int64); ok {
			return utils.FormatTON(v) + " TON"
		}
		return fmt.Sprint(payload[key])
	}
	switch kind {
	case external.KindDeposit:
		return fmt.Sprintf("Deposit received: %s. Balance: %s.", ton("amount"), ton("balance"))
	case external.KindItemSold:
		return fmt.Sprintf("Your item #%v sold for %s.", payload["mintNumber"], ton("price"))
	case external.KindBidReceived:
		return fmt.Sprintf("New bid of %s on your item.", ton("amount"))
	case external.KindBidAccepted:
		return "Your bid was accepted. The item is yours."
	case external.KindItemReceived:
		return "You received an item as a gift."
	case external.KindPresaleResult:
		return fmt.Sprintf("Presale drawn: %v won, %v refunded (%s).", payload["wins"], payload["losses"], ton("refund"))
	case external.KindWithdrawalState:
		return fmt.Sprintf("Withdrawal of %s is %v.", ton("amount"), payload["status"])
	default:
		return kind
	}
}
