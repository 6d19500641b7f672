// Package notifier delivers alert messages to people: Telegram when a bot is
// configured, the structured log otherwise.
package notifier

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"finsmart/internal/amqp"
	"finsmart/internal/core"
	applog "finsmart/internal/log"
)

type Notifier interface {
	Notify(ctx context.Context, alert amqp.AlertMessage) error
}

// sender is the part of *tgbotapi.BotAPI used here.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Telegram struct {
	bot    sender
	chatID int64
	logger *applog.Logger
}

// NewTelegram authenticates the bot token against the Telegram API.
func NewTelegram(token string, chatID int64, logger *applog.Logger) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	bot.Debug = false
	logger = logger.WithComponent(applog.ComponentNotifier)
	logger.Info("Telegram bot authorised", "bot", bot.Self.UserName)
	return &Telegram{bot: bot, chatID: chatID, logger: logger}, nil
}

func (t *Telegram) Notify(ctx context.Context, alert amqp.AlertMessage) error {
	msg := tgbotapi.NewMessage(t.chatID, FormatAlert(alert))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	t.logger.InfoContext(ctx, "Alert delivered",
		applog.FieldUserID, alert.UserID,
		applog.FieldAlertKind, string(alert.Kind),
		applog.FieldEntityID, alert.ItemID)
	return nil
}

// Log writes alerts as structured log lines.
type Log struct {
	logger *applog.Logger
}

func NewLog(logger *applog.Logger) *Log {
	return &Log{logger: logger.WithComponent(applog.ComponentNotifier)}
}

func (l *Log) Notify(ctx context.Context, alert amqp.AlertMessage) error {
	l.logger.InfoContext(ctx, "Alert",
		applog.FieldUserID, alert.UserID,
		applog.FieldAlertKind, string(alert.Kind),
		applog.FieldEntityID, alert.ItemID,
		"name", alert.Name,
		"status", alert.Status,
		"detail", alert.Detail,
		applog.FieldAmount, alert.Amount.StringFixed(2))
	return nil
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// FormatAlert renders an alert as legacy Telegram Markdown.
func FormatAlert(a amqp.AlertMessage) string {
	icon := "🔔"
	switch a.Status {
	case "critical", "overdue":
		icon = "🚨"
	case "warning", "due_today":
		icon = "⚠️"
	}
	title := map[amqp.AlertKind]string{
		amqp.AlertBudget:       "Budget",
		amqp.AlertBill:         "Bill",
		amqp.AlertSubscription: "Subscription",
	}[a.Kind]
	if title == "" {
		title = "Alert"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s *%s: %s*\n", icon, title, markdownEscaper.Replace(a.Name))
	fmt.Fprintf(&b, "%s\n", markdownEscaper.Replace(a.Detail))
	fmt.Fprintf(&b, "Amount: %s", core.FormatAmount(a.Amount))
	return b.String()
}
