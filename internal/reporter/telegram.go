package reporter

import (
	"context"
	"fmt"
	"html"
	"strings"

	apperrors "go-career-scraper/internal/errors"
	"go-career-scraper/internal/models"
	"go-career-scraper/internal/notify"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// listings shown per site; the rest are counted
const maxLinksPerSite = 15

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramReporter posts a short run summary to one chat.
type TelegramReporter struct {
	bot    sender
	chatID int64
	logger *zap.Logger
}

func NewTelegramReporter(token string, chatID int64, logger *zap.Logger) (*TelegramReporter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, apperrors.Config("failed to init telegram bot", err)
	}

	//turn this on in case of debug
	//bot.Debug = true

	return &TelegramReporter{bot: bot, chatID: chatID, logger: logger}, nil
}

func (t *TelegramReporter) Name() string {
	return "telegram"
}

func (t *TelegramReporter) Notify(ctx context.Context, d notify.Digest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := t.SendMessage(Summary(d)); err != nil {
		return apperrors.Notification("send telegram summary", err)
	}
	t.logger.Info("📨 Telegram summary sent", zap.Int64("chat_id", t.chatID))
	return nil
}

func (t *TelegramReporter) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "HTML" //use HTML for bold/links
	msg.DisableWebPagePreview = true
	_, err := t.bot.Send(msg)
	return err
}

// ReportFailure posts one message for a site that produced no listings.
func (t *TelegramReporter) ReportFailure(ctx context.Context, site models.Source, cause error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	text := fmt.Sprintf("⚠️ <b>%s skipped</b> (%s):\n%s",
		html.EscapeString(site.String()),
		apperrors.TypeOf(cause),
		html.EscapeString(cause.Error()))
	if err := t.SendMessage(text); err != nil {
		return apperrors.Notification("send telegram failure for "+site.String(), err)
	}
	return nil
}

// Summary renders the digest as a Telegram HTML message.
func Summary(d notify.Digest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 <b>%s</b>\n", html.EscapeString(d.Subject()))

	for _, s := range d.Sections {
		fmt.Fprintf(&b, "\n🏢 <b>%s</b>: %d jobs\n", html.EscapeString(s.Source.String()), len(s.Listings))
		for i, l := range s.Listings {
			if i == maxLinksPerSite {
				fmt.Fprintf(&b, "… and %d more\n", len(s.Listings)-maxLinksPerSite)
				break
			}
			l = l.WithDefaults()
			fmt.Fprintf(&b, "• <a href=\"%s\">%s</a> (%s)\n",
				html.EscapeString(l.Link), html.EscapeString(l.Title), html.EscapeString(l.City))
		}
	}
	return b.String()
}
