// Sends a sample digest through the configured email and Telegram channels.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go-career-scraper/internal/config"
	"go-career-scraper/internal/models"
	"go-career-scraper/internal/notify"
	"go-career-scraper/internal/reporter"
	"go-career-scraper/internal/secrets"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	lg, _ := zap.NewDevelopment()

	digest := notify.Digest{Sections: []notify.Section{
		{Source: models.SourceDevsinc, Listings: []models.Listing{{
			Title:   "Sample Go Engineer",
			Link:    "https://apply.workable.com/devsinc/",
			Source:  models.SourceDevsinc,
			Country: "Pakistan",
			City:    "Lahore",
		}}},
		{Source: models.SourceSystemsLtd},
	}}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	sent := 0
	if cfg.EmailEnabled() {
		password, err := secrets.SMTPPassword(cfg.Email.SenderEmail, cfg.Email.SenderPassword)
		if err != nil || password == "" {
			log.Fatalf("No SMTP password available: %v", err)
		}
		n := notify.NewEmailNotifier(cfg.Email.SenderEmail, cfg.Email.RecipientEmail, &notify.SMTPTransport{
			Addr:     cfg.SMTPAddr(),
			Host:     cfg.Email.SMTPHost,
			Username: cfg.Email.SenderEmail,
			Password: password,
		}, lg)
		if err := n.Notify(ctx, digest); err != nil {
			log.Fatalf("❌ Email failed: %v", err)
		}
		sent++
	}

	if cfg.TelegramEnabled() {
		bot, err := reporter.NewTelegramReporter(cfg.Telegram.Token, cfg.Telegram.ChatID, lg)
		if err != nil {
			log.Fatalf("❌ Telegram init failed: %v", err)
		}
		if err := bot.Notify(ctx, digest); err != nil {
			log.Fatalf("❌ Telegram failed: %v", err)
		}
		sent++
	}

	if sent == 0 {
		log.Fatal("Missing SENDER_EMAIL/RECIPIENT_EMAIL and TELEGRAM_BOT_TOKEN/TELEGRAM_CHAT_ID")
	}
	fmt.Printf("✅ Sample digest sent through %d channel(s)\n", sent)
}
