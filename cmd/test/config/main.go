package main

import (
	"fmt"
	"log"

	"go-career-scraper/internal/config"
)

func mask(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}

func main() {
	fmt.Println("🔧 Testing config loading...")
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	fmt.Printf("✅ Config loaded successfully!\n")
	for _, s := range cfg.Sites {
		fmt.Printf("   Site: %s -> %s (board %s, %s)\n", s.Name, s.URL, s.BoardDomain, s.Platform)
	}
	fmt.Printf("   Headless: %t, settle %v, max pages %d\n", *cfg.Browser.Headless, cfg.SettleDelay(), cfg.Extract.MaxPages)
	fmt.Printf("   Spreadsheet: %s (credentials %s)\n", cfg.Sheets.SpreadsheetName, cfg.Sheets.CredentialsFile)
	fmt.Printf("   DB Path: %s, Postgres: %t\n", cfg.DBPath, cfg.DatabaseURL != "")
	fmt.Printf("   Email enabled: %t (%s via %s)\n", cfg.EmailEnabled(), cfg.Email.SenderEmail, cfg.SMTPAddr())
	if cfg.TelegramEnabled() {
		fmt.Printf("   Telegram Token: %s\n", mask(cfg.Telegram.Token))
		fmt.Printf("   Telegram Chat ID: %d\n", cfg.Telegram.ChatID)
	}
	fmt.Printf("   Cookies Path: %s\n", cfg.Browser.CookiesPath)
}
