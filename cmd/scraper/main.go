package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-career-scraper/internal/browser"
	"go-career-scraper/internal/config"
	"go-career-scraper/internal/database"
	"go-career-scraper/internal/logger"
	"go-career-scraper/internal/notify"
	"go-career-scraper/internal/pipeline"
	"go-career-scraper/internal/reporter"
	"go-career-scraper/internal/secrets"
	"go-career-scraper/internal/seed"
	"go-career-scraper/internal/sheets"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default $CONFIG_PATH or configs/config.yaml)")
	storePassword := flag.Bool("store-password", false, "save SENDER_PASSWORD to the OS keyring and exit")
	flag.Parse()

	//load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	base, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("❌ Failed to init logger: %v", err)
	}
	defer func() { _ = base.Sync() }()
	lg, runID := logger.ForRun(base)

	if *storePassword {
		if err := secrets.SetSMTPPassword(cfg.Email.SenderEmail, cfg.Email.SenderPassword); err != nil {
			lg.Fatal("❌ Failed to store password in keyring", zap.Error(err))
		}
		lg.Info("🔑 Password stored in keyring", zap.String("account", cfg.Email.SenderEmail))
		return
	}

	//one run at a time
	lock := flock.New(cfg.LockPath)
	locked, err := lock.TryLock()
	if err != nil {
		lg.Fatal("❌ Failed to acquire run lock", zap.String("path", cfg.LockPath), zap.Error(err))
	}
	if !locked {
		lg.Info("⏭️ Another run holds the lock, exiting", zap.String("path", cfg.LockPath))
		return
	}
	defer func() { _ = lock.Unlock() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	lg.Info("🚀 Starting career scraper", zap.String("run_id", runID), zap.Int("sites", len(cfg.Sites)))

	cookies, err := browser.LoadCookies(cfg.Browser.CookiesPath)
	if err != nil {
		lg.Warn("⚠️ Could not load cookies, continuing without", zap.Error(err))
	} else if len(cookies) > 0 {
		lg.Info("🍪 Loaded cookies", zap.Int("count", len(cookies)))
	}

	pwManager, err := browser.NewPlaywright(ctx, browser.Options{
		Headless:          *cfg.Browser.Headless,
		NavigationTimeout: time.Duration(cfg.Browser.NavigationTimeout) * time.Millisecond,
		UserAgent:         cfg.Browser.UserAgent,
		Cookies:           cookies,
		ScreenshotDir:     cfg.Browser.ScreenshotDir,
	}, lg)
	if err != nil {
		lg.Fatal("❌ Failed to init Playwright", zap.Error(err))
	}
	//close playwright manager when application stops
	defer func() { _ = pwManager.Close() }()
	lg.Info("✅ Browser initialized successfully!")

	scrapers, err := pipeline.NewScrapers(cfg, lg)
	if err != nil {
		lg.Fatal("❌ Failed to build scrapers", zap.Error(err))
	}

	deps := pipeline.Deps{
		Resolver: seed.NewFetcher(cfg.Browser.UserAgent, 30*time.Second, lg),
		Pages:    pwManager,
		Scrapers: scrapers,
	}

	if store := openStore(ctx, cfg, lg); store != nil {
		defer func() { _ = store.Close() }()
		deps.Store = store
	}

	if book := openSpreadsheet(ctx, cfg, lg); book != nil {
		deps.Sheets = sheets.NewWriter(book, *cfg.FilterPlaceholderTitles, lg)
	}

	deps.Notifiers = notifiers(cfg, lg)

	res, err := pipeline.New(cfg.Sites, deps, lg).Run(ctx)
	if err != nil {
		lg.Warn("⚠️ Run interrupted", zap.Error(err))
	}
	for _, s := range res.Sites {
		lg.Info("📊 Site summary",
			zap.String("site", s.Site.Name.String()),
			zap.Int("jobs", len(s.Listings)),
			zap.Int("sheet_appended", s.SheetAppended),
			zap.Int("store_inserted", s.StoreInserted),
			zap.Bool("failed", s.Err != nil))
	}
}

// openStore returns nil when the store cannot be opened; the run continues
// with the spreadsheet and email only.
func openStore(ctx context.Context, cfg *config.Config, lg *zap.Logger) database.Store {
	if cfg.DatabaseURL != "" {
		repo, err := database.ConnectDB(ctx, cfg.DatabaseURL, lg)
		if err != nil {
			lg.Error("❌ Postgres unavailable, skipping database", zap.Error(err))
			return nil
		}
		lg.Info("🗄️ Using Postgres store")
		return repo
	}

	store, err := database.Open(cfg.DBPath, lg)
	if err != nil {
		lg.Error("❌ SQLite unavailable, skipping database", zap.String("path", cfg.DBPath), zap.Error(err))
		return nil
	}
	lg.Info("🗄️ Using SQLite store", zap.String("path", cfg.DBPath))
	return store
}

func openSpreadsheet(ctx context.Context, cfg *config.Config, lg *zap.Logger) sheets.Spreadsheet {
	if _, err := os.Stat(cfg.Sheets.CredentialsFile); err != nil {
		lg.Warn("⚠️ Google credentials not found, skipping spreadsheet", zap.String("path", cfg.Sheets.CredentialsFile))
		return nil
	}
	book, err := sheets.OpenByName(ctx, cfg.Sheets.CredentialsFile, cfg.Sheets.SpreadsheetName, cfg.Sheets.RequestsPerSec)
	if err != nil {
		lg.Error("❌ Could not open spreadsheet", zap.String("name", cfg.Sheets.SpreadsheetName), zap.Error(err))
		return nil
	}
	return book
}

func notifiers(cfg *config.Config, lg *zap.Logger) []notify.Notifier {
	var out []notify.Notifier

	if cfg.EmailEnabled() {
		password, err := secrets.SMTPPassword(cfg.Email.SenderEmail, cfg.Email.SenderPassword)
		if err != nil {
			lg.Warn("⚠️ Keyring lookup failed", zap.Error(err))
		}
		if password == "" {
			lg.Warn("⚠️ No SMTP password configured, email disabled")
		} else {
			out = append(out, notify.NewEmailNotifier(cfg.Email.SenderEmail, cfg.Email.RecipientEmail, &notify.SMTPTransport{
				Addr:     cfg.SMTPAddr(),
				Host:     cfg.Email.SMTPHost,
				Username: cfg.Email.SenderEmail,
				Password: password,
			}, lg))
		}
	} else {
		lg.Warn("⚠️ Sender or recipient email missing, email disabled")
	}

	if cfg.TelegramEnabled() {
		bot, err := reporter.NewTelegramReporter(cfg.Telegram.Token, cfg.Telegram.ChatID, lg)
		if err != nil {
			lg.Warn("⚠️ Failed to init Telegram bot", zap.Error(err))
		} else {
			lg.Info("🤖 Telegram Bot initialized.")
			out = append(out, bot)
		}
	}
	return out
}
