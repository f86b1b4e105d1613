// Load envs from .env
// Load YAML config
// Override with env vars
// Provide default values

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "go-career-scraper/internal/errors"
	"go-career-scraper/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

type Platform string

const (
	PlatformWorkable       Platform = "workable"
	PlatformSuccessFactors Platform = "successfactors"
)

// Site is one career landing page and the job board it links out to.
type Site struct {
	Name        models.Source `yaml:"name"`
	URL         string        `yaml:"url"`
	BoardDomain string        `yaml:"board_domain"`
	Platform    Platform      `yaml:"platform"`
}

type Browser struct {
	Headless          *bool  `yaml:"headless"`
	NavigationTimeout int    `yaml:"navigation_timeout_ms"`
	SettleDelayMs     int    `yaml:"settle_delay_ms"`
	UserAgent         string `yaml:"user_agent"`
	CookiesPath       string `yaml:"cookies_path"`
	ScreenshotDir     string `yaml:"screenshot_dir"`
}

type Extract struct {
	MaxPages        int `yaml:"max_pages"`
	LoadMoreRetries int `yaml:"load_more_retries"`
}

type Email struct {
	SenderEmail    string `yaml:"sender_email"`
	SenderPassword string `yaml:"-"`
	RecipientEmail string `yaml:"recipient_email"`
	SMTPHost       string `yaml:"smtp_host"`
	SMTPPort       int    `yaml:"smtp_port"`
}

type Sheets struct {
	CredentialsFile string  `yaml:"credentials_file"`
	SpreadsheetName string  `yaml:"spreadsheet_name"`
	RequestsPerSec  float64 `yaml:"requests_per_second"`
}

type Telegram struct {
	Token  string `yaml:"-"`
	ChatID int64  `yaml:"chat_id"`
}

type Config struct {
	Sites   []Site  `yaml:"sites"`
	Browser Browser `yaml:"browser"`
	Extract Extract `yaml:"extract"`
	Email   Email   `yaml:"email"`
	Sheets  Sheets  `yaml:"sheets"`

	Telegram Telegram `yaml:"telegram"`

	//Storage
	DBPath      string `yaml:"db_path"`
	DatabaseURL string `yaml:"-"`

	FilterPlaceholderTitles *bool  `yaml:"filter_placeholder_titles"`
	LockPath                string `yaml:"lock_path"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// DefaultSites are the two career pages the scraper was built for.
func DefaultSites() []Site {
	return []Site{
		{
			Name:        models.SourceDevsinc,
			URL:         "https://www.devsinc.com/career",
			BoardDomain: "workable.com",
			Platform:    PlatformWorkable,
		},
		{
			Name:        models.SourceSystemsLtd,
			URL:         "https://www.systemsltd.com/careers",
			BoardDomain: "sapsf.eu",
			Platform:    PlatformSuccessFactors,
		},
	}
}

// Load reads .env, then the YAML file at path (missing file is fine), then env
// overrides, then fills defaults and validates.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = getEnv("CONFIG_PATH", DefaultPath)
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, apperrors.Config("parse "+path, err)
		}
	case !os.IsNotExist(err):
		return nil, apperrors.Config("read "+path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Email.SenderEmail = getEnv("SENDER_EMAIL", getEnv("sender_email", c.Email.SenderEmail))
	c.Email.SenderPassword = getEnv("SENDER_PASSWORD", getEnv("sender_password", c.Email.SenderPassword))
	c.Email.RecipientEmail = getEnv("RECIPIENT_EMAIL", getEnv("recipient_email", c.Email.RecipientEmail))
	c.Email.SMTPHost = getEnv("SMTP_HOST", c.Email.SMTPHost)
	if port := os.Getenv("SMTP_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return apperrors.Config("invalid SMTP_PORT", err)
		}
		c.Email.SMTPPort = p
	}

	c.Sheets.CredentialsFile = getEnv("GOOGLE_CREDENTIALS_FILE", c.Sheets.CredentialsFile)
	c.Sheets.SpreadsheetName = getEnv("SPREADSHEET_NAME", c.Sheets.SpreadsheetName)

	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)

	c.Telegram.Token = getEnv("TELEGRAM_BOT_TOKEN", c.Telegram.Token)
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return apperrors.Config("invalid TELEGRAM_CHAT_ID", err)
		}
		c.Telegram.ChatID = id
	}

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	return nil
}

func (c *Config) applyDefaults() {
	if len(c.Sites) == 0 {
		c.Sites = DefaultSites()
	}

	if c.Browser.Headless == nil {
		c.Browser.Headless = boolPtr(true)
	}
	if c.Browser.NavigationTimeout <= 0 {
		c.Browser.NavigationTimeout = 60000
	}
	if c.Browser.SettleDelayMs <= 0 {
		c.Browser.SettleDelayMs = 3000
	}

	if c.Extract.MaxPages <= 0 {
		c.Extract.MaxPages = 50
	}
	if c.Extract.LoadMoreRetries <= 0 {
		c.Extract.LoadMoreRetries = 3
	}

	if c.Email.SMTPHost == "" {
		c.Email.SMTPHost = "smtp.gmail.com"
	}
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}

	if c.Sheets.CredentialsFile == "" {
		c.Sheets.CredentialsFile = "credentials.json"
	}
	if c.Sheets.SpreadsheetName == "" {
		c.Sheets.SpreadsheetName = "Jobs Data"
	}
	if c.Sheets.RequestsPerSec <= 0 {
		c.Sheets.RequestsPerSec = 1
	}

	if c.DBPath == "" {
		c.DBPath = "jobs.db"
	}
	if c.FilterPlaceholderTitles == nil {
		c.FilterPlaceholderTitles = boolPtr(true)
	}
	if c.LockPath == "" {
		c.LockPath = c.DBPath + ".lock"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks the site list; credentials are optional and only disable
// the destination that needs them.
func (c *Config) Validate() error {
	seen := make(map[models.Source]bool)
	for i, s := range c.Sites {
		if s.Name == "" || s.URL == "" || s.BoardDomain == "" {
			return apperrors.Config(fmt.Sprintf("site %d: name, url and board_domain are required", i), nil)
		}
		if s.Platform != PlatformWorkable && s.Platform != PlatformSuccessFactors {
			return apperrors.Config(fmt.Sprintf("site %q: unknown platform %q", s.Name, s.Platform), nil)
		}
		if seen[s.Name] {
			return apperrors.Config(fmt.Sprintf("site %q listed twice", s.Name), nil)
		}
		seen[s.Name] = true
	}
	return nil
}

// EmailEnabled reports whether enough is configured to send the digest.
func (c *Config) EmailEnabled() bool {
	return c.Email.SenderEmail != "" && c.Email.RecipientEmail != ""
}

func (c *Config) TelegramEnabled() bool {
	return c.Telegram.Token != "" && c.Telegram.ChatID != 0
}

func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.Browser.SettleDelayMs) * time.Millisecond
}

func (c *Config) SMTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Email.SMTPHost, c.Email.SMTPPort)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func boolPtr(b bool) *bool {
	return &b
}
