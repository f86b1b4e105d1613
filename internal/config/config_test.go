package config

import (
	"os"
	"path/filepath"
	"testing"

	apperrors "go-career-scraper/internal/errors"
	"go-career-scraper/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"SENDER_EMAIL", "sender_email", "SENDER_PASSWORD", "sender_password",
		"RECIPIENT_EMAIL", "recipient_email", "SMTP_HOST", "SMTP_PORT",
		"GOOGLE_CREDENTIALS_FILE", "SPREADSHEET_NAME", "DB_PATH", "DATABASE_URL",
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "LOG_LEVEL", "LOG_FORMAT", "CONFIG_PATH",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	require.Len(t, cfg.Sites, 2)
	assert.Equal(t, models.SourceDevsinc, cfg.Sites[0].Name)
	assert.Equal(t, "workable.com", cfg.Sites[0].BoardDomain)
	assert.Equal(t, PlatformSuccessFactors, cfg.Sites[1].Platform)

	assert.Equal(t, "smtp.gmail.com:587", cfg.SMTPAddr())
	assert.Equal(t, "Jobs Data", cfg.Sheets.SpreadsheetName)
	assert.Equal(t, "jobs.db", cfg.DBPath)
	assert.Equal(t, "jobs.db.lock", cfg.LockPath)
	assert.True(t, *cfg.FilterPlaceholderTitles)
	assert.True(t, *cfg.Browser.Headless)
	assert.False(t, cfg.EmailEnabled())
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoadYAMLThenEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
browser:
  headless: false
  settle_delay_ms: 500
extract:
  max_pages: 7
email:
  sender_email: yaml@example.com
  recipient_email: team@example.com
filter_placeholder_titles: false
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))
	t.Setenv("sender_email", "bot@example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, *cfg.Browser.Headless)
	assert.Equal(t, 500, cfg.Browser.SettleDelayMs)
	assert.Equal(t, 7, cfg.Extract.MaxPages)
	assert.Equal(t, "bot@example.com", cfg.Email.SenderEmail)
	assert.Equal(t, 2525, cfg.Email.SMTPPort)
	assert.False(t, *cfg.FilterPlaceholderTitles)
	assert.True(t, cfg.EmailEnabled())
	assert.True(t, cfg.TelegramEnabled())
	assert.Equal(t, int64(42), cfg.Telegram.ChatID)
}

func TestLoadRejectsBadInput(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("sites: [unterminated"), 0644))
	_, err := Load(bad)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeConfig, apperrors.TypeOf(err))

	unknown := filepath.Join(dir, "unknown.yaml")
	yml := `
sites:
  - name: Acme
    url: https://acme.example/careers
    board_domain: lever.co
    platform: lever
`
	require.NoError(t, os.WriteFile(unknown, []byte(yml), 0644))
	_, err = Load(unknown)
	assert.ErrorContains(t, err, "unknown platform")

	t.Setenv("SMTP_PORT", "abc")
	_, err = Load(filepath.Join(dir, "none.yaml"))
	assert.ErrorContains(t, err, "SMTP_PORT")
}
