package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// ScreenShotDebugger writes full-page screenshots of pages that failed.
// A nil debugger or an empty directory disables capturing.
type ScreenShotDebugger struct {
	outputDir string
	logger    *zap.Logger
}

func NewScreenShotDebugger(dir string, logger *zap.Logger) *ScreenShotDebugger {
	if dir == "" {
		return nil
	}
	return &ScreenShotDebugger{
		outputDir: dir,
		logger:    logger,
	}
}

// FileName builds "<name>_<timestamp>.png" with unsafe characters replaced.
func FileName(name string, at time.Time) string {
	clean := strings.Trim(unsafeName.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if clean == "" {
		clean = "page"
	}
	return fmt.Sprintf("%s_%s.png", clean, at.Format("2006-01-02_15-04-05"))
}

func (s *ScreenShotDebugger) CaptureAndLog(page playwright.Page, name, message string) error {
	if s == nil || page == nil {
		return nil
	}
	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return fmt.Errorf("create screenshot dir: %w", err)
	}

	path := filepath.Join(s.outputDir, FileName(name, time.Now()))
	s.logger.Warn("📸 "+message, zap.String("screenshot", path))

	//Take screenshot
	if _, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	}); err != nil {
		s.logger.Warn("⚠️ Failed to capture screenshot", zap.Error(err))
		return err
	}
	return nil
}
