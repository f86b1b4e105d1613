package browser

import (
	"context"
	"fmt"
	"time"

	apperrors "go-career-scraper/internal/errors"
	"go-career-scraper/utils"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

type Options struct {
	Headless          bool
	NavigationTimeout time.Duration
	UserAgent         string
	Cookies           []playwright.OptionalCookie
	ScreenshotDir     string
}

// PlaywrightManager owns the driver, one Chromium instance and one browser
// context shared by every page of a run.
type PlaywrightManager struct {
	pw         *playwright.Playwright
	browser    playwright.Browser
	browserCtx playwright.BrowserContext
	opts       Options
	logger     *zap.Logger
	shots      *utils.ScreenShotDebugger
}

func NewPlaywright(ctx context.Context, opts Options, logger *zap.Logger) (*PlaywrightManager, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("could not launch chromium browser: %w", err)
	}

	pm := &PlaywrightManager{
		pw:      pw,
		browser: browser,
		opts:    opts,
		logger:  logger,
		shots:   utils.NewScreenShotDebugger(opts.ScreenshotDir, logger),
	}

	browserCtx, err := pm.NewContext(opts.Cookies)
	if err != nil {
		_ = pm.Close()
		return nil, err
	}
	pm.browserCtx = browserCtx
	return pm, nil
}

// NewContext creates a browser context carrying the given cookies.
func (pm *PlaywrightManager) NewContext(cookies []playwright.OptionalCookie) (playwright.BrowserContext, error) {
	ctxOpts := playwright.BrowserNewContextOptions{}
	if pm.opts.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(pm.opts.UserAgent)
	}

	browserCtx, err := pm.browser.NewContext(ctxOpts)
	if err != nil {
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}

	if len(cookies) > 0 {
		if err := browserCtx.AddCookies(cookies); err != nil {
			_ = browserCtx.Close()
			return nil, fmt.Errorf("could not add cookies: %w", err)
		}
	}
	return browserCtx, nil
}

// WithPage opens url in a fresh page, waits for network idle and hands the
// page to fn. The page is closed on every return path.
func (pm *PlaywrightManager) WithPage(ctx context.Context, url string, fn func(playwright.Page) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	page, err := pm.browserCtx.NewPage()
	if err != nil {
		return apperrors.Navigation("", "open page", err)
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			pm.logger.Debug("page close failed", zap.String("url", url), zap.Error(cerr))
		}
	}()

	timeout := float64(pm.opts.NavigationTimeout.Milliseconds())
	if timeout > 0 {
		page.SetDefaultNavigationTimeout(timeout)
	}

	if _, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	}); err != nil {
		_ = pm.shots.CaptureAndLog(page, "goto-failed", "Navigation failed")
		return apperrors.Navigation("", "load "+url, err)
	}

	if err := fn(page); err != nil {
		_ = pm.shots.CaptureAndLog(page, "extract-failed", "Extraction failed")
		return err
	}
	return nil
}

func (pm *PlaywrightManager) Close() error {
	var firstErr error
	if pm.browserCtx != nil {
		if err := pm.browserCtx.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if pm.browser != nil {
		if err := pm.browser.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if pm.pw != nil {
		if err := pm.pw.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
