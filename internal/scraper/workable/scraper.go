package workable

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go-career-scraper/internal/browser"
	"go-career-scraper/internal/dedup"
	apperrors "go-career-scraper/internal/errors"
	"go-career-scraper/internal/models"
	"go-career-scraper/internal/scraper"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

const (
	loadMoreSelector = `button[data-ui="load-more-button"]`
	clickTimeoutMs   = 5000
	scrollPause      = 600 * time.Millisecond
)

// Selectors for one job card on a Workable careers board.
type Selectors struct {
	Card     string `json:"card"`
	Title    string `json:"title"`
	Link     string `json:"link"`
	Location string `json:"location"`
}

// arg is the Evaluate argument; playwright only serializes maps, slices and
// scalars, so a struct would reach the page as undefined.
func (sel Selectors) arg() map[string]interface{} {
	return map[string]interface{}{
		"card":     sel.Card,
		"title":    sel.Title,
		"link":     sel.Link,
		"location": sel.Location,
	}
}

var DefaultSelectors = Selectors{
	Card:     "li.styles--1vo9F",
	Title:    "h3.styles--3TJHk",
	Link:     "a.styles--1OnOt",
	Location: `div[data-ui="job-location-tooltip"] span`,
}

const dismissOverlaysJS = `() => {
	const backdrop = document.querySelector('div[data-ui="backdrop"]');
	if (backdrop) backdrop.remove();

	const cookieConsent = document.querySelector('div[data-ui="cookie-consent"] button');
	if (cookieConsent) cookieConsent.click();

	const modalCloseButton = document.querySelector('button[aria-label="Close"]');
	if (modalCloseButton) modalCloseButton.click();
}`

const collectCardsJS = `(sel) => Array.from(document.querySelectorAll(sel.card)).map(el => {
	const title = el.querySelector(sel.title);
	const link = el.querySelector(sel.link);
	const location = el.querySelector(sel.location);
	return {
		title: title ? title.innerText.trim() : "",
		link: link ? link.href : "",
		location: location ? location.innerText.trim() : ""
	};
})`

type Options struct {
	Source          models.Source
	SettleDelay     time.Duration
	LoadMoreRetries int
	MaxClicks       int
	Selectors       *Selectors
}

type WorkableScraper struct {
	opts   Options
	sel    Selectors
	logger *zap.Logger
}

func NewWorkableScraper(opts Options, logger *zap.Logger) *WorkableScraper {
	if opts.LoadMoreRetries <= 0 {
		opts.LoadMoreRetries = 3
	}
	if opts.MaxClicks <= 0 {
		opts.MaxClicks = 50
	}
	sel := DefaultSelectors
	if opts.Selectors != nil {
		sel = *opts.Selectors
	}
	return &WorkableScraper{
		opts:   opts,
		sel:    sel,
		logger: logger.With(zap.String("scraper", "Workable"), zap.String("source", opts.Source.String())),
	}
}

func (s *WorkableScraper) Name() string {
	return "Workable"
}

func (s *WorkableScraper) Scrape(ctx context.Context, page playwright.Page) ([]models.Listing, error) {
	s.logger.Info("🧹 Checking for and dismissing popups...")
	if _, err := page.Evaluate(dismissOverlaysJS); err != nil {
		s.logger.Debug("overlay dismissal failed", zap.Error(err))
	}
	if err := browser.Sleep(ctx, s.opts.SettleDelay); err != nil {
		return nil, err
	}

	if err := s.loadAll(ctx, page); err != nil {
		return nil, err
	}

	s.logger.Info("📜 Scrolling down to load all jobs...")
	if err := browser.ScrollToBottom(ctx, page, scrollPause); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperrors.Extraction(s.opts.Source.String(), "scroll to bottom", err)
	}
	if err := browser.Sleep(ctx, s.opts.SettleDelay); err != nil {
		return nil, err
	}

	raw, err := page.Evaluate(collectCardsJS, s.sel.arg())
	if err != nil {
		return nil, apperrors.Extraction(s.opts.Source.String(), "collect job cards", err)
	}
	cards, err := decodeCards(raw)
	if err != nil {
		return nil, apperrors.Extraction(s.opts.Source.String(), "decode job cards", err)
	}

	listings := dedup.Unique(buildListings(s.opts.Source, cards))
	if len(listings) == 0 {
		s.logger.Warn("⚠️ No jobs were extracted", zap.Int("cards", len(cards)))
	} else {
		s.logger.Info("✅ Scraped jobs", zap.Int("jobs", len(listings)), zap.Int("cards", len(cards)))
	}
	return listings, nil
}

// loadAll clicks "Show more" until it disappears. A failed click is retried
// on the next pass; after LoadMoreRetries consecutive failures the board is
// extracted as rendered.
func (s *WorkableScraper) loadAll(ctx context.Context, page playwright.Page) error {
	failures := 0
	for clicks := 0; clicks < s.opts.MaxClicks; {
		if err := ctx.Err(); err != nil {
			return err
		}

		buttons := page.Locator(loadMoreSelector)
		count, err := buttons.Count()
		if err != nil {
			return apperrors.Extraction(s.opts.Source.String(), "locate load more button", err)
		}
		if count == 0 {
			return nil
		}

		button := buttons.First()
		s.logger.Info("🔽 Clicking 'Show more' button...", zap.Int("clicks", clicks))
		if err := button.ScrollIntoViewIfNeeded(); err != nil {
			s.logger.Debug("scroll into view failed", zap.Error(err))
		}
		if err := button.Click(playwright.LocatorClickOptions{
			Timeout: playwright.Float(clickTimeoutMs),
		}); err != nil {
			failures++
			s.logger.Warn("⚠️ Retrying 'Show more' button click", zap.Int("attempt", failures), zap.Error(err))
			if failures >= s.opts.LoadMoreRetries {
				s.logger.Warn("⚠️ Giving up on 'Show more', extracting rendered jobs")
				return nil
			}
			continue
		}
		failures = 0
		clicks++

		if err := browser.Settle(ctx, page, s.opts.SettleDelay); err != nil {
			return apperrors.Extraction(s.opts.Source.String(), "wait after load more", err)
		}
	}
	s.logger.Warn("⚠️ Reached load more click limit", zap.Int("limit", s.opts.MaxClicks))
	return nil
}

type rawCard struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Location string `json:"location"`
}

func decodeCards(v interface{}) ([]rawCard, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var cards []rawCard
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, fmt.Errorf("unexpected card payload: %w", err)
	}
	return cards, nil
}

func buildListings(source models.Source, cards []rawCard) []models.Listing {
	listings := make([]models.Listing, 0, len(cards))
	for _, c := range cards {
		title := strings.TrimSpace(c.Title)
		link := strings.TrimSpace(c.Link)
		if title == "" || link == "" {
			continue
		}
		city, country := scraper.SplitLocation(c.Location)
		listings = append(listings, models.Listing{
			Title:   title,
			Link:    link,
			Source:  source,
			Country: country,
			City:    city,
		})
	}
	return listings
}
