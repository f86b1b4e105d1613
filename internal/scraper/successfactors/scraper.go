package successfactors

import (
	"context"
	"net/url"
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
	rowSelector      = "tr.jobResultItem"
	titleSelector    = "a.jobTitle"
	countrySelector  = `span.jobMFieldContent[aria-label^="Country"]`
	citySelector     = `span.jobMFieldContent[aria-label^="City"]`
	nextPageSelector = `a.paginationArrow[title="Next Page"]`
	// location values live in the inline handler, not in the text
	locationAttr = "onclick"
)

type Options struct {
	Source      models.Source
	SettleDelay time.Duration
	MaxPages    int
}

type SuccessFactorsScraper struct {
	opts   Options
	logger *zap.Logger
}

func NewSuccessFactorsScraper(opts Options, logger *zap.Logger) *SuccessFactorsScraper {
	if opts.MaxPages <= 0 {
		opts.MaxPages = 50
	}
	return &SuccessFactorsScraper{
		opts:   opts,
		logger: logger.With(zap.String("scraper", "SuccessFactors"), zap.String("source", opts.Source.String())),
	}
}

func (s *SuccessFactorsScraper) Name() string {
	return "SuccessFactors"
}

func (s *SuccessFactorsScraper) Scrape(ctx context.Context, page playwright.Page) ([]models.Listing, error) {
	var all []models.Listing

	for pageNum := 1; ; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		base, _ := url.Parse(page.URL())
		rows, err := page.Locator(rowSelector).All()
		if err != nil {
			return nil, apperrors.Extraction(s.opts.Source.String(), "list job rows", err)
		}

		found := 0
		for i, row := range rows {
			raw, err := readRow(row)
			if err != nil {
				s.logger.Warn("⚠️ Error processing a job row", zap.Int("page", pageNum), zap.Int("row", i), zap.Error(err))
				continue
			}
			if listing, ok := buildListing(s.opts.Source, base, raw); ok {
				all = append(all, listing)
				found++
			}
		}
		s.logger.Info("📄 Parsed result page", zap.Int("page", pageNum), zap.Int("rows", len(rows)), zap.Int("jobs", found))

		if pageNum >= s.opts.MaxPages {
			s.logger.Warn("⚠️ Reached page limit, stopping pagination", zap.Int("limit", s.opts.MaxPages))
			break
		}

		next := page.Locator(nextPageSelector)
		count, err := next.Count()
		if err != nil {
			return nil, apperrors.Extraction(s.opts.Source.String(), "locate next page", err)
		}
		if count == 0 {
			break
		}
		if err := next.First().Click(); err != nil {
			return nil, apperrors.Extraction(s.opts.Source.String(), "click next page", err)
		}
		if err := browser.Settle(ctx, page, s.opts.SettleDelay); err != nil {
			return nil, apperrors.Extraction(s.opts.Source.String(), "wait after next page", err)
		}
	}

	all = dedup.Unique(all)
	s.logger.Info("✅ Collected jobs", zap.Int("jobs", len(all)))
	return all, nil
}

type rawRow struct {
	Title       string
	Href        string
	CountryAttr string
	CityAttr    string
	HasCountry  bool
	HasCity     bool
}

func readRow(row playwright.Locator) (rawRow, error) {
	var r rawRow

	link := row.Locator(titleSelector)
	n, err := link.Count()
	if err != nil {
		return r, err
	}
	if n > 0 {
		first := link.First()
		if r.Title, err = first.TextContent(); err != nil {
			return r, err
		}
		if r.Href, err = first.GetAttribute("href"); err != nil {
			return r, err
		}
	}

	if r.CountryAttr, r.HasCountry, err = optionalAttr(row, countrySelector); err != nil {
		return r, err
	}
	if r.CityAttr, r.HasCity, err = optionalAttr(row, citySelector); err != nil {
		return r, err
	}
	return r, nil
}

func optionalAttr(row playwright.Locator, selector string) (string, bool, error) {
	el := row.Locator(selector)
	n, err := el.Count()
	if err != nil || n == 0 {
		return "", false, err
	}
	v, err := el.First().GetAttribute(locationAttr)
	return v, true, err
}

// buildListing turns a raw row into a listing. Rows without a title or link
// are dropped. Relative links are resolved against the board page.
func buildListing(source models.Source, base *url.URL, r rawRow) (models.Listing, bool) {
	title := strings.TrimSpace(r.Title)
	href := strings.TrimSpace(r.Href)
	if title == "" || href == "" {
		return models.Listing{}, false
	}

	return models.Listing{
		Title:   title,
		Link:    resolveLink(base, href),
		Source:  source,
		Country: locationValue(r.CountryAttr, r.HasCountry),
		City:    locationValue(r.CityAttr, r.HasCity),
	}, true
}

func locationValue(attr string, present bool) string {
	if !present {
		return models.NotSpecified
	}
	return scraper.JoinOrDefault(scraper.ParseBracketList(attr))
}

func resolveLink(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil || base == nil || ref.IsAbs() {
		return href
	}
	return base.ResolveReference(ref).String()
}
