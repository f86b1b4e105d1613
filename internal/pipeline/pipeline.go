// Package pipeline runs one scrape: resolve each site's job board, extract
// the listings of all sites in parallel, then persist and notify in order.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go-career-scraper/internal/config"
	apperrors "go-career-scraper/internal/errors"
	"go-career-scraper/internal/models"
	"go-career-scraper/internal/notify"
	"go-career-scraper/internal/scraper"
	"go-career-scraper/internal/seed"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Resolver interface {
	Resolve(ctx context.Context, site config.Site) (seed.Target, error)
}

// PageOpener renders a URL and releases the page when fn returns.
type PageOpener interface {
	WithPage(ctx context.Context, url string, fn func(playwright.Page) error) error
}

type RecordStore interface {
	SaveNew(ctx context.Context, listings []models.Listing) (int, error)
}

type SheetWriter interface {
	Save(ctx context.Context, source models.Source, listings []models.Listing) (int, error)
}

// FailureReporter is implemented by notifiers that also announce each site
// that failed to produce listings.
type FailureReporter interface {
	ReportFailure(ctx context.Context, site models.Source, err error) error
}

// Deps are the collaborators of a run. Store, Sheets and Notifiers are
// optional; a nil destination is skipped.
type Deps struct {
	Resolver  Resolver
	Pages     PageOpener
	Scrapers  map[models.Source]scraper.Scraper
	Store     RecordStore
	Sheets    SheetWriter
	Notifiers []notify.Notifier
}

type SiteResult struct {
	Site     config.Site
	BoardURL string
	Listings []models.Listing
	Err      error

	SheetAppended int
	SheetErr      error
	StoreInserted int
	StoreErr      error
}

type Result struct {
	Sites     []SiteResult
	NotifyErr map[string]error
	Duration  time.Duration
}

// Total is the number of listings extracted across sites.
func (r Result) Total() int {
	n := 0
	for _, s := range r.Sites {
		n += len(s.Listings)
	}
	return n
}

type Pipeline struct {
	sites  []config.Site
	deps   Deps
	logger *zap.Logger
}

func New(sites []config.Site, deps Deps, logger *zap.Logger) *Pipeline {
	return &Pipeline{sites: sites, deps: deps, logger: logger}
}

// Run never fails because of a single stage; stage errors are logged and
// recorded in the result. The returned error is only the context's.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	res := Result{
		Sites:     make([]SiteResult, len(p.sites)),
		NotifyErr: map[string]error{},
	}

	// each goroutine owns its slot
	var g errgroup.Group
	for i, site := range p.sites {
		res.Sites[i].Site = site
		g.Go(func() error {
			p.extractSite(ctx, &res.Sites[i])
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		res.Duration = time.Since(start)
		return res, err
	}

	if p.deps.Sheets != nil {
		for i := range res.Sites {
			p.saveSheet(ctx, &res.Sites[i])
		}
	}
	if p.deps.Store != nil {
		for i := range res.Sites {
			p.saveStore(ctx, &res.Sites[i])
		}
	}

	digest := BuildDigest(res.Sites)
	for _, n := range p.deps.Notifiers {
		if err := n.Notify(ctx, digest); err != nil {
			res.NotifyErr[n.Name()] = err
			apperrors.Log(p.logger, "❌ Notification failed", err, zap.String("notifier", n.Name()))
		}
	}

	p.reportFailures(ctx, res.Sites)

	res.Duration = time.Since(start)
	p.logger.Info("🏁 Execution finished",
		zap.Int("jobs", res.Total()),
		zap.Duration("duration", res.Duration))
	return res, ctx.Err()
}

func (p *Pipeline) extractSite(ctx context.Context, sr *SiteResult) {
	log := p.logger.With(zap.String("site", sr.Site.Name.String()))

	s, ok := p.deps.Scrapers[sr.Site.Name]
	if !ok {
		sr.Err = apperrors.Config(fmt.Sprintf("no extractor for site %q", sr.Site.Name), nil).WithSite(sr.Site.Name.String())
		apperrors.Log(log, "❌ Skipping site", sr.Err)
		return
	}

	target, err := p.deps.Resolver.Resolve(ctx, sr.Site)
	if err != nil {
		sr.Err = apperrors.AttachSite(err, sr.Site.Name.String())
		apperrors.Log(log, "❌ Skipping site, job board not found", sr.Err)
		return
	}
	sr.BoardURL = target.BoardURL

	log.Info("▶️ Starting scraper", zap.String("scraper", s.Name()), zap.String("board", target.BoardURL))
	err = p.deps.Pages.WithPage(ctx, target.BoardURL, func(page playwright.Page) error {
		listings, err := s.Scrape(ctx, page)
		if err != nil {
			return err
		}
		sr.Listings = listings
		return nil
	})
	if err != nil {
		sr.Listings = nil
		sr.Err = apperrors.AttachSite(err, sr.Site.Name.String())
		apperrors.Log(log, "❌ Error running scraper", sr.Err, zap.String("scraper", s.Name()))
		return
	}
	log.Info("✅ Scraper finished", zap.String("scraper", s.Name()), zap.Int("jobs", len(sr.Listings)))
}

func (p *Pipeline) saveSheet(ctx context.Context, sr *SiteResult) {
	n, err := p.deps.Sheets.Save(ctx, sr.Site.Name, sr.Listings)
	sr.SheetAppended = n
	if err != nil {
		sr.SheetErr = apperrors.AttachSite(err, sr.Site.Name.String())
		apperrors.Log(p.logger, "❌ Error saving data to sheet", sr.SheetErr, zap.String("site", sr.Site.Name.String()))
	}
}

func (p *Pipeline) saveStore(ctx context.Context, sr *SiteResult) {
	n, err := p.deps.Store.SaveNew(ctx, sr.Listings)
	sr.StoreInserted = n
	if err != nil {
		sr.StoreErr = apperrors.AttachSite(err, sr.Site.Name.String())
		apperrors.Log(p.logger, "❌ Error saving jobs to the database", sr.StoreErr, zap.String("site", sr.Site.Name.String()))
	}
}

// reportFailures sends one message per failed site to every notifier that
// supports it. Delivery errors are logged only.
func (p *Pipeline) reportFailures(ctx context.Context, sites []SiteResult) {
	for _, n := range p.deps.Notifiers {
		fr, ok := n.(FailureReporter)
		if !ok {
			continue
		}
		for _, sr := range sites {
			if sr.Err == nil {
				continue
			}
			if err := fr.ReportFailure(ctx, sr.Site.Name, sr.Err); err != nil {
				apperrors.Log(p.logger, "❌ Failure report not delivered", err,
					zap.String("notifier", n.Name()), zap.String("site", sr.Site.Name.String()))
			}
		}
	}
}

// BuildDigest keeps site order and every in-run listing, new or not.
func BuildDigest(sites []SiteResult) notify.Digest {
	d := notify.Digest{Sections: make([]notify.Section, 0, len(sites))}
	for _, s := range sites {
		d.Sections = append(d.Sections, notify.Section{Source: s.Site.Name, Listings: s.Listings})
	}
	return d
}
