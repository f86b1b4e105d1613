// Package seed resolves a company's career landing page to the external job
// board it links to.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-career-scraper/internal/config"
	apperrors "go-career-scraper/internal/errors"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

var ErrNoBoardLink = errors.New("no job board link on landing page")

// Target is a resolved job board for one site.
type Target struct {
	Site     config.Site
	BoardURL string
}

type Fetcher struct {
	userAgent string
	timeout   time.Duration
	logger    *zap.Logger
}

func NewFetcher(userAgent string, timeout time.Duration, logger *zap.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{userAgent: userAgent, timeout: timeout, logger: logger}
}

// Resolve fetches the landing page and returns the first anchor whose href
// contains the site's board domain, as an absolute URL.
func (f *Fetcher) Resolve(ctx context.Context, site config.Site) (Target, error) {
	if err := ctx.Err(); err != nil {
		return Target{}, err
	}

	c := colly.NewCollector(colly.StdlibContext(ctx))
	if f.userAgent != "" {
		c.UserAgent = f.userAgent
	}
	c.SetRequestTimeout(f.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
	})

	var board string
	c.OnHTML(fmt.Sprintf("a[href*=%q]", site.BoardDomain), func(e *colly.HTMLElement) {
		if board != "" {
			return
		}
		board = e.Request.AbsoluteURL(e.Attr("href"))
	})

	if err := c.Visit(site.URL); err != nil {
		return Target{}, apperrors.Navigation(site.Name.String(), "fetch landing page "+site.URL, err)
	}
	c.Wait()

	if board == "" {
		return Target{}, apperrors.Navigation(site.Name.String(), "find link to "+site.BoardDomain, ErrNoBoardLink)
	}

	f.logger.Info("🔗 Found job board link", zap.String("site", site.Name.String()), zap.String("board", board))
	return Target{Site: site, BoardURL: board}, nil
}
