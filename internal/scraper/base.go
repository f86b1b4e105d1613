// Define an interface for all job-board extractors
// Ensure consistency

package scraper

import (
	"context"

	"go-career-scraper/internal/models"

	"github.com/playwright-community/playwright-go"
)

// Scraper extracts listings from an already rendered job-board page.
type Scraper interface {
	//Scrape all listings reachable from the page (load more, pagination)
	Scrape(ctx context.Context, page playwright.Page) ([]models.Listing, error)

	//Name is the platform name (Workable, SuccessFactors, ...)
	Name() string
}
