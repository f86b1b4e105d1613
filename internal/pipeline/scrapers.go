package pipeline

import (
	"fmt"

	"go-career-scraper/internal/config"
	apperrors "go-career-scraper/internal/errors"
	"go-career-scraper/internal/models"
	"go-career-scraper/internal/scraper"
	"go-career-scraper/internal/scraper/successfactors"
	"go-career-scraper/internal/scraper/workable"

	"go.uber.org/zap"
)

// NewScrapers builds one extractor per configured site from its platform.
func NewScrapers(cfg *config.Config, logger *zap.Logger) (map[models.Source]scraper.Scraper, error) {
	out := make(map[models.Source]scraper.Scraper, len(cfg.Sites))
	for _, site := range cfg.Sites {
		switch site.Platform {
		case config.PlatformWorkable:
			out[site.Name] = workable.NewWorkableScraper(workable.Options{
				Source:          site.Name,
				SettleDelay:     cfg.SettleDelay(),
				LoadMoreRetries: cfg.Extract.LoadMoreRetries,
				MaxClicks:       cfg.Extract.MaxPages,
			}, logger)
		case config.PlatformSuccessFactors:
			out[site.Name] = successfactors.NewSuccessFactorsScraper(successfactors.Options{
				Source:      site.Name,
				SettleDelay: cfg.SettleDelay(),
				MaxPages:    cfg.Extract.MaxPages,
			}, logger)
		default:
			return nil, apperrors.Config(fmt.Sprintf("site %q: unknown platform %q", site.Name, site.Platform), nil)
		}
	}
	return out, nil
}
