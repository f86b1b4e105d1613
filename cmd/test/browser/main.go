// Dry run of one site: resolve the job board, render it and print the
// listings without writing to any destination.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go-career-scraper/internal/browser"
	"go-career-scraper/internal/config"
	"go-career-scraper/internal/models"
	"go-career-scraper/internal/pipeline"
	"go-career-scraper/internal/seed"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

func main() {
	siteName := flag.String("site", string(models.SourceDevsinc), "site name from config")
	flag.Parse()

	fmt.Println("🌐 Testing Browser Manager...")

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	lg, _ := zap.NewDevelopment()

	var site *config.Site
	for i := range cfg.Sites {
		if string(cfg.Sites[i].Name) == *siteName {
			site = &cfg.Sites[i]
		}
	}
	if site == nil {
		log.Fatalf("Unknown site %q", *siteName)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	target, err := seed.NewFetcher(cfg.Browser.UserAgent, 30*time.Second, lg).Resolve(ctx, *site)
	if err != nil {
		log.Fatalf("Failed to resolve job board: %v", err)
	}
	fmt.Printf("✅ Job board: %s\n", target.BoardURL)

	cookies, err := browser.LoadCookies(cfg.Browser.CookiesPath)
	if err != nil {
		log.Fatalf("Failed to load cookies: %v", err)
	}

	pm, err := browser.NewPlaywright(ctx, browser.Options{
		Headless:          *cfg.Browser.Headless,
		NavigationTimeout: time.Duration(cfg.Browser.NavigationTimeout) * time.Millisecond,
		UserAgent:         cfg.Browser.UserAgent,
		Cookies:           cookies,
		ScreenshotDir:     cfg.Browser.ScreenshotDir,
	}, lg)
	if err != nil {
		log.Fatalf("Failed to create Playwright: %v", err)
	}
	defer pm.Close()
	fmt.Println("✅ Playwright started")

	scrapers, err := pipeline.NewScrapers(cfg, lg)
	if err != nil {
		log.Fatalf("Failed to build scrapers: %v", err)
	}
	s := scrapers[site.Name]

	var jobs []models.Listing
	err = pm.WithPage(ctx, target.BoardURL, func(page playwright.Page) error {
		title, _ := page.Title()
		fmt.Printf("✅ Page title: %s\n", title)
		jobs, err = s.Scrape(ctx, page)
		return err
	})
	if err != nil {
		log.Fatalf("Scrape failed: %v", err)
	}

	fmt.Printf("📦 %d jobs\n", len(jobs))
	for _, j := range jobs {
		fmt.Printf("  - %s | %s, %s | %s\n", j.Title, j.City, j.Country, j.Link)
	}
}
