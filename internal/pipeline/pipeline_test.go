package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go-career-scraper/internal/config"
	apperrors "go-career-scraper/internal/errors"
	"go-career-scraper/internal/models"
	"go-career-scraper/internal/notify"
	"go-career-scraper/internal/scraper"
	"go-career-scraper/internal/seed"
	"go-career-scraper/internal/sheets"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeResolver struct {
	boards map[models.Source]string
}

func (f *fakeResolver) Resolve(_ context.Context, site config.Site) (seed.Target, error) {
	board, ok := f.boards[site.Name]
	if !ok {
		return seed.Target{}, apperrors.Navigation("", "resolve board", seed.ErrNoBoardLink)
	}
	return seed.Target{Site: site, BoardURL: board}, nil
}

type fakePages struct {
	mu     sync.Mutex
	opened []string
	closed int
}

func (f *fakePages) WithPage(_ context.Context, url string, fn func(playwright.Page) error) error {
	f.mu.Lock()
	f.opened = append(f.opened, url)
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.closed++
		f.mu.Unlock()
	}()
	return fn(nil)
}

type fakeScraper struct {
	listings []models.Listing
	err      error
}

func (f *fakeScraper) Name() string { return "fake" }

func (f *fakeScraper) Scrape(context.Context, playwright.Page) ([]models.Listing, error) {
	return f.listings, f.err
}

type memStore struct {
	links map[string]bool
	err   error
}

func (m *memStore) SaveNew(_ context.Context, listings []models.Listing) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	n := 0
	for _, l := range listings {
		if !m.links[l.Link] {
			m.links[l.Link] = true
			n++
		}
	}
	return n, nil
}

type memSheets struct {
	saved map[models.Source][]models.Listing
}

func (m *memSheets) Save(_ context.Context, source models.Source, listings []models.Listing) (int, error) {
	if len(listings) == 0 {
		return 0, nil
	}
	m.saved[source] = append(m.saved[source], listings...)
	return len(listings), nil
}

type recordingNotifier struct {
	name    string
	digests []notify.Digest
	err     error
}

func (r *recordingNotifier) Name() string { return r.name }

func (r *recordingNotifier) Notify(_ context.Context, d notify.Digest) error {
	r.digests = append(r.digests, d)
	return r.err
}

type failureRecorder struct {
	recordingNotifier
	failed []models.Source
}

func (f *failureRecorder) ReportFailure(_ context.Context, site models.Source, _ error) error {
	f.failed = append(f.failed, site)
	return nil
}

func listing(src models.Source, title, link string) models.Listing {
	return models.Listing{Title: title, Link: link, Source: src}
}

func testDeps() (Deps, *fakePages, *memStore, *recordingNotifier) {
	pages := &fakePages{}
	store := &memStore{links: map[string]bool{}}
	mail := &recordingNotifier{name: "email"}
	return Deps{
		Resolver: &fakeResolver{boards: map[models.Source]string{
			models.SourceDevsinc:    "https://apply.workable.com/devsinc/",
			models.SourceSystemsLtd: "https://career2.sapsf.eu/career",
		}},
		Pages: pages,
		Scrapers: map[models.Source]scraper.Scraper{
			models.SourceDevsinc: &fakeScraper{listings: []models.Listing{
				listing(models.SourceDevsinc, "Go Dev", "D1"),
				listing(models.SourceDevsinc, "Test Posting", "D2"),
			}},
			models.SourceSystemsLtd: &fakeScraper{listings: []models.Listing{
				listing(models.SourceSystemsLtd, "Consultant", "S1"),
			}},
		},
		Store:     store,
		Notifiers: []notify.Notifier{mail},
	}, pages, store, mail
}

func TestRun_HappyPath(t *testing.T) {
	deps, pages, _, mail := testDeps()
	sheetMem := &memSheets{saved: map[models.Source][]models.Listing{}}
	deps.Sheets = sheetMem

	res, err := New(config.DefaultSites(), deps, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Sites, 2)
	assert.Equal(t, 3, res.Total())
	assert.Equal(t, 2, res.Sites[0].StoreInserted)
	assert.Equal(t, 1, res.Sites[1].StoreInserted)
	assert.Len(t, pages.opened, 2)
	assert.Equal(t, 2, pages.closed)

	require.Len(t, mail.digests, 1)
	d := mail.digests[0]
	require.Len(t, d.Sections, 2)
	assert.Equal(t, models.SourceDevsinc, d.Sections[0].Source)
	assert.Equal(t, models.SourceSystemsLtd, d.Sections[1].Source)
	assert.Len(t, d.Sections[0].Listings, 2)
	assert.Empty(t, res.NotifyErr)
}

func TestRun_PlaceholderExcludedFromSheetButInDigest(t *testing.T) {
	deps, _, _, mail := testDeps()
	book := &stubBook{}
	deps.Sheets = sheets.NewWriter(book, true, zap.NewNop())

	res, err := New(config.DefaultSites(), deps, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Sites[0].SheetAppended)
	assert.Equal(t, []string{"D1"}, book.appended["Devsinc"])

	titles := []string{}
	for _, l := range mail.digests[0].Sections[0].Listings {
		titles = append(titles, l.Title)
	}
	assert.Contains(t, titles, "Test Posting")
}

func TestRun_SecondRunInsertsNothing(t *testing.T) {
	deps, _, _, _ := testDeps()
	p := New(config.DefaultSites(), deps, zap.NewNop())

	_, err := p.Run(context.Background())
	require.NoError(t, err)
	res, err := p.Run(context.Background())
	require.NoError(t, err)

	for _, s := range res.Sites {
		assert.Zero(t, s.StoreInserted)
	}
}

func TestRun_SiteWithoutBoardLinkIsSkipped(t *testing.T) {
	deps, pages, _, mail := testDeps()
	deps.Resolver = &fakeResolver{boards: map[models.Source]string{
		models.SourceSystemsLtd: "https://career2.sapsf.eu/career",
	}}

	res, err := New(config.DefaultSites(), deps, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)

	assert.ErrorIs(t, res.Sites[0].Err, seed.ErrNoBoardLink)
	assert.Contains(t, res.Sites[0].Err.Error(), "NAVIGATION [Devsinc]")
	assert.Empty(t, res.Sites[0].Listings)
	assert.Len(t, res.Sites[1].Listings, 1)
	assert.Equal(t, []string{"https://career2.sapsf.eu/career"}, pages.opened)

	// the skipped site still gets its "no new postings" section
	require.Len(t, mail.digests, 1)
	assert.Len(t, mail.digests[0].Sections, 2)
	assert.Empty(t, mail.digests[0].Sections[0].Listings)
}

func TestRun_ExtractionErrorYieldsNothingForSite(t *testing.T) {
	deps, pages, _, _ := testDeps()
	deps.Scrapers[models.SourceDevsinc] = &fakeScraper{
		listings: []models.Listing{listing(models.SourceDevsinc, "Partial", "P1")},
		err:      apperrors.Extraction("", "collect job cards", errors.New("detached")),
	}

	res, err := New(config.DefaultSites(), deps, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)
	assert.Nil(t, res.Sites[0].Listings)
	assert.Contains(t, res.Sites[0].Err.Error(), "EXTRACTION [Devsinc]")
	assert.Equal(t, apperrors.ErrTypeExtraction, apperrors.TypeOf(res.Sites[0].Err))
	assert.Equal(t, 2, pages.closed)
}

func TestRun_DestinationsAreIndependent(t *testing.T) {
	deps, _, store, mail := testDeps()
	store.err = apperrors.Persistence("commit", errors.New("disk full"))
	sheetMem := &memSheets{saved: map[models.Source][]models.Listing{}}
	deps.Sheets = sheetMem

	res, err := New(config.DefaultSites(), deps, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)

	assert.Error(t, res.Sites[0].StoreErr)
	assert.Len(t, sheetMem.saved[models.SourceDevsinc], 2)
	assert.Len(t, mail.digests, 1)
}

func TestRun_NotifierFailureIsNotFatal(t *testing.T) {
	deps, _, _, mail := testDeps()
	mail.err = apperrors.Notification("send", errors.New("535"))
	chat := &recordingNotifier{name: "telegram"}
	deps.Notifiers = append(deps.Notifiers, chat)

	res, err := New(config.DefaultSites(), deps, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, res.NotifyErr, "email")
	assert.Len(t, chat.digests, 1)
}

func TestRun_CancelledContext(t *testing.T) {
	deps, _, _, mail := testDeps()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(config.DefaultSites(), deps, zap.NewNop()).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, mail.digests)
}

func TestNewScrapers(t *testing.T) {
	cfg := &config.Config{Sites: config.DefaultSites()}
	got, err := NewScrapers(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "Workable", got[models.SourceDevsinc].Name())
	assert.Equal(t, "SuccessFactors", got[models.SourceSystemsLtd].Name())

	cfg.Sites = []config.Site{{Name: "X", Platform: "greenhouse"}}
	_, err = NewScrapers(cfg, zap.NewNop())
	assert.Equal(t, apperrors.ErrTypeConfig, apperrors.TypeOf(err))
}

// stubBook is a minimal in-memory spreadsheet recording appended links.
type stubBook struct {
	appended map[string][]string
}

func (b *stubBook) Worksheet(_ context.Context, title string) (sheets.Worksheet, error) {
	if b.appended == nil {
		b.appended = map[string][]string{}
	}
	return &stubSheet{book: b, title: title}, nil
}

func (b *stubBook) AddWorksheet(ctx context.Context, title string, _, _ int) (sheets.Worksheet, error) {
	return b.Worksheet(ctx, title)
}

type stubSheet struct {
	book  *stubBook
	title string
}

func (s *stubSheet) Title() string { return s.title }

func (s *stubSheet) RowValues(context.Context, int) ([]string, error) {
	return sheets.Header, nil
}

func (s *stubSheet) ColValues(context.Context, int) ([]string, error) {
	return append([]string{"Link"}, s.book.appended[s.title]...), nil
}

func (s *stubSheet) InsertRow(context.Context, []string, int) error { return nil }

func (s *stubSheet) AppendRows(_ context.Context, rows [][]string) error {
	for _, r := range rows {
		s.book.appended[s.title] = append(s.book.appended[s.title], r[1])
	}
	return nil
}

func TestRun_FailedSitesAreReported(t *testing.T) {
	deps, _, _, _ := testDeps()
	deps.Resolver = &fakeResolver{boards: map[models.Source]string{
		models.SourceSystemsLtd: "https://career2.sapsf.eu/career",
	}}
	chat := &failureRecorder{recordingNotifier: recordingNotifier{name: "telegram"}}
	deps.Notifiers = append(deps.Notifiers, chat)

	res, err := New(config.DefaultSites(), deps, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)
	require.Error(t, res.Sites[0].Err)

	assert.Len(t, chat.digests, 1)
	assert.Equal(t, []models.Source{models.SourceDevsinc}, chat.failed)
}
