package sheets

import (
	"context"
	"errors"

	"go-career-scraper/internal/dedup"
	apperrors "go-career-scraper/internal/errors"
	"go-career-scraper/internal/filter"
	"go-career-scraper/internal/models"

	"go.uber.org/zap"
)

type Writer struct {
	book               Spreadsheet
	filterPlaceholders bool
	logger             *zap.Logger
}

func NewWriter(book Spreadsheet, filterPlaceholders bool, logger *zap.Logger) *Writer {
	return &Writer{book: book, filterPlaceholders: filterPlaceholders, logger: logger}
}

// Save appends the listings not yet present in the worksheet named after
// source and returns how many rows were appended.
func (w *Writer) Save(ctx context.Context, source models.Source, listings []models.Listing) (int, error) {
	log := w.logger.With(zap.String("sheet", source.String()))
	if len(listings) == 0 {
		log.Warn("⚠️ No job data found, skipping upload")
		return 0, nil
	}

	ws, err := w.worksheet(ctx, source.String())
	if err != nil {
		return 0, err
	}

	if err := ensureHeader(ctx, ws); err != nil {
		return 0, apperrors.Persistence("write header to "+ws.Title(), err)
	}

	links, err := ws.ColValues(ctx, linkColumn)
	if err != nil {
		return 0, apperrors.Persistence("read links from "+ws.Title(), err)
	}
	if len(links) > 0 {
		links = links[1:]
	}
	index := dedup.NewLinkIndex(links)

	if w.filterPlaceholders {
		before := len(listings)
		listings = filter.DropPlaceholders(listings)
		if dropped := before - len(listings); dropped > 0 {
			log.Info("🧪 Dropped placeholder postings", zap.Int("dropped", dropped))
		}
	}

	fresh := index.FilterUnseen(listings)
	if len(fresh) == 0 {
		log.Warn("⚠️ No new jobs found, all jobs are already in the sheet")
		return 0, nil
	}

	rows := make([][]string, 0, len(fresh))
	for _, l := range fresh {
		rows = append(rows, l.Row())
	}
	if err := ws.AppendRows(ctx, rows); err != nil {
		return 0, apperrors.Persistence("append rows to "+ws.Title(), err)
	}

	log.Info("✅ Saved new jobs to sheet", zap.Int("appended", len(rows)), zap.Int("existing", index.Len()-len(rows)))
	return len(rows), nil
}

func (w *Writer) worksheet(ctx context.Context, title string) (Worksheet, error) {
	ws, err := w.book.Worksheet(ctx, title)
	if err == nil {
		return ws, nil
	}
	if !errors.Is(err, ErrWorksheetNotFound) {
		return nil, apperrors.Persistence("open worksheet "+title, err)
	}

	w.logger.Info("🆕 Creating worksheet", zap.String("sheet", title))
	ws, err = w.book.AddWorksheet(ctx, title, newSheetRows, newSheetCols)
	if err != nil {
		return nil, apperrors.Persistence("create worksheet "+title, err)
	}
	return ws, nil
}

// ensureHeader inserts the header as row 1 when the first five cells differ.
func ensureHeader(ctx context.Context, ws Worksheet) error {
	first, err := ws.RowValues(ctx, 1)
	if err != nil {
		return err
	}
	if hasHeader(first) {
		return nil
	}
	return ws.InsertRow(ctx, Header, 1)
}

func hasHeader(row []string) bool {
	if len(row) < len(Header) {
		return false
	}
	for i, h := range Header {
		if row[i] != h {
			return false
		}
	}
	return true
}
