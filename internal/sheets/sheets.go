// Package sheets keeps one worksheet per site in a shared spreadsheet and
// appends only listings whose link is not in the sheet yet.
package sheets

import (
	"context"
	"errors"
)

var ErrWorksheetNotFound = errors.New("worksheet not found")

// Header is the required first row of every worksheet.
var Header = []string{"Title", "Link", "Source", "Country", "Cities"}

const (
	newSheetRows = 100
	newSheetCols = 5
	linkColumn   = 2
)

// Spreadsheet is the subset of the spreadsheet API the writer needs.
type Spreadsheet interface {
	Worksheet(ctx context.Context, title string) (Worksheet, error)
	AddWorksheet(ctx context.Context, title string, rows, cols int) (Worksheet, error)
}

// Worksheet rows and columns are 1-based.
type Worksheet interface {
	Title() string
	RowValues(ctx context.Context, row int) ([]string, error)
	ColValues(ctx context.Context, col int) ([]string, error)
	InsertRow(ctx context.Context, values []string, index int) error
	AppendRows(ctx context.Context, rows [][]string) error
}
