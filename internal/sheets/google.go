package sheets

import (
	"context"
	"fmt"
	"strings"

	apperrors "go-career-scraper/internal/errors"

	"golang.org/x/time/rate"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

const spreadsheetMime = "application/vnd.google-apps.spreadsheet"

// Client is a Google spreadsheet opened by name through Drive. Every API
// call waits on a shared limiter to stay under the per-user quota.
type Client struct {
	svc     *gsheets.Service
	id      string
	limiter *rate.Limiter
}

// OpenByName authenticates with a service-account key file and opens the
// first spreadsheet named name that the account can see.
func OpenByName(ctx context.Context, credentialsFile, name string, perSecond float64) (*Client, error) {
	opts := []option.ClientOption{
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gsheets.SpreadsheetsScope, drive.DriveReadonlyScope),
	}

	driveSvc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, apperrors.Config("create drive client", err)
	}
	sheetsSvc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, apperrors.Config("create sheets client", err)
	}

	if perSecond <= 0 {
		perSecond = 1
	}
	limiter := rate.NewLimiter(rate.Limit(perSecond), 1)

	if err := limiter.Wait(ctx); err != nil {
		return nil, err
	}
	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false",
		strings.ReplaceAll(name, "'", `\'`), spreadsheetMime)
	list, err := driveSvc.Files.List().Q(q).Fields("files(id, name)").PageSize(1).Context(ctx).Do()
	if err != nil {
		return nil, apperrors.Persistence("find spreadsheet "+name, err)
	}
	if len(list.Files) == 0 {
		return nil, apperrors.Persistence("find spreadsheet "+name, fmt.Errorf("spreadsheet %q not shared with the service account", name))
	}

	return &Client{svc: sheetsSvc, id: list.Files[0].Id, limiter: limiter}, nil
}

func (c *Client) Worksheet(ctx context.Context, title string) (Worksheet, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	book, err := c.svc.Spreadsheets.Get(c.id).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	for _, s := range book.Sheets {
		if s.Properties != nil && s.Properties.Title == title {
			return &googleWorksheet{client: c, sheetID: s.Properties.SheetId, title: title}, nil
		}
	}
	return nil, ErrWorksheetNotFound
}

func (c *Client) AddWorksheet(ctx context.Context, title string, rows, cols int) (Worksheet, error) {
	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			AddSheet: &gsheets.AddSheetRequest{
				Properties: &gsheets.SheetProperties{
					Title: title,
					GridProperties: &gsheets.GridProperties{
						RowCount:    int64(rows),
						ColumnCount: int64(cols),
					},
				},
			},
		}},
	}
	resp, err := c.batchUpdate(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil {
		return nil, fmt.Errorf("add sheet %q: empty reply", title)
	}
	return &googleWorksheet{client: c, sheetID: resp.Replies[0].AddSheet.Properties.SheetId, title: title}, nil
}

func (c *Client) batchUpdate(ctx context.Context, req *gsheets.BatchUpdateSpreadsheetRequest) (*gsheets.BatchUpdateSpreadsheetResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.svc.Spreadsheets.BatchUpdate(c.id, req).Context(ctx).Do()
}

type googleWorksheet struct {
	client  *Client
	sheetID int64
	title   string
}

func (w *googleWorksheet) Title() string {
	return w.title
}

// a1 quotes the sheet title for A1 notation.
func (w *googleWorksheet) a1(rng string) string {
	return "'" + strings.ReplaceAll(w.title, "'", "''") + "'!" + rng
}

func (w *googleWorksheet) get(ctx context.Context, rng string) ([][]interface{}, error) {
	if err := w.client.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	vr, err := w.client.svc.Spreadsheets.Values.Get(w.client.id, w.a1(rng)).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return vr.Values, nil
}

func (w *googleWorksheet) RowValues(ctx context.Context, row int) ([]string, error) {
	values, err := w.get(ctx, fmt.Sprintf("%d:%d", row, row))
	if err != nil || len(values) == 0 {
		return nil, err
	}
	return toStrings(values[0]), nil
}

func (w *googleWorksheet) ColValues(ctx context.Context, col int) ([]string, error) {
	letter := columnLetter(col)
	values, err := w.get(ctx, letter+":"+letter)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(values))
	for i, row := range values {
		if len(row) > 0 {
			out[i] = fmt.Sprint(row[0])
		}
	}
	return out, nil
}

func (w *googleWorksheet) InsertRow(ctx context.Context, values []string, index int) error {
	start := int64(index - 1)
	_, err := w.client.batchUpdate(ctx, &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			InsertDimension: &gsheets.InsertDimensionRequest{
				Range: &gsheets.DimensionRange{
					SheetId:         w.sheetID,
					Dimension:       "ROWS",
					StartIndex:      start,
					EndIndex:        start + 1,
					ForceSendFields: []string{"SheetId", "StartIndex"},
				},
			},
		}},
	})
	if err != nil {
		return err
	}

	if err := w.client.limiter.Wait(ctx); err != nil {
		return err
	}
	rng := fmt.Sprintf("A%d:%s%d", index, columnLetter(len(values)), index)
	_, err = w.client.svc.Spreadsheets.Values.Update(w.client.id, w.a1(rng), &gsheets.ValueRange{
		Values: [][]interface{}{toInterfaces(values)},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

func (w *googleWorksheet) AppendRows(ctx context.Context, rows [][]string) error {
	values := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		values = append(values, toInterfaces(r))
	}
	if err := w.client.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := w.client.svc.Spreadsheets.Values.Append(w.client.id, w.a1("A1"), &gsheets.ValueRange{
		Values: values,
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	return err
}

// columnLetter maps 1 to A, 26 to Z, 27 to AA.
func columnLetter(col int) string {
	var b []byte
	for col > 0 {
		col--
		b = append([]byte{byte('A' + col%26)}, b...)
		col /= 26
	}
	return string(b)
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = fmt.Sprint(v)
	}
	return out
}

func toInterfaces(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
