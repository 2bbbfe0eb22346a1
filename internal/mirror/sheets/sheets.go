// Package sheets implements mirror.Remote on top of one Google Sheets
// spreadsheet, using a tab per namespace.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/sheets/v4"

	"github.com/MrJamesThe3rd/kasbook/internal/mirror"
)

const (
	valueInputOption = "USER_ENTERED"
	insertDataOption = "INSERT_ROWS"
	initialRowCount  = 1000
)

type Client struct {
	svc           *sheets.Service
	spreadsheetID string
}

func NewClient(svc *sheets.Service, spreadsheetID string) *Client {
	return &Client{svc: svc, spreadsheetID: spreadsheetID}
}

func (c *Client) ListNamespaces(ctx context.Context) ([]string, error) {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify("getting spreadsheet", err)
	}

	names := make([]string, 0, len(ss.Sheets))

	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			names = append(names, sh.Properties.Title)
		}
	}

	return names, nil
}

// CreateNamespace adds a tab sized to the header and writes the header row.
// For a tab that already exists only a missing header is written.
func (c *Client) CreateNamespace(ctx context.Context, name string, header []string) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title: name,
					GridProperties: &sheets.GridProperties{
						RowCount:    initialRowCount,
						ColumnCount: int64(len(header)),
					},
				},
			},
		}},
	}

	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		if !alreadyExists(err) {
			return classify("adding sheet", err)
		}

		vr, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, headerRange(name, header)).Context(ctx).Do()
		if err != nil {
			return classify("reading header", err)
		}

		if len(vr.Values) > 0 {
			return nil
		}
	}

	vr := &sheets.ValueRange{Values: [][]any{cells(header)}}

	if _, err := c.svc.Spreadsheets.Values.
		Update(c.spreadsheetID, headerRange(name, header), vr).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do(); err != nil {
		return classify("writing header", err)
	}

	return nil
}

func (c *Client) AppendRows(ctx context.Context, name string, rows [][]string) error {
	values := make([][]any, len(rows))
	for i, r := range rows {
		values[i] = cells(r)
	}

	if _, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, a1(name, "A:"+column(len(mirror.Header))), &sheets.ValueRange{Values: values}).
		ValueInputOption(valueInputOption).
		InsertDataOption(insertDataOption).
		Context(ctx).
		Do(); err != nil {
		return classify("appending rows", err)
	}

	return nil
}

func (c *Client) ListRows(ctx context.Context, name string) ([][]string, error) {
	vr, err := c.svc.Spreadsheets.Values.
		Get(c.spreadsheetID, a1(name, "A:"+column(len(mirror.Header)))).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify("reading rows", err)
	}

	rows := make([][]string, len(vr.Values))

	for i, r := range vr.Values {
		rows[i] = make([]string, len(r))
		for j, v := range r {
			rows[i][j] = fmt.Sprint(v)
		}
	}

	return rows, nil
}

func cells(row []string) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = v
	}

	return out
}

// a1 builds an A1 range scoped to a tab, quoting the title.
func a1(sheet, rng string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'!" + rng
}

func headerRange(sheet string, header []string) string {
	return a1(sheet, "A1:"+column(len(header))+"1")
}

// column converts a 1-based column index to its letter name.
func column(n int) string {
	var b []byte

	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}

	return string(b)
}

func alreadyExists(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusBadRequest &&
		strings.Contains(strings.ToLower(gerr.Message), "already exists")
}

// classify maps an API or transport error onto the mirror sentinels.
func classify(op string, err error) error {
	var (
		gerr *googleapi.Error
		rerr *oauth2.RetrieveError
	)

	var kind error

	switch {
	case errors.As(err, &rerr):
		kind = mirror.ErrAuth
		if rerr.Response != nil && rerr.Response.StatusCode >= http.StatusInternalServerError {
			kind = mirror.ErrRemoteUnavailable
		}
	case errors.As(err, &gerr):
		kind = statusKind(gerr)
	default:
		kind = mirror.ErrRemoteUnavailable
	}

	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

func statusKind(gerr *googleapi.Error) error {
	switch {
	case gerr.Code == http.StatusUnauthorized:
		return mirror.ErrAuth
	case gerr.Code == http.StatusForbidden:
		if rateLimited(gerr) {
			return mirror.ErrRemoteUnavailable
		}

		return mirror.ErrAuth
	case gerr.Code == http.StatusTooManyRequests, gerr.Code >= http.StatusInternalServerError:
		return mirror.ErrRemoteUnavailable
	case gerr.Code >= http.StatusBadRequest:
		return mirror.ErrRemoteValidation
	default:
		return mirror.ErrRemoteUnavailable
	}
}

func rateLimited(gerr *googleapi.Error) bool {
	for _, e := range gerr.Errors {
		if e.Reason == "rateLimitExceeded" || e.Reason == "userRateLimitExceeded" {
			return true
		}
	}

	return false
}
