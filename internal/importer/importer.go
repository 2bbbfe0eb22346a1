// Package importer reads transactions from CSV files laid out like the
// mirrored spreadsheet.
package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrHeader means no recognizable header row was found.
var ErrHeader = errors.New("missing or unrecognized header")

// Row is one data row of the sheet layout. Month and Year are read but not
// trusted; they are derived from Date again.
type Row struct {
	Date        string `csv:"Date"`
	Month       string `csv:"Month"`
	Year        string `csv:"Year"`
	Description string `csv:"Description"`
	Account     string `csv:"Account"`
	Debit       string `csv:"Debit"`
	Credit      string `csv:"Credit"`
}

func (r *Row) blank() bool {
	return strings.TrimSpace(r.Date+r.Description+r.Account+r.Debit+r.Credit) == ""
}

// headerAliases maps accepted header cells, lowercased, to Row's column names.
var headerAliases = map[string]string{
	"date":        "Date",
	"tanggal":     "Date",
	"month":       "Month",
	"bulan":       "Month",
	"year":        "Year",
	"tahun":       "Year",
	"description": "Description",
	"keterangan":  "Description",
	"account":     "Account",
	"akun":        "Account",
	"debit":       "Debit",
	"credit":      "Credit",
	"kredit":      "Credit",
}

// RowError points at the data row that could not be read. Row counts the
// header as row 1.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// records replays already-read records through gocsv's CSVReader interface.
type records struct {
	rows [][]string
	pos  int
}

func (r *records) Read() ([]string, error) {
	if r.pos >= len(r.rows) {
		return nil, io.EOF
	}

	row := r.rows[r.pos]
	r.pos++

	return row, nil
}

func (r *records) ReadAll() ([][]string, error) {
	rest := r.rows[r.pos:]
	r.pos = len(r.rows)

	return rest, nil
}

// canonicalHeader rewrites header cells to Row's column names. It fails unless
// Date, Account and at least one amount column are present.
func canonicalHeader(header []string) ([]string, error) {
	out := make([]string, len(header))
	seen := make(map[string]bool)

	for i, cell := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff")))
		if name, ok := headerAliases[key]; ok {
			out[i] = name
			seen[name] = true

			continue
		}

		out[i] = strings.TrimSpace(cell)
	}

	var missing []string

	for _, name := range []string{"Date", "Account"} {
		if !seen[name] {
			missing = append(missing, name)
		}
	}

	if !seen["Debit"] && !seen["Credit"] {
		missing = append(missing, "Debit or Credit")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrHeader, strings.Join(missing, ", "))
	}

	return out, nil
}
