package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/sirupsen/logrus"

	"github.com/MrJamesThe3rd/kasbook/internal/encoding"
	"github.com/MrJamesThe3rd/kasbook/internal/ledger"
	"github.com/MrJamesThe3rd/kasbook/internal/logging"
)

type Service struct {
	log logrus.FieldLogger
}

func NewService(log logrus.FieldLogger) *Service {
	return &Service{log: logging.Component(log, "importer")}
}

// Parse reads a sheet-layout CSV and returns one CreateParams per data row.
// Blank rows are skipped. The first bad row fails the whole file with a
// *RowError, so nothing is submitted from a half-read file.
func (s *Service) Parse(r io.Reader) ([]ledger.CreateParams, error) {
	dec, err := encoding.ToUTF8(r)
	if err != nil {
		return nil, fmt.Errorf("detecting encoding: %w", err)
	}

	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	firstLine, _, _ := bytes.Cut(data, []byte("\n"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(string(firstLine))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}

	if len(rows) == 0 {
		return nil, ErrHeader
	}

	header, err := canonicalHeader(rows[0])
	if err != nil {
		return nil, err
	}

	rows[0] = header

	var parsed []Row
	if err := gocsv.UnmarshalCSV(&records{rows: rows}, &parsed); err != nil {
		return nil, fmt.Errorf("decoding rows: %w", err)
	}

	params := make([]ledger.CreateParams, 0, len(parsed))

	for i := range parsed {
		row := &parsed[i]
		if row.blank() {
			continue
		}

		p, err := toParams(row)
		if err != nil {
			return nil, &RowError{Row: i + 2, Err: err}
		}

		params = append(params, p)
	}

	s.log.WithFields(logrus.Fields{
		logging.FieldCount: len(params),
		"charset":          dec.Charset,
	}).Info("csv parsed")

	return params, nil
}

func toParams(row *Row) (ledger.CreateParams, error) {
	date, err := parseDate(row.Date)
	if err != nil {
		return ledger.CreateParams{}, err
	}

	account := strings.TrimSpace(row.Account)
	if account == "" {
		return ledger.CreateParams{}, errors.New("missing account")
	}

	debit, err := parseAmount(row.Debit)
	if err != nil {
		return ledger.CreateParams{}, fmt.Errorf("debit: %w", err)
	}

	credit, err := parseAmount(row.Credit)
	if err != nil {
		return ledger.CreateParams{}, fmt.Errorf("credit: %w", err)
	}

	if debit.IsNegative() || credit.IsNegative() {
		return ledger.CreateParams{}, errors.New("amounts must not be negative")
	}

	return ledger.CreateParams{
		Date:        date,
		Description: strings.TrimSpace(row.Description),
		Account:     account,
		Debit:       debit,
		Credit:      credit,
	}, nil
}
