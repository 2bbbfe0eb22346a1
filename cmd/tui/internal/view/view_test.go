package view

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/kasbook/internal/ledger"
)

func TestFormatAmount(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{in: "0", want: ""},
		{in: "5", want: "5"},
		{in: "25000", want: "25.000"},
		{in: "1500000", want: "1.500.000"},
		{in: "1500000.5", want: "1.500.000,50"},
		{in: "999.99", want: "999,99"},
		{in: "-1234", want: "-1.234"},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatAmount(decimal.RequireFromString(tc.in)))
		})
	}
}

func TestPeriod_Contains(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	tx := func(y int, m time.Month, d int) *ledger.Transaction {
		return &ledger.Transaction{Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
	}

	assert.True(t, PeriodAll.Contains(tx(1999, 5, 1), now))

	assert.True(t, PeriodThisMonth.Contains(tx(2024, 1, 31), now))
	assert.False(t, PeriodThisMonth.Contains(tx(2023, 1, 10), now))

	assert.True(t, PeriodLastMonth.Contains(tx(2023, 12, 31), now), "wraps to December of the previous year")
	assert.False(t, PeriodLastMonth.Contains(tx(2024, 1, 1), now))

	assert.True(t, PeriodThisYear.Contains(tx(2024, 11, 30), now))
	assert.False(t, PeriodThisYear.Contains(tx(2023, 12, 31), now))
}

func TestPeriod_NextCycles(t *testing.T) {
	p := PeriodAll
	for range int(periodCount) {
		p = p.Next()
	}

	assert.Equal(t, PeriodAll, p)
}

func TestParseAmount(t *testing.T) {
	d, err := parseAmount(" 12,5 ")
	assert.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("12.5")))

	d, err = parseAmount("")
	assert.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = parseAmount("-1")
	assert.Error(t, err)

	_, err = parseAmount("lima")
	assert.Error(t, err)
}

func TestAccountNames(t *testing.T) {
	txs := []*ledger.Transaction{{Account: "Kas"}, {Account: "BCA"}, {Account: "Kas"}}
	assert.Equal(t, []string{"Kas", "BCA"}, accountNames(txs))
}
