package view

import (
	"time"

	"github.com/MrJamesThe3rd/kasbook/internal/ledger"
)

// Period is a calendar filter over the month and year derived from a
// transaction's date.
type Period int

const (
	PeriodAll Period = iota
	PeriodThisMonth
	PeriodLastMonth
	PeriodThisYear
	periodCount
)

func (p Period) String() string {
	switch p {
	case PeriodAll:
		return "All Time"
	case PeriodThisMonth:
		return "This Month"
	case PeriodLastMonth:
		return "Last Month"
	case PeriodThisYear:
		return "This Year"
	}

	return "Unknown"
}

func (p Period) Next() Period {
	return (p + 1) % periodCount
}

// Contains reports whether tx falls into the period as seen at now.
func (p Period) Contains(tx *ledger.Transaction, now time.Time) bool {
	switch p {
	case PeriodThisMonth:
		return tx.Year() == now.Year() && tx.Month() == now.Month()
	case PeriodLastMonth:
		last := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
		return tx.Year() == last.Year() && tx.Month() == last.Month()
	case PeriodThisYear:
		return tx.Year() == now.Year()
	}

	return true
}
