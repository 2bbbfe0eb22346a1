package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account is a named category transactions are booked against.
// Transactions reference accounts by name, not by ID.
type Account struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// Transaction is an immutable financial event. The only mutation it ever sees
// is the account rename cascade.
type Transaction struct {
	ID          uuid.UUID
	Date        time.Time // calendar date, always midnight UTC
	Description string
	Account     string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	CreatedAt   time.Time
}

// Month is derived from Date on every call.
func (t *Transaction) Month() time.Month { return t.Date.Month() }

// Year is derived from Date on every call.
func (t *Transaction) Year() int { return t.Date.Year() }

// Snapshot returns a value copy of the transaction's fields that outlives the record.
func (t *Transaction) Snapshot() Snapshot {
	return Snapshot{
		Date:        t.Date,
		Description: t.Description,
		Account:     t.Account,
		Debit:       t.Debit,
		Credit:      t.Credit,
	}
}

// Snapshot is an embedded copy of a transaction's field values, independent of
// the original record's lifecycle.
type Snapshot struct {
	Date        time.Time
	Description string
	Account     string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

func (s Snapshot) Month() time.Month { return s.Date.Month() }
func (s Snapshot) Year() int         { return s.Date.Year() }

// MonthString formats the month the way the remote sheet stores it ("01".."12").
func (s Snapshot) MonthString() string { return fmt.Sprintf("%02d", int(s.Date.Month())) }

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CreateParams is the user-submitted content of a new transaction.
type CreateParams struct {
	Date        time.Time
	Description string
	Account     string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// DeletePolicy decides whether accounts still referenced by transactions may be deleted.
type DeletePolicy string

const (
	// DeleteAllow leaves referencing transactions untouched.
	DeleteAllow DeletePolicy = "allow"
	// DeleteRestrict refuses to delete an account that is still referenced.
	DeleteRestrict DeletePolicy = "restrict"
)

// DefaultAccounts is the first-run seed list.
var DefaultAccounts = []string{"Kas_Kantin", "Kas_Sekolah", "BCA", "Lomba", "Operasional"}
