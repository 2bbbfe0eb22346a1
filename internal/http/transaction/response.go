package transaction

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/kasbook/internal/ledger"
)

type transactionResponse struct {
	ID          uuid.UUID       `json:"id"`
	Date        string          `json:"date"`
	Month       string          `json:"month"`
	Year        string          `json:"year"`
	Description string          `json:"description"`
	Account     string          `json:"account"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	CreatedAt   time.Time       `json:"created_at"`
}

func toResponse(tx *ledger.Transaction) transactionResponse {
	snap := tx.Snapshot()

	return transactionResponse{
		ID:          tx.ID,
		Date:        tx.Date.Format(time.DateOnly),
		Month:       snap.MonthString(),
		Year:        strconv.Itoa(tx.Year()),
		Description: tx.Description,
		Account:     tx.Account,
		Debit:       tx.Debit,
		Credit:      tx.Credit,
		CreatedAt:   tx.CreatedAt,
	}
}
