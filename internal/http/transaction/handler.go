package transaction

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/MrJamesThe3rd/kasbook/internal/http/respond"
	"github.com/MrJamesThe3rd/kasbook/internal/ledger"
	"github.com/MrJamesThe3rd/kasbook/internal/syncer"
)

type Ledger interface {
	ListTransactions(ctx context.Context) ([]*ledger.Transaction, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
}

type Submitter interface {
	Submit(ctx context.Context, params ledger.CreateParams) (*syncer.Result, error)
}

type Handler struct {
	ledger Ledger
	sync   Submitter
	log    logrus.FieldLogger
}

func NewHandler(l Ledger, s Submitter, log logrus.FieldLogger) *Handler {
	return &Handler{ledger: l, sync: s, log: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
}

type createTransactionRequest struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Account     string          `json:"account"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

type createTransactionResponse struct {
	Transaction transactionResponse `json:"transaction"`
	SyncStatus  syncer.SubmitStatus `json:"sync_status"`
	Message     string              `json:"message"`
	EntryID     *uuid.UUID          `json:"entry_id,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Message(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	var date time.Time

	if req.Date != "" {
		d, err := time.Parse(time.DateOnly, req.Date)
		if err != nil {
			respond.Message(w, h.log, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}

		date = d
	}

	res, err := h.sync.Submit(r.Context(), ledger.CreateParams{
		Date:        date,
		Description: req.Description,
		Account:     req.Account,
		Debit:       req.Debit,
		Credit:      req.Credit,
	})
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	resp := createTransactionResponse{
		Transaction: toResponse(res.Transaction),
		SyncStatus:  res.Status,
		Message:     res.Message,
	}
	if res.Entry != nil {
		resp.EntryID = &res.Entry.ID
	}

	respond.JSON(w, h.log, http.StatusCreated, resp)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	txs, err := h.ledger.ListTransactions(r.Context())
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	account := r.URL.Query().Get("account")

	resp := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		if account != "" && tx.Account != account {
			continue
		}

		resp = append(resp, toResponse(tx))
	}

	respond.JSON(w, h.log, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Message(w, h.log, http.StatusBadRequest, "invalid id")
		return
	}

	tx, err := h.ledger.GetTransaction(r.Context(), id)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusOK, toResponse(tx))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Message(w, h.log, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.ledger.DeleteTransaction(r.Context(), id); err != nil {
		respond.Error(w, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
