package syncer

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/MrJamesThe3rd/kasbook/internal/http/respond"
	"github.com/MrJamesThe3rd/kasbook/internal/mirror"
	"github.com/MrJamesThe3rd/kasbook/internal/pending"
	"github.com/MrJamesThe3rd/kasbook/internal/syncer"
)

type Orchestrator interface {
	Status(ctx context.Context) (syncer.Status, error)
	Drain(ctx context.Context) (syncer.DrainReport, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

type Queue interface {
	ListPending(ctx context.Context) ([]*pending.Entry, error)
}

// Remote reads back what was mirrored.
type Remote interface {
	Rows(ctx context.Context, account string) ([][]string, error)
	AllRows(ctx context.Context) ([]mirror.NamespaceRows, error)
}

type Handler struct {
	orch   Orchestrator
	queue  Queue
	remote Remote
	log    logrus.FieldLogger
}

func NewHandler(o Orchestrator, q Queue, remote Remote, log logrus.FieldLogger) *Handler {
	return &Handler{orch: o, queue: q, remote: remote, log: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/status", h.status)
	r.Post("/drain", h.drain)
	r.Get("/pending", h.listPending)
	r.Delete("/pending/{id}", h.removePending)
	r.Get("/remote", h.allRemoteRows)
	r.Get("/remote/{account}", h.remoteRows)
}

type statusResponse struct {
	Online         bool       `json:"online"`
	Draining       bool       `json:"draining"`
	Pending        int        `json:"pending"`
	Message        string     `json:"message,omitempty"`
	LastDrainAt    *time.Time `json:"last_drain_at,omitempty"`
	LastDrainError string     `json:"last_drain_error,omitempty"`
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	s, err := h.orch.Status(r.Context())
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	resp := statusResponse{
		Online:         s.Online,
		Draining:       s.Draining,
		Pending:        s.Pending,
		Message:        s.Message,
		LastDrainError: s.LastDrainError,
	}
	if !s.LastDrainAt.IsZero() {
		resp.LastDrainAt = &s.LastDrainAt
	}

	respond.JSON(w, h.log, http.StatusOK, resp)
}

type drainResponse struct {
	Mirrored  int    `json:"mirrored"`
	Remaining int    `json:"remaining"`
	Passes    int    `json:"passes"`
	Coalesced bool   `json:"coalesced"`
	Error     string `json:"error,omitempty"`
}

// drain runs a pass in the request. A remote failure still answers 200: the
// entries stay queued and the report says how far the pass got.
func (h *Handler) drain(w http.ResponseWriter, r *http.Request) {
	report, err := h.orch.Drain(r.Context())

	resp := drainResponse{
		Mirrored:  report.Mirrored,
		Remaining: report.Remaining,
		Passes:    report.Passes,
		Coalesced: report.Coalesced,
	}
	if err != nil {
		resp.Error = err.Error()
	}

	respond.JSON(w, h.log, http.StatusOK, resp)
}

type entryResponse struct {
	ID          uuid.UUID       `json:"id"`
	Seq         int64           `json:"seq"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Account     string          `json:"account"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	EnqueuedAt  time.Time       `json:"enqueued_at"`
}

func (h *Handler) listPending(w http.ResponseWriter, r *http.Request) {
	entries, err := h.queue.ListPending(r.Context())
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	resp := make([]entryResponse, len(entries))
	for i, e := range entries {
		resp[i] = entryResponse{
			ID:          e.ID,
			Seq:         e.Seq,
			Date:        e.Snapshot.Date.Format(time.DateOnly),
			Description: e.Snapshot.Description,
			Account:     e.Snapshot.Account,
			Debit:       e.Snapshot.Debit,
			Credit:      e.Snapshot.Credit,
			EnqueuedAt:  e.EnqueuedAt,
		}
	}

	respond.JSON(w, h.log, http.StatusOK, resp)
}

func (h *Handler) removePending(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Message(w, h.log, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.orch.Remove(r.Context(), id); err != nil {
		respond.Error(w, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) remoteRows(w http.ResponseWriter, r *http.Request) {
	account, err := url.PathUnescape(chi.URLParam(r, "account"))
	if err != nil {
		respond.Message(w, h.log, http.StatusBadRequest, "invalid account name")
		return
	}

	rows, err := h.remote.Rows(r.Context(), account)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	if rows == nil {
		rows = [][]string{}
	}

	respond.JSON(w, h.log, http.StatusOK, rows)
}

type namespaceResponse struct {
	Namespace string     `json:"namespace"`
	Rows      [][]string `json:"rows"`
}

func (h *Handler) allRemoteRows(w http.ResponseWriter, r *http.Request) {
	all, err := h.remote.AllRows(r.Context())
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	resp := make([]namespaceResponse, len(all))
	for i, ns := range all {
		resp[i] = namespaceResponse{Namespace: ns.Namespace, Rows: ns.Rows}
		if resp[i].Rows == nil {
			resp[i].Rows = [][]string{}
		}
	}

	respond.JSON(w, h.log, http.StatusOK, resp)
}
