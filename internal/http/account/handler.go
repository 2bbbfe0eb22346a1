package account

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/MrJamesThe3rd/kasbook/internal/http/respond"
	"github.com/MrJamesThe3rd/kasbook/internal/ledger"
)

type Service interface {
	AddAccount(ctx context.Context, name string) (*ledger.Account, error)
	ListAccounts(ctx context.Context) ([]*ledger.Account, error)
	RenameAccount(ctx context.Context, oldName, newName string) error
	DeleteAccount(ctx context.Context, name string) error
}

type Handler struct {
	svc Service
	log logrus.FieldLogger
}

func NewHandler(svc Service, log logrus.FieldLogger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Put("/{name}", h.rename)
	r.Delete("/{name}", h.delete)
}

type accountRequest struct {
	Name string `json:"name"`
}

type accountResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func toResponse(a *ledger.Account) accountResponse {
	return accountResponse{ID: a.ID, Name: a.Name, CreatedAt: a.CreatedAt}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.ListAccounts(r.Context())
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	resp := make([]accountResponse, len(accounts))
	for i, a := range accounts {
		resp[i] = toResponse(a)
	}

	respond.JSON(w, h.log, http.StatusOK, resp)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Message(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	a, err := h.svc.AddAccount(r.Context(), req.Name)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusCreated, toResponse(a))
}

func (h *Handler) rename(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		respond.Message(w, h.log, http.StatusBadRequest, "invalid account name")
		return
	}

	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Message(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.RenameAccount(r.Context(), name, req.Name); err != nil {
		respond.Error(w, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		respond.Message(w, h.log, http.StatusBadRequest, "invalid account name")
		return
	}

	if err := h.svc.DeleteAccount(r.Context(), name); err != nil {
		respond.Error(w, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
