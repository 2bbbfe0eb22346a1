package connectivity

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/MrJamesThe3rd/kasbook/internal/http/respond"
)

// Signal is the reachability flag a host shell can push into.
type Signal interface {
	Online() bool
	Set(online bool) bool
}

type Handler struct {
	signal Signal
	log    logrus.FieldLogger
}

func NewHandler(s Signal, log logrus.FieldLogger) *Handler {
	return &Handler{signal: s, log: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.get)
	r.Put("/", h.set)
}

type connectivityRequest struct {
	Online *bool `json:"online"`
}

type connectivityResponse struct {
	Online  bool `json:"online"`
	Changed bool `json:"changed"`
}

func (h *Handler) get(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, h.log, http.StatusOK, connectivityResponse{Online: h.signal.Online()})
}

func (h *Handler) set(w http.ResponseWriter, r *http.Request) {
	var req connectivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Message(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	if req.Online == nil {
		respond.Message(w, h.log, http.StatusBadRequest, "online is required")
		return
	}

	changed := h.signal.Set(*req.Online)

	respond.JSON(w, h.log, http.StatusOK, connectivityResponse{Online: *req.Online, Changed: changed})
}
