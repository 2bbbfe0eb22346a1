package importcsv

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/MrJamesThe3rd/kasbook/internal/http/respond"
	"github.com/MrJamesThe3rd/kasbook/internal/ledger"
	"github.com/MrJamesThe3rd/kasbook/internal/syncer"
)

const maxUpload = 10 << 20

type Parser interface {
	Parse(r io.Reader) ([]ledger.CreateParams, error)
}

type Submitter interface {
	Submit(ctx context.Context, params ledger.CreateParams) (*syncer.Result, error)
}

type Handler struct {
	parser Parser
	sync   Submitter
	log    logrus.FieldLogger
}

func NewHandler(p Parser, s Submitter, log logrus.FieldLogger) *Handler {
	return &Handler{parser: p, sync: s, log: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
}

type rowFailure struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

type importResponse struct {
	Imported int          `json:"imported"`
	Mirrored int          `json:"mirrored"`
	Queued   int          `json:"queued"`
	Deferred int          `json:"deferred"`
	Failed   []rowFailure `json:"failed,omitempty"`
}

// importCSV parses the whole file before submitting anything. Rows the ledger
// rejects are reported and skipped; a storage failure stops the import.
func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		respond.Message(w, h.log, http.StatusBadRequest, "failed to parse form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Message(w, h.log, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	params, err := h.parser.Parse(file)
	if err != nil {
		respond.Message(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	var resp importResponse

	for i, p := range params {
		res, err := h.sync.Submit(r.Context(), p)
		if err != nil {
			if errors.Is(err, ledger.ErrValidation) {
				resp.Failed = append(resp.Failed, rowFailure{Index: i + 1, Error: err.Error()})
				continue
			}

			respond.Error(w, h.log, err)

			return
		}

		resp.Imported++

		switch res.Status {
		case syncer.StatusMirrored:
			resp.Mirrored++
		case syncer.StatusQueued:
			resp.Queued++
		case syncer.StatusDeferred:
			resp.Deferred++
		}
	}

	h.log.WithFields(logrus.Fields{
		"imported": resp.Imported,
		"failed":   len(resp.Failed),
	}).Info("csv import finished")

	respond.JSON(w, h.log, http.StatusCreated, resp)
}
