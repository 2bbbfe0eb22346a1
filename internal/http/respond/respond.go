// Package respond writes JSON bodies and maps domain errors to status codes.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/MrJamesThe3rd/kasbook/internal/importer"
	"github.com/MrJamesThe3rd/kasbook/internal/ledger"
	"github.com/MrJamesThe3rd/kasbook/internal/mirror"
	"github.com/MrJamesThe3rd/kasbook/internal/pending"
)

type errorResponse struct {
	Error string `json:"error"`
}

func JSON(w http.ResponseWriter, log logrus.FieldLogger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("failed to encode response")
	}
}

func Message(w http.ResponseWriter, log logrus.FieldLogger, status int, msg string) {
	JSON(w, log, status, errorResponse{Error: msg})
}

// Error picks a status for err. Unrecognized errors are logged and reported
// as a bare 500 so internals do not leak.
func Error(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
		Message(w, log, status, "internal error")

		return
	}

	Message(w, log, status, err.Error())
}

func StatusOf(err error) int {
	var rowErr *importer.RowError

	switch {
	case errors.Is(err, ledger.ErrValidation),
		errors.Is(err, ledger.ErrEmptyName),
		errors.Is(err, importer.ErrHeader),
		errors.As(err, &rowErr):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrNotFound), errors.Is(err, pending.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrDuplicateName), errors.Is(err, ledger.ErrAccountInUse):
		return http.StatusConflict
	case errors.Is(err, mirror.ErrRemoteValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, mirror.ErrAuth):
		return http.StatusBadGateway
	case errors.Is(err, mirror.ErrRemoteUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
