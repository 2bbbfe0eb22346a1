package connectivity_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"

	conn "github.com/MrJamesThe3rd/kasbook/internal/connectivity"
	"github.com/MrJamesThe3rd/kasbook/internal/http/connectivity"
)

func TestHandler(t *testing.T) {
	log, _ := test.NewNullLogger()
	monitor := conn.NewMonitor(false, log)

	router := chi.NewRouter()
	router.Route("/connectivity", connectivity.NewHandler(monitor, log).Routes)

	do := func(method, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(method, "/connectivity/", strings.NewReader(body)))

		return rec
	}

	rec := do(http.MethodGet, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"online":false,"changed":false}`, rec.Body.String())

	rec = do(http.MethodPut, `{"online":true}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"online":true,"changed":true}`, rec.Body.String())
	assert.True(t, monitor.Online())

	rec = do(http.MethodPut, `{"online":true}`)
	assert.JSONEq(t, `{"online":true,"changed":false}`, rec.Body.String())

	rec = do(http.MethodPut, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(http.MethodPut, `nope`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
