package importcsv_test

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/kasbook/internal/http/importcsv"
	"github.com/MrJamesThe3rd/kasbook/internal/importer"
	"github.com/MrJamesThe3rd/kasbook/internal/ledger"
	"github.com/MrJamesThe3rd/kasbook/internal/syncer"
)

type fakeSubmitter struct {
	statuses map[string]syncer.SubmitStatus
	errs     map[string]error
	got      []ledger.CreateParams
}

func (f *fakeSubmitter) Submit(_ context.Context, p ledger.CreateParams) (*syncer.Result, error) {
	if err, ok := f.errs[p.Description]; ok {
		return nil, err
	}

	f.got = append(f.got, p)

	status, ok := f.statuses[p.Description]
	if !ok {
		status = syncer.StatusMirrored
	}

	return &syncer.Result{Transaction: &ledger.Transaction{}, Status: status}, nil
}

func upload(t *testing.T, field, content string) *http.Request {
	t.Helper()

	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "kas.csv")
	require.NoError(t, err)

	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/import/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return req
}

func serve(h *importcsv.Handler, req *http.Request) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Route("/import", h.Routes)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

const sheet = `Date,Month,Year,Description,Account,Debit,Credit
2024-03-01,03,2024,Kopi,Kas,0,25000
2024-03-02,03,2024,Gaji,Bank BCA,2000000,0
2024-03-03,03,2024,Parkir,Dompet,0,5000
2024-03-04,03,2024,Pulsa,Kas,0,50000
`

func TestHandler_Import(t *testing.T) {
	log, _ := test.NewNullLogger()
	sub := &fakeSubmitter{
		statuses: map[string]syncer.SubmitStatus{
			"Gaji":  syncer.StatusQueued,
			"Pulsa": syncer.StatusDeferred,
		},
		errs: map[string]error{
			"Parkir": &ledger.ValidationError{Field: "account", Reason: `unknown account "Dompet"`},
		},
	}

	h := importcsv.NewHandler(importer.NewService(log), sub, log)

	rec := serve(h, upload(t, "file", sheet))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{
		"imported":3,
		"mirrored":1,
		"queued":1,
		"deferred":1,
		"failed":[{"index":3,"error":"invalid account: unknown account \"Dompet\""}]
	}`, rec.Body.String())

	require.Len(t, sub.got, 3)
	assert.Equal(t, "Kopi", sub.got[0].Description)
	assert.Equal(t, "Pulsa", sub.got[2].Description)
}

func TestHandler_ImportErrors(t *testing.T) {
	testCases := []struct {
		name     string
		req      func(t *testing.T) *http.Request
		sub      *fakeSubmitter
		wantCode int
	}{
		{
			name: "not multipart",
			req: func(*testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/import/", bytes.NewBufferString("x"))
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "wrong field",
			req: func(t *testing.T) *http.Request {
				return upload(t, "upload", sheet)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "bad header",
			req: func(t *testing.T) *http.Request {
				return upload(t, "file", "Foo,Bar\n1,2\n")
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "storage failure",
			req: func(t *testing.T) *http.Request {
				return upload(t, "file", sheet)
			},
			sub:      &fakeSubmitter{errs: map[string]error{"Kopi": errors.New("connection reset")}},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			log, _ := test.NewNullLogger()

			sub := tc.sub
			if sub == nil {
				sub = &fakeSubmitter{}
			}

			h := importcsv.NewHandler(importer.NewService(log), sub, log)
			rec := serve(h, tc.req(t))

			assert.Equal(t, tc.wantCode, rec.Code)
		})
	}
}
