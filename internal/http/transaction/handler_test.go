package transaction_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/kasbook/internal/http/transaction"
	"github.com/MrJamesThe3rd/kasbook/internal/ledger"
	"github.com/MrJamesThe3rd/kasbook/internal/pending"
	"github.com/MrJamesThe3rd/kasbook/internal/syncer"
)

type fakeLedger struct {
	txs     []*ledger.Transaction
	deleted []uuid.UUID
}

func (f *fakeLedger) ListTransactions(context.Context) ([]*ledger.Transaction, error) {
	return f.txs, nil
}

func (f *fakeLedger) GetTransaction(_ context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	for _, tx := range f.txs {
		if tx.ID == id {
			return tx, nil
		}
	}

	return nil, ledger.ErrNotFound
}

func (f *fakeLedger) DeleteTransaction(_ context.Context, id uuid.UUID) error {
	if _, err := f.GetTransaction(context.Background(), id); err != nil {
		return err
	}

	f.deleted = append(f.deleted, id)

	return nil
}

type submitFunc func(ctx context.Context, p ledger.CreateParams) (*syncer.Result, error)

func (f submitFunc) Submit(ctx context.Context, p ledger.CreateParams) (*syncer.Result, error) {
	return f(ctx, p)
}

var (
	txID = uuid.MustParse("0b8e6f0e-4a8f-4b8e-9d7c-6b0a1f2e3d4c")
	kopi = &ledger.Transaction{
		ID:          txID,
		Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Description: "Kopi Gayo",
		Account:     "Kas",
		Credit:      decimal.NewFromInt(25000),
		CreatedAt:   time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
	}
)

func serve(t *testing.T, h *transaction.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	router := chi.NewRouter()
	router.Route("/transactions", h.Routes)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))

	return rec
}

func TestHandler_Create(t *testing.T) {
	entryID := uuid.New()

	type testCase struct {
		name     string
		body     string
		submit   submitFunc
		wantCode int
		check    func(t *testing.T, body []byte)
	}

	tests := []testCase{
		{
			name: "Mirrored",
			body: `{"date":"2024-03-01","description":"Kopi Gayo","account":"Kas","credit":"25000"}`,
			submit: func(_ context.Context, p ledger.CreateParams) (*syncer.Result, error) {
				assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), p.Date)
				assert.True(t, p.Credit.Equal(decimal.NewFromInt(25000)))
				assert.True(t, p.Debit.IsZero())

				return &syncer.Result{Transaction: kopi, Status: syncer.StatusMirrored, Message: "synced to remote"}, nil
			},
			wantCode: http.StatusCreated,
			check: func(t *testing.T, body []byte) {
				var got map[string]any
				require.NoError(t, json.Unmarshal(body, &got))

				assert.Equal(t, "mirrored", got["sync_status"])
				assert.Equal(t, "synced to remote", got["message"])
				assert.NotContains(t, got, "entry_id")

				tx := got["transaction"].(map[string]any)
				assert.Equal(t, "2024-03-01", tx["date"])
				assert.Equal(t, "03", tx["month"])
				assert.Equal(t, "2024", tx["year"])
				assert.Equal(t, "25000", tx["credit"])
			},
		},
		{
			name: "QueuedCarriesEntry",
			body: `{"date":"2024-03-01","account":"Kas","debit":10}`,
			submit: func(context.Context, ledger.CreateParams) (*syncer.Result, error) {
				return &syncer.Result{
					Transaction: kopi,
					Status:      syncer.StatusQueued,
					Entry:       &pending.Entry{ID: entryID},
					Message:     "saved offline, will sync when online",
				}, nil
			},
			wantCode: http.StatusCreated,
			check: func(t *testing.T, body []byte) {
				var got map[string]any
				require.NoError(t, json.Unmarshal(body, &got))

				assert.Equal(t, "queued", got["sync_status"])
				assert.Equal(t, entryID.String(), got["entry_id"])
			},
		},
		{
			name: "ValidationError",
			body: `{"account":"Kas"}`,
			submit: func(context.Context, ledger.CreateParams) (*syncer.Result, error) {
				return nil, &ledger.ValidationError{Field: "date", Reason: "required"}
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "BadDate",
			body:     `{"date":"01/03/2024","account":"Kas"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "MalformedBody",
			body:     `[`,
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submit := tt.submit
			if submit == nil {
				submit = func(context.Context, ledger.CreateParams) (*syncer.Result, error) {
					t.Fatal("submit must not be called")
					return nil, nil
				}
			}

			log, _ := test.NewNullLogger()
			h := transaction.NewHandler(&fakeLedger{}, submit, log)

			rec := serve(t, h, http.MethodPost, "/transactions/", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)

			if tt.check != nil {
				tt.check(t, rec.Body.Bytes())
			}
		})
	}
}

func TestHandler_ListGetDelete(t *testing.T) {
	other := &ledger.Transaction{ID: uuid.New(), Date: kopi.Date, Account: "Bank BCA"}
	l := &fakeLedger{txs: []*ledger.Transaction{kopi, other}}

	log, _ := test.NewNullLogger()
	h := transaction.NewHandler(l, nil, log)

	rec := serve(t, h, http.MethodGet, "/transactions/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var all []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 2)

	rec = serve(t, h, http.MethodGet, "/transactions/?account=Kas", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var filtered []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &filtered))
	require.Len(t, filtered, 1)
	assert.Equal(t, txID.String(), filtered[0]["id"])

	rec = serve(t, h, http.MethodGet, "/transactions/"+txID.String(), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, h, http.MethodGet, "/transactions/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, h, http.MethodGet, "/transactions/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, h, http.MethodDelete, "/transactions/"+txID.String(), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []uuid.UUID{txID}, l.deleted)
}
