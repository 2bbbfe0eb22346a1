package account_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/kasbook/internal/http/account"
	"github.com/MrJamesThe3rd/kasbook/internal/ledger"
)

func TestHandler(t *testing.T) {
	created := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	id := uuid.MustParse("5f0c6c1e-7a52-4c3b-9f57-2b8f4a3c1d10")

	type testCase struct {
		name      string
		method    string
		path      string
		body      string
		policy    ledger.DeletePolicy
		setupMock func(m *ledger.MockRepository)
		wantCode  int
		wantBody  string
	}

	tests := []testCase{
		{
			name:   "List",
			method: http.MethodGet,
			path:   "/accounts/",
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().ListAccounts(gomock.Any()).Return([]*ledger.Account{
					{ID: id, Name: "Kas", CreatedAt: created},
				}, nil)
			},
			wantCode: http.StatusOK,
			wantBody: `[{"id":"5f0c6c1e-7a52-4c3b-9f57-2b8f4a3c1d10","name":"Kas","created_at":"2024-03-01T08:00:00Z"}]`,
		},
		{
			name:   "Create",
			method: http.MethodPost,
			path:   "/accounts/",
			body:   `{"name":" Bank BCA "}`,
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().
					CreateAccount(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, a *ledger.Account) error {
						a.ID = id
						a.CreatedAt = created
						return nil
					})
			},
			wantCode: http.StatusCreated,
			wantBody: `{"id":"5f0c6c1e-7a52-4c3b-9f57-2b8f4a3c1d10","name":"Bank BCA","created_at":"2024-03-01T08:00:00Z"}`,
		},
		{
			name:     "CreateEmptyName",
			method:   http.MethodPost,
			path:     "/accounts/",
			body:     `{"name":"  "}`,
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":"account name is empty"}`,
		},
		{
			name:     "CreateMalformedBody",
			method:   http.MethodPost,
			path:     "/accounts/",
			body:     `{`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:   "CreateDuplicate",
			method: http.MethodPost,
			path:   "/accounts/",
			body:   `{"name":"Kas"}`,
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).Return(ledger.ErrDuplicateName)
			},
			wantCode: http.StatusConflict,
		},
		{
			name:   "RenameEscapedName",
			method: http.MethodPut,
			path:   "/accounts/Bank%20BCA",
			body:   `{"name":"BCA"}`,
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().RenameAccount(gomock.Any(), "Bank BCA", "BCA").Return(nil)
			},
			wantCode: http.StatusNoContent,
		},
		{
			name:   "RenameUnknown",
			method: http.MethodPut,
			path:   "/accounts/Ghost",
			body:   `{"name":"Spirit"}`,
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().RenameAccount(gomock.Any(), "Ghost", "Spirit").Return(ledger.ErrNotFound)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name:   "Delete",
			method: http.MethodDelete,
			path:   "/accounts/Kas",
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().DeleteAccount(gomock.Any(), "Kas").Return(nil)
			},
			wantCode: http.StatusNoContent,
		},
		{
			name:   "DeleteRestricted",
			method: http.MethodDelete,
			path:   "/accounts/Kas",
			policy: ledger.DeleteRestrict,
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().CountTransactionsByAccount(gomock.Any(), "Kas").Return(2, nil)
			},
			wantCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := ledger.NewMockRepository(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			policy := tt.policy
			if policy == "" {
				policy = ledger.DeleteAllow
			}

			log, _ := test.NewNullLogger()
			h := account.NewHandler(ledger.NewService(repo, ledger.WithDeletePolicy(policy)), log)

			router := chi.NewRouter()
			router.Route("/accounts", h.Routes)

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)

			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}
