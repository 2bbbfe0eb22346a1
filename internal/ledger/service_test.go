package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/kasbook/internal/ledger"
)

func TestService_AddAccount(t *testing.T) {
	type testCase struct {
		name      string
		input     string
		setupMock func(m *ledger.MockRepository)
		wantName  string
		wantErr   error
	}

	tests := []testCase{
		{
			name:  "Success",
			input: "  Kas_Kantin ",
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().
					CreateAccount(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, a *ledger.Account) error {
						a.ID = uuid.New()
						return nil
					})
			},
			wantName: "Kas_Kantin",
		},
		{
			name:    "EmptyName",
			input:   "   ",
			wantErr: ledger.ErrEmptyName,
		},
		{
			name:  "Duplicate",
			input: "BCA",
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().
					CreateAccount(gomock.Any(), gomock.Any()).
					Return(ledger.ErrDuplicateName)
			},
			wantErr: ledger.ErrDuplicateName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := ledger.NewService(repo)
			got, err := svc.AddAccount(context.Background(), tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantName, got.Name)
			assert.NotEqual(t, uuid.Nil, got.ID)
		})
	}
}

func TestService_RenameAccount(t *testing.T) {
	type testCase struct {
		name      string
		oldName   string
		newName   string
		setupMock func(m *ledger.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name:    "Success",
			oldName: "Kas_Kantin",
			newName: "Kas_Kantin_Baru",
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().RenameAccount(gomock.Any(), "Kas_Kantin", "Kas_Kantin_Baru").Return(nil)
			},
		},
		{
			name:    "EmptyNewName",
			oldName: "BCA",
			newName: " ",
			wantErr: ledger.ErrEmptyName,
		},
		{
			name:    "SameNameChecksExistence",
			oldName: "BCA",
			newName: "BCA",
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().GetAccount(gomock.Any(), "BCA").Return(&ledger.Account{Name: "BCA"}, nil)
			},
		},
		{
			name:    "Missing",
			oldName: "Nope",
			newName: "Other",
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().RenameAccount(gomock.Any(), "Nope", "Other").Return(ledger.ErrNotFound)
			},
			wantErr: ledger.ErrNotFound,
		},
		{
			name:    "TargetTaken",
			oldName: "BCA",
			newName: "Lomba",
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().RenameAccount(gomock.Any(), "BCA", "Lomba").Return(ledger.ErrDuplicateName)
			},
			wantErr: ledger.ErrDuplicateName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			err := ledger.NewService(repo).RenameAccount(context.Background(), tt.oldName, tt.newName)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_DeleteAccount(t *testing.T) {
	type testCase struct {
		name      string
		policy    ledger.DeletePolicy
		setupMock func(m *ledger.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name:   "AllowIgnoresReferences",
			policy: ledger.DeleteAllow,
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().DeleteAccount(gomock.Any(), "Lomba").Return(nil)
			},
		},
		{
			name:   "RestrictRefusesReferenced",
			policy: ledger.DeleteRestrict,
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().CountTransactionsByAccount(gomock.Any(), "Lomba").Return(3, nil)
			},
			wantErr: ledger.ErrAccountInUse,
		},
		{
			name:   "RestrictAllowsUnreferenced",
			policy: ledger.DeleteRestrict,
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().CountTransactionsByAccount(gomock.Any(), "Lomba").Return(0, nil)
				m.EXPECT().DeleteAccount(gomock.Any(), "Lomba").Return(nil)
			},
		},
		{
			name:   "Missing",
			policy: ledger.DeleteAllow,
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().DeleteAccount(gomock.Any(), "Lomba").Return(ledger.ErrNotFound)
			},
			wantErr: ledger.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			tt.setupMock(repo)

			svc := ledger.NewService(repo, ledger.WithDeletePolicy(tt.policy))

			err := svc.DeleteAccount(context.Background(), "Lomba")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_SeedDefaultAccounts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	repo.EXPECT().
		SeedAccounts(gomock.Any(), []string{"Kas_Kantin", "BCA"}).
		Return(2, nil)

	n, err := ledger.NewService(repo).SeedDefaultAccounts(context.Background(), []string{" Kas_Kantin", "", "BCA", "Kas_Kantin"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestService_SeedDefaultAccounts_NothingToSeed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	n, err := ledger.NewService(ledger.NewMockRepository(ctrl)).SeedDefaultAccounts(context.Background(), []string{" ", ""})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestService_AddTransaction(t *testing.T) {
	day := time.Date(2024, 3, 15, 13, 45, 0, 0, time.UTC)

	valid := ledger.CreateParams{
		Date:        day,
		Description: "  Beli spidol ",
		Account:     "Kas_Sekolah",
		Debit:       decimal.NewFromInt(25000),
	}

	knownAccount := func(m *ledger.MockRepository) {
		m.EXPECT().GetAccount(gomock.Any(), "Kas_Sekolah").Return(&ledger.Account{Name: "Kas_Sekolah"}, nil)
	}

	type testCase struct {
		name      string
		params    func() ledger.CreateParams
		setupMock func(m *ledger.MockRepository)
		wantField string
		wantErr   bool
	}

	tests := []testCase{
		{
			name:   "Success",
			params: func() ledger.CreateParams { return valid },
			setupMock: func(m *ledger.MockRepository) {
				knownAccount(m)
				m.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *ledger.Transaction) error {
						tx.ID = uuid.New()
						return nil
					})
			},
		},
		{
			name: "MissingDate",
			params: func() ledger.CreateParams {
				p := valid
				p.Date = time.Time{}

				return p
			},
			wantField: "date",
		},
		{
			name: "MissingAccount",
			params: func() ledger.CreateParams {
				p := valid
				p.Account = " "

				return p
			},
			wantField: "account",
		},
		{
			name: "NegativeDebit",
			params: func() ledger.CreateParams {
				p := valid
				p.Debit = decimal.NewFromInt(-1)

				return p
			},
			wantField: "debit",
		},
		{
			name: "NegativeCredit",
			params: func() ledger.CreateParams {
				p := valid
				p.Credit = decimal.NewFromInt(-1)

				return p
			},
			wantField: "credit",
		},
		{
			name:   "UnknownAccount",
			params: func() ledger.CreateParams { return valid },
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().GetAccount(gomock.Any(), "Kas_Sekolah").Return(nil, ledger.ErrNotFound)
			},
			wantField: "account",
		},
		{
			name:   "RepoError",
			params: func() ledger.CreateParams { return valid },
			setupMock: func(m *ledger.MockRepository) {
				knownAccount(m)
				m.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := ledger.NewService(repo).AddTransaction(context.Background(), tt.params())

			if tt.wantField != "" {
				var verr *ledger.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.wantField, verr.Field)
				assert.ErrorIs(t, err, ledger.ErrValidation)
				assert.Nil(t, got)

				return
			}

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), got.Date)
			assert.Equal(t, "Beli spidol", got.Description)
			assert.Equal(t, time.March, got.Month())
			assert.Equal(t, 2024, got.Year())
			assert.True(t, got.Credit.IsZero())
		})
	}
}

func TestTransaction_Snapshot(t *testing.T) {
	tx := &ledger.Transaction{
		ID:          uuid.New(),
		Date:        time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Description: "Iuran",
		Account:     "BCA",
		Credit:      decimal.RequireFromString("150000.50"),
	}

	snap := tx.Snapshot()
	tx.Description = "changed"

	assert.Equal(t, "Iuran", snap.Description)
	assert.Equal(t, "01", snap.MonthString())
	assert.Equal(t, 2024, snap.Year())
	assert.Equal(t, "changed", tx.Snapshot().Description)
}
