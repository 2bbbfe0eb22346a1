package pending_test

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
	"github.com/MrJamesThe3rd/kasbook/internal/pending"
)

func snapshot(desc string) ledger.Snapshot {
	return ledger.Snapshot{
		Date:        time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Description: desc,
		Account:     "Kas_Kantin",
		Debit:       decimal.NewFromInt(10000),
	}
}

func TestQueue_Enqueue(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(m *pending.MockRepository)
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(m *pending.MockRepository) {
				m.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, e *pending.Entry) error {
						e.ID = uuid.New()
						e.Seq = 1
						e.EnqueuedAt = time.Now()

						return nil
					})
			},
		},
		{
			name: "RepoError",
			setupMock: func(m *pending.MockRepository) {
				m.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := pending.NewMockRepository(ctrl)
			tt.setupMock(repo)

			got, err := pending.NewQueue(repo).Enqueue(context.Background(), snapshot("Jajan"))
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, int64(1), got.Seq)
			want := snapshot("Jajan")
			assert.Equal(t, want.Description, got.Snapshot.Description)
			assert.True(t, want.Date.Equal(got.Snapshot.Date))
			assert.True(t, want.Debit.Equal(got.Snapshot.Debit))
		})
	}
}

func TestQueue_IsEmpty(t *testing.T) {
	type testCase struct {
		name    string
		count   int
		repoErr error
		want    bool
		wantErr bool
	}

	tests := []testCase{
		{name: "Empty", count: 0, want: true},
		{name: "NonEmpty", count: 2, want: false},
		{name: "RepoError", repoErr: errors.New("db error"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := pending.NewMockRepository(ctrl)
			repo.EXPECT().Count(gomock.Any()).Return(tt.count, tt.repoErr)

			got, err := pending.NewQueue(repo).IsEmpty(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQueue_Remove(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()

	repo := pending.NewMockRepository(ctrl)
	repo.EXPECT().Delete(gomock.Any(), id).Return(pending.ErrNotFound)

	err := pending.NewQueue(repo).Remove(context.Background(), id)
	assert.ErrorIs(t, err, pending.ErrNotFound)
}
