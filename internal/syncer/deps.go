package syncer

import (
	"context"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/kasbook/internal/ledger"
	"github.com/MrJamesThe3rd/kasbook/internal/pending"
)

//go:generate mockgen -source=deps.go -destination=deps_mock.go -package=syncer
type Ledger interface {
	AddTransaction(ctx context.Context, params ledger.CreateParams) (*ledger.Transaction, error)
}

type Queue interface {
	Enqueue(ctx context.Context, snap ledger.Snapshot) (*pending.Entry, error)
	ListPending(ctx context.Context) ([]*pending.Entry, error)
	Remove(ctx context.Context, id uuid.UUID) error
	IsEmpty(ctx context.Context) (bool, error)
	Count(ctx context.Context) (int, error)
}

type Mirror interface {
	MirrorTransaction(ctx context.Context, snap ledger.Snapshot) error
}

type Connectivity interface {
	Online() bool
}
