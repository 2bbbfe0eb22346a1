// Package pending is the durable FIFO of transaction snapshots waiting to be
// mirrored remotely.
package pending

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/kasbook/internal/ledger"
)

var ErrNotFound = errors.New("pending entry not found")

// Entry is one queued snapshot. Seq is assigned by the store and defines FIFO order.
type Entry struct {
	ID         uuid.UUID
	Seq        int64
	Snapshot   ledger.Snapshot
	EnqueuedAt time.Time
}

//go:generate mockgen -source=pending.go -destination=repository_mock.go -package=pending
type Repository interface {
	Insert(ctx context.Context, e *Entry) error
	// List returns entries by ascending Seq.
	List(ctx context.Context) ([]*Entry, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
}

type Queue struct {
	repo Repository
}

func NewQueue(repo Repository) *Queue {
	return &Queue{repo: repo}
}

func (q *Queue) Enqueue(ctx context.Context, snap ledger.Snapshot) (*Entry, error) {
	e := &Entry{Snapshot: snap}
	if err := q.repo.Insert(ctx, e); err != nil {
		return nil, fmt.Errorf("enqueueing snapshot: %w", err)
	}

	return e, nil
}

func (q *Queue) ListPending(ctx context.Context) ([]*Entry, error) {
	return q.repo.List(ctx)
}

func (q *Queue) Remove(ctx context.Context, id uuid.UUID) error {
	return q.repo.Delete(ctx, id)
}

func (q *Queue) Count(ctx context.Context) (int, error) {
	return q.repo.Count(ctx)
}

func (q *Queue) IsEmpty(ctx context.Context) (bool, error) {
	n, err := q.repo.Count(ctx)
	if err != nil {
		return false, err
	}

	return n == 0, nil
}
