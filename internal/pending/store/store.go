package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/kasbook/internal/ledger"
	"github.com/MrJamesThe3rd/kasbook/internal/pending"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Insert(ctx context.Context, e *pending.Entry) error {
	query := `
		INSERT INTO pending_sync (date, description, account, debit, credit, enqueued_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, seq, enqueued_at
	`

	snap := e.Snapshot

	err := s.db.QueryRowContext(ctx, query,
		snap.Date,
		snap.Description,
		snap.Account,
		snap.Debit,
		snap.Credit,
	).Scan(&e.ID, &e.Seq, &e.EnqueuedAt)
	if err != nil {
		return fmt.Errorf("inserting pending entry: %w", err)
	}

	return nil
}

func (s *Store) List(ctx context.Context) ([]*pending.Entry, error) {
	query := `
		SELECT id, seq, date, description, account, debit, credit, enqueued_at
		FROM pending_sync
		ORDER BY seq ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing pending entries: %w", err)
	}
	defer rows.Close()

	var entries []*pending.Entry

	for rows.Next() {
		var e pending.Entry
		if err := rows.Scan(
			&e.ID, &e.Seq,
			&e.Snapshot.Date, &e.Snapshot.Description, &e.Snapshot.Account,
			&e.Snapshot.Debit, &e.Snapshot.Credit,
			&e.EnqueuedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning pending entry: %w", err)
		}

		e.Snapshot.Date = ledger.DateOf(e.Snapshot.Date)
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pending entries: %w", err)
	}

	return entries, nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pending_sync WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting pending entry: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}

	if n == 0 {
		return pending.ErrNotFound
	}

	return nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_sync`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting pending entries: %w", err)
	}

	return n, nil
}

// RenameAccount rewrites queued snapshots inside the caller's transaction so
// they mirror under the new account name.
func (s *Store) RenameAccount(ctx context.Context, tx *sql.Tx, oldName, newName string) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE pending_sync SET account = $1 WHERE account = $2`, newName, oldName,
	); err != nil {
		return fmt.Errorf("renaming pending accounts: %w", err)
	}

	return nil
}
