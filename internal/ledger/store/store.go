package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/kasbook/internal/ledger"
)

const uniqueViolation = "23505"

// RenameCascade updates rows owned by another store inside the rename transaction.
type RenameCascade func(ctx context.Context, tx *sql.Tx, oldName, newName string) error

type Store struct {
	db       *sql.DB
	cascades []RenameCascade
}

type Option func(*Store)

// WithRenameCascade registers a hook run inside every account rename.
func WithRenameCascade(c RenameCascade) Option {
	return func(s *Store) {
		s.cascades = append(s.cascades, c)
	}
}

func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) CreateAccount(ctx context.Context, a *ledger.Account) error {
	query := `
		INSERT INTO accounts (name, created_at)
		VALUES ($1, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, a.Name).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ledger.ErrDuplicateName
		}

		return fmt.Errorf("creating account: %w", err)
	}

	return nil
}

func (s *Store) GetAccount(ctx context.Context, name string) (*ledger.Account, error) {
	var a ledger.Account

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM accounts WHERE name = $1`, name,
	).Scan(&a.ID, &a.Name, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("getting account: %w", err)
	}

	return &a, nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]*ledger.Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM accounts ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*ledger.Account

	for rows.Next() {
		var a ledger.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}

		accounts = append(accounts, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating accounts: %w", err)
	}

	return accounts, nil
}

func (s *Store) RenameAccount(ctx context.Context, oldName, newName string) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning rename: %w", err)
	}
	defer dbTx.Rollback()

	res, err := dbTx.ExecContext(ctx, `UPDATE accounts SET name = $1 WHERE name = $2`, newName, oldName)
	if err != nil {
		if isUniqueViolation(err) {
			return ledger.ErrDuplicateName
		}

		return fmt.Errorf("renaming account: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rename result: %w", err)
	}

	if n == 0 {
		return ledger.ErrNotFound
	}

	if _, err := dbTx.ExecContext(ctx,
		`UPDATE transactions SET account = $1 WHERE account = $2`, newName, oldName,
	); err != nil {
		return fmt.Errorf("renaming transaction accounts: %w", err)
	}

	for _, cascade := range s.cascades {
		if err := cascade(ctx, dbTx, oldName, newName); err != nil {
			return err
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing rename: %w", err)
	}

	return nil
}

func (s *Store) DeleteAccount(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}

	if n == 0 {
		return ledger.ErrNotFound
	}

	return nil
}

func (s *Store) CountTransactionsByAccount(ctx context.Context, name string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE account = $1`, name,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting transactions: %w", err)
	}

	return n, nil
}

// SeedAccounts inserts names in order, but only while the table is empty. The
// table lock keeps two first runs from both seeding.
func (s *Store) SeedAccounts(ctx context.Context, names []string) (int, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning seed: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, `LOCK TABLE accounts IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return 0, fmt.Errorf("locking accounts: %w", err)
	}

	var exists bool
	if err := dbTx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM accounts)`).Scan(&exists); err != nil {
		return 0, fmt.Errorf("checking accounts: %w", err)
	}

	if exists {
		return 0, nil
	}

	for _, name := range names {
		if _, err := dbTx.ExecContext(ctx, `INSERT INTO accounts (name) VALUES ($1)`, name); err != nil {
			return 0, fmt.Errorf("seeding account %q: %w", name, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("committing seed: %w", err)
	}

	return len(names), nil
}

const selectTransactionColumns = `id, date, description, account, debit, credit, created_at`

// scanTransaction expects selectTransactionColumns order.
func scanTransaction(s scanner) (*ledger.Transaction, error) {
	var tx ledger.Transaction

	if err := s.Scan(
		&tx.ID, &tx.Date, &tx.Description, &tx.Account, &tx.Debit, &tx.Credit, &tx.CreatedAt,
	); err != nil {
		return nil, err
	}

	tx.Date = ledger.DateOf(tx.Date)

	return &tx, nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx *ledger.Transaction) error {
	query := `
		INSERT INTO transactions (date, description, account, debit, credit, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		tx.Date,
		tx.Description,
		tx.Account,
		tx.Debit,
		tx.Credit,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM transactions WHERE id = $1`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

// ListTransactions returns every transaction in insertion order.
func (s *Store) ListTransactions(ctx context.Context) ([]*ledger.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM transactions ORDER BY seq ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*ledger.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return txs, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}

	if n == 0 {
		return ledger.ErrNotFound
	}

	return nil
}
