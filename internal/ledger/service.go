package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	CreateAccount(ctx context.Context, a *Account) error
	GetAccount(ctx context.Context, name string) (*Account, error)
	ListAccounts(ctx context.Context) ([]*Account, error)
	// RenameAccount renames the account and every reference to it in one unit.
	RenameAccount(ctx context.Context, oldName, newName string) error
	DeleteAccount(ctx context.Context, name string) error
	CountTransactionsByAccount(ctx context.Context, name string) (int, error)
	// SeedAccounts inserts names only when no account exists yet and returns how many were inserted.
	SeedAccounts(ctx context.Context, names []string) (int, error)

	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ListTransactions(ctx context.Context) ([]*Transaction, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo         Repository
	deletePolicy DeletePolicy
}

type Option func(*Service)

// WithDeletePolicy overrides the default DeleteAllow policy.
func WithDeletePolicy(p DeletePolicy) Option {
	return func(s *Service) {
		s.deletePolicy = p
	}
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, deletePolicy: DeleteAllow}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Service) AddAccount(ctx context.Context, name string) (*Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	a := &Account{Name: name}
	if err := s.repo.CreateAccount(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

func (s *Service) ListAccounts(ctx context.Context) ([]*Account, error) {
	return s.repo.ListAccounts(ctx)
}

// RenameAccount changes an account's name and cascades the new name to every
// transaction and queued snapshot that referenced the old one.
func (s *Service) RenameAccount(ctx context.Context, oldName, newName string) error {
	oldName = strings.TrimSpace(oldName)
	newName = strings.TrimSpace(newName)

	if newName == "" {
		return ErrEmptyName
	}

	if oldName == newName {
		_, err := s.repo.GetAccount(ctx, oldName)
		return err
	}

	return s.repo.RenameAccount(ctx, oldName, newName)
}

func (s *Service) DeleteAccount(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)

	if s.deletePolicy == DeleteRestrict {
		n, err := s.repo.CountTransactionsByAccount(ctx, name)
		if err != nil {
			return fmt.Errorf("counting references: %w", err)
		}

		if n > 0 {
			return fmt.Errorf("%w: %d transactions use %q", ErrAccountInUse, n, name)
		}
	}

	return s.repo.DeleteAccount(ctx, name)
}

// SeedDefaultAccounts populates the account list on first run. It is a no-op
// once any account exists.
func (s *Service) SeedDefaultAccounts(ctx context.Context, names []string) (int, error) {
	seen := make(map[string]struct{}, len(names))

	var clean []string

	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}

		if _, dup := seen[n]; dup {
			continue
		}

		seen[n] = struct{}{}
		clean = append(clean, n)
	}

	if len(clean) == 0 {
		return 0, nil
	}

	return s.repo.SeedAccounts(ctx, clean)
}

func (s *Service) AddTransaction(ctx context.Context, params CreateParams) (*Transaction, error) {
	if err := s.validate(ctx, &params); err != nil {
		return nil, err
	}

	tx := &Transaction{
		Date:        DateOf(params.Date),
		Description: params.Description,
		Account:     params.Account,
		Debit:       params.Debit,
		Credit:      params.Credit,
	}
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

func (s *Service) validate(ctx context.Context, p *CreateParams) error {
	p.Account = strings.TrimSpace(p.Account)
	p.Description = strings.TrimSpace(p.Description)

	switch {
	case p.Date.IsZero():
		return &ValidationError{Field: "date", Reason: "required"}
	case p.Account == "":
		return &ValidationError{Field: "account", Reason: "required"}
	case p.Debit.IsNegative():
		return &ValidationError{Field: "debit", Reason: "must not be negative"}
	case p.Credit.IsNegative():
		return &ValidationError{Field: "credit", Reason: "must not be negative"}
	}

	if _, err := s.repo.GetAccount(ctx, p.Account); err != nil {
		if errors.Is(err, ErrNotFound) {
			return &ValidationError{Field: "account", Reason: fmt.Sprintf("unknown account %q", p.Account)}
		}

		return fmt.Errorf("looking up account: %w", err)
	}

	return nil
}

func (s *Service) ListTransactions(ctx context.Context) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx)
}

func (s *Service) GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

// DeleteTransaction removes the local record only. Queued snapshots and
// mirrored rows are left alone.
func (s *Service) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteTransaction(ctx, id)
}
