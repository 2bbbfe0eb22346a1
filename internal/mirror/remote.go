package mirror

import (
	"context"
	"errors"
)

var (
	// ErrRemoteUnavailable covers network failures, timeouts, throttling and server errors.
	ErrRemoteUnavailable = errors.New("remote unavailable")
	// ErrAuth means the credential was rejected or could not be obtained.
	ErrAuth = errors.New("remote authentication failed")
	// ErrRemoteValidation means the remote refused the payload or the namespace name.
	ErrRemoteValidation = errors.New("remote rejected request")
)

// Header is the first row of every namespace.
var Header = []string{"Date", "Month", "Year", "Description", "Account", "Debit", "Credit"}

// legacyHeader is what tabs created by the earlier browser app start with.
var legacyHeader = []string{"Tanggal", "Bulan", "Tahun", "Keterangan", "Akun", "Debit", "Kredit"}

// Remote is a spreadsheet-like store. CreateNamespace must also succeed for a
// namespace that already exists, writing header into it when it has no rows.
//
//go:generate mockgen -source=remote.go -destination=remote_mock.go -package=mirror
type Remote interface {
	ListNamespaces(ctx context.Context) ([]string, error)
	CreateNamespace(ctx context.Context, name string, header []string) error
	AppendRows(ctx context.Context, name string, rows [][]string) error
	ListRows(ctx context.Context, name string) ([][]string, error)
}

// Authenticator exchanges the stored credential for a session.
type Authenticator interface {
	Authenticate(ctx context.Context) (Remote, error)
}
