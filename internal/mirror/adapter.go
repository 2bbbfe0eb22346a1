// Package mirror appends ledger snapshots to a remote spreadsheet-like store,
// one namespace per account.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/MrJamesThe3rd/kasbook/internal/ledger"
	"github.com/MrJamesThe3rd/kasbook/internal/logging"
)

type Adapter struct {
	auth Authenticator
	log  logrus.FieldLogger

	mu      sync.Mutex
	session Remote
	known   map[string]string
}

func NewAdapter(auth Authenticator, log logrus.FieldLogger) *Adapter {
	return &Adapter{
		auth: auth,
		log:  logging.Component(log, "mirror"),
	}
}

// Row renders a snapshot in Header order.
func Row(s ledger.Snapshot) []string {
	return []string{
		s.Date.Format(time.DateOnly),
		s.MonthString(),
		strconv.Itoa(s.Year()),
		s.Description,
		s.Account,
		s.Debit.String(),
		s.Credit.String(),
	}
}

// EnsureNamespace creates the account's namespace with Header if it does not exist yet.
func (a *Adapter) EnsureNamespace(ctx context.Context, account string) error {
	ns, err := Namespace(account)
	if err != nil {
		return err
	}

	r, err := a.remote(ctx)
	if err != nil {
		return err
	}

	_, err = a.ensure(ctx, r, ns)

	return err
}

// MirrorTransaction appends one row for the snapshot to its account's namespace.
func (a *Adapter) MirrorTransaction(ctx context.Context, snap ledger.Snapshot) error {
	ns, err := Namespace(snap.Account)
	if err != nil {
		return err
	}

	r, err := a.remote(ctx)
	if err != nil {
		return err
	}

	title, err := a.ensure(ctx, r, ns)
	if err != nil {
		return err
	}

	if err := r.AppendRows(ctx, title, [][]string{Row(snap)}); err != nil {
		if errors.Is(err, ErrRemoteValidation) {
			// The tab may have been deleted or renamed remotely.
			a.forget(ns)
		}

		return a.observe(fmt.Errorf("appending to %q: %w", title, err))
	}

	a.log.WithFields(logrus.Fields{
		logging.FieldNamespace: title,
		logging.FieldAccount:   snap.Account,
	}).Debug("row mirrored")

	return nil
}

// Rows reads back the data rows of an account's namespace, without the header.
func (a *Adapter) Rows(ctx context.Context, account string) ([][]string, error) {
	ns, err := Namespace(account)
	if err != nil {
		return nil, err
	}

	r, err := a.remote(ctx)
	if err != nil {
		return nil, err
	}

	title := a.title(ns)

	rows, err := r.ListRows(ctx, title)
	if err != nil {
		return nil, a.observe(fmt.Errorf("reading %q: %w", title, err))
	}

	if len(rows) > 0 && isHeader(rows[0]) {
		rows = rows[1:]
	}

	return rows, nil
}

// NamespaceRows holds the data rows read back from one namespace.
type NamespaceRows struct {
	Namespace string
	Rows      [][]string
}

// AllRows reads back every namespace whose first row is a ledger header.
// Other tabs, such as a spreadsheet's default sheet, are skipped.
func (a *Adapter) AllRows(ctx context.Context) ([]NamespaceRows, error) {
	r, err := a.remote(ctx)
	if err != nil {
		return nil, err
	}

	names, err := r.ListNamespaces(ctx)
	if err != nil {
		return nil, a.observe(fmt.Errorf("listing namespaces: %w", err))
	}

	out := make([]NamespaceRows, 0, len(names))

	for _, ns := range names {
		rows, err := r.ListRows(ctx, ns)
		if err != nil {
			return nil, a.observe(fmt.Errorf("reading %q: %w", ns, err))
		}

		if len(rows) == 0 || !isHeader(rows[0]) {
			continue
		}

		out = append(out, NamespaceRows{Namespace: ns, Rows: rows[1:]})
	}

	return out, nil
}

func (a *Adapter) remote(ctx context.Context) (Remote, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session != nil {
		return a.session, nil
	}

	r, err := a.auth.Authenticate(ctx)
	if err != nil {
		if !isClassified(err) {
			err = fmt.Errorf("%w: %w", ErrAuth, err)
		}

		return nil, fmt.Errorf("authenticating: %w", err)
	}

	a.log.Info("remote session established")

	a.session = r
	a.known = make(map[string]string)

	return r, nil
}

// ensure returns the remote title of namespace ns, creating it when missing.
// Titles match case-insensitively, as they do on the remote.
func (a *Adapter) ensure(ctx context.Context, r Remote, ns string) (string, error) {
	a.mu.Lock()
	title, ok := a.known[foldName(ns)]
	a.mu.Unlock()

	if ok {
		return title, nil
	}

	names, err := r.ListNamespaces(ctx)
	if err != nil {
		return "", a.observe(fmt.Errorf("listing namespaces: %w", err))
	}

	i := slices.IndexFunc(names, func(n string) bool { return strings.EqualFold(n, ns) })

	if i < 0 {
		if err := r.CreateNamespace(ctx, ns, Header); err != nil {
			return "", a.observe(fmt.Errorf("creating namespace %q: %w", ns, err))
		}

		a.log.WithField(logging.FieldNamespace, ns).Info("namespace created")

		title = ns
	} else {
		title = names[i]

		if title != ns {
			a.log.WithFields(logrus.Fields{
				logging.FieldNamespace: title,
				"requested":            ns,
			}).Warn("namespace shared by accounts differing only in case")
		}

		if err := a.repairHeader(ctx, r, title); err != nil {
			return "", err
		}
	}

	a.mu.Lock()
	if a.known != nil {
		a.known[foldName(ns)] = title
	}
	a.mu.Unlock()

	return title, nil
}

// repairHeader writes Header into an existing namespace that has no rows,
// which happens when an earlier create failed after adding the tab.
func (a *Adapter) repairHeader(ctx context.Context, r Remote, title string) error {
	rows, err := r.ListRows(ctx, title)
	if err != nil {
		return a.observe(fmt.Errorf("reading %q: %w", title, err))
	}

	if len(rows) > 0 {
		return nil
	}

	if err := r.CreateNamespace(ctx, title, Header); err != nil {
		return a.observe(fmt.Errorf("writing header to %q: %w", title, err))
	}

	a.log.WithField(logging.FieldNamespace, title).Warn("namespace header restored")

	return nil
}

func (a *Adapter) title(ns string) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if t, ok := a.known[foldName(ns)]; ok {
		return t
	}

	return ns
}

func (a *Adapter) forget(ns string) {
	a.mu.Lock()
	delete(a.known, foldName(ns))
	a.mu.Unlock()
}

// observe drops the cached session when the remote rejected the credential.
func (a *Adapter) observe(err error) error {
	if errors.Is(err, ErrAuth) {
		a.mu.Lock()
		a.session = nil
		a.known = nil
		a.mu.Unlock()

		a.log.WithError(err).Warn("remote session invalidated")
	}

	return err
}

func foldName(ns string) string {
	return strings.ToLower(ns)
}

func isHeader(row []string) bool {
	return slices.Equal(row, Header) || slices.Equal(row, legacyHeader)
}

func isClassified(err error) bool {
	return errors.Is(err, ErrAuth) || errors.Is(err, ErrRemoteUnavailable) || errors.Is(err, ErrRemoteValidation)
}
