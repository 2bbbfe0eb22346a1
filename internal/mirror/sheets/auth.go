package sheets

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/MrJamesThe3rd/kasbook/internal/mirror"
)

// Authenticator reads a service-account or authorized-user credentials file
// and opens a Sheets session for one spreadsheet.
type Authenticator struct {
	spreadsheetID   string
	credentialsFile string
	timeout         time.Duration
	opts            []option.ClientOption
}

// NewAuthenticator accepts extra client options, applied after the
// authenticated HTTP client.
func NewAuthenticator(spreadsheetID, credentialsFile string, timeout time.Duration, opts ...option.ClientOption) *Authenticator {
	return &Authenticator{
		spreadsheetID:   spreadsheetID,
		credentialsFile: credentialsFile,
		timeout:         timeout,
		opts:            opts,
	}
}

func (a *Authenticator) Authenticate(ctx context.Context) (mirror.Remote, error) {
	if a.spreadsheetID == "" {
		return nil, fmt.Errorf("%w: no spreadsheet configured", mirror.ErrRemoteValidation)
	}

	data, err := os.ReadFile(a.credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("%w: reading credentials: %w", mirror.ErrAuth, err)
	}

	// The token source refreshes with this context long after the call returns.
	tokenCtx := context.WithoutCancel(ctx)

	creds, err := google.CredentialsFromJSON(tokenCtx, data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing credentials: %w", mirror.ErrAuth, err)
	}

	// Fetching a token up front makes a bad credential fail here instead of
	// on the first append.
	if _, err := creds.TokenSource.Token(); err != nil {
		return nil, classify("fetching token", err)
	}

	client := oauth2.NewClient(tokenCtx, creds.TokenSource)
	client.Timeout = a.timeout

	svc, err := sheets.NewService(ctx, append([]option.ClientOption{option.WithHTTPClient(client)}, a.opts...)...)
	if err != nil {
		return nil, fmt.Errorf("%w: creating sheets service: %w", mirror.ErrAuth, err)
	}

	return NewClient(svc, a.spreadsheetID), nil
}
