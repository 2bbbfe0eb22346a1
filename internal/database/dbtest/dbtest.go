// Package dbtest opens an isolated PostgreSQL schema for store tests.
package dbtest

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/kasbook/internal/database"
)

const EnvURL = "KASBOOK_TEST_DATABASE_URL"

// Open skips the test unless EnvURL is set. Otherwise it creates a fresh
// schema, migrates it and drops it on cleanup. The returned reopen func opens a
// second pool onto the same schema.
func Open(t *testing.T) (db *sql.DB, reopen func() *sql.DB) {
	t.Helper()

	raw := os.Getenv(EnvURL)
	if raw == "" {
		t.Skip(EnvURL + " not set")
	}

	ctx := context.Background()

	admin, err := database.New(ctx, raw)
	require.NoError(t, err)
	t.Cleanup(func() { admin.Close() })

	schema := "kasbook_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	_, err = admin.ExecContext(ctx, fmt.Sprintf(`CREATE SCHEMA %s`, schema))
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = admin.ExecContext(context.Background(), fmt.Sprintf(`DROP SCHEMA %s CASCADE`, schema))
	})

	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	q.Set("search_path", schema)
	u.RawQuery = q.Encode()

	reopen = func() *sql.DB {
		conn, err := database.New(ctx, u.String())
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })

		return conn
	}

	db = reopen()
	require.NoError(t, database.Migrate(ctx, db))

	return db, reopen
}
