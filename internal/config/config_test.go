package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/kasbook/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, []string{"Kas_Kantin", "Kas_Sekolah", "BCA", "Lomba", "Operasional"}, cfg.Ledger.DefaultAccounts)
	assert.Equal(t, "allow", cfg.Ledger.AccountDeletePolicy)
	assert.Equal(t, 30*time.Second, cfg.Mirror.Timeout)
	assert.Equal(t, "@every 15s", cfg.Connectivity.ProbeSchedule)
	assert.Equal(t, "@every 5m", cfg.Sync.RetrySchedule)
	assert.False(t, cfg.Connectivity.AssumeOnline)
	assert.Equal(t, "postgres://postgres:@localhost:5432/kasbook?sslmode=disable", cfg.ConnectionString())
}

func TestLoad_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LEDGER_DEFAULT_ACCOUNTS", "Kas,Bank")
	t.Setenv("LEDGER_ACCOUNT_DELETE_POLICY", "restrict")
	t.Setenv("CONNECTIVITY_ASSUME_ONLINE", "true")
	t.Setenv("MIRROR_TIMEOUT", "10s")
	t.Setenv("DB_NAME", "kas_test")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"Kas", "Bank"}, cfg.Ledger.DefaultAccounts)
	assert.Equal(t, "restrict", cfg.Ledger.AccountDeletePolicy)
	assert.True(t, cfg.Connectivity.AssumeOnline)
	assert.Equal(t, 10*time.Second, cfg.Mirror.Timeout)
	assert.Equal(t, "kas_test", cfg.DB.Name)
}

func TestConfig_Validate(t *testing.T) {
	type testCase struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}

	tests := []testCase{
		{name: "Valid", mutate: func(*config.Config) {}},
		{name: "BadLevel", mutate: func(c *config.Config) { c.App.LogLevel = "chatty" }, wantErr: "LOG_LEVEL"},
		{name: "BadFormat", mutate: func(c *config.Config) { c.App.LogFormat = "xml" }, wantErr: "LOG_FORMAT"},
		{name: "BadPolicy", mutate: func(c *config.Config) { c.Ledger.AccountDeletePolicy = "cascade" }, wantErr: "LEDGER_ACCOUNT_DELETE_POLICY"},
		{name: "ZeroTimeout", mutate: func(c *config.Config) { c.Mirror.Timeout = 0 }, wantErr: "MIRROR_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg config.Config
			cfg.App.LogLevel = "info"
			cfg.App.LogFormat = "text"
			cfg.Ledger.AccountDeletePolicy = "allow"
			cfg.Mirror.Timeout = time.Second

			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
