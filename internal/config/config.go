package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	App struct {
		Name      string `envconfig:"APP_NAME" default:"Kasbook"`
		Port      int    `envconfig:"PORT" default:"8080"`
		APISecret string `envconfig:"API_SECRET"`
		LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
		LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"kasbook"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Ledger struct {
		DefaultAccounts     []string `envconfig:"LEDGER_DEFAULT_ACCOUNTS" default:"Kas_Kantin,Kas_Sekolah,BCA,Lomba,Operasional"`
		AccountDeletePolicy string   `envconfig:"LEDGER_ACCOUNT_DELETE_POLICY" default:"allow"`
	}

	Mirror struct {
		SpreadsheetID   string        `envconfig:"MIRROR_SPREADSHEET_ID"`
		CredentialsFile string        `envconfig:"MIRROR_CREDENTIALS_FILE" default:"credentials.json"`
		Timeout         time.Duration `envconfig:"MIRROR_TIMEOUT" default:"30s"`
	}

	Connectivity struct {
		ProbeURL      string        `envconfig:"CONNECTIVITY_PROBE_URL" default:"https://sheets.googleapis.com/"`
		ProbeTimeout  time.Duration `envconfig:"CONNECTIVITY_PROBE_TIMEOUT" default:"5s"`
		ProbeSchedule string        `envconfig:"CONNECTIVITY_PROBE_SCHEDULE" default:"@every 15s"`
		AssumeOnline  bool          `envconfig:"CONNECTIVITY_ASSUME_ONLINE" default:"false"`
	}

	Sync struct {
		RetrySchedule string `envconfig:"SYNC_RETRY_SCHEDULE" default:"@every 5m"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// Validate rejects values envconfig accepts but the rest of the program cannot use.
func (c *Config) Validate() error {
	var errs []error

	if _, err := logrus.ParseLevel(c.App.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	switch c.App.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT: unknown format %q", c.App.LogFormat))
	}

	switch c.Ledger.AccountDeletePolicy {
	case "allow", "restrict":
	default:
		errs = append(errs, fmt.Errorf("LEDGER_ACCOUNT_DELETE_POLICY: unknown policy %q", c.Ledger.AccountDeletePolicy))
	}

	if c.Mirror.Timeout <= 0 {
		errs = append(errs, errors.New("MIRROR_TIMEOUT: must be positive"))
	}

	return errors.Join(errs...)
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
