// Package app wires the ledger, queue, mirror and sync engine into one
// process-wide container shared by the API server and the terminal UI.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/MrJamesThe3rd/kasbook/internal/config"
	"github.com/MrJamesThe3rd/kasbook/internal/connectivity"
	"github.com/MrJamesThe3rd/kasbook/internal/database"
	"github.com/MrJamesThe3rd/kasbook/internal/importer"
	"github.com/MrJamesThe3rd/kasbook/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/kasbook/internal/ledger/store"
	"github.com/MrJamesThe3rd/kasbook/internal/logging"
	"github.com/MrJamesThe3rd/kasbook/internal/mirror"
	"github.com/MrJamesThe3rd/kasbook/internal/mirror/sheets"
	"github.com/MrJamesThe3rd/kasbook/internal/pending"
	pendingStore "github.com/MrJamesThe3rd/kasbook/internal/pending/store"
	"github.com/MrJamesThe3rd/kasbook/internal/syncer"
)

type App struct {
	Ledger   *ledger.Service
	Queue    *pending.Queue
	Mirror   *mirror.Adapter
	Monitor  *connectivity.Monitor
	Prober   *connectivity.Prober
	Sync     *syncer.Orchestrator
	Importer *importer.Service

	cfg  *config.Config
	log  logrus.FieldLogger
	cron *cron.Cron
}

// New migrates db, seeds the default accounts on first run and wires every
// service. Nothing runs in the background until Start.
func New(ctx context.Context, cfg *config.Config, db *sql.DB, log logrus.FieldLogger, opts ...Option) (*App, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	if err := database.Migrate(ctx, db); err != nil {
		return nil, err
	}

	queueRepo := pendingStore.New(db)

	ledgerSvc := ledger.NewService(
		ledgerStore.New(db, ledgerStore.WithRenameCascade(queueRepo.RenameAccount)),
		ledger.WithDeletePolicy(ledger.DeletePolicy(cfg.Ledger.AccountDeletePolicy)),
	)

	seeded, err := ledgerSvc.SeedDefaultAccounts(ctx, cfg.Ledger.DefaultAccounts)
	if err != nil {
		return nil, fmt.Errorf("seeding default accounts: %w", err)
	}

	if seeded > 0 {
		log.WithField(logging.FieldCount, seeded).Info("default accounts created")
	}

	auth := o.auth
	if auth == nil {
		auth = sheets.NewAuthenticator(cfg.Mirror.SpreadsheetID, cfg.Mirror.CredentialsFile, cfg.Mirror.Timeout)
	}

	var (
		queue   = pending.NewQueue(queueRepo)
		adapter = mirror.NewAdapter(auth, log)
		monitor = connectivity.NewMonitor(cfg.Connectivity.AssumeOnline, log)
		orch    = syncer.New(ledgerSvc, queue, adapter, monitor, log)
	)

	monitor.OnOnline(orch.TriggerDrain)

	a := &App{
		Ledger:   ledgerSvc,
		Queue:    queue,
		Mirror:   adapter,
		Monitor:  monitor,
		Sync:     orch,
		Importer: importer.NewService(log),
		cfg:      cfg,
		log:      log,
	}

	if cfg.Connectivity.ProbeURL != "" {
		a.Prober = connectivity.NewProber(monitor, cfg.Connectivity.ProbeURL, cfg.Connectivity.ProbeTimeout, logging.Component(log, "prober"))
	}

	return a, nil
}

type options struct {
	auth mirror.Authenticator
}

type Option func(*options)

// WithAuthenticator replaces the Google Sheets authenticator.
func WithAuthenticator(auth mirror.Authenticator) Option {
	return func(o *options) {
		o.auth = auth
	}
}

// Start probes once and schedules the probe and retry jobs.
func (a *App) Start(ctx context.Context) error {
	cronLog := cron.PrintfLogger(logging.Component(a.log, "cron"))
	a.cron = cron.New(cron.WithLogger(cronLog), cron.WithChain(
		cron.Recover(cronLog),
		cron.SkipIfStillRunning(cronLog),
	))

	if a.Prober != nil {
		if _, err := a.cron.AddJob(a.cfg.Connectivity.ProbeSchedule, a.Prober); err != nil {
			return fmt.Errorf("scheduling connectivity probe: %w", err)
		}

		a.Prober.Probe(ctx)
	}

	if a.cfg.Sync.RetrySchedule != "" {
		if _, err := a.cron.AddJob(a.cfg.Sync.RetrySchedule, a.Sync.RetryJob()); err != nil {
			return fmt.Errorf("scheduling sync retry: %w", err)
		}
	}

	a.cron.Start()

	a.log.WithField(logging.FieldOnline, a.Monitor.Online()).Info("sync engine started")

	return nil
}

// Close stops the scheduler and waits for running jobs and background drains.
func (a *App) Close() {
	if a.cron != nil {
		<-a.cron.Stop().Done()
	}

	a.Sync.Wait()
}
