package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/MrJamesThe3rd/kasbook/internal/app"
	"github.com/MrJamesThe3rd/kasbook/internal/config"
	"github.com/MrJamesThe3rd/kasbook/internal/database"
	kasbookHttp "github.com/MrJamesThe3rd/kasbook/internal/http"
	accountHandler "github.com/MrJamesThe3rd/kasbook/internal/http/account"
	connHandler "github.com/MrJamesThe3rd/kasbook/internal/http/connectivity"
	importHandler "github.com/MrJamesThe3rd/kasbook/internal/http/importcsv"
	syncHandler "github.com/MrJamesThe3rd/kasbook/internal/http/syncer"
	txHandler "github.com/MrJamesThe3rd/kasbook/internal/http/transaction"
	"github.com/MrJamesThe3rd/kasbook/internal/logging"
)

func main() {
	tokenFor := flag.String("issue-token", "", "print a bearer token for this subject and exit")
	tokenTTL := flag.Duration("token-ttl", 30*24*time.Hour, "lifetime of an issued token")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	log, err := logging.New(cfg.App.LogLevel, cfg.App.LogFormat)
	if err != nil {
		logrus.WithError(err).Fatal("failed to build logger")
	}

	if *tokenFor != "" {
		if err := printToken(cfg.App.APISecret, *tokenFor, *tokenTTL); err != nil {
			log.WithError(err).Fatal("failed to issue token")
		}

		return
	}

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server failed")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return err
	}
	defer db.Close()

	a, err := app.New(ctx, cfg, db, log)
	if err != nil {
		return err
	}

	if err := a.Start(ctx); err != nil {
		return err
	}
	defer a.Close()

	router := kasbookHttp.New(kasbookHttp.Handlers{
		Accounts:     accountHandler.NewHandler(a.Ledger, log),
		Transactions: txHandler.NewHandler(a.Ledger, a.Sync, log),
		Sync:         syncHandler.NewHandler(a.Sync, a.Queue, a.Mirror, log),
		Import:       importHandler.NewHandler(a.Importer, a.Sync, log),
		Connectivity: connHandler.NewHandler(a.Monitor, log),
	}, cfg.App.APISecret)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)

	go func() {
		log.WithField("addr", srv.Addr).Info("starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func printToken(secret, subject string, ttl time.Duration) error {
	if secret == "" {
		return errors.New("API_SECRET is not set")
	}

	now := time.Now()

	token, err := kasbookHttp.IssueToken([]byte(secret), subject, jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	if err != nil {
		return err
	}

	fmt.Println(token)

	return nil
}
