// Package logging builds the process logger and names the structured fields
// shared across packages.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

const (
	FieldAccount       = "account"
	FieldTransactionID = "transaction_id"
	FieldEntryID       = "entry_id"
	FieldNamespace     = "namespace"
	FieldStatus        = "status"
	FieldCount         = "count"
	FieldOnline        = "online"
	FieldComponent     = "component"
)

// New returns a logger writing to stderr.
func New(level, format string) (*logrus.Logger, error) {
	return NewWithWriter(os.Stderr, level, format)
}

func NewWithWriter(w io.Writer, level, format string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}

	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(lvl)

	switch format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	return log, nil
}

// Component scopes a logger to one subsystem.
func Component(log logrus.FieldLogger, name string) logrus.FieldLogger {
	return log.WithField(FieldComponent, name)
}
