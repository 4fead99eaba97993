package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/BK-Korea/Reborn-to-Blackswan/internal/domain"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverBadger   = "badger"
)

var ErrUnknownDriver = errors.New("unknown store driver")

type Options struct {
	Driver      string
	SQLitePath  string
	DatabaseURL string
	BadgerPath  string
}

// Open returns the KnowledgeLog for the configured driver.
func Open(ctx context.Context, opts Options) (domain.KnowledgeLog, error) {
	switch opts.Driver {
	case DriverSQLite, "":
		return NewSQLiteStore(opts.SQLitePath)
	case DriverPostgres:
		if opts.DatabaseURL == "" {
			return nil, fmt.Errorf("postgres driver requires DATABASE_URL")
		}
		return OpenPostgresStore(ctx, opts.DatabaseURL)
	case DriverBadger:
		return NewBadgerStore(opts.BadgerPath)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}
