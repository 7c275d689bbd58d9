// Package store persists the single live match snapshot.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/ultma/ultma-server-go/internal/game"
	"go.uber.org/zap"
)

// Store is a single-slot match snapshot store. Every Save overwrites the
// previous snapshot.
type Store interface {
	game.Store
	Close() error
}

// Supported drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options selects and configures a backend.
type Options struct {
	Driver string
	// Path is the snapshot file for the file driver and the database file
	// for sqlite.
	Path string
	// DSN is the PostgreSQL connection string.
	DSN string
}

// Open creates the store described by opts.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	driver := strings.ToLower(strings.TrimSpace(opts.Driver))

	var (
		s   Store
		err error
	)
	switch driver {
	case "", DriverMemory:
		driver = DriverMemory
		s = NewMemory()
	case DriverFile:
		s, err = OpenFile(opts.Path)
	case DriverSQLite:
		s, err = OpenSQLite(opts.Path)
	case DriverPostgres:
		s, err = OpenPostgres(ctx, opts.DSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", driver, err)
	}

	logger.Info("match store opened",
		zap.String("driver", driver),
		zap.String("path", opts.Path),
	)
	return s, nil
}
