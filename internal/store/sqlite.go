package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ultma/ultma-server-go/internal/game"
	"github.com/ultma/ultma-server-go/internal/store/migrations"
	_ "modernc.org/sqlite"
)

// SQLite keeps the snapshot in a single-row table.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens the database at path and applies embedded migrations.
func OpenSQLite(path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), db, migrations.FS, "."); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Load(ctx context.Context) (*game.Match, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM match_snapshot WHERE slot = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select snapshot: %w", err)
	}
	return game.DecodeSnapshot(data)
}

func (s *SQLite) Save(ctx context.Context, m *game.Match) error {
	sum, err := m.ComputeChecksum()
	if err != nil {
		return err
	}
	data, err := game.EncodeSnapshot(m)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO match_snapshot (slot, match_id, checksum, version, data, updated_at)
		 VALUES (1, ?, ?, ?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET
		   match_id = excluded.match_id,
		   checksum = excluded.checksum,
		   version = excluded.version,
		   data = excluded.data,
		   updated_at = excluded.updated_at`,
		m.ID, sum.Hash, sum.Version, data, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

func (s *SQLite) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM match_snapshot`); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// Close closes the database handle.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
