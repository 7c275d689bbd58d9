package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ultma/ultma-server-go/internal/game"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS match_snapshot (
    slot SMALLINT PRIMARY KEY CHECK (slot = 1),
    match_id TEXT NOT NULL,
    checksum TEXT NOT NULL,
    version INTEGER NOT NULL,
    data JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Postgres keeps the snapshot in a single-row table.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to dsn and ensures the snapshot table exists.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create snapshot table: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (s *Postgres) Load(ctx context.Context) (*game.Match, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT data::text FROM match_snapshot WHERE slot = 1`).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select snapshot: %w", err)
	}
	return game.DecodeSnapshot(data)
}

func (s *Postgres) Save(ctx context.Context, m *game.Match) error {
	sum, err := m.ComputeChecksum()
	if err != nil {
		return err
	}
	data, err := game.EncodeSnapshot(m)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO match_snapshot (slot, match_id, checksum, version, data, updated_at)
		VALUES (1, $1, $2, $3, $4::jsonb, now())
		ON CONFLICT (slot) DO UPDATE SET
			match_id = EXCLUDED.match_id,
			checksum = EXCLUDED.checksum,
			version = EXCLUDED.version,
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at`,
		m.ID, sum.Hash, sum.Version, string(data),
	)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

func (s *Postgres) Reset(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM match_snapshot`); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Postgres) Close() error {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
	return nil
}
