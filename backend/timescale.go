package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"blobbench/config"
)

// Timescale benchmarks TimescaleDB through lib/pq. Blobs live as BYTEA
// rows in a hypertable keyed by a TIMESTAMPTZ column.
//
// ReadLast on an empty table fails with ErrNoData wrapped in an OpError;
// it never returns empty bytes.
type Timescale struct {
	cfg config.TimescaleConfig
	db  *sql.DB
}

// NewTimescale returns an adapter for the configured TimescaleDB. The
// connection pool dials lazily; Setup issues the first statements.
func NewTimescale(cfg config.TimescaleConfig) (*Timescale, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}
	return &Timescale{cfg: cfg, db: db}, nil
}

func (t *Timescale) Name() string { return "timescale" }

// Setup enables the timescaledb extension and creates the blobs
// hypertable. Every statement is idempotent, so re-running Setup against
// an existing database only fills in whatever is missing.
func (t *Timescale) Setup(ctx context.Context) error {
	if err := t.db.PingContext(ctx); err != nil {
		return opErr(t.Name(), "ping", err)
	}
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS timescaledb CASCADE;`,
		`CREATE TABLE IF NOT EXISTS blobs (
			time TIMESTAMPTZ NOT NULL,
			data BYTEA NOT NULL
		);`,
		`SELECT create_hypertable('blobs', 'time', if_not_exists => TRUE);`,
	}
	for _, stmt := range stmts {
		if _, err := t.db.ExecContext(ctx, stmt); err != nil {
			return opErr(t.Name(), "setup schema", err)
		}
	}
	return nil
}

func (t *Timescale) Write(ctx context.Context, blob []byte, ts int64) error {
	_, err := t.db.ExecContext(ctx,
		`INSERT INTO blobs (time, data) VALUES ($1, $2);`, time.Unix(0, ts), blob)
	return opErr(t.Name(), "insert", err)
}

func (t *Timescale) ReadLast(ctx context.Context) ([]byte, error) {
	var blob []byte
	err := t.db.QueryRowContext(ctx,
		`SELECT data FROM blobs ORDER BY time DESC LIMIT 1;`).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, opErr(t.Name(), "select last", ErrNoData)
	}
	if err != nil {
		return nil, opErr(t.Name(), "select last", err)
	}
	return blob, nil
}

func (t *Timescale) ReadBatch(ctx context.Context, start int64) ([][]byte, error) {
	rows, err := t.db.QueryContext(ctx,
		`SELECT data FROM blobs WHERE time >= $1;`, time.Unix(0, start))
	if err != nil {
		return nil, opErr(t.Name(), "select batch", err)
	}
	defer rows.Close()

	var blobs [][]byte
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, opErr(t.Name(), "scan row", err)
		}
		blobs = append(blobs, blob)
	}
	if err := rows.Err(); err != nil {
		return nil, opErr(t.Name(), "select batch", err)
	}
	return blobs, nil
}

// Cleanup drops the hypertable and closes the pool.
func (t *Timescale) Cleanup(ctx context.Context) error {
	if _, err := t.db.ExecContext(ctx, `DROP TABLE IF EXISTS blobs;`); err != nil {
		slog.Error("failed to drop table", "backend", t.Name(), "error", err)
		t.db.Close()
		return opErr(t.Name(), "drop table", err)
	}
	return t.db.Close()
}
