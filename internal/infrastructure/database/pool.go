package database

import (
	"context"
	"fmt"

	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/logging"
	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// Schema is applied to every connection. Statements are idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS dataset_rows (
	dataset          TEXT    NOT NULL,
	position         INTEGER NOT NULL,
	url              TEXT    NOT NULL,
	title            TEXT    NOT NULL,
	background_color TEXT    NOT NULL DEFAULT '',
	PRIMARY KEY (dataset, position)
);

CREATE TABLE IF NOT EXISTS experiment_overrides (
	name       TEXT    PRIMARY KEY,
	enabled    INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// Config holds the parameters for opening a pool.
type Config struct {
	// Path is the database file. ":memory:" is accepted for tests; the pool
	// size is then forced to 1 because every in-memory connection is its
	// own database.
	Path     string
	PoolSize int
	Logger   *logging.Logger
}

// Pool is a fixed-size pool of SQLite connections holding host state.
type Pool struct {
	inner  *sqlitex.Pool
	logger *logging.Logger
	path   string
}

// Open creates the pool. Connections are prepared lazily on first Take.
func Open(cfg Config) (*Pool, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database: Path is required")
	}
	logger := logging.OrNop(cfg.Logger)

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 4
	}
	if cfg.Path == ":memory:" {
		poolSize = 1
	}

	inner, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize:    poolSize,
		PrepareConn: prepareConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("database: opening %s: %w", cfg.Path, err)
	}

	logger.Info("sqlite pool opened", zap.String("path", cfg.Path), zap.Int("pool_size", poolSize))
	return &Pool{inner: inner, logger: logger, path: cfg.Path}, nil
}

// Take borrows a connection. The caller must Put it back.
func (p *Pool) Take(ctx context.Context) (*sqlite.Conn, error) {
	conn, err := p.inner.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("database: take: %w", err)
	}
	return conn, nil
}

// Put returns a connection to the pool. Safe to call with nil.
func (p *Pool) Put(conn *sqlite.Conn) {
	p.inner.Put(conn)
}

// Close closes all connections, waiting for borrowed ones to come back.
func (p *Pool) Close() error {
	if err := p.inner.Close(); err != nil {
		p.logger.Error("sqlite pool close error", zap.String("path", p.path), zap.Error(err))
		return fmt.Errorf("database: closing %s: %w", p.path, err)
	}
	p.logger.Info("sqlite pool closed", zap.String("path", p.path))
	return nil
}

func prepareConnection(conn *sqlite.Conn) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("database: %s: %w", pragma, err)
		}
	}
	if err := sqlitex.ExecuteScript(conn, Schema, nil); err != nil {
		return fmt.Errorf("database: schema: %w", err)
	}
	return nil
}
