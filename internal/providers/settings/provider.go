package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/database"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/logging"
	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// ErrEmptyName is returned for overrides without an experiment name.
var ErrEmptyName = errors.New("experiment name is required")

// Override is one stored override flag.
type Override struct {
	Name      string    `json:"name"`
	Enabled   bool      `json:"enabled"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Provider is the host's experiment override service. Flags live in
// SQLite so they survive restarts, as browser preferences would.
type Provider struct {
	pool   *database.Pool
	now    func() time.Time
	logger *logging.Logger
}

// NewProvider creates an override provider over pool.
func NewProvider(pool *database.Pool, logger *logging.Logger) *Provider {
	return &Provider{
		pool:   pool,
		now:    time.Now,
		logger: logging.OrNop(logger),
	}
}

// SetOverride forces name to enabled.
func (p *Provider) SetOverride(ctx context.Context, name string, enabled bool) error {
	if name == "" {
		return ErrEmptyName
	}
	conn, err := p.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer p.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`INSERT INTO experiment_overrides (name, enabled, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET enabled = excluded.enabled, updated_at = excluded.updated_at`,
		&sqlitex.ExecOptions{Args: []any{name, enabled, p.now().UnixMilli()}})
	if err != nil {
		return fmt.Errorf("settings: set override %s: %w", name, err)
	}
	p.logger.Info("override set", zap.String("name", name), zap.Bool("enabled", enabled))
	return nil
}

// ClearOverride removes any override for name. Clearing a name without an
// override is not an error.
func (p *Provider) ClearOverride(ctx context.Context, name string) error {
	if name == "" {
		return ErrEmptyName
	}
	conn, err := p.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer p.pool.Put(conn)

	err = sqlitex.Execute(conn, "DELETE FROM experiment_overrides WHERE name = ?",
		&sqlitex.ExecOptions{Args: []any{name}})
	if err != nil {
		return fmt.Errorf("settings: clear override %s: %w", name, err)
	}
	if conn.Changes() > 0 {
		p.logger.Info("override cleared", zap.String("name", name))
	}
	return nil
}

// Overrides lists every stored override ordered by name.
func (p *Provider) Overrides(ctx context.Context) ([]Override, error) {
	conn, err := p.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer p.pool.Put(conn)

	out := []Override{}
	err = sqlitex.Execute(conn, "SELECT name, enabled, updated_at FROM experiment_overrides ORDER BY name",
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				out = append(out, Override{
					Name:      stmt.ColumnText(0),
					Enabled:   stmt.ColumnBool(1),
					UpdatedAt: time.UnixMilli(stmt.ColumnInt64(2)),
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("settings: list overrides: %w", err)
	}
	return out, nil
}
