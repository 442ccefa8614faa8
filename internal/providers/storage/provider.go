package storage

import (
	"context"
	"fmt"

	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/host"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/database"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// Provider is host row storage backed by SQLite. Rows keep the order they
// were saved in.
type Provider struct {
	pool *database.Pool
}

// NewProvider creates a storage provider over pool.
func NewProvider(pool *database.Pool) *Provider {
	return &Provider{pool: pool}
}

// Storage returns the store for one dataset.
func (p *Provider) Storage(datasetID string) host.RowStore {
	return &datasetStore{pool: p.pool, dataset: datasetID}
}

// Rows returns the rows currently stored for datasetID.
func (p *Provider) Rows(ctx context.Context, datasetID string) ([]host.Row, error) {
	conn, err := p.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer p.pool.Put(conn)

	rows := []host.Row{}
	err = sqlitex.Execute(conn,
		"SELECT url, title, background_color FROM dataset_rows WHERE dataset = ? ORDER BY position",
		&sqlitex.ExecOptions{
			Args: []any{datasetID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				rows = append(rows, host.Row{
					URL:             stmt.ColumnText(0),
					Title:           stmt.ColumnText(1),
					BackgroundColor: stmt.ColumnText(2),
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("storage: reading %s: %w", datasetID, err)
	}
	return rows, nil
}

type datasetStore struct {
	pool    *database.Pool
	dataset string
}

func (s *datasetStore) DeleteAll(ctx context.Context) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	if err := sqlitex.Execute(conn, "DELETE FROM dataset_rows WHERE dataset = ?", &sqlitex.ExecOptions{
		Args: []any{s.dataset},
	}); err != nil {
		return fmt.Errorf("storage: deleting %s: %w", s.dataset, err)
	}
	return nil
}

// Save appends rows after those already stored, in one transaction.
// Two replaces interleaved as delete, delete, save, save keep both saves.
func (s *datasetStore) Save(ctx context.Context, rows []host.Row) (err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	endFn, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("storage: begin: %w", err)
	}
	defer endFn(&err)

	next := 0
	err = sqlitex.Execute(conn, "SELECT COALESCE(MAX(position) + 1, 0) FROM dataset_rows WHERE dataset = ?", &sqlitex.ExecOptions{
		Args: []any{s.dataset},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			next = stmt.ColumnInt(0)
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("storage: saving %s: %w", s.dataset, err)
	}

	for i, row := range rows {
		err = sqlitex.Execute(conn,
			"INSERT INTO dataset_rows (dataset, position, url, title, background_color) VALUES (?, ?, ?, ?, ?)",
			&sqlitex.ExecOptions{
				Args: []any{s.dataset, next + i, row.URL, row.Title, row.BackgroundColor},
			})
		if err != nil {
			return fmt.Errorf("storage: saving %s: %w", s.dataset, err)
		}
	}
	return nil
}
