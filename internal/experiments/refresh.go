package experiments

import (
	"context"
	"errors"
	"fmt"

	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/host"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/logging"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/monitoring"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/shared/id"
	"go.uber.org/zap"
)

// Refresher runs sync-mode cycles: fetch, query, merge, then replace the
// dataset wholesale with DeleteAll followed by Save.
type Refresher struct {
	fetcher   *Fetcher
	sync      *OverrideSync
	storage   host.RowStorage
	datasetID string
	url       string
	metrics   *monitoring.Metrics
	logger    *logging.Logger
}

// RefresherOptions configures a Refresher.
type RefresherOptions struct {
	DatasetID string
	URL       string
	Metrics   *monitoring.Metrics
	Logger    *logging.Logger
}

// NewRefresher creates a Refresher.
func NewRefresher(fetcher *Fetcher, sync *OverrideSync, storage host.RowStorage, opts RefresherOptions) *Refresher {
	return &Refresher{
		fetcher:   fetcher,
		sync:      sync,
		storage:   storage,
		datasetID: opts.DatasetID,
		url:       opts.URL,
		metrics:   opts.Metrics,
		logger:    logging.OrNop(opts.Logger),
	}
}

// Refresh runs one cycle and returns the rows it stored. Any failure ends
// the cycle without touching the dataset, except a Save failure after a
// successful DeleteAll which leaves it empty. The error is logged here;
// lifecycle callers discard it.
func (r *Refresher) Refresh(ctx context.Context) ([]host.Row, error) {
	log := r.logger.With(zap.Stringer("cycle", id.NewCycleID(id.SyncPrefix)), zap.String("dataset", r.datasetID))
	log.Debug("_refreshDataset", zap.Stringer("phase", PhaseFetching))

	descriptors, err := r.fetcher.Fetch(ctx, r.url)
	if err != nil {
		return nil, r.fail(log, err)
	}
	log.Debug("_onExperimentsConfigurationDownloaded", zap.Int("experiments", len(descriptors)))

	enabled, err := r.sync.EnabledExperiments(ctx)
	if err != nil {
		return nil, r.fail(log, err)
	}

	log.Debug("merging", zap.Stringer("phase", PhaseMerging))
	rows := PanelRows(Merge(descriptors, enabled))

	store := r.storage.Storage(r.datasetID)
	if err := store.DeleteAll(ctx); err != nil {
		return nil, r.fail(log, fmt.Errorf("%w: delete: %v", ErrStorage, err))
	}
	if err := store.Save(ctx, rows); err != nil {
		return nil, r.fail(log, fmt.Errorf("%w: save: %v", ErrStorage, err))
	}

	r.metrics.SetRows(r.datasetID, len(rows))
	r.metrics.RecordRefresh("sync", monitoring.OutcomeDone)
	log.Info("dataset refreshed", zap.Stringer("phase", PhaseDone), zap.Int("rows", len(rows)))
	return rows, nil
}

// DeleteDataset empties the dataset. Errors are logged and returned.
func (r *Refresher) DeleteDataset(ctx context.Context) error {
	r.logger.Debug("_deleteDataset", zap.String("dataset", r.datasetID))
	if err := r.storage.Storage(r.datasetID).DeleteAll(ctx); err != nil {
		r.logger.Error("Error deleting data from row storage", zap.String("dataset", r.datasetID), zap.Error(err))
		return fmt.Errorf("%w: delete: %v", ErrStorage, err)
	}
	r.metrics.SetRows(r.datasetID, 0)
	return nil
}

func (r *Refresher) fail(log *logging.Logger, err error) error {
	outcome := Outcome(err)
	r.metrics.RecordRefresh("sync", outcome)
	log.Error("refresh failed", zap.Stringer("phase", PhaseFailed), zap.String("outcome", outcome), zap.Error(err))
	return err
}

// Outcome maps a cycle error to its metrics label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return monitoring.OutcomeDone
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return monitoring.OutcomeContextExpired
	case errors.Is(err, ErrHTTPStatus):
		return monitoring.OutcomeHTTPStatus
	case errors.Is(err, ErrMalformed):
		return monitoring.OutcomeMalformed
	case errors.Is(err, ErrQuery):
		return monitoring.OutcomeQuery
	case errors.Is(err, ErrStorage):
		return monitoring.OutcomeStorage
	default:
		return monitoring.OutcomeTransport
	}
}
