package experiments

import (
	"context"
	"fmt"

	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/host"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/logging"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/monitoring"
	"go.uber.org/zap"
)

// OverrideSync talks to the host about enabled experiments and overrides.
// It holds no state of its own: every call goes to the host.
type OverrideSync struct {
	messenger host.Messenger
	overrides host.OverrideService
	metrics   *monitoring.Metrics
	logger    *logging.Logger
}

// NewOverrideSync creates an OverrideSync.
func NewOverrideSync(messenger host.Messenger, overrides host.OverrideService, metrics *monitoring.Metrics, logger *logging.Logger) *OverrideSync {
	return &OverrideSync{
		messenger: messenger,
		overrides: overrides,
		metrics:   metrics,
		logger:    logging.OrNop(logger),
	}
}

// EnabledExperiments asks the host for the experiments it currently activates.
func (s *OverrideSync) EnabledExperiments(ctx context.Context) (EnabledSet, error) {
	payload, err := s.messenger.SendRequestForResult(ctx, host.Message{Type: host.MessageGetActive})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	return DecodeEnabled(payload)
}

// ToggleOverride forwards a new override state to the host. It does not
// wait for or report the host's verdict; failures are only logged.
func (s *OverrideSync) ToggleOverride(ctx context.Context, name string, enabled bool) {
	s.logger.Debug("toggleOverride", zap.String("name", name), zap.Bool("enabled", enabled))
	s.metrics.RecordToggle(enabled)
	if err := s.overrides.SetOverride(ctx, name, enabled); err != nil {
		s.logger.Error("Error setting override", zap.String("name", name), zap.Error(err))
	}
}

// ClearOverrides drops the host override of every named experiment.
// Failures are logged and the remaining names are still cleared.
func (s *OverrideSync) ClearOverrides(ctx context.Context, descriptors []Descriptor) int {
	cleared := 0
	for _, d := range descriptors {
		if err := s.overrides.ClearOverride(ctx, d.Name); err != nil {
			s.logger.Error("Error clearing override", zap.String("name", d.Name), zap.Error(err))
			continue
		}
		s.metrics.RecordClear()
		cleared++
	}
	return cleared
}
