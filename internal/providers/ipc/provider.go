package ipc

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/host"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/config"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/logging"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/providers/settings"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// ErrNoHandler is returned for messages nobody listens to.
var ErrNoHandler = errors.New("no handler for message type")

// Handler answers one message type.
type Handler func(ctx context.Context, msg host.Message) (any, error)

// Dispatcher is the host messaging channel: requests are routed to the
// handler registered for their type.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	logger   *logging.Logger
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher(logger *logging.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]Handler),
		logger:   logging.OrNop(logger),
	}
}

// Register installs h for msgType, replacing any previous handler.
func (d *Dispatcher) Register(msgType string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[msgType] = h
}

// SendRequestForResult routes msg to its handler.
func (d *Dispatcher) SendRequestForResult(ctx context.Context, msg host.Message) (any, error) {
	d.mu.RLock()
	h, ok := d.handlers[msg.Type]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoHandler, msg.Type)
	}

	result, err := h(ctx, msg)
	if err != nil {
		d.logger.Warn("message handler failed", zap.String("type", msg.Type), zap.Error(err))
		return nil, err
	}
	return result, nil
}

// OverrideLister reads the host's override flags.
type OverrideLister interface {
	Overrides(ctx context.Context) ([]settings.Override, error)
}

// ActiveExperiments answers Experiments:GetActive. The active set is the
// baseline with overrides applied. format selects the wire shape: a
// JSON-encoded string (older hosts) or a plain string slice.
func ActiveExperiments(baseline []string, overrides OverrideLister, format string) Handler {
	return func(ctx context.Context, _ host.Message) (any, error) {
		active := make(map[string]bool, len(baseline))
		for _, name := range baseline {
			active[name] = true
		}

		if overrides != nil {
			list, err := overrides.Overrides(ctx)
			if err != nil {
				return nil, err
			}
			for _, o := range list {
				if o.Enabled {
					active[o.Name] = true
				} else {
					delete(active, o.Name)
				}
			}
		}

		names := make([]string, 0, len(active))
		for name := range active {
			names = append(names, name)
		}
		slices.Sort(names)

		if format == config.PayloadStructured {
			return names, nil
		}
		return sonic.MarshalString(names)
	}
}
