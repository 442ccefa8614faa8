package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/host"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/logging"
	"go.uber.org/zap"
)

var (
	ErrAlreadyRegistered = errors.New("panel already registered")
	ErrNotRegistered     = errors.New("panel not registered")
	ErrNoRefresh         = errors.New("panel has no refreshable view")
)

type panel struct {
	options   func() host.PanelOptions
	installed bool
	updates   int
}

// Panel is a snapshot of a registered panel.
type Panel struct {
	ID        string
	Installed bool
	Updates   int
	Options   host.PanelOptions
}

// Manager is the host's home panel registry.
type Manager struct {
	mu     sync.RWMutex
	panels map[string]*panel
	logger *logging.Logger
}

// NewManager creates an empty registry.
func NewManager(logger *logging.Logger) *Manager {
	return &Manager{
		panels: make(map[string]*panel),
		logger: logging.OrNop(logger),
	}
}

// Register adds a panel and the callback that describes it.
func (m *Manager) Register(id string, options func() host.PanelOptions) error {
	if options == nil {
		return fmt.Errorf("panel %s: options callback is required", id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.panels[id]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, id)
	}
	m.panels[id] = &panel{options: options}
	m.logger.Debug("panel registered", zap.String("panel", id))
	return nil
}

// Unregister removes a panel. Installed panels are uninstalled implicitly.
func (m *Manager) Unregister(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.panels[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, id)
	}
	delete(m.panels, id)
	m.logger.Debug("panel unregistered", zap.String("panel", id))
	return nil
}

// Install makes a registered panel visible.
func (m *Manager) Install(id string) error {
	return m.mutate(id, func(p *panel) { p.installed = true })
}

// Update asks the shell to re-read the panel options.
func (m *Manager) Update(id string) error {
	return m.mutate(id, func(p *panel) { p.updates++ })
}

// Uninstall hides a panel but keeps it registered.
func (m *Manager) Uninstall(id string) error {
	return m.mutate(id, func(p *panel) { p.installed = false })
}

func (m *Manager) mutate(id string, fn func(*panel)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.panels[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, id)
	}
	fn(p)
	return nil
}

// Get returns a snapshot of one panel, evaluating its options callback.
func (m *Manager) Get(id string) (Panel, bool) {
	m.mu.RLock()
	p, ok := m.panels[id]
	var snapshot Panel
	if ok {
		snapshot = Panel{ID: id, Installed: p.installed, Updates: p.updates}
	}
	options := func() host.PanelOptions { return host.PanelOptions{} }
	if ok {
		options = p.options
	}
	m.mu.RUnlock()

	if !ok {
		return Panel{}, false
	}
	// Called outside the lock: the callback belongs to the add-on.
	snapshot.Options = options()
	return snapshot, true
}

// List returns every registered panel id in sorted order.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.panels))
	for id := range m.panels {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Refresh invokes the OnRefresh callback of every list view of a panel,
// as the shell does on pull-to-refresh.
func (m *Manager) Refresh(ctx context.Context, id string) error {
	p, ok := m.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, id)
	}

	refreshed := false
	for _, v := range p.Options.Views {
		if v.Type == host.ViewList && v.OnRefresh != nil {
			v.OnRefresh(ctx)
			refreshed = true
		}
	}
	if !refreshed {
		return fmt.Errorf("%w: %s", ErrNoRefresh, id)
	}
	return nil
}
