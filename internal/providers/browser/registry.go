package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/host"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/logging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrUnknownPage       = errors.New("no page registered")
	ErrAlreadyRegistered = errors.New("page class already registered")
)

type registration struct {
	classID     uuid.UUID
	description string
	contract    string
	factory     host.PageFactory
}

// Registry maps about: descriptions to page factories and keeps the page
// most recently opened for each.
type Registry struct {
	mu      sync.RWMutex
	byClass map[uuid.UUID]*registration
	byDesc  map[string]*registration
	current map[string]host.Page
	logger  *logging.Logger
}

var _ host.PageRegistry = (*Registry)(nil)

// NewRegistry creates an empty Registry.
func NewRegistry(logger *logging.Logger) *Registry {
	return &Registry{
		byClass: make(map[uuid.UUID]*registration),
		byDesc:  make(map[string]*registration),
		current: make(map[string]host.Page),
		logger:  logging.OrNop(logger),
	}
}

// RegisterFactory binds a class id and description to a factory.
func (r *Registry) RegisterFactory(classID uuid.UUID, description, contract string, factory host.PageFactory) error {
	if factory == nil {
		return fmt.Errorf("page %s: factory is required", description)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byClass[classID]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, classID)
	}
	if _, ok := r.byDesc[description]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, description)
	}
	reg := &registration{classID: classID, description: description, contract: contract, factory: factory}
	r.byClass[classID] = reg
	r.byDesc[description] = reg
	r.logger.Debug("page factory registered", zap.String("page", description), zap.String("contract", contract))
	return nil
}

// UnregisterFactory removes a factory and drops its open page.
func (r *Registry) UnregisterFactory(classID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.byClass[classID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPage, classID)
	}
	delete(r.byClass, classID)
	delete(r.byDesc, reg.description)
	delete(r.current, reg.description)
	r.logger.Debug("page factory unregistered", zap.String("page", reg.description))
	return nil
}

// Open navigates to description: a new page is created and loaded. A
// failed load is logged and the page is still returned with its list empty.
func (r *Registry) Open(ctx context.Context, description string) (host.Page, error) {
	r.mu.RLock()
	reg, ok := r.byDesc[description]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPage, description)
	}

	page := reg.factory()
	if err := page.Load(ctx); err != nil {
		r.logger.Warn("page loaded without experiments", zap.String("page", description), zap.Error(err))
	}

	r.mu.Lock()
	// The factory may have been unregistered while loading.
	if _, still := r.byDesc[description]; still {
		r.current[description] = page
	}
	r.mu.Unlock()
	return page, nil
}

// Current returns the page last opened for description.
func (r *Registry) Current(description string) (host.Page, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.current[description]
	return p, ok
}

// Registered reports whether a factory is bound to description.
func (r *Registry) Registered(description string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byDesc[description]
	return ok
}
