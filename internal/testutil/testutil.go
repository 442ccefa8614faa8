// Package testutil provides host doubles and HTTP fixtures for tests.
package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/host"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockMessenger is a mock host messaging channel.
type MockMessenger struct {
	mock.Mock
}

// SendRequestForResult mocks the SendRequestForResult method.
func (m *MockMessenger) SendRequestForResult(ctx context.Context, msg host.Message) (any, error) {
	args := m.Called(ctx, msg)
	return args.Get(0), args.Error(1)
}

// NewMockMessenger answers every Experiments:GetActive request with payload.
func NewMockMessenger(t *testing.T, payload any) *MockMessenger {
	t.Helper()
	m := new(MockMessenger)
	m.On("SendRequestForResult", mock.Anything, host.Message{Type: host.MessageGetActive}).
		Return(payload, nil).
		Maybe()
	return m
}

// MockOverrides is a mock host override service.
type MockOverrides struct {
	mock.Mock
}

// SetOverride mocks the SetOverride method.
func (m *MockOverrides) SetOverride(ctx context.Context, name string, enabled bool) error {
	return m.Called(ctx, name, enabled).Error(0)
}

// ClearOverride mocks the ClearOverride method.
func (m *MockOverrides) ClearOverride(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

// NewMockOverrides accepts every call.
func NewMockOverrides(t *testing.T) *MockOverrides {
	t.Helper()
	m := new(MockOverrides)
	m.On("SetOverride", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("ClearOverride", mock.Anything, mock.Anything).Return(nil).Maybe()
	return m
}

// MockPanels is a mock home panel registry.
type MockPanels struct {
	mock.Mock
}

func (m *MockPanels) Register(id string, options func() host.PanelOptions) error {
	return m.Called(id, options).Error(0)
}

func (m *MockPanels) Unregister(id string) error { return m.Called(id).Error(0) }
func (m *MockPanels) Install(id string) error    { return m.Called(id).Error(0) }
func (m *MockPanels) Update(id string) error     { return m.Called(id).Error(0) }
func (m *MockPanels) Uninstall(id string) error  { return m.Called(id).Error(0) }

// NewMockPanels accepts every call.
func NewMockPanels(t *testing.T) *MockPanels {
	t.Helper()
	m := new(MockPanels)
	m.On("Register", mock.Anything, mock.Anything).Return(nil).Maybe()
	for _, method := range []string{"Unregister", "Install", "Update", "Uninstall"} {
		m.On(method, mock.Anything).Return(nil).Maybe()
	}
	return m
}

// MockPages is a mock about: page registry.
type MockPages struct {
	mock.Mock
}

func (m *MockPages) RegisterFactory(classID uuid.UUID, description, contract string, factory host.PageFactory) error {
	return m.Called(classID, description, contract, factory).Error(0)
}

func (m *MockPages) UnregisterFactory(classID uuid.UUID) error {
	return m.Called(classID).Error(0)
}

// NewMockPages accepts every call.
func NewMockPages(t *testing.T) *MockPages {
	t.Helper()
	m := new(MockPages)
	m.On("RegisterFactory", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("UnregisterFactory", mock.Anything).Return(nil).Maybe()
	return m
}

// ManualScheduler records periodic syncs and runs them on demand.
type ManualScheduler struct {
	mu        sync.Mutex
	callbacks map[string]func(context.Context)
	intervals map[string]time.Duration
}

// NewManualScheduler creates an empty ManualScheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{
		callbacks: make(map[string]func(context.Context)),
		intervals: make(map[string]time.Duration),
	}
}

func (s *ManualScheduler) AddPeriodicSync(datasetID string, interval time.Duration, callback func(context.Context)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks[datasetID] = callback
	s.intervals[datasetID] = interval
	return nil
}

// Interval returns the interval registered for datasetID.
func (s *ManualScheduler) Interval(datasetID string) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.intervals[datasetID]
	return d, ok
}

// Tick runs the callback registered for datasetID.
func (s *ManualScheduler) Tick(ctx context.Context, datasetID string) bool {
	s.mu.Lock()
	cb, ok := s.callbacks[datasetID]
	s.mu.Unlock()
	if ok {
		cb(ctx)
	}
	return ok
}

// ConfigServer serves a fixed configuration response and counts requests.
type ConfigServer struct {
	*httptest.Server

	mu       sync.Mutex
	status   int
	body     string
	lastPath string
	hits     atomic.Int64
}

// NewConfigServer starts a server answering every request with status and body.
func NewConfigServer(t *testing.T, status int, body string) *ConfigServer {
	t.Helper()
	s := &ConfigServer{status: status, body: body}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		s.mu.Lock()
		status, body := s.status, s.body
		s.lastPath = r.URL.RequestURI()
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(s.Close)
	return s
}

// Set changes the response for subsequent requests.
func (s *ConfigServer) Set(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status, s.body = status, body
}

// Hits returns how many requests were served.
func (s *ConfigServer) Hits() int64 { return s.hits.Load() }

// LastRequestURI returns the path and query of the last request.
func (s *ConfigServer) LastRequestURI() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPath
}

// ClosedURL returns a URL nothing listens on.
func ClosedURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}
