package storage

import (
	"context"
	"slices"
	"sync"

	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/host"
)

// Memory is an in-process RowStorage. DeleteErr and SaveErr let tests
// inject failures.
type Memory struct {
	mu       sync.Mutex
	datasets map[string][]host.Row
	ops      []string

	DeleteErr error
	SaveErr   error
}

// NewMemory creates an empty in-memory storage.
func NewMemory() *Memory {
	return &Memory{datasets: make(map[string][]host.Row)}
}

// Storage returns the store for one dataset.
func (m *Memory) Storage(datasetID string) host.RowStore {
	return &memoryStore{m: m, dataset: datasetID}
}

// Rows returns a copy of the rows stored for datasetID.
func (m *Memory) Rows(_ context.Context, datasetID string) ([]host.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.datasets[datasetID]), nil
}

// Ops returns the operations applied so far, e.g. "deleteAll:ds", "save:ds".
func (m *Memory) Ops() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.ops)
}

// Put seeds a dataset.
func (m *Memory) Put(datasetID string, rows []host.Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.datasets[datasetID] = slices.Clone(rows)
}

type memoryStore struct {
	m       *Memory
	dataset string
}

func (s *memoryStore) DeleteAll(context.Context) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.ops = append(s.m.ops, "deleteAll:"+s.dataset)
	if s.m.DeleteErr != nil {
		return s.m.DeleteErr
	}
	delete(s.m.datasets, s.dataset)
	return nil
}

func (s *memoryStore) Save(_ context.Context, rows []host.Row) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.ops = append(s.m.ops, "save:"+s.dataset)
	if s.m.SaveErr != nil {
		return s.m.SaveErr
	}
	s.m.datasets[s.dataset] = append(s.m.datasets[s.dataset], rows...)
	return nil
}
