package periodic

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/host"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/logging"
	"go.uber.org/zap"
)

var (
	ErrClosed        = errors.New("scheduler closed")
	ErrUnknownSync   = errors.New("no periodic sync for dataset")
	ErrInvalidPeriod = errors.New("interval must be positive")
)

type job struct {
	dataset  string
	interval time.Duration
	callback func(context.Context)
	cancel   context.CancelFunc
	runs     atomic.Int64
	inFlight atomic.Int64
}

// Stats describes one scheduled sync.
type Stats struct {
	Dataset  string
	Interval time.Duration
	Runs     int64
	InFlight int64
}

// Scheduler runs callbacks on per-dataset tickers.
type Scheduler struct {
	mu     sync.Mutex
	jobs   map[string]*job
	closed bool
	wg     sync.WaitGroup
	ctx    context.Context
	stop   context.CancelFunc
	jitter float64
	logger *logging.Logger
}

var _ host.Scheduler = (*Scheduler)(nil)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithJitter delays each tick by up to fraction of the interval.
func WithJitter(fraction float64) Option {
	return func(s *Scheduler) {
		if fraction > 0 && fraction < 1 {
			s.jitter = fraction
		}
	}
}

// New creates a Scheduler. Callbacks receive a context that is cancelled
// by Close.
func New(logger *logging.Logger, opts ...Option) *Scheduler {
	ctx, stop := context.WithCancel(context.Background())
	s := &Scheduler{
		jobs:   make(map[string]*job),
		ctx:    ctx,
		stop:   stop,
		logger: logging.OrNop(logger),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddPeriodicSync schedules callback every interval. Registering the same
// dataset again replaces the previous schedule.
func (s *Scheduler) AddPeriodicSync(datasetID string, interval time.Duration, callback func(context.Context)) error {
	if interval <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidPeriod, interval)
	}
	if callback == nil {
		return fmt.Errorf("periodic sync %s: callback is required", datasetID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if old, ok := s.jobs[datasetID]; ok {
		old.cancel()
	}

	ctx, cancel := context.WithCancel(s.ctx)
	j := &job{dataset: datasetID, interval: interval, callback: callback, cancel: cancel}
	s.jobs[datasetID] = j

	s.wg.Add(1)
	go s.loop(ctx, j)

	s.logger.Info("periodic sync added", zap.String("dataset", datasetID), zap.Duration("interval", interval))
	return nil
}

// RemovePeriodicSync stops the schedule for datasetID.
func (s *Scheduler) RemovePeriodicSync(datasetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[datasetID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSync, datasetID)
	}
	j.cancel()
	delete(s.jobs, datasetID)
	return nil
}

// Trigger runs the callback for datasetID now and waits for it.
func (s *Scheduler) Trigger(datasetID string) error {
	s.mu.Lock()
	j, ok := s.jobs[datasetID]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSync, datasetID)
	}
	s.run(s.ctx, j)
	return nil
}

// Stats returns a snapshot of every scheduled sync.
func (s *Scheduler) Stats() []Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Stats, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, Stats{
			Dataset:  j.dataset,
			Interval: j.interval,
			Runs:     j.runs.Load(),
			InFlight: j.inFlight.Load(),
		})
	}
	return out
}

// Close stops every ticker and waits for running callbacks to return.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.stop()
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

func (s *Scheduler) loop(ctx context.Context, j *job) {
	defer s.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if d := s.delay(j.interval); d > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(d):
				}
			}
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.run(ctx, j)
			}()
		}
	}
}

func (s *Scheduler) run(ctx context.Context, j *job) {
	j.runs.Add(1)
	if n := j.inFlight.Add(1); n > 1 {
		s.logger.Debug("periodic sync overlaps a running one", zap.String("dataset", j.dataset), zap.Int64("in_flight", n))
	}
	defer j.inFlight.Add(-1)
	j.callback(ctx)
}

func (s *Scheduler) delay(interval time.Duration) time.Duration {
	if s.jitter == 0 {
		return 0
	}
	return time.Duration(rand.Float64() * s.jitter * float64(interval))
}
