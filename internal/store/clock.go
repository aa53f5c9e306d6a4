package store

import (
	"sync"
	"time"

	"dropchat/pkg/logger"
)

// Clock abstracts the wall clock so expiration can be driven in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the real wall clock.
func SystemClock() Clock { return systemClock{} }

// Sweepable is implemented by stores that support periodic expiration.
type Sweepable interface {
	SweepExpired(now time.Time) int
}

// Sweeper drives periodic TTL sweeps over a set of stores. Start must be
// called once; Stop releases the ticker goroutine. Constructing a Sweeper
// without starting it is free, so tests can build stores without leaking
// background tasks.
type Sweeper struct {
	interval time.Duration
	clock    Clock
	stores   []Sweepable

	mu      sync.Mutex
	stop    chan struct{}
	stopped chan struct{}
}

func NewSweeper(interval time.Duration, clock Clock, stores ...Sweepable) *Sweeper {
	return &Sweeper{
		interval: interval,
		clock:    clock,
		stores:   stores,
	}
}

func (s *Sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}
	s.stop = make(chan struct{})
	s.stopped = make(chan struct{})
	go s.run(s.stop, s.stopped)
}

func (s *Sweeper) Stop() {
	s.mu.Lock()
	stop, stopped := s.stop, s.stopped
	s.stop, s.stopped = nil, nil
	s.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-stopped
}

func (s *Sweeper) run(stop <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			now := s.clock.Now()
			for _, st := range s.stores {
				if removed := st.SweepExpired(now); removed > 0 {
					logger.Debug("sweep removed %d expired records", removed)
				}
			}
		}
	}
}
