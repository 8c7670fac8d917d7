package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/warpdl/warpalarm/pkg/logger"
)

// Scheduler owns a Store and the single goroutine that fires its timers.
// Add, Remove and List may be called from any goroutine.
type Scheduler struct {
	store    *Store
	clock    Clock
	log      logger.Logger
	mode     LabelMode
	onExpire func(Timer)

	// mu serializes id allocation with the capacity check in Add.
	mu     sync.Mutex
	nextID uint64

	state    atomic.Int32
	started  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// New creates a Scheduler. onExpire is called from the scheduler goroutine
// once per expired timer, in expiry order, and must not block for long.
// The loop does not run until Start is called.
func New(onExpire func(Timer), opts *Options) *Scheduler {
	o := applyOptionDefaults(opts)
	if onExpire == nil {
		onExpire = func(Timer) {}
	}
	return &Scheduler{
		store:    NewStore(o.MaxTimers),
		clock:    o.Clock,
		log:      o.Logger,
		mode:     o.LabelMode,
		onExpire: onExpire,
		nextID:   o.IDSeed,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the scheduler goroutine. The goroutine exits when ctx is
// cancelled or Shutdown is called. Calling Start more than once has no effect.
func (s *Scheduler) Start(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	go s.run(ctx)
}

// Shutdown stops the loop and waits for its goroutine to return.
// It is safe to call more than once and before Start.
func (s *Scheduler) Shutdown() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	if s.started.Load() {
		<-s.done
	}
	s.state.Store(int32(Stopped))
}

// Done is closed once the scheduler goroutine has returned.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

// State returns the current loop state.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// LabelMode returns the label extraction mode used by Add.
func (s *Scheduler) LabelMode() LabelMode {
	return s.mode
}

// Capacity returns the maximum number of pending timers.
func (s *Scheduler) Capacity() int {
	return s.store.Capacity()
}

// Now returns the scheduler clock's current time.
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// Add parses text into a new timer and schedules it. It returns
// ErrCapacityExceeded, without consuming an id, when the store is full.
func (s *Scheduler) Add(text string) (Timer, error) {
	seconds, label := Parse(text, s.mode)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store.Len() >= s.store.Capacity() {
		s.log.Warning("rejected timer %q: %d timers running", label, s.store.Capacity())
		return Timer{}, ErrCapacityExceeded
	}
	t := NewTimer(s.nextID, s.clock.Now(), seconds, label)
	if err := s.store.Insert(t); err != nil {
		return Timer{}, err
	}
	s.nextID++
	s.log.Info("added timer %d (%s) expiring at %s", t.ID, t.Label, t.ExpiresAt.Format(time.RFC3339))
	return t, nil
}

// Remove cancels the timer with the given id.
func (s *Scheduler) Remove(id uint64) (Timer, error) {
	t, err := s.store.RemoveByID(id)
	if err != nil {
		return Timer{}, err
	}
	s.log.Info("removed timer %d (%s)", t.ID, t.Label)
	return t, nil
}

// List returns the pending timers in expiry order.
func (s *Scheduler) List() []Timer {
	return s.store.List()
}

// Len returns the number of pending timers.
func (s *Scheduler) Len() int {
	return s.store.Len()
}

// run is the scheduler goroutine. Each pass re-reads the store, fires at most
// one expired timer, and otherwise sleeps until the earliest deadline or the
// next store mutation, whichever comes first.
func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)
	defer s.state.Store(int32(Stopped))

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		default:
		}

		now := s.clock.Now()
		if t, ok := s.store.PopIfExpired(now); ok {
			s.log.Info("timer %d (%s) expired", t.ID, t.Label)
			s.onExpire(t)
			continue
		}

		var (
			timerC    <-chan time.Time
			stopTimer = func() bool { return false }
		)
		if next, ok := s.store.Peek(); ok {
			s.state.Store(int32(Waiting))
			wait := next.ExpiresAt.Sub(now)
			if wait < 0 {
				wait = 0
			}
			timerC, stopTimer = s.clock.NewTimer(wait)
		} else {
			// no deadline: block on the wake signal alone
			s.state.Store(int32(Idle))
		}

		select {
		case <-ctx.Done():
			stopTimer()
			return
		case <-s.stop:
			stopTimer()
			return
		case <-s.store.Wake():
		case <-timerC:
		}
		stopTimer()
	}
}
