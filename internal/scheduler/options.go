package scheduler

import (
	"time"

	"github.com/warpdl/warpalarm/pkg/logger"
)

const (
	// DefaultMaxTimers is the default cap on concurrently pending timers.
	DefaultMaxTimers = 16

	// DefaultIDSeed is the first id handed out by a new Scheduler.
	DefaultIDSeed uint64 = 1
)

// Clock supplies the current time and timers to the scheduler loop.
// Tests replace it to drive the loop without sleeping.
type Clock interface {
	Now() time.Time
	// NewTimer returns a channel that fires once after d, and a stop function.
	NewTimer(d time.Duration) (<-chan time.Time, func() bool)
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) NewTimer(d time.Duration) (<-chan time.Time, func() bool) {
	t := time.NewTimer(d)
	return t.C, t.Stop
}

// SystemClock returns the wall clock.
func SystemClock() Clock {
	return systemClock{}
}

// Options configures a Scheduler. The zero value is usable.
type Options struct {
	// MaxTimers caps the number of pending timers. Defaults to DefaultMaxTimers.
	MaxTimers int

	// IDSeed is the first timer id. Defaults to DefaultIDSeed.
	IDSeed uint64

	// LabelMode selects label extraction. Defaults to LabelOffset.
	LabelMode LabelMode

	// Clock defaults to the system clock.
	Clock Clock

	// Logger defaults to a NopLogger.
	Logger logger.Logger
}

func applyOptionDefaults(opts *Options) Options {
	var o Options
	if opts != nil {
		o = *opts
	}
	if o.MaxTimers <= 0 {
		o.MaxTimers = DefaultMaxTimers
	}
	if o.IDSeed == 0 {
		o.IDSeed = DefaultIDSeed
	}
	if o.Clock == nil {
		o.Clock = SystemClock()
	}
	if o.Logger == nil {
		o.Logger = logger.NewNopLogger()
	}
	return o
}
