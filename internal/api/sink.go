package api

import (
	"strings"

	"github.com/warpdl/warpalarm/internal/scheduler"
	"github.com/warpdl/warpalarm/pkg/logger"
)

// EventKind identifies what an Event reports.
type EventKind int

const (
	EventAdded EventKind = iota + 1
	EventRejected
	EventRemoved
	EventNotFound
	EventList
	EventExpired
)

func (k EventKind) String() string {
	switch k {
	case EventAdded:
		return "added"
	case EventRejected:
		return "rejected"
	case EventRemoved:
		return "removed"
	case EventNotFound:
		return "not_found"
	case EventList:
		return "list"
	case EventExpired:
		return "expired"
	}
	return "unknown"
}

// Event is one notification produced by the Api. Lines holds the exact text
// shown to the user. Timer is set for added, removed and expired events.
type Event struct {
	Kind  EventKind
	Timer scheduler.Timer
	Lines []string
}

// Sink receives every Event. Expired events arrive on the scheduler
// goroutine, all others on the caller's goroutine.
type Sink interface {
	Notify(e Event)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(e Event)

// Notify calls f(e).
func (f SinkFunc) Notify(e Event) { f(e) }

// MultiSink delivers each event to every sink in order.
type MultiSink []Sink

// Notify forwards e to all sinks.
func (m MultiSink) Notify(e Event) {
	for _, s := range m {
		if s != nil {
			s.Notify(e)
		}
	}
}

type logSink struct {
	log logger.Logger
}

// LogSink writes each event's lines to l at info level.
func LogSink(l logger.Logger) Sink {
	return &logSink{log: l}
}

func (s *logSink) Notify(e Event) {
	s.log.Info("%s: %s", e.Kind, strings.Join(e.Lines, " | "))
}
