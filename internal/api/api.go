// Package api is the command layer between user text and the scheduler.
// It turns add, remove and list requests into scheduler calls and renders
// every outcome as the text lines the user sees.
package api

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/warpdl/warpalarm/internal/scheduler"
	"github.com/warpdl/warpalarm/pkg/logger"
)

// User-facing replies.
const (
	MsgAdded       = "Timer added."
	MsgTooMany     = "Too many timers running, can't create a new one."
	MsgRemoved     = "Removed the timer."
	MsgNotFound    = "Timer doesn't exist."
	MsgNoTimers    = "There are no timers running at the moment."
	msgUnknownCmd  = "Unknown command: "
	addCommandWord = "add "
)

var idPattern = regexp.MustCompile(`([0-9]{1,5})`)

type Api struct {
	log   logger.Logger
	sched *scheduler.Scheduler
	sink  Sink
}

// NewApi creates the command layer and its scheduler. Events, including
// asynchronous expiries, are delivered to sink.
func NewApi(l logger.Logger, sink Sink, opts *scheduler.Options) (*Api, error) {
	if l == nil {
		l = logger.NewNopLogger()
	}
	if sink == nil {
		sink = MultiSink{}
	}
	a := &Api{
		log:  l,
		sink: sink,
	}
	o := scheduler.Options{}
	if opts != nil {
		o = *opts
	}
	if o.Logger == nil {
		o.Logger = l
	}
	a.sched = scheduler.New(a.expired, &o)
	return a, nil
}

// Start runs the scheduler until ctx is cancelled or Close is called.
func (a *Api) Start(ctx context.Context) {
	a.sched.Start(ctx)
}

// Close stops the scheduler and waits for it to exit.
func (a *Api) Close() error {
	a.sched.Shutdown()
	return nil
}

// Scheduler returns the underlying scheduler.
func (a *Api) Scheduler() *scheduler.Scheduler {
	return a.sched
}

func (a *Api) expired(t scheduler.Timer) {
	a.sink.Notify(Event{
		Kind:  EventExpired,
		Timer: t,
		Lines: []string{scheduler.ExpiredMessage(t)},
	})
}

func (a *Api) emit(kind EventKind, t scheduler.Timer, lines ...string) []string {
	a.sink.Notify(Event{Kind: kind, Timer: t, Lines: lines})
	return lines
}

// Add schedules a timer from args, the text following the add command
// ("10m30s tea"). In offset label mode the command word is put back in
// front so the label starts right after it.
func (a *Api) Add(args string) (scheduler.Timer, []string, error) {
	text := args
	if a.sched.LabelMode() == scheduler.LabelOffset {
		text = addCommandWord + args
	}
	return a.addText(text)
}

// addText schedules a timer from the full text the label is taken from.
func (a *Api) addText(text string) (scheduler.Timer, []string, error) {
	t, err := a.sched.Add(text)
	if err != nil {
		if errors.Is(err, scheduler.ErrCapacityExceeded) {
			return scheduler.Timer{}, a.emit(EventRejected, scheduler.Timer{}, MsgTooMany), err
		}
		return scheduler.Timer{}, nil, err
	}
	return t, a.emit(EventAdded, t, MsgAdded), nil
}

// ParseID returns the first run of up to five digits in text.
func ParseID(text string) (uint64, bool) {
	m := idPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Remove cancels the timer whose id appears in text.
func (a *Api) Remove(text string) (scheduler.Timer, []string, error) {
	id, ok := ParseID(text)
	if !ok {
		return scheduler.Timer{}, a.emit(EventNotFound, scheduler.Timer{}, MsgNotFound), scheduler.ErrTimerNotFound
	}
	return a.RemoveID(id)
}

// RemoveID cancels the timer with the given id.
func (a *Api) RemoveID(id uint64) (scheduler.Timer, []string, error) {
	t, err := a.sched.Remove(id)
	if err != nil {
		return scheduler.Timer{}, a.emit(EventNotFound, scheduler.Timer{}, MsgNotFound), err
	}
	return t, a.emit(EventRemoved, t, MsgRemoved), nil
}

// List returns the pending timers and their rendering. Remaining times are
// computed at the moment of the call.
func (a *Api) List() ([]scheduler.Timer, []string) {
	timers := a.sched.List()
	if len(timers) == 0 {
		return timers, a.emit(EventList, scheduler.Timer{}, MsgNoTimers)
	}
	now := a.sched.Now()
	lines := make([]string, 0, 2*len(timers))
	for _, t := range timers {
		lines = append(lines, scheduler.ListLines(t, now)...)
	}
	return timers, a.emit(EventList, scheduler.Timer{}, lines...)
}

// Help lists the supported commands.
func (a *Api) Help() []string {
	return []string{
		"add <duration> <reason>: add a timer, e.g. add 1h30m tea",
		"remove <timer id>: remove a timer",
		"list: list all timers",
	}
}

// Command dispatches a full command line such as "add 10m tea".
func (a *Api) Command(line string) []string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return a.Help()
	}
	word := strings.ToLower(fields[0])
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))
	switch word {
	case "add":
		var (
			lines []string
			err   error
		)
		if a.sched.LabelMode() == scheduler.LabelOffset {
			// the label is everything after the first four characters of
			// the line, spacing included
			_, lines, err = a.addText(strings.TrimLeft(line, " \t"))
		} else {
			_, lines, err = a.Add(rest)
		}
		if err != nil && lines == nil {
			a.log.Error("add %q: %v", rest, err)
		}
		return lines
	case "remove":
		_, lines, _ := a.Remove(rest)
		return lines
	case "list":
		_, lines := a.List()
		return lines
	case "help":
		return a.Help()
	}
	return []string{msgUnknownCmd + fields[0]}
}
