package alarmcli

import (
	"sync"

	"github.com/creachadair/jrpc2"
	"github.com/warpdl/warpalarm/common"
)

// NotificationHandler is called for each push of the method it is
// registered for.
type NotificationHandler func(method string, n *common.TimerNotification)

// Dispatcher routes push notifications to registered handlers. Handlers run
// on the client's receive goroutine and must not call back into the Client.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]NotificationHandler
	fallback NotificationHandler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string][]NotificationHandler)}
}

// On registers h for method, e.g. common.NotifyAlarmExpired.
func (d *Dispatcher) On(method string, h NotificationHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[method] = append(d.handlers[method], h)
}

// OnAny registers h for methods without a specific handler.
func (d *Dispatcher) OnAny(h NotificationHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fallback = h
}

func (d *Dispatcher) dispatch(req *jrpc2.Request) {
	var n common.TimerNotification
	if err := req.UnmarshalParams(&n); err != nil {
		return
	}
	d.mu.RLock()
	hs := d.handlers[req.Method()]
	fallback := d.fallback
	d.mu.RUnlock()
	if len(hs) == 0 && fallback != nil {
		fallback(req.Method(), &n)
		return
	}
	for _, h := range hs {
		h(req.Method(), &n)
	}
}
