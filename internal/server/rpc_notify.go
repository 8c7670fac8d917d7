package server

import (
	"context"
	"sync"

	"github.com/creachadair/jrpc2"
	"github.com/panjf2000/ants"
	"github.com/warpdl/warpalarm/common"
	"github.com/warpdl/warpalarm/internal/api"
	"github.com/warpdl/warpalarm/pkg/logger"
)

const (
	// DefaultPushWorkers bounds concurrent pushes across all sessions.
	DefaultPushWorkers = 8

	// pushQueueSize is how many events may wait for delivery before new
	// ones are dropped.
	pushQueueSize = 256
)

type pushJob struct {
	method string
	params *common.TimerNotification
}

// RPCNotifier maintains the set of connected WebSocket sessions and pushes
// alarm events to all of them. It implements api.Sink.
//
// Notify only queues the event; a single goroutine broadcasts queued events
// in order, so the scheduler goroutine never waits on a slow session.
type RPCNotifier struct {
	mu      sync.RWMutex
	servers map[*jrpc2.Server]struct{}
	pool    *ants.Pool
	log     logger.Logger

	queue     chan pushJob
	quit      chan struct{}
	loopDone  chan struct{}
	closeOnce sync.Once
}

// NewRPCNotifier creates a notifier whose pushes run on a pool of workers.
func NewRPCNotifier(l logger.Logger, workers int) (*RPCNotifier, error) {
	if l == nil {
		l = logger.NewNopLogger()
	}
	if workers <= 0 {
		workers = DefaultPushWorkers
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	n := &RPCNotifier{
		servers:  make(map[*jrpc2.Server]struct{}),
		pool:     pool,
		log:      l,
		queue:    make(chan pushJob, pushQueueSize),
		quit:     make(chan struct{}),
		loopDone: make(chan struct{}),
	}
	go n.deliver()
	return n, nil
}

func (n *RPCNotifier) deliver() {
	defer close(n.loopDone)
	for {
		select {
		case <-n.quit:
			return
		case job := <-n.queue:
			n.Broadcast(job.method, job.params)
		}
	}
}

// Register adds a session to the broadcast set.
func (n *RPCNotifier) Register(srv *jrpc2.Server) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.servers[srv] = struct{}{}
}

// Unregister removes a session from the broadcast set.
func (n *RPCNotifier) Unregister(srv *jrpc2.Server) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.servers, srv)
}

// Count returns the number of registered sessions.
func (n *RPCNotifier) Count() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.servers)
}

// Notify maps timer events onto push notifications and queues them without
// blocking. List and not-found events are replies to a single caller and are
// not broadcast.
func (n *RPCNotifier) Notify(e api.Event) {
	var method string
	switch e.Kind {
	case api.EventAdded:
		method = common.NotifyAlarmAdded
	case api.EventRemoved:
		method = common.NotifyAlarmRemoved
	case api.EventExpired:
		method = common.NotifyAlarmExpired
	default:
		return
	}
	msg := ""
	if len(e.Lines) > 0 {
		msg = e.Lines[0]
	}
	job := pushJob{method: method, params: &common.TimerNotification{
		ID:      e.Timer.ID,
		Label:   e.Timer.Label,
		Message: msg,
	}}
	select {
	case <-n.quit:
	case n.queue <- job:
	default:
		n.log.Warning("push queue full, dropping %s for timer %d", method, e.Timer.ID)
	}
}

// Broadcast pushes one notification to every session and waits for the
// sends to finish. Sessions that fail to receive are dropped. A session
// that stops reading holds a send for at most the WebSocket write timeout.
func (n *RPCNotifier) Broadcast(method string, params any) {
	n.mu.RLock()
	servers := make([]*jrpc2.Server, 0, len(n.servers))
	for srv := range n.servers {
		servers = append(servers, srv)
	}
	n.mu.RUnlock()
	if len(servers) == 0 {
		return
	}

	var (
		wg       sync.WaitGroup
		failedMu sync.Mutex
		failed   []*jrpc2.Server
	)
	for _, srv := range servers {
		srv := srv
		wg.Add(1)
		task := func() {
			defer wg.Done()
			if err := srv.Notify(context.Background(), method, params); err != nil {
				n.log.Warning("push %s failed: %v", method, err)
				failedMu.Lock()
				failed = append(failed, srv)
				failedMu.Unlock()
			}
		}
		if err := n.pool.Submit(task); err != nil {
			n.log.Error("push %s not scheduled: %v", method, err)
			wg.Done()
		}
	}
	wg.Wait()

	if len(failed) > 0 {
		n.mu.Lock()
		for _, srv := range failed {
			delete(n.servers, srv)
		}
		n.mu.Unlock()
	}
}

// Close stops delivery and releases the worker pool. Events still queued
// and events notified after Close are dropped.
func (n *RPCNotifier) Close() {
	n.closeOnce.Do(func() {
		close(n.quit)
		<-n.loopDone
		n.pool.Release()
	})
}

var _ api.Sink = (*RPCNotifier)(nil)
