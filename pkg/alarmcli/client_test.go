package alarmcli

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/warpdl/warpalarm/common"
	"github.com/warpdl/warpalarm/internal/api"
	"github.com/warpdl/warpalarm/internal/scheduler"
	"github.com/warpdl/warpalarm/internal/server"
	"github.com/warpdl/warpalarm/pkg/logger"
)

const testSecret = "client-secret"

// newTestDaemon serves a full daemon stack on an httptest server and
// returns its address.
func newTestDaemon(t *testing.T, opts *scheduler.Options) string {
	t.Helper()
	l := logger.NewNopLogger()
	n, err := server.NewRPCNotifier(l, 2)
	if err != nil {
		t.Fatalf("NewRPCNotifier: %v", err)
	}
	a, err := api.NewApi(l, n, opts)
	if err != nil {
		t.Fatalf("NewApi: %v", err)
	}
	a.Start(context.Background())
	rs := server.NewRPCServer(l, &server.RPCConfig{Secret: testSecret, Version: "v1.2.3"}, a, n)
	srv := server.NewServer(l, rs)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
		ts.Close()
		_ = a.Close()
		n.Close()
	})
	return strings.TrimPrefix(ts.URL, "http://")
}

func newTestClient(t *testing.T, addr string, d *Dispatcher) *Client {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	c, err := NewClient(ctx, addr, testSecret, &Options{Dispatcher: d})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestURL(t *testing.T) {
	tests := map[string]string{
		"127.0.0.1:9411":           "ws://127.0.0.1:9411/jsonrpc/ws",
		"http://localhost:1":       "ws://localhost:1/jsonrpc/ws",
		"ws://host:2/jsonrpc/ws":   "ws://host:2/jsonrpc/ws",
		"wss://host:3/custom/path": "wss://host:3/custom/path",
	}
	for in, want := range tests {
		if got := URL(in); got != want {
			t.Errorf("URL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClient_Unauthorized(t *testing.T) {
	addr := newTestDaemon(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := NewClient(ctx, addr, "wrong", nil)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestClient_AddListRemove(t *testing.T) {
	addr := newTestDaemon(t, &scheduler.Options{LabelMode: scheduler.LabelStrip})
	c := newTestClient(t, addr, nil)
	ctx := context.Background()

	added, err := c.Add(ctx, "1h1m1s stretch")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if added.ID != 1 || added.Label != "stretch" || added.Message != api.MsgAdded {
		t.Fatalf("unexpected add result %+v", added)
	}

	list, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list.Timers) != 1 || list.Timers[0].Label != "stretch" {
		t.Fatalf("unexpected timers %+v", list.Timers)
	}
	if list.Lines[0] != "Timer: stretch. Timer id: 1" || !strings.HasPrefix(list.Lines[1], "Expires in: 1:01:0") {
		t.Fatalf("unexpected lines %q", list.Lines)
	}

	res, err := c.Remove(ctx, added.ID)
	if err != nil || res.Message != api.MsgRemoved {
		t.Fatalf("Remove: %v %+v", err, res)
	}
	_, err = c.Remove(ctx, added.ID)
	if !errors.Is(err, ErrTimerNotFound) {
		t.Fatalf("expected ErrTimerNotFound, got %v", err)
	}
	if err.Error() != api.MsgNotFound {
		t.Fatalf("expected daemon message, got %q", err.Error())
	}
	if _, err := c.RemoveText(ctx, "remove 77"); !errors.Is(err, ErrTimerNotFound) {
		t.Fatalf("expected ErrTimerNotFound, got %v", err)
	}
}

func TestClient_TooManyTimers(t *testing.T) {
	addr := newTestDaemon(t, &scheduler.Options{MaxTimers: 1})
	c := newTestClient(t, addr, nil)
	ctx := context.Background()
	if _, err := c.Add(ctx, "1h a"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	_, err := c.Add(ctx, "1h b")
	if !errors.Is(err, ErrTooManyTimers) || err.Error() != api.MsgTooMany {
		t.Fatalf("expected ErrTooManyTimers, got %v", err)
	}
}

func TestClient_CommandAndVersion(t *testing.T) {
	addr := newTestDaemon(t, nil)
	c := newTestClient(t, addr, nil)
	ctx := context.Background()

	lines, err := c.Command(ctx, "list")
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	if len(lines) != 1 || lines[0] != api.MsgNoTimers {
		t.Fatalf("unexpected lines %q", lines)
	}
	v, err := c.Version(ctx)
	if err != nil || v.Version != "v1.2.3" {
		t.Fatalf("Version: %v %+v", err, v)
	}

	var buf bytes.Buffer
	c.CheckVersionMismatch(ctx, &buf, "v1.2.3")
	if buf.Len() != 0 {
		t.Fatalf("unexpected warning %q", buf.String())
	}
	c.CheckVersionMismatch(ctx, &buf, "v9.9.9")
	if !strings.Contains(buf.String(), "differs") {
		t.Fatalf("expected mismatch warning, got %q", buf.String())
	}
}

func TestClient_ExpiryNotification(t *testing.T) {
	addr := newTestDaemon(t, &scheduler.Options{LabelMode: scheduler.LabelStrip})
	d := NewDispatcher()
	expired := make(chan *common.TimerNotification, 1)
	d.On(common.NotifyAlarmExpired, func(_ string, n *common.TimerNotification) {
		expired <- n
	})
	var (
		mu    sync.Mutex
		other []string
	)
	d.OnAny(func(method string, _ *common.TimerNotification) {
		mu.Lock()
		defer mu.Unlock()
		other = append(other, method)
	})
	c := newTestClient(t, addr, d)

	if _, err := c.Add(context.Background(), "1s test"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	select {
	case n := <-expired:
		if n.Message != "Timer expired: test" || n.ID != 1 {
			t.Fatalf("unexpected notification %+v", n)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no expiry notification")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(other) == 0 || other[0] != common.NotifyAlarmAdded {
		t.Fatalf("expected added push via fallback, got %v", other)
	}
}

func TestClient_DoneOnClose(t *testing.T) {
	addr := newTestDaemon(t, nil)
	c := newTestClient(t, addr, nil)
	_ = c.Close()
	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Done not closed after Close")
	}
	if _, err := c.List(context.Background()); err == nil {
		t.Fatal("expected call after Close to fail")
	}
}
