package daemon

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"
)

func startRunner(t *testing.T, r *Runner) <-chan error {
	t.Helper()
	errCh := make(chan error, 1)
	go func() { errCh <- r.Start(context.Background()) }()
	select {
	case <-r.Ready():
	case err := <-errCh:
		t.Fatalf("Start returned early: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not become ready")
	}
	return errCh
}

func waitStopped(t *testing.T, errCh <-chan error) error {
	t.Helper()
	select {
	case err := <-errCh:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return")
	}
	return nil
}

func TestNewRunner_Defaults(t *testing.T) {
	r := New(nil, nil)
	if r.Config().Addr == "" {
		t.Fatal("expected default listen address")
	}
	if r.IsRunning() {
		t.Fatal("new runner must not be running")
	}
	if r.Addr() != nil {
		t.Fatal("expected nil Addr before Start")
	}
}

func TestRunner_ServesUntilShutdown(t *testing.T) {
	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})}
	r := New(&Config{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second}, &Dependencies{
		Serve: func(l net.Listener) error {
			if err := srv.Serve(l); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
		ShutdownFunc: srv.Shutdown,
	})
	errCh := startRunner(t, r)

	resp, err := http.Get("http://" + r.Addr().String())
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "pong" {
		t.Fatalf("unexpected body %q", body)
	}

	if err := r.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := waitStopped(t, errCh); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if r.IsRunning() {
		t.Fatal("runner still running after Shutdown")
	}
}

func TestRunner_Start_ReturnsErrorIfAlreadyRunning(t *testing.T) {
	r := New(&Config{Addr: "127.0.0.1:0"}, nil)
	errCh := startRunner(t, r)
	defer func() {
		_ = r.Shutdown()
		waitStopped(t, errCh)
	}()

	if err := r.Start(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestRunner_ListenerError(t *testing.T) {
	want := errors.New("address in use")
	r := New(&Config{Addr: "127.0.0.1:1"}, &Dependencies{
		ListenerFactory: func(string, string) (net.Listener, error) { return nil, want },
	})
	if err := r.Start(context.Background()); !errors.Is(err, want) {
		t.Fatalf("expected listener error, got %v", err)
	}
	if r.IsRunning() {
		t.Fatal("runner must not be running after a listen failure")
	}
}

func TestRunner_ServeErrorStopsRunner(t *testing.T) {
	want := errors.New("serve failed")
	r := New(&Config{Addr: "127.0.0.1:0"}, &Dependencies{
		Serve: func(net.Listener) error { return want },
	})
	if err := r.Start(context.Background()); !errors.Is(err, want) {
		t.Fatalf("expected serve error, got %v", err)
	}
	if r.IsRunning() {
		t.Fatal("runner must stop when Serve fails")
	}
}

func TestRunner_Shutdown_NotRunning(t *testing.T) {
	r := New(nil, nil)
	if err := r.Shutdown(); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning, got %v", err)
	}
}

func TestRunner_Shutdown_Timeout(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	r := New(&Config{Addr: "127.0.0.1:0", ShutdownTimeout: 50 * time.Millisecond}, &Dependencies{
		ShutdownFunc: func(context.Context) error {
			<-block
			return nil
		},
	})
	errCh := startRunner(t, r)

	start := time.Now()
	if err := r.Shutdown(); !errors.Is(err, ErrShutdownTimeout) {
		t.Fatalf("expected ErrShutdownTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("shutdown took %v", elapsed)
	}
	waitStopped(t, errCh)
	if r.IsRunning() {
		t.Fatal("runner must stop even when cleanup times out")
	}
}

func TestRunner_Shutdown_ContextDeadline(t *testing.T) {
	r := New(&Config{Addr: "127.0.0.1:0", ShutdownTimeout: 50 * time.Millisecond}, &Dependencies{
		ShutdownFunc: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	})
	errCh := startRunner(t, r)
	if err := r.Shutdown(); !errors.Is(err, ErrShutdownTimeout) {
		t.Fatalf("expected ErrShutdownTimeout, got %v", err)
	}
	waitStopped(t, errCh)
}

func TestRunner_Shutdown_ReturnsCleanupError(t *testing.T) {
	want := errors.New("cleanup failed")
	var calls atomic.Int32
	r := New(&Config{Addr: "127.0.0.1:0"}, &Dependencies{
		ShutdownFunc: func(context.Context) error {
			calls.Add(1)
			return want
		},
	})
	errCh := startRunner(t, r)
	if err := r.Shutdown(); !errors.Is(err, want) {
		t.Fatalf("expected cleanup error, got %v", err)
	}
	waitStopped(t, errCh)
	if calls.Load() != 1 {
		t.Fatalf("expected one cleanup call, got %d", calls.Load())
	}
	if err := r.Shutdown(); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("second Shutdown: expected ErrNotRunning, got %v", err)
	}
}

func TestRunner_ContextCancellationStopsRunner(t *testing.T) {
	r := New(&Config{Addr: "127.0.0.1:0"}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- r.Start(ctx) }()
	<-r.Ready()

	cancel()
	if err := waitStopped(t, errCh); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if r.IsRunning() || r.Addr() != nil {
		t.Fatal("runner must release its listener when ctx is cancelled")
	}
}
