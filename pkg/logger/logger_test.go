package logger

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

func TestStandardLogger_Info(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New("scheduler", buf)

	logger.Info("test message %d", 123)

	output := buf.String()
	if !strings.Contains(output, "level=info") {
		t.Errorf("expected info level, got: %s", output)
	}
	if !strings.Contains(output, "[scheduler] test message 123") {
		t.Errorf("expected owner-prefixed message, got: %s", output)
	}
}

func TestStandardLogger_Warning(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New("scheduler", buf)

	logger.Warning("warning message %s", "test")

	output := buf.String()
	if !strings.Contains(output, "level=warning") {
		t.Errorf("expected warning level, got: %s", output)
	}
	if !strings.Contains(output, "warning message test") {
		t.Errorf("expected message content, got: %s", output)
	}
}

func TestStandardLogger_Error(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New("scheduler", buf)

	logger.Error("error message: %v", "failed")

	output := buf.String()
	if !strings.Contains(output, "level=error") {
		t.Errorf("expected error level, got: %s", output)
	}
	if !strings.Contains(output, "error message: failed") {
		t.Errorf("expected message content, got: %s", output)
	}
}

func TestStandardLogger_WrapsLogrus(t *testing.T) {
	buf := &bytes.Buffer{}
	l := logrus.New()
	l.SetOutput(buf)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger := NewStandardLogger(l)

	logger.Info("plain")
	if !strings.Contains(buf.String(), "msg=plain") {
		t.Errorf("expected message from wrapped logger, got: %s", buf.String())
	}
}

func TestStandardLogger_Close(t *testing.T) {
	logger := New("scheduler", io.Discard)

	err := logger.Close()
	if err != nil {
		t.Errorf("expected nil error, got: %v", err)
	}
}

func TestToStdLogger(t *testing.T) {
	mock := NewMockLogger()
	std := ToStdLogger(mock)
	std.Println("http: TLS handshake error")

	infos := mock.Infos()
	if len(infos) != 1 || infos[0] != "http: TLS handshake error" {
		t.Fatalf("expected forwarded line, got %v", infos)
	}
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()

	// Should not panic
	logger.Info("test")
	logger.Warning("test")
	logger.Error("test")

	err := logger.Close()
	if err != nil {
		t.Errorf("expected nil error, got: %v", err)
	}
}

func TestMockLogger_RecordsCalls(t *testing.T) {
	logger := NewMockLogger()

	logger.Info("info %d", 1)
	logger.Info("info %d", 2)
	logger.Warning("warn %s", "test")
	logger.Error("err %v", "fail")

	if len(logger.InfoCalls) != 2 {
		t.Errorf("expected 2 info calls, got %d", len(logger.InfoCalls))
	}
	if logger.InfoCalls[0] != "info 1" {
		t.Errorf("expected 'info 1', got %s", logger.InfoCalls[0])
	}
	if logger.InfoCalls[1] != "info 2" {
		t.Errorf("expected 'info 2', got %s", logger.InfoCalls[1])
	}

	if len(logger.WarningCalls) != 1 {
		t.Errorf("expected 1 warning call, got %d", len(logger.WarningCalls))
	}
	if logger.WarningCalls[0] != "warn test" {
		t.Errorf("expected 'warn test', got %s", logger.WarningCalls[0])
	}

	if len(logger.ErrorCalls) != 1 {
		t.Errorf("expected 1 error call, got %d", len(logger.ErrorCalls))
	}
	if logger.ErrorCalls[0] != "err fail" {
		t.Errorf("expected 'err fail', got %s", logger.ErrorCalls[0])
	}
}

func TestMockLogger_Close(t *testing.T) {
	logger := NewMockLogger()

	if logger.CloseCalled {
		t.Error("CloseCalled should be false initially")
	}

	err := logger.Close()
	if err != nil {
		t.Errorf("expected nil error, got: %v", err)
	}

	if !logger.CloseCalled {
		t.Error("CloseCalled should be true after Close()")
	}
}

func TestMultiLogger_BroadcastsToAll(t *testing.T) {
	mock1 := NewMockLogger()
	mock2 := NewMockLogger()

	multi := NewMultiLogger(mock1, mock2)

	multi.Info("info msg")
	multi.Warning("warn msg")
	multi.Error("error msg")

	// Check mock1 received all
	if len(mock1.InfoCalls) != 1 || mock1.InfoCalls[0] != "info msg" {
		t.Error("mock1 should receive info message")
	}
	if len(mock1.WarningCalls) != 1 || mock1.WarningCalls[0] != "warn msg" {
		t.Error("mock1 should receive warning message")
	}
	if len(mock1.ErrorCalls) != 1 || mock1.ErrorCalls[0] != "error msg" {
		t.Error("mock1 should receive error message")
	}

	// Check mock2 received all
	if len(mock2.InfoCalls) != 1 || mock2.InfoCalls[0] != "info msg" {
		t.Error("mock2 should receive info message")
	}
	if len(mock2.WarningCalls) != 1 || mock2.WarningCalls[0] != "warn msg" {
		t.Error("mock2 should receive warning message")
	}
	if len(mock2.ErrorCalls) != 1 || mock2.ErrorCalls[0] != "error msg" {
		t.Error("mock2 should receive error message")
	}
}

func TestMultiLogger_Close(t *testing.T) {
	mock1 := NewMockLogger()
	mock2 := NewMockLogger()

	multi := NewMultiLogger(mock1, mock2)

	err := multi.Close()
	if err != nil {
		t.Errorf("expected nil error, got: %v", err)
	}

	if !mock1.CloseCalled {
		t.Error("mock1 should be closed")
	}
	if !mock2.CloseCalled {
		t.Error("mock2 should be closed")
	}
}

func TestMultiLogger_EmptyLoggers(t *testing.T) {
	multi := NewMultiLogger()

	// Should not panic with no loggers
	multi.Info("test")
	multi.Warning("test")
	multi.Error("test")
	err := multi.Close()
	if err != nil {
		t.Errorf("expected nil error, got: %v", err)
	}
}

// FailingCloseLogger is a logger that returns an error on Close().
// Used for testing MultiLogger error propagation.
type FailingCloseLogger struct {
	NopLogger
	closeErr error
}

func NewFailingCloseLogger(err error) *FailingCloseLogger {
	return &FailingCloseLogger{closeErr: err}
}

func (f *FailingCloseLogger) Close() error {
	return f.closeErr
}

// Ensure FailingCloseLogger satisfies Logger interface.
var _ Logger = (*FailingCloseLogger)(nil)

func TestMultiLogger_Close_ReturnsFirstError(t *testing.T) {
	err1 := errors.New("logger1 failed to close")
	err2 := errors.New("logger2 failed to close")

	failing1 := NewFailingCloseLogger(err1)
	failing2 := NewFailingCloseLogger(err2)
	mock := NewMockLogger()

	// First logger fails, second succeeds, third fails
	multi := NewMultiLogger(failing1, mock, failing2)

	err := multi.Close()

	// The first error leads the combined error
	if errs := multierr.Errors(err); len(errs) == 0 || errs[0] != err1 {
		t.Errorf("expected first error %v to lead, got %v", err1, err)
	}
	if !errors.Is(err, err1) {
		t.Errorf("expected first error %v, got %v", err1, err)
	}

	// All loggers should still be closed (mock should have CloseCalled=true)
	if !mock.CloseCalled {
		t.Error("expected mock logger to be closed even after first error")
	}
}

func TestMultiLogger_Close_SingleFailingLogger(t *testing.T) {
	expectedErr := errors.New("close failed")
	failing := NewFailingCloseLogger(expectedErr)

	multi := NewMultiLogger(failing)

	err := multi.Close()
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}

func TestMultiLogger_Close_AllFail(t *testing.T) {
	err1 := errors.New("error1")
	err2 := errors.New("error2")
	err3 := errors.New("error3")

	multi := NewMultiLogger(
		NewFailingCloseLogger(err1),
		NewFailingCloseLogger(err2),
		NewFailingCloseLogger(err3),
	)

	err := multi.Close()

	// Every failure is reported
	if got := len(multierr.Errors(err)); got != 3 {
		t.Errorf("expected 3 combined errors, got %d (%v)", got, err)
	}
	for _, want := range []error{err1, err2, err3} {
		if !errors.Is(err, want) {
			t.Errorf("expected %v in %v", want, err)
		}
	}
}

type closeCounter struct {
	bytes.Buffer
	closed int
}

func (c *closeCounter) Close() error {
	c.closed++
	return nil
}

func TestFileLogger_ClosesWriterOnce(t *testing.T) {
	w := &closeCounter{}
	logger := NewFileLogger("daemon", w)
	logger.Info("to file")
	if !strings.Contains(w.String(), "[daemon] to file") {
		t.Fatalf("expected entry in writer, got %q", w.String())
	}
	_ = logger.Close()
	_ = logger.Close()
	if w.closed != 1 {
		t.Fatalf("expected writer closed once, got %d", w.closed)
	}
}

func TestMultiLogger_Close_MixedSuccessAndFailure(t *testing.T) {
	closeErr := errors.New("failed")

	mock1 := NewMockLogger()
	failing := NewFailingCloseLogger(closeErr)
	mock2 := NewMockLogger()

	multi := NewMultiLogger(mock1, failing, mock2)

	err := multi.Close()

	if !errors.Is(err, closeErr) {
		t.Errorf("expected %v, got %v", closeErr, err)
	}
	// All loggers should be attempted
	if !mock1.CloseCalled {
		t.Error("mock1 should be closed")
	}
	if !mock2.CloseCalled {
		t.Error("mock2 should be closed even after failure")
	}
}
