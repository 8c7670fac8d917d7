// Package logger provides the logging interface used across warpalarm.
// The console backend is logrus; tests use NopLogger or MockLogger.
package logger

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger defines the interface for leveled logging across all warpalarm components.
type Logger interface {
	// Info logs an informational message (e.g., "added timer 3").
	Info(format string, args ...interface{})

	// Warning logs a warning message (e.g., "rejected timer: store full").
	Warning(format string, args ...interface{})

	// Error logs an error message (e.g., "failed to start server: address in use").
	Error(format string, args ...interface{})

	// Close releases resources held by the logger.
	// Safe to call multiple times. Returns nil for loggers without resources.
	Close() error
}

// ownerFormatter prefixes every entry with the owning component.
type ownerFormatter struct {
	owner string
	lf    logrus.Formatter
}

// Format satisfies the logrus.Formatter interface.
func (f *ownerFormatter) Format(e *logrus.Entry) ([]byte, error) {
	e.Message = fmt.Sprintf("[%s] %s", f.owner, e.Message)
	return f.lf.Format(e)
}

// StandardLogger wraps a *logrus.Logger for console/file output.
type StandardLogger struct {
	logger *logrus.Logger
	closer io.Closer
	once   sync.Once
}

// New creates a console logger writing to w whose entries are tagged with owner.
// A nil w writes to stderr.
func New(owner string, w io.Writer) *StandardLogger {
	l := logrus.New()
	if w != nil {
		l.SetOutput(w)
	}
	l.SetFormatter(&ownerFormatter{
		owner: owner,
		lf: &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.StampMilli,
		},
	})
	return NewStandardLogger(l)
}

// NewFileLogger is like New but owns w and closes it on Close.
func NewFileLogger(owner string, w io.WriteCloser) *StandardLogger {
	s := New(owner, w)
	s.closer = w
	return s
}

// NewStandardLogger creates a logger that wraps the given *logrus.Logger.
func NewStandardLogger(l *logrus.Logger) *StandardLogger {
	return &StandardLogger{logger: l}
}

// SetDebug toggles logrus debug level on the underlying logger.
func (s *StandardLogger) SetDebug(on bool) {
	if on {
		s.logger.SetLevel(logrus.DebugLevel)
		return
	}
	s.logger.SetLevel(logrus.InfoLevel)
}

// Info logs at logrus info level.
func (s *StandardLogger) Info(format string, args ...interface{}) {
	s.logger.Infof(format, args...)
}

// Warning logs at logrus warn level.
func (s *StandardLogger) Warning(format string, args ...interface{}) {
	s.logger.Warnf(format, args...)
}

// Error logs at logrus error level.
func (s *StandardLogger) Error(format string, args ...interface{}) {
	s.logger.Errorf(format, args...)
}

// Close closes the underlying writer when the logger owns one.
func (s *StandardLogger) Close() (err error) {
	if s.closer == nil {
		return nil
	}
	s.once.Do(func() {
		err = s.closer.Close()
	})
	return err
}

// NopLogger is a logger that discards all messages.
// Useful for testing or when logging should be disabled.
type NopLogger struct{}

// NewNopLogger creates a logger that discards all messages.
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

// Info discards the message.
func (n *NopLogger) Info(format string, args ...interface{}) {}

// Warning discards the message.
func (n *NopLogger) Warning(format string, args ...interface{}) {}

// Error discards the message.
func (n *NopLogger) Error(format string, args ...interface{}) {}

// Close is a no-op.
func (n *NopLogger) Close() error {
	return nil
}

// Ensure implementations satisfy the Logger interface.
var (
	_ Logger = (*StandardLogger)(nil)
	_ Logger = (*NopLogger)(nil)
)

// MockLogger implements Logger for testing purposes.
// It records all log calls for verification in tests and is safe for
// concurrent use.
type MockLogger struct {
	mu           sync.Mutex
	InfoCalls    []string
	WarningCalls []string
	ErrorCalls   []string
	CloseCalled  bool
}

// NewMockLogger creates a new MockLogger for testing.
func NewMockLogger() *MockLogger {
	return &MockLogger{
		InfoCalls:    make([]string, 0),
		WarningCalls: make([]string, 0),
		ErrorCalls:   make([]string, 0),
	}
}

// Info records the formatted message.
func (m *MockLogger) Info(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InfoCalls = append(m.InfoCalls, fmt.Sprintf(format, args...))
}

// Warning records the formatted message.
func (m *MockLogger) Warning(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WarningCalls = append(m.WarningCalls, fmt.Sprintf(format, args...))
}

// Error records the formatted message.
func (m *MockLogger) Error(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ErrorCalls = append(m.ErrorCalls, fmt.Sprintf(format, args...))
}

// Close records that Close was called.
func (m *MockLogger) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalled = true
	return nil
}

// Infos returns a snapshot of the recorded info messages.
func (m *MockLogger) Infos() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.InfoCalls...)
}

// Warnings returns a snapshot of the recorded warning messages.
func (m *MockLogger) Warnings() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.WarningCalls...)
}

// Ensure MockLogger satisfies the Logger interface.
var _ Logger = (*MockLogger)(nil)

// infoWriter forwards each written line to Logger.Info.
type infoWriter struct {
	l Logger
}

func (w infoWriter) Write(p []byte) (int, error) {
	w.l.Info("%s", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// ToStdLogger adapts l to a *log.Logger for APIs that require one,
// such as http.Server.ErrorLog.
func ToStdLogger(l Logger) *log.Logger {
	return log.New(infoWriter{l: l}, "", 0)
}
