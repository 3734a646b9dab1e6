package logger

import (
	"context"
	"os"
	"sync"
)

type TestLogEntry struct {
	Severity  string
	Message   string
	Arguments []interface{}
}

// TestLogger records every entry in memory. Loggers derived through With,
// WithPrefix and WithContext share the same log.
type TestLogger struct {
	metadata map[string]interface{}
	entries  *testEntries
	child    Logger
}

type testEntries struct {
	mu   sync.Mutex
	logs []TestLogEntry
}

var _ Logger = (*TestLogger)(nil)

func (c *TestLogger) WithContext(ctx context.Context) Logger {
	return c
}

// WithPrefix will return a new logger with a prefix prepended to the message
func (c *TestLogger) WithPrefix(prefix string) Logger {
	return c
}

func (c *TestLogger) With(metadata map[string]interface{}) Logger {
	kv := make(map[string]interface{}, len(c.metadata)+len(metadata))
	for k, v := range c.metadata {
		kv[k] = v
	}
	for k, v := range metadata {
		kv[k] = v
	}
	child := c.child
	if child != nil {
		child = child.With(metadata)
	}
	return &TestLogger{metadata: kv, entries: c.entries, child: child}
}

func (c *TestLogger) Log(level string, msg string, args ...interface{}) {
	c.entries.mu.Lock()
	c.entries.logs = append(c.entries.logs, TestLogEntry{level, msg, args})
	c.entries.mu.Unlock()
}

// Logs returns a copy of the recorded entries.
func (c *TestLogger) Logs() []TestLogEntry {
	c.entries.mu.Lock()
	defer c.entries.mu.Unlock()
	out := make([]TestLogEntry, len(c.entries.logs))
	copy(out, c.entries.logs)
	return out
}

// Messages returns the recorded entries of the given severity.
func (c *TestLogger) Messages(severity string) []string {
	var out []string
	for _, e := range c.Logs() {
		if e.Severity == severity {
			out = append(out, e.Message)
		}
	}
	return out
}

func (c *TestLogger) Trace(msg string, args ...interface{}) {
	c.Log("TRACE", msg, args...)
	if c.child != nil {
		c.child.Trace(msg, args...)
	}
}

func (c *TestLogger) Debug(msg string, args ...interface{}) {
	c.Log("DEBUG", msg, args...)
	if c.child != nil {
		c.child.Debug(msg, args...)
	}
}

func (c *TestLogger) Info(msg string, args ...interface{}) {
	c.Log("INFO", msg, args...)
	if c.child != nil {
		c.child.Info(msg, args...)
	}
}

func (c *TestLogger) Warn(msg string, args ...interface{}) {
	c.Log("WARNING", msg, args...)
	if c.child != nil {
		c.child.Warn(msg, args...)
	}
}

func (c *TestLogger) Error(msg string, args ...interface{}) {
	c.Log("ERROR", msg, args...)
	if c.child != nil {
		c.child.Error(msg, args...)
	}
}

func (c *TestLogger) Fatal(msg string, args ...interface{}) {
	c.Log("FATAL", msg, args...)
	if c.child != nil {
		c.child.Fatal(msg, args...)
	}
	os.Exit(1)
}

func (c *TestLogger) Stack(next Logger) Logger {
	return &TestLogger{metadata: c.metadata, entries: c.entries, child: next}
}

// NewTestLogger returns a new Logger instance useful for testing
func NewTestLogger() *TestLogger {
	return &TestLogger{entries: &testEntries{}}
}
