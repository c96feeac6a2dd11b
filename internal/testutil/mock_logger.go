// Package testutil provides shared test doubles for ecowarn packages.
package testutil

import (
	"sync"

	"github.com/turtacn/ecowarn/internal/infrastructure/monitoring/logging"
)

// MockLogger implements logging.Logger and records every entry, including
// those emitted through children created by With and Named.
type MockLogger struct {
	mu       *sync.Mutex
	messages *[]LogMessage
	base     []logging.Field
	name     string
}

// LogMessage is a single entry captured by MockLogger.  Fields include those
// inherited from With.
type LogMessage struct {
	Level   string
	Logger  string
	Message string
	Fields  []logging.Field
}

// Field returns the value of the named field and whether it was present.
func (m LogMessage) Field(key string) (interface{}, bool) {
	for i := len(m.Fields) - 1; i >= 0; i-- {
		if m.Fields[i].Key == key {
			return m.Fields[i].Value, true
		}
	}
	return nil, false
}

// NewMockLogger creates an empty MockLogger.
func NewMockLogger() *MockLogger {
	msgs := make([]LogMessage, 0)
	return &MockLogger{mu: &sync.Mutex{}, messages: &msgs}
}

func (m *MockLogger) log(level, msg string, fields []logging.Field) {
	all := make([]logging.Field, 0, len(m.base)+len(fields))
	all = append(all, m.base...)
	all = append(all, fields...)
	m.mu.Lock()
	*m.messages = append(*m.messages, LogMessage{Level: level, Logger: m.name, Message: msg, Fields: all})
	m.mu.Unlock()
}

func (m *MockLogger) Debug(msg string, fields ...logging.Field) { m.log("debug", msg, fields) }
func (m *MockLogger) Info(msg string, fields ...logging.Field)  { m.log("info", msg, fields) }
func (m *MockLogger) Warn(msg string, fields ...logging.Field)  { m.log("warn", msg, fields) }
func (m *MockLogger) Error(msg string, fields ...logging.Field) { m.log("error", msg, fields) }
func (m *MockLogger) Fatal(msg string, fields ...logging.Field) { m.log("fatal", msg, fields) }

// With returns a child sharing the same message buffer.
func (m *MockLogger) With(fields ...logging.Field) logging.Logger {
	base := make([]logging.Field, 0, len(m.base)+len(fields))
	base = append(base, m.base...)
	base = append(base, fields...)
	return &MockLogger{mu: m.mu, messages: m.messages, base: base, name: m.name}
}

// Named returns a child sharing the same message buffer.
func (m *MockLogger) Named(name string) logging.Logger {
	n := name
	if m.name != "" {
		n = m.name + "." + name
	}
	return &MockLogger{mu: m.mu, messages: m.messages, base: m.base, name: n}
}

// GetMessages returns a copy of all recorded entries.
func (m *MockLogger) GetMessages() []LogMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]LogMessage, len(*m.messages))
	copy(out, *m.messages)
	return out
}

// MessagesAt returns the entries recorded at level.
func (m *MockLogger) MessagesAt(level string) []LogMessage {
	var out []LogMessage
	for _, msg := range m.GetMessages() {
		if msg.Level == level {
			out = append(out, msg)
		}
	}
	return out
}

// Clear removes all recorded entries.
func (m *MockLogger) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.messages = (*m.messages)[:0]
}

// HasMessage reports whether an entry with the given level and message exists.
func (m *MockLogger) HasMessage(level, msg string) bool {
	for _, logged := range m.MessagesAt(level) {
		if logged.Message == msg {
			return true
		}
	}
	return false
}

//Personal.AI order the ending
