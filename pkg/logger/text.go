package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// TextLogger writes human-readable structured records to an io.Writer.
// It is safe for concurrent use.
type TextLogger struct {
	mu     sync.Mutex
	out    io.Writer
	level  Level
	fields map[string]interface{}
}

// NewTextLogger creates a logger writing to out at the given level.
// A nil out defaults to os.Stdout.
func NewTextLogger(out io.Writer, level Level) *TextLogger {
	if out == nil {
		out = os.Stdout
	}
	return &TextLogger{
		out:    out,
		level:  level,
		fields: make(map[string]interface{}),
	}
}

// NewDefaultLogger creates a stdout logger with the level taken from the
// GRANDK_LOG_LEVEL environment variable (info when unset).
func NewDefaultLogger() Logger {
	return NewTextLogger(os.Stdout, ParseLevel(os.Getenv("GRANDK_LOG_LEVEL")))
}

// Debug logs a debug record
func (l *TextLogger) Debug(msg string, fields map[string]interface{}) {
	l.log(DebugLevel, msg, fields)
}

// Info logs an info record
func (l *TextLogger) Info(msg string, fields map[string]interface{}) {
	l.log(InfoLevel, msg, fields)
}

// Warn logs a warning record
func (l *TextLogger) Warn(msg string, fields map[string]interface{}) {
	l.log(WarnLevel, msg, fields)
}

// Error logs an error record
func (l *TextLogger) Error(msg string, fields map[string]interface{}) {
	l.log(ErrorLevel, msg, fields)
}

// SetLevel changes the minimum level
func (l *TextLogger) SetLevel(level string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = ParseLevel(level)
}

// With returns a child logger with additional persistent fields
func (l *TextLogger) With(fields map[string]interface{}) Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &TextLogger{
		out:    l.out,
		level:  l.level,
		fields: merged,
	}
}

func (l *TextLogger) log(level Level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	var b strings.Builder
	b.WriteString(time.Now().Format(time.RFC3339))
	b.WriteString(" [")
	b.WriteString(level.String())
	b.WriteString("] ")
	b.WriteString(msg)

	writeFields(&b, l.fields)
	writeFields(&b, fields)
	b.WriteByte('\n')

	fmt.Fprint(l.out, b.String())
}

// writeFields appends "k=v" pairs in sorted key order so records are stable
// and testable
func writeFields(b *strings.Builder, fields map[string]interface{}) {
	if len(fields) == 0 {
		return
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, " %s=%v", k, fields[k])
	}
}

// NopLogger discards all records. Useful as a default in tests.
type NopLogger struct{}

func (NopLogger) Debug(string, map[string]interface{}) {}
func (NopLogger) Info(string, map[string]interface{})  {}
func (NopLogger) Warn(string, map[string]interface{})  {}
func (NopLogger) Error(string, map[string]interface{}) {}
func (n NopLogger) With(map[string]interface{}) Logger { return n }
func (NopLogger) SetLevel(string)                      {}
