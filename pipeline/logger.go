package pipeline

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Logger defines the structured logging interface for the pipeline.
type Logger interface {
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
	Debug(msg string, fields map[string]any)
}

// JSONLogger writes one JSON object per line. Standing fields attached via
// With appear on every entry, so the run ID set once at startup tags the
// whole run's output.
type JSONLogger struct {
	out      *lockedWriter
	verbose  bool
	standing map[string]any
}

// lockedWriter serializes writes; child loggers from With share it so their
// lines never interleave.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) writeLine(data []byte) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	lw.w.Write(append(data, '\n')) //nolint:errcheck
}

// NewJSONLogger creates a JSONLogger writing to w. Debug entries are only
// emitted when verbose is true.
func NewJSONLogger(w io.Writer, verbose bool) *JSONLogger {
	return &JSONLogger{out: &lockedWriter{w: w}, verbose: verbose}
}

// With returns a child logger whose entries all carry the given fields in
// addition to any the parent already carries.
func (l *JSONLogger) With(fields map[string]any) *JSONLogger {
	standing := make(map[string]any, len(l.standing)+len(fields))
	for k, v := range l.standing {
		standing[k] = v
	}
	for k, v := range fields {
		standing[k] = v
	}
	return &JSONLogger{out: l.out, verbose: l.verbose, standing: standing}
}

func (l *JSONLogger) Info(msg string, fields map[string]any)  { l.log("info", msg, fields) }
func (l *JSONLogger) Warn(msg string, fields map[string]any)  { l.log("warn", msg, fields) }
func (l *JSONLogger) Error(msg string, fields map[string]any) { l.log("error", msg, fields) }

func (l *JSONLogger) Debug(msg string, fields map[string]any) {
	if !l.verbose {
		return
	}
	l.log("debug", msg, fields)
}

func (l *JSONLogger) log(level, msg string, fields map[string]any) {
	entry := make(map[string]any, len(l.standing)+len(fields)+3)
	for k, v := range l.standing {
		entry[k] = v
	}
	// Per-call fields win over standing ones on a key collision.
	for k, v := range fields {
		entry[k] = v
	}
	entry["time"] = time.Now().UTC().Format(time.RFC3339)
	entry["level"] = level
	entry["msg"] = msg

	data, _ := json.Marshal(entry)
	l.out.writeLine(data)
}
