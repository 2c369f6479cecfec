// Package logging provides the small structured logger used throughout
// Fae: leveled, optionally tagged with a render ID, and written straight to
// its output (no buffering). Grounded on the teacher's pkg/logging/logger.go,
// trimmed to the fields Fae's logging packages (library, watch, preview)
// actually need
// and renamed from "request ID" to "render ID" to match this module's
// domain. A nil *Logger is always a safe no-op receiver, so callers that
// don't care about logging never have to construct one.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level is the severity of a log entry.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Format selects the output encoding.
type Format int

const (
	TextFormat Format = iota
	JSONFormat
)

// Entry is one emitted log line.
type Entry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	RenderID  string                 `json:"render_id,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Config configures a Logger.
type Config struct {
	MinLevel Level
	Format   Format
	Output   io.Writer // defaults to os.Stderr
}

// Logger is a leveled, structured logger. The zero value is not usable;
// construct one with New. A nil *Logger is a no-op, so packages that take
// an optional *Logger parameter can call its methods unconditionally.
type Logger struct {
	mu     sync.Mutex
	config Config
	out    io.Writer
}

// New creates a Logger from cfg, filling in defaults for a zero Config.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	return &Logger{config: cfg, out: cfg.Output}
}

// NewRenderID returns a fresh identifier for tagging one render call's log
// lines. Audit backends generate their own row IDs.
func NewRenderID() string {
	return uuid.NewString()
}

// WithRenderID returns a child logger whose entries default to renderID.
// Since Logger has no per-call state beyond config, this simply returns a
// renderLogger that stamps every entry.
func (l *Logger) WithRenderID(renderID string) *RenderLogger {
	return &RenderLogger{l: l, renderID: renderID}
}

func (l *Logger) Debug(msg string)                                    { l.log(DEBUG, msg, "", nil) }
func (l *Logger) Info(msg string)                                     { l.log(INFO, msg, "", nil) }
func (l *Logger) Warn(msg string)                                     { l.log(WARN, msg, "", nil) }
func (l *Logger) Error(msg string)                                    { l.log(ERROR, msg, "", nil) }
func (l *Logger) InfoWithFields(msg string, f map[string]interface{}) { l.log(INFO, msg, "", f) }
func (l *Logger) WarnWithFields(msg string, f map[string]interface{}) { l.log(WARN, msg, "", f) }
func (l *Logger) ErrorWithFields(msg string, f map[string]interface{}) {
	l.log(ERROR, msg, "", f)
}

func (l *Logger) log(level Level, msg, renderID string, fields map[string]interface{}) {
	if l == nil || level < l.config.MinLevel {
		return
	}
	entry := Entry{Timestamp: time.Now(), Level: level.String(), Message: msg, RenderID: renderID, Fields: fields}

	l.mu.Lock()
	defer l.mu.Unlock()
	switch l.config.Format {
	case JSONFormat:
		enc, err := json.Marshal(entry)
		if err != nil {
			return
		}
		fmt.Fprintln(l.out, string(enc))
	default:
		if renderID != "" {
			fmt.Fprintf(l.out, "%s [%s] (%s) %s %v\n", entry.Timestamp.Format(time.RFC3339), entry.Level, renderID, msg, fields)
		} else {
			fmt.Fprintf(l.out, "%s [%s] %s %v\n", entry.Timestamp.Format(time.RFC3339), entry.Level, msg, fields)
		}
	}
}

// RenderLogger stamps every entry it emits with a fixed render ID, so the
// log lines of one render can be correlated.
type RenderLogger struct {
	l        *Logger
	renderID string
}

func (r *RenderLogger) InfoWithFields(msg string, f map[string]interface{}) {
	r.l.log(INFO, msg, r.renderID, f)
}

func (r *RenderLogger) WarnWithFields(msg string, f map[string]interface{}) {
	r.l.log(WARN, msg, r.renderID, f)
}

func (r *RenderLogger) ErrorWithFields(msg string, f map[string]interface{}) {
	r.l.log(ERROR, msg, r.renderID, f)
}
