package logx

import (
	"encoding/json"
	"io"
	"log"
	"strings"
	"time"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Fields are the free-form attributes of one log line.
type Fields map[string]any

// Logger writes one JSON object per line to a stdlib log.Logger.
// A nil *Logger discards everything.
type Logger struct {
	out   *log.Logger
	min   Level
	now   func() time.Time
	attrs Fields
}

func New(out *log.Logger, min Level) *Logger {
	if out == nil {
		out = log.Default()
	}
	return &Logger{out: out, min: min, now: time.Now}
}

// NewWriter builds a Logger on a flagless log.Logger over w.
func NewWriter(w io.Writer, min Level) *Logger {
	return New(log.New(w, "", 0), min)
}

// Discard returns a Logger that writes nowhere.
func Discard() *Logger { return NewWriter(io.Discard, LevelError+1) }

// With returns a child logger that adds attrs to every line.
func (l *Logger) With(attrs Fields) *Logger {
	if l == nil {
		return nil
	}
	merged := make(Fields, len(l.attrs)+len(attrs))
	for k, v := range l.attrs {
		merged[k] = v
	}
	for k, v := range attrs {
		merged[k] = v
	}
	child := *l
	child.attrs = merged
	return &child
}

// Std exposes the underlying log.Logger for code that wants plain Printf.
func (l *Logger) Std() *log.Logger {
	if l == nil {
		return log.New(io.Discard, "", 0)
	}
	return l.out
}

func (l *Logger) Debug(msg string, f Fields) { l.emit(LevelDebug, msg, f) }
func (l *Logger) Info(msg string, f Fields)  { l.emit(LevelInfo, msg, f) }
func (l *Logger) Warn(msg string, f Fields)  { l.emit(LevelWarn, msg, f) }
func (l *Logger) Error(msg string, f Fields) { l.emit(LevelError, msg, f) }

func (l *Logger) emit(level Level, msg string, f Fields) {
	if l == nil || level < l.min {
		return
	}
	payload := make(map[string]any, len(l.attrs)+len(f)+3)
	for k, v := range l.attrs {
		payload[k] = v
	}
	for k, v := range f {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		payload[k] = v
	}
	payload["ts"] = l.now().UTC().Format(time.RFC3339Nano)
	payload["level"] = level.String()
	payload["msg"] = msg

	b, err := json.Marshal(payload)
	if err != nil {
		l.out.Printf(`{"level":"error","msg":"log_marshal_failed","error":%q}`, err.Error())
		return
	}
	l.out.Print(string(b))
}
