package logutil

import (
    "encoding/json"
    "fmt"
    "io"
    "log"
    "os"
    "sync/atomic"
    "time"
)

var jsonMode atomic.Bool

func init() {
    if os.Getenv("PEERCHECK_LOG_JSON") == "1" || os.Getenv("PEERCHECK_LOG_FORMAT") == "json" {
        jsonMode.Store(true)
    }
}

// SetJSON switches every Logger between text and JSON lines.
func SetJSON(enabled bool) { jsonMode.Store(enabled) }

// DebugFromEnv reports whether the DEBUG env var asks for verbose output.
func DebugFromEnv() bool {
    v := os.Getenv("DEBUG")
    return v == "1" || v == "true"
}

// Logger writes timestamped lines: info and debug to out, errors to errOut.
// A nil *Logger discards everything, so components can take it optionally.
type Logger struct {
    out   *log.Logger
    err   *log.Logger
    debug bool
    now   func() time.Time
}

// New returns a Logger writing to the given writers. Nil writers default to
// os.Stdout and os.Stderr.
func New(out, errOut io.Writer, debug bool) *Logger {
    if out == nil { out = os.Stdout }
    if errOut == nil { errOut = os.Stderr }
    return &Logger{out: log.New(out, "", 0), err: log.New(errOut, "", 0), debug: debug, now: time.Now}
}

// Default is a Logger on the process streams with debug taken from env.
func Default() *Logger { return New(os.Stdout, os.Stderr, DebugFromEnv()) }

// WithClock overrides the timestamp source (tests).
func (l *Logger) WithClock(now func() time.Time) *Logger {
    if l != nil && now != nil { l.now = now }
    return l
}

// DebugEnabled reports whether Debugf lines are emitted.
func (l *Logger) DebugEnabled() bool { return l != nil && l.debug }

func (l *Logger) Infof(f string, args ...any)  { l.logf(l.outLog(), "info", f, args...) }
func (l *Logger) Warnf(f string, args ...any)  { l.logf(l.outLog(), "warn", f, args...) }
func (l *Logger) Errorf(f string, args ...any) { l.logf(l.errLog(), "error", f, args...) }

// Debugf is a no-op unless debug output was enabled.
func (l *Logger) Debugf(f string, args ...any) {
    if !l.DebugEnabled() { return }
    l.logf(l.outLog(), "debug", f, args...)
}

func (l *Logger) outLog() *log.Logger {
    if l == nil { return nil }
    return l.out
}

func (l *Logger) errLog() *log.Logger {
    if l == nil { return nil }
    return l.err
}

func (l *Logger) logf(dst *log.Logger, level, f string, args ...any) {
    if dst == nil { return }
    ts := l.now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
    msg := fmt.Sprintf(f, args...)
    if jsonMode.Load() {
        evt := map[string]any{
            "ts":    ts,
            "level": level,
            "msg":   msg,
        }
        b, _ := json.Marshal(evt)
        dst.Println(string(b))
        return
    }
    switch level {
    case "debug":
        dst.Printf("[%s] [DBG] %s", ts, msg)
    case "warn":
        dst.Printf("[%s] [WARN] %s", ts, msg)
    default:
        dst.Printf("[%s] %s", ts, msg)
    }
}
