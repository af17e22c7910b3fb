package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/phsym/console-slog"
)

// Format selects how log records are rendered.
type Format int

const (
	// FormatJSON writes one JSON object per record, with the time under "ts".
	FormatJSON Format = iota
	// FormatConsole writes colored, human readable lines.
	FormatConsole
)

func (f Format) String() string {
	if f == FormatConsole {
		return "console"
	}

	return "json"
}

// ParseFormat converts "json" or "console" into a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return FormatJSON, nil
	case "console", "text":
		return FormatConsole, nil
	default:
		return FormatJSON, fmt.Errorf("logger: unknown format %q", name)
	}
}

// FormatFromEnv returns FormatConsole when ENV is "development", otherwise the
// format named by LOG_FORMAT, falling back to FormatJSON.
func FormatFromEnv() Format {
	if os.Getenv("ENV") == "development" {
		return FormatConsole
	}

	f, _ := ParseFormat(os.Getenv("LOG_FORMAT"))

	return f
}

// SlogLogger is a Logger on top of log/slog.
type SlogLogger struct {
	mu     *sync.Mutex
	logger *slog.Logger
	level  *slog.LevelVar
}

// NewSlog creates a logger writing to stderr in the format chosen by
// FormatFromEnv. Stdout is left to the operator console.
func NewSlog(level Level, addSource bool) Logger {
	return NewSlogWriter(os.Stderr, level, FormatFromEnv(), addSource)
}

// NewSlogWriter creates a logger writing records to w in the given format.
func NewSlogWriter(w io.Writer, level Level, format Format, addSource bool) Logger {
	inst := &SlogLogger{
		mu:    &sync.Mutex{},
		level: &slog.LevelVar{},
	}
	inst.level.Set(toSlogLevel(level))
	inst.logger = slog.New(newHandler(w, format, inst.level, addSource))

	return inst
}

func newHandler(w io.Writer, format Format, level slog.Leveler, addSource bool) slog.Handler {
	if format == FormatConsole {
		return console.NewHandler(w, &console.HandlerOptions{
			AddSource: addSource,
			Level:     level,
		})
	}

	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: addSource,
		Level:     level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "ts"
			}
			return a
		},
	})
}

func (l *SlogLogger) Debug(msg string, keysAndValues ...any) {
	l.log(slog.LevelDebug, msg, keysAndValues...)
}

func (l *SlogLogger) Info(msg string, keysAndValues ...any) {
	l.log(slog.LevelInfo, msg, keysAndValues...)
}

func (l *SlogLogger) Warn(msg string, keysAndValues ...any) {
	l.log(slog.LevelWarn, msg, keysAndValues...)
}

func (l *SlogLogger) Error(msg string, keysAndValues ...any) {
	l.log(slog.LevelError, msg, keysAndValues...)
}

func (l *SlogLogger) Fatal(msg string, keysAndValues ...any) {
	l.log(slog.LevelError, msg, keysAndValues...)
	os.Exit(1)
}

// With returns a child logger sharing the parent's level.
func (l *SlogLogger) With(keyValues ...any) Logger {
	return &SlogLogger{
		mu:     l.mu,
		logger: l.logger.With(keyValues...),
		level:  l.level,
	}
}

func (l *SlogLogger) Level() Level {
	return fromSlogLevel(l.level.Level())
}

func (l *SlogLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.level.Set(toSlogLevel(level))
}

// log must be called directly by an exported logging method, since the source
// location is taken at a fixed call depth.
func (l *SlogLogger) log(level slog.Level, msg string, args ...any) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, level) {
		return
	}

	var pcs [1]uintptr
	// skip runtime.Callers, log and the exported method
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(args...)
	_ = l.logger.Handler().Handle(ctx, r)
}

func toSlogLevel(level Level) slog.Level {
	switch level {
	case DebugLevel:
		return slog.LevelDebug
	case InfoLevel:
		return slog.LevelInfo
	case WarnLevel:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

func fromSlogLevel(level slog.Level) Level {
	switch {
	case level <= slog.LevelDebug:
		return DebugLevel
	case level <= slog.LevelInfo:
		return InfoLevel
	case level <= slog.LevelWarn:
		return WarnLevel
	default:
		return ErrorLevel
	}
}
