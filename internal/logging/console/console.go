package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Dexerto/on-demand-revalidation/pkg/interfaces"
)

// Level represents the severity attached to a log entry.
type Level uint8

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// String renders the severity label used in console output.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "INFO"
	}
}

// ParseLevel maps a configuration string onto a Level, defaulting to info.
func ParseLevel(value string) Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "trace":
		return LevelTrace
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// Options configures the console logger provider.
type Options struct {
	Writer   io.Writer
	TimeFunc func() time.Time
	MinLevel Level
}

// Provider emits plain-text log lines to a writer. It is the default
// provider when the host supplies none and logging is enabled.
type Provider struct {
	mu       sync.Mutex
	writer   io.Writer
	clock    func() time.Time
	minLevel Level
}

// NewProvider builds a console provider with sane defaults (stderr, UTC clock).
func NewProvider(opts Options) *Provider {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}
	clock := opts.TimeFunc
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Provider{
		writer:   writer,
		clock:    clock,
		minLevel: opts.MinLevel,
	}
}

// GetLogger satisfies interfaces.LoggerProvider.
func (p *Provider) GetLogger(name string) interfaces.Logger {
	return &logger{provider: p, name: strings.TrimSpace(name)}
}

func (p *Provider) emit(level Level, name, msg string, fields map[string]any, args []any) {
	if p == nil || level < p.minLevel {
		return
	}

	var b strings.Builder
	b.WriteString(p.clock().Format(time.RFC3339))
	b.WriteByte(' ')
	b.WriteString(level.String())
	if name != "" {
		b.WriteString(" [")
		b.WriteString(name)
		b.WriteByte(']')
	}
	b.WriteByte(' ')
	b.WriteString(msg)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
	}
	b.WriteByte('\n')

	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = io.WriteString(p.writer, b.String())
}

type logger struct {
	provider *Provider
	name     string
	fields   map[string]any
}

var _ interfaces.Logger = (*logger)(nil)
var _ interfaces.FieldsLogger = (*logger)(nil)

func (l *logger) Trace(msg string, args ...any) { l.provider.emit(LevelTrace, l.name, msg, l.fields, args) }
func (l *logger) Debug(msg string, args ...any) { l.provider.emit(LevelDebug, l.name, msg, l.fields, args) }
func (l *logger) Info(msg string, args ...any)  { l.provider.emit(LevelInfo, l.name, msg, l.fields, args) }
func (l *logger) Warn(msg string, args ...any)  { l.provider.emit(LevelWarn, l.name, msg, l.fields, args) }
func (l *logger) Error(msg string, args ...any) { l.provider.emit(LevelError, l.name, msg, l.fields, args) }
func (l *logger) Fatal(msg string, args ...any) { l.provider.emit(LevelFatal, l.name, msg, l.fields, args) }

func (l *logger) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	merged := make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &logger{provider: l.provider, name: l.name, fields: merged}
}

func (l *logger) WithContext(context.Context) interfaces.Logger {
	return l
}
