// Package logging builds the zap loggers used across buildbump.
// Each subsystem logs through a named child logger for its category, and the
// debug trail can be mirrored to a second sink such as the GitHub Actions
// ::debug:: channel.
package logging

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryCLI      Category = "cli"      // Command line surface
	CategoryConfig   Category = "config"   // Input resolution
	CategorySyntax   Category = "syntax"   // Parsing and regeneration
	CategoryBump     Category = "bump"     // Field matching and increments
	CategoryPipeline Category = "pipeline" // Load, transform, persist
	CategoryAction   Category = "action"   // GitHub Actions outputs
)

// Options configures New.
type Options struct {
	Level   string // debug, info, warn, error; empty means info
	Format  string // console or json; empty means console
	Verbose bool   // forces debug level
	Output  zapcore.WriteSyncer

	// Mirror, when set, receives every debug-or-higher entry rendered as a
	// single line, independent of Level.
	Mirror func(line string)
}

// New builds a logger writing to stderr unless Options.Output is set.
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		name := opts.Level
		if name == "warning" {
			name = "warn"
		}
		parsed, err := zapcore.ParseLevel(name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse log level: %w", err)
		}
		level = parsed
	}
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	switch opts.Format {
	case "", "console":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	default:
		return nil, fmt.Errorf("unknown log format: %s", opts.Format)
	}

	out := opts.Output
	if out == nil {
		out = zapcore.Lock(os.Stderr)
	}

	core := zapcore.NewCore(enc, out, zap.NewAtomicLevelAt(level))
	if opts.Mirror != nil {
		core = zapcore.NewTee(core, &mirrorCore{LevelEnabler: zapcore.DebugLevel, fn: opts.Mirror})
	}
	return zap.New(core), nil
}

// For returns the child logger for a category.
func For(l *zap.Logger, c Category) *zap.Logger {
	return l.Named(string(c))
}

// mirrorCore renders entries as "name: message key=value ..." lines.
type mirrorCore struct {
	zapcore.LevelEnabler
	fn     func(string)
	fields []zapcore.Field
}

func (c *mirrorCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &mirrorCore{LevelEnabler: c.LevelEnabler, fn: c.fn, fields: merged}
}

func (c *mirrorCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(e.Level) {
		return ce.AddCore(e, c)
	}
	return ce
}

func (c *mirrorCore) Write(e zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}

	var b strings.Builder
	if e.LoggerName != "" {
		b.WriteString(e.LoggerName)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)

	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, enc.Fields[k])
	}
	c.fn(b.String())
	return nil
}

func (c *mirrorCore) Sync() error {
	return nil
}
