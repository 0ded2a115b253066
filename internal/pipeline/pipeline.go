// Package pipeline runs one bump: resolve targets, load the document,
// transform it, report outputs and persist the result. Each stage consumes
// the previous stage's output and nothing is retried.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"buildbump/internal/bump"
	"buildbump/internal/config"
	"buildbump/internal/diff"
	"buildbump/internal/logging"
	"buildbump/internal/syntax"

	"go.uber.org/zap"
)

// Reporter receives the run's outputs.
type Reporter interface {
	SetOutput(name, value string)
}

// Output is one reported name/value pair.
type Output struct {
	Name  string
	Value string
}

// Result describes a completed run.
type Result struct {
	Path    string
	Changes []bump.Change
	Outputs []Output
	// Written is false for dry runs and when the document did not change.
	Written bool
	Diff    *diff.FileDiff
}

// Runner executes the pipeline.
type Runner struct {
	reporter Reporter
	base     *zap.Logger
	log      *zap.Logger
}

// New creates a Runner. A nil logger discards.
func New(reporter Reporter, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{reporter: reporter, base: log, log: logging.For(log, logging.CategoryPipeline)}
}

// Run performs one bump according to cfg.
func (r *Runner) Run(ctx context.Context, cfg *config.Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	targets, err := bump.TargetsFor(cfg)
	if err != nil {
		return nil, err
	}

	path := cfg.ConfigPath
	r.debug("File path: "+path, zap.String("path", path))
	if !slices.Contains(syntax.SupportedExtensions(), strings.ToLower(filepath.Ext(path))) {
		r.log.Warn("unrecognized extension; parsing as JavaScript", zap.String("path", path))
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	r.debug("Read the file", zap.Int("bytes", len(src)))

	tree, err := syntax.Parse(ctx, path, src)
	if err != nil {
		return nil, err
	}
	r.debug("Created syntax tree from the code", zap.String("language", string(tree.Language)))

	mutator := bump.NewMutator(targets,
		bump.WithStrict(cfg.StrictNumbers),
		bump.WithLogger(logging.For(r.base, logging.CategoryBump)))
	res, err := mutator.Apply(tree)
	if err != nil {
		return nil, err
	}

	result := &Result{Path: path, Changes: res.Changes}
	for _, target := range targets {
		value, ok := res.Output(target.Output)
		if !ok {
			r.log.Info("no matching field", zap.String("target", target.Name), zap.String("field", target.Pattern.Path))
			continue
		}
		r.debug(fmt.Sprintf("Updated %s", target.Pattern.Path), zap.String("value", value))
		r.reporter.SetOutput(target.Output, value)
		result.Outputs = append(result.Outputs, Output{Name: target.Output, Value: value})
	}

	updated := tree.Render()
	r.debug("Generated the updated code")

	if cfg.DryRun {
		result.Diff = diff.Compute(path, string(src), string(updated))
		r.log.Info("dry run; file left untouched", zap.Int("changes", len(res.Changes)))
		return result, nil
	}
	if !tree.Edited() {
		r.log.Info("nothing to write", zap.String("path", path))
		return result, nil
	}

	if err := writeFile(path, updated); err != nil {
		return result, err
	}
	result.Written = true
	r.debug("Wrote the updated code to the file", zap.Int("bytes", len(updated)))
	return result, nil
}

// writeFile overwrites path in place, keeping its permissions.
func writeFile(path string, data []byte) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, data, mode); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (r *Runner) debug(msg string, fields ...zap.Field) {
	r.log.Debug(msg, fields...)
}
