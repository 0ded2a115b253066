// Package action connects a run to the GitHub Actions runtime: inputs come
// from INPUT_* variables, outputs go to $GITHUB_OUTPUT and failures become
// ::error:: annotations. Outside of Actions the same calls print plain
// name=value lines so the CLI stays scriptable.
package action

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/sethvargo/go-githubactions"
	"go.uber.org/zap"
)

// Reporter is the single output and failure channel of a run.
type Reporter struct {
	gha    *githubactions.Action
	getenv func(string) string
	out    io.Writer
	errOut io.Writer
	log    *zap.Logger

	mu      sync.Mutex
	outputs map[string]string
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithGetenv replaces os.Getenv, for tests.
func WithGetenv(fn func(string) string) Option {
	return func(r *Reporter) { r.getenv = fn }
}

// WithWriters sets where workflow commands and plain output go.
func WithWriters(out, errOut io.Writer) Option {
	return func(r *Reporter) {
		r.out = out
		r.errOut = errOut
	}
}

// WithLogger sets the logger; the default discards.
func WithLogger(l *zap.Logger) Option {
	return func(r *Reporter) { r.log = l }
}

// SetLogger replaces the logger after construction, once logging is set up.
func (r *Reporter) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	r.log = l
}

// New creates a Reporter bound to the process environment.
func New(opts ...Option) *Reporter {
	r := &Reporter{
		getenv:  os.Getenv,
		out:     os.Stdout,
		errOut:  os.Stderr,
		log:     zap.NewNop(),
		outputs: make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.gha = githubactions.New(
		githubactions.WithWriter(r.out),
		githubactions.WithGetenv(r.getenv),
	)
	return r
}

// InActions reports whether the process runs as a GitHub Actions step.
func (r *Reporter) InActions() bool {
	return r.getenv("GITHUB_ACTIONS") == "true" || r.getenv("GITHUB_OUTPUT") != ""
}

// Input returns the named action input, trimmed.
func (r *Reporter) Input(name string) string {
	return r.gha.GetInput(name)
}

// SetOutput reports a named output value to the calling workflow.
func (r *Reporter) SetOutput(name, value string) {
	r.mu.Lock()
	r.outputs[name] = value
	r.mu.Unlock()

	r.log.Info("output", zap.String("name", name), zap.String("value", value))
	if r.InActions() {
		r.gha.SetOutput(name, value)
		return
	}
	fmt.Fprintf(r.out, "%s=%s\n", name, value)
}

// Outputs returns a copy of every output set so far.
func (r *Reporter) Outputs() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.outputs))
	for k, v := range r.outputs {
		out[k] = v
	}
	return out
}

// OutputNames returns the names of the outputs set so far, sorted.
func (r *Reporter) OutputNames() []string {
	names := make([]string, 0)
	for name := range r.Outputs() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Debug emits a ::debug:: line when running in Actions.
func (r *Reporter) Debug(line string) {
	if r.InActions() {
		r.gha.Debugf("%s", line)
	}
}

// Fail reports the run's single failure message.
func (r *Reporter) Fail(err error) {
	if err == nil {
		return
	}
	if r.InActions() {
		r.gha.Errorf("%s", err.Error())
		return
	}
	fmt.Fprintf(r.errOut, "Error: %s\n", err.Error())
}
