// Package bump increments build numbers found by structural patterns.
package bump

import (
	"fmt"
	"math"

	"buildbump/internal/pattern"
	"buildbump/internal/syntax"

	"go.uber.org/zap"
)

// Target names one field to increment and the output that reports it.
type Target struct {
	Name    string
	Pattern pattern.Pattern
	Output  string
}

var (
	// IOS is the iOS build number target.
	IOS = Target{Name: "ios", Pattern: pattern.IOSBuildNumber, Output: "newIosBuildNumber"}
	// Android is the Android version code target.
	Android = Target{Name: "android", Pattern: pattern.AndroidVersionCode, Output: "newAndroidVersionCode"}
)

// InvalidNumberError is returned in strict mode when a matched field does not
// hold a finite number.
type InvalidNumberError struct {
	Field  string
	Value  string
	Line   int
	Column int
}

func (e *InvalidNumberError) Error() string {
	return fmt.Sprintf("invalid numeric field %s at line %d: value %s is not a number", e.Field, e.Line, e.Value)
}

// Change records one incremented field.
type Change struct {
	Target string
	Field  string
	Output string
	Line   int
	Column int
	Old    string
	New    string
}

// Result collects the changes of one run. Outputs keep the last value
// written for each output name.
type Result struct {
	Changes []Change
	outputs map[string]string
}

// Output returns the reported value for name, if any field set it.
func (r *Result) Output(name string) (string, bool) {
	v, ok := r.outputs[name]
	return v, ok
}

// Count returns how many fields were changed for target.
func (r *Result) Count(target string) int {
	n := 0
	for _, c := range r.Changes {
		if c.Target == target {
			n++
		}
	}
	return n
}

// Option configures a Mutator.
type Option func(*Mutator)

// WithStrict makes non-numeric values an error instead of NaN.
func WithStrict(strict bool) Option {
	return func(m *Mutator) { m.strict = strict }
}

// WithLogger sets the logger; the default discards.
func WithLogger(l *zap.Logger) Option {
	return func(m *Mutator) { m.log = l }
}

// Mutator increments every field matched by its targets.
type Mutator struct {
	targets []Target
	strict  bool
	log     *zap.Logger
}

// NewMutator returns a strict mutator for targets.
func NewMutator(targets []Target, opts ...Option) *Mutator {
	m := &Mutator{targets: targets, strict: true, log: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Apply walks tree once and increments every match in document order.
// In strict mode the first invalid value aborts the walk; the tree may then
// hold edits for earlier matches and must not be rendered.
func (m *Mutator) Apply(tree *syntax.Tree) (*Result, error) {
	res := &Result{outputs: make(map[string]string)}
	var walkErr error

	tree.Walk(func(n *syntax.Node) {
		if walkErr != nil {
			return
		}
		for _, target := range m.targets {
			if !target.Pattern.Match(n) {
				continue
			}
			leaf := tree.Leaf(n)
			if leaf == nil {
				continue
			}
			change, err := m.increment(leaf, target)
			if err != nil {
				walkErr = err
				return
			}
			res.Changes = append(res.Changes, change)
			res.outputs[target.Output] = change.New
			m.log.Debug("incremented field",
				zap.String("target", target.Name),
				zap.String("field", target.Pattern.Path),
				zap.Int("line", change.Line),
				zap.String("old", change.Old),
				zap.String("new", change.New))
		}
	})
	if walkErr != nil {
		return nil, walkErr
	}

	for _, target := range m.targets {
		if n := res.Count(target.Name); n > 1 {
			v, _ := res.Output(target.Output)
			m.log.Warn("field matched more than once; reporting the last match",
				zap.String("field", target.Pattern.Path),
				zap.Int("matches", n),
				zap.String("reported", v))
		}
	}
	return res, nil
}

func (m *Mutator) increment(leaf *syntax.Leaf, target Target) (Change, error) {
	prop := leaf.Property
	change := Change{
		Target: target.Name,
		Field:  target.Pattern.Path,
		Output: target.Output,
		Line:   prop.Pos.Line,
		Column: prop.Pos.Column,
		Old:    leaf.Value().Text(),
	}

	current := valueOf(leaf)
	if m.strict && (math.IsNaN(current) || math.IsInf(current, 0)) {
		return Change{}, &InvalidNumberError{
			Field:  target.Pattern.Path,
			Value:  change.Old,
			Line:   change.Line,
			Column: change.Column,
		}
	}

	change.New = FormatNumber(current + 1)
	if _, err := leaf.Set(change.New); err != nil {
		return Change{}, fmt.Errorf("update %s at line %d: %w", target.Pattern.Path, change.Line, err)
	}
	return change, nil
}

// valueOf reads the current numeric value. Anything that is not a literal
// reads as NaN.
func valueOf(leaf *syntax.Leaf) float64 {
	lit, ok := leaf.Literal()
	if !ok {
		return math.NaN()
	}
	switch lit.Kind {
	case syntax.KindNumber:
		return numericLiteral(lit.Raw)
	default:
		return ParseFloat(lit.Value)
	}
}

// FindMatchingLeaves returns a handle on every property matched by p, in
// document order.
func FindMatchingLeaves(tree *syntax.Tree, p pattern.Pattern) []*syntax.Leaf {
	var leaves []*syntax.Leaf
	tree.Walk(func(n *syntax.Node) {
		if p.Match(n) {
			if leaf := tree.Leaf(n); leaf != nil {
				leaves = append(leaves, leaf)
			}
		}
	})
	return leaves
}
