// Package pattern describes target fields by the shape of their ancestor
// chain rather than by value. A Pattern is a list of steps walked upward from
// a candidate node: step 0 must match the node itself, step i its i-th ancestor.
package pattern

import (
	"fmt"
	"regexp"
	"strings"

	"buildbump/internal/syntax"
)

// Step is one expectation in an upward walk.
type Step struct {
	Kind syntax.Kind
	// Key must equal the node's identifier key when set.
	Key string
}

func (s Step) matches(n *syntax.Node) bool {
	if n.Kind != s.Kind {
		return false
	}
	return s.Key == "" || n.Key == s.Key
}

// Pattern matches a node whose ancestors line up with Steps exactly.
type Pattern struct {
	Path  string
	Steps []Step
}

// Match reports whether n and its ancestors satisfy every step.
func (p Pattern) Match(n *syntax.Node) bool {
	if len(p.Steps) == 0 {
		return false
	}
	cur := n
	for _, step := range p.Steps {
		if cur == nil || !step.matches(cur) {
			return false
		}
		cur = cur.Parent
	}
	return true
}

func (p Pattern) String() string {
	return p.Path
}

var identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Compile builds a pattern from a dotted property path. "ios.buildNumber"
// matches a property buildNumber whose object is the value of a property ios.
func Compile(path string) (Pattern, error) {
	segments := strings.Split(path, ".")
	for _, seg := range segments {
		if !identifier.MatchString(seg) {
			return Pattern{}, fmt.Errorf("invalid field path %q: %q is not an identifier", path, seg)
		}
	}

	steps := make([]Step, 0, 2*len(segments)-1)
	for i := len(segments) - 1; i >= 0; i-- {
		steps = append(steps, Step{Kind: syntax.KindProperty, Key: segments[i]})
		if i > 0 {
			steps = append(steps, Step{Kind: syntax.KindObject})
		}
	}
	return Pattern{Path: path, Steps: steps}, nil
}

// MustCompile is Compile for paths known at init time.
func MustCompile(path string) Pattern {
	p, err := Compile(path)
	if err != nil {
		panic(err)
	}
	return p
}

var (
	// IOSBuildNumber is a buildNumber property two levels under an ios property.
	IOSBuildNumber = MustCompile("ios.buildNumber")
	// AndroidVersionCode is a versionCode property two levels under an android property.
	AndroidVersionCode = MustCompile("android.versionCode")
)
