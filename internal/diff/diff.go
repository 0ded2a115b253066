// Package diff renders line diffs of a document before and after an edit,
// using the sergi/go-diff engine for the line alignment.
package diff

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineType represents the type of diff line
type LineType int

const (
	LineContext LineType = iota // Unchanged context line
	LineAdded                   // Added line
	LineRemoved                 // Removed line
)

// Line represents a single line in the diff
type Line struct {
	Content string
	Type    LineType
}

// Hunk represents a group of changes
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []Line
}

// FileDiff represents changes to a single file
type FileDiff struct {
	Path  string
	Hunks []Hunk
}

// Empty reports whether the two sides were identical.
func (d *FileDiff) Empty() bool {
	return len(d.Hunks) == 0
}

// Stats returns the number of added and removed lines.
func (d *FileDiff) Stats() (added, removed int) {
	for _, h := range d.Hunks {
		for _, l := range h.Lines {
			switch l.Type {
			case LineAdded:
				added++
			case LineRemoved:
				removed++
			}
		}
	}
	return added, removed
}

// DefaultContext is the number of unchanged lines kept around a change.
const DefaultContext = 3

// Compute diffs two versions of the document at path.
func Compute(path, oldContent, newContent string) *FileDiff {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0

	// Each distinct line becomes one rune so the diff runs over whole lines.
	var lt lineTable
	a := lt.encode(oldContent)
	b := lt.encode(newContent)
	diffs := lt.decode(dmp.DiffMainRunes(a, b, false))

	return &FileDiff{
		Path:  path,
		Hunks: groupIntoHunks(toOperations(diffs), DefaultContext),
	}
}

// lineTable assigns one rune per distinct line, skipping the surrogate range
// so that runes survive the round trip through Diff.Text.
type lineTable struct {
	runes map[string]rune
	lines map[rune]string
	next  rune
}

func (lt *lineTable) encode(text string) []rune {
	if lt.runes == nil {
		lt.runes = make(map[string]rune)
		lt.lines = make(map[rune]string)
		lt.next = 1
	}
	var out []rune
	for text != "" {
		line := text
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			line = text[:i+1]
		}
		text = text[len(line):]

		r, ok := lt.runes[line]
		if !ok {
			if lt.next >= 0xD800 && lt.next <= 0xDFFF {
				lt.next = 0xE000
			}
			r = lt.next
			lt.next++
			lt.runes[line] = r
			lt.lines[r] = line
		}
		out = append(out, r)
	}
	return out
}

func (lt *lineTable) decode(diffs []diffmatchpatch.Diff) []diffmatchpatch.Diff {
	for i, d := range diffs {
		var b strings.Builder
		for _, r := range d.Text {
			b.WriteString(lt.lines[r])
		}
		diffs[i].Text = b.String()
	}
	return diffs
}

// operation represents a single line operation
type operation struct {
	typ     LineType
	oldLine int // 0-based, -1 when absent
	newLine int
	content string
}

func toOperations(diffs []diffmatchpatch.Diff) []operation {
	var ops []operation
	oldLine, newLine := 0, 0

	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				ops = append(ops, operation{typ: LineContext, oldLine: oldLine, newLine: newLine, content: line})
				oldLine++
				newLine++
			case diffmatchpatch.DiffDelete:
				ops = append(ops, operation{typ: LineRemoved, oldLine: oldLine, newLine: -1, content: line})
				oldLine++
			case diffmatchpatch.DiffInsert:
				ops = append(ops, operation{typ: LineAdded, oldLine: -1, newLine: newLine, content: line})
				newLine++
			}
		}
	}
	return ops
}

// groupIntoHunks keeps contextLines of context around each change and merges
// changes whose context would overlap.
func groupIntoHunks(ops []operation, contextLines int) []Hunk {
	var hunks []Hunk
	for i := 0; i < len(ops); {
		if ops[i].typ == LineContext {
			i++
			continue
		}

		start := max(0, i-contextLines)
		last := i
		for j := i; j < len(ops); j++ {
			if ops[j].typ != LineContext {
				last = j
			} else if j-last > 2*contextLines {
				break
			}
		}
		stop := min(len(ops), last+contextLines+1)

		hunks = append(hunks, buildHunk(ops[start:stop]))
		i = stop
	}
	return hunks
}

func buildHunk(ops []operation) Hunk {
	h := Hunk{OldStart: -1, NewStart: -1}
	for _, op := range ops {
		h.Lines = append(h.Lines, Line{Content: op.content, Type: op.typ})
		if op.oldLine >= 0 {
			h.OldCount++
			if h.OldStart < 0 {
				h.OldStart = op.oldLine + 1
			}
		}
		if op.newLine >= 0 {
			h.NewCount++
			if h.NewStart < 0 {
				h.NewStart = op.newLine + 1
			}
		}
	}
	if h.OldStart < 0 {
		h.OldStart = 0
	}
	if h.NewStart < 0 {
		h.NewStart = 0
	}
	return h
}

// Unified renders the diff in unified format.
func (d *FileDiff) Unified() string {
	return d.render(plain)
}

// Styled renders the unified diff with terminal colors.
func (d *FileDiff) Styled() string {
	return d.render(colored)
}

// palette styles each kind of diff line; a nil style leaves text untouched.
type palette struct {
	header, hunk, added, removed *lipgloss.Style
}

func style(s lipgloss.Style) *lipgloss.Style {
	return &s
}

var (
	plain   = palette{}
	colored = palette{
		header:  style(lipgloss.NewStyle().Bold(true)),
		hunk:    style(lipgloss.NewStyle().Foreground(lipgloss.Color("#2196F3"))),
		added:   style(lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A"))),
		removed: style(lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935"))),
	}
)

func paint(s *lipgloss.Style, text string) string {
	if s == nil {
		return text
	}
	return s.Render(text)
}

func (d *FileDiff) render(p palette) string {
	if d.Empty() {
		return ""
	}
	var b strings.Builder
	b.WriteString(paint(p.header, "--- a/"+d.Path) + "\n")
	b.WriteString(paint(p.header, "+++ b/"+d.Path) + "\n")
	for _, h := range d.Hunks {
		b.WriteString(paint(p.hunk, fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldCount, h.NewStart, h.NewCount)) + "\n")
		for _, l := range h.Lines {
			switch l.Type {
			case LineAdded:
				b.WriteString(paint(p.added, "+"+l.Content) + "\n")
			case LineRemoved:
				b.WriteString(paint(p.removed, "-"+l.Content) + "\n")
			default:
				b.WriteString(" " + l.Content + "\n")
			}
		}
	}
	return b.String()
}
