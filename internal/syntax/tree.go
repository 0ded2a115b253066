package syntax

import (
	"bytes"
	"fmt"
	"sort"
)

// Tree is a parsed document plus the edits recorded against it.
type Tree struct {
	Path     string
	Language Language
	Root     *Node

	src   []byte
	edits []edit
}

type edit struct {
	start int
	end   int
	text  string
}

// Walk visits every node exactly once in pre-order, which is document order.
func (t *Tree) Walk(fn func(*Node)) {
	var visit func(n *Node)
	visit = func(n *Node) {
		fn(n)
		for _, c := range n.Children {
			visit(c)
		}
	}
	if t.Root != nil {
		visit(t.Root)
	}
}

// Replace schedules the text covered by n to be replaced.
// Replacing the same node twice keeps the latest text; replacing a node that
// overlaps a different pending edit is an error.
func (t *Tree) Replace(n *Node, text string) error {
	if n == nil || n.tree != t {
		return fmt.Errorf("replace: node does not belong to %s", t.Path)
	}
	for i, e := range t.edits {
		if e.start == n.Start && e.end == n.End {
			t.edits[i].text = text
			return nil
		}
		if n.Start < e.end && e.start < n.End {
			return fmt.Errorf("replace at %d:%d overlaps a pending edit", n.Pos.Line, n.Pos.Column)
		}
	}
	t.edits = append(t.edits, edit{start: n.Start, end: n.End, text: text})
	return nil
}

// Edited reports whether any edit is pending.
func (t *Tree) Edited() bool {
	return len(t.edits) > 0
}

// Render regenerates the document with every pending edit applied.
// Without edits the output equals the input.
func (t *Tree) Render() []byte {
	if len(t.edits) == 0 {
		out := make([]byte, len(t.src))
		copy(out, t.src)
		return out
	}

	edits := make([]edit, len(t.edits))
	copy(edits, t.edits)
	sort.Slice(edits, func(i, j int) bool { return edits[i].start < edits[j].start })

	var buf bytes.Buffer
	buf.Grow(len(t.src))
	pos := 0
	for _, e := range edits {
		buf.Write(t.src[pos:e.start])
		buf.WriteString(e.text)
		pos = e.end
	}
	buf.Write(t.src[pos:])
	return buf.Bytes()
}
