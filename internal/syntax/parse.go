// Package syntax parses JavaScript and TypeScript modules with tree-sitter
// and lowers the result into a small typed tree. The tree keeps parent links
// for ancestor matching and records in-place leaf edits that Render splices
// back into the original source, so untouched text is preserved byte for byte.
package syntax

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// ParseError reports the first syntax error tree-sitter recovered from.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Snippet string
	Missing bool
}

func (e *ParseError) Error() string {
	what := "unexpected"
	if e.Missing {
		what = "missing"
	}
	if e.Snippet == "" {
		return fmt.Sprintf("%s:%d:%d: syntax error", e.Path, e.Line, e.Column)
	}
	return fmt.Sprintf("%s:%d:%d: syntax error: %s %q", e.Path, e.Line, e.Column, what, e.Snippet)
}

// Parse parses src as a module in the language implied by path.
func Parse(ctx context.Context, path string, src []byte) (*Tree, error) {
	return ParseLanguage(ctx, LanguageFor(path), path, src)
}

// ParseLanguage parses src with an explicit grammar.
func ParseLanguage(ctx context.Context, lang Language, path string, src []byte) (*Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang.grammar())

	st, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer st.Close()

	root := st.RootNode()
	if root.HasError() {
		return nil, firstError(root, path, src)
	}

	t := &Tree{Path: path, Language: lang, src: src}
	t.Root = t.lower(root, nil)
	return t, nil
}

// firstError finds the earliest ERROR or MISSING node in document order.
func firstError(root *sitter.Node, path string, src []byte) *ParseError {
	var found *sitter.Node
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if found != nil || n == nil {
			return
		}
		if n.Type() == "ERROR" || n.IsMissing() {
			found = n
			return
		}
		if !n.HasError() {
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i))
		}
	}
	visit(root)

	if found == nil {
		return &ParseError{Path: path, Line: 1, Column: 1}
	}
	pt := found.StartPoint()
	perr := &ParseError{
		Path:    path,
		Line:    int(pt.Row) + 1,
		Column:  int(pt.Column) + 1,
		Missing: found.IsMissing(),
	}
	if perr.Missing {
		perr.Snippet = found.Type()
	} else {
		perr.Snippet = snippet(src[found.StartByte():found.EndByte()])
	}
	return perr
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 40 {
		s = s[:40] + "..."
	}
	return s
}

// lower converts a tree-sitter node and its named descendants.
func (t *Tree) lower(sn *sitter.Node, parent *Node) *Node {
	pt := sn.StartPoint()
	n := &Node{
		Kind:   kindOf(sn, t.src),
		Type:   sn.Type(),
		Parent: parent,
		Start:  int(sn.StartByte()),
		End:    int(sn.EndByte()),
		Pos:    Position{Line: int(pt.Row) + 1, Column: int(pt.Column) + 1},
		tree:   t,
	}

	switch sn.Type() {
	case "pair":
		if key := sn.ChildByFieldName("key"); key != nil {
			if key.Type() == "property_identifier" {
				n.Key = key.Content(t.src)
			}
			n.Children = append(n.Children, t.lower(key, n))
		}
		if value := sn.ChildByFieldName("value"); value != nil {
			n.Value = t.lower(unwrap(value), n)
			n.Children = append(n.Children, n.Value)
		}
		return n

	case "shorthand_property_identifier":
		// { buildNumber } carries an identifier key whose value is the
		// identifier of the same name.
		n.Key = sn.Content(t.src)
		n.Value = &Node{
			Kind:   KindIdentifier,
			Type:   "identifier",
			Parent: n,
			Start:  n.Start,
			End:    n.End,
			Pos:    n.Pos,
			tree:   t,
		}
		n.Children = []*Node{n.Value}
		return n

	case "string", "template_string", "number":
		// Fragments and escapes are not useful below a literal.
		return n
	}

	for i := 0; i < int(sn.NamedChildCount()); i++ {
		child := sn.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		n.Children = append(n.Children, t.lower(unwrap(child), n))
	}
	return n
}

// unwrap skips parenthesized expressions so that a parenthesized object is
// the direct child of whatever contains the parentheses.
func unwrap(sn *sitter.Node) *sitter.Node {
	for sn.Type() == "parenthesized_expression" {
		var inner *sitter.Node
		for i := 0; i < int(sn.NamedChildCount()); i++ {
			if c := sn.NamedChild(i); c.Type() != "comment" {
				inner = c
				break
			}
		}
		if inner == nil {
			return sn
		}
		sn = inner
	}
	return sn
}

func kindOf(sn *sitter.Node, src []byte) Kind {
	switch sn.Type() {
	case "program":
		return KindProgram
	case "object":
		return KindObject
	case "pair", "shorthand_property_identifier":
		return KindProperty
	case "string":
		return KindString
	case "number":
		if strings.HasSuffix(sn.Content(src), "n") {
			return KindBigInt
		}
		return KindNumber
	case "template_string":
		return KindTemplate
	case "identifier", "property_identifier":
		return KindIdentifier
	}
	return KindOther
}
