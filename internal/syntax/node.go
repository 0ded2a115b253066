package syntax

// Kind tags the node variants the mutator cares about. Everything else
// the grammar produces is KindOther and keeps its tree-sitter type in Node.Type.
type Kind int

const (
	KindOther Kind = iota
	KindProgram
	KindObject     // object literal expression
	KindProperty   // key/value member of an object literal
	KindString     // string literal
	KindNumber     // numeric literal
	KindBigInt     // numeric literal with an n suffix
	KindTemplate   // template literal
	KindIdentifier // identifier or property name
)

var kindNames = map[Kind]string{
	KindOther:      "other",
	KindProgram:    "program",
	KindObject:     "object",
	KindProperty:   "property",
	KindString:     "string",
	KindNumber:     "number",
	KindBigInt:     "bigint",
	KindTemplate:   "template",
	KindIdentifier: "identifier",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Position is a 1-based line and byte column.
type Position struct {
	Line   int
	Column int
}

// Node is one element of the lowered syntax tree.
type Node struct {
	Kind Kind
	// Type is the tree-sitter node type the node was lowered from.
	Type string
	// Key is the property name when the property key is a plain identifier.
	// It is empty for string, numeric and computed keys.
	Key string
	// Value is the property value (KindProperty only).
	Value *Node

	Parent   *Node
	Children []*Node

	Start int
	End   int
	Pos   Position

	tree *Tree
}

// Text returns the original source text covered by the node.
func (n *Node) Text() string {
	if n == nil || n.tree == nil {
		return ""
	}
	return string(n.tree.src[n.Start:n.End])
}

// Ancestor returns the node depth levels above n. Ancestor(0) is n itself.
// It returns nil when the chain is shorter than depth.
func (n *Node) Ancestor(depth int) *Node {
	cur := n
	for i := 0; i < depth && cur != nil; i++ {
		cur = cur.Parent
	}
	return cur
}

// Ancestors returns the parent chain of n, nearest first.
func (n *Node) Ancestors() []*Node {
	var chain []*Node
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		chain = append(chain, cur)
	}
	return chain
}

// IsLiteral reports whether the node is a string, number or bigint literal.
func (n *Node) IsLiteral() bool {
	switch n.Kind {
	case KindString, KindNumber, KindBigInt:
		return true
	}
	return false
}
