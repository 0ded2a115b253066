package syntax

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Leaf is a mutable handle on the value of one object property.
type Leaf struct {
	Property *Node
	tree     *Tree
}

// Leaf returns a handle on prop's value, or nil if prop is not a property
// with a value.
func (t *Tree) Leaf(prop *Node) *Leaf {
	if prop == nil || prop.Kind != KindProperty || prop.Value == nil || prop.tree != t {
		return nil
	}
	return &Leaf{Property: prop, tree: t}
}

// Value returns the value node.
func (l *Leaf) Value() *Node {
	return l.Property.Value
}

// Literal describes a literal property value.
type Literal struct {
	Kind Kind
	// Raw is the literal as written, including quotes or suffix.
	Raw string
	// Value is the decoded string for string literals and the raw text
	// without the n suffix for bigint literals.
	Value string
}

// Literal decodes the value when it is a string, number or bigint literal.
func (l *Leaf) Literal() (Literal, bool) {
	v := l.Value()
	if !v.IsLiteral() {
		return Literal{}, false
	}
	raw := v.Text()
	lit := Literal{Kind: v.Kind, Raw: raw, Value: raw}
	switch v.Kind {
	case KindString:
		lit.Value = unquote(raw)
	case KindBigInt:
		lit.Value = strings.TrimSuffix(raw, "n")
	}
	return lit, true
}

// Set writes value back in place, keeping the literal form: string literals
// keep their quote character, numeric literals stay numeric and bigint
// literals keep the n suffix. Values that are not literals have no source
// representation to update; Set leaves them alone and reports false.
func (l *Leaf) Set(value string) (bool, error) {
	v := l.Value()
	var text string
	switch v.Kind {
	case KindString:
		q := v.Text()[:1]
		text = q + escape(value, q[0]) + q
	case KindNumber:
		text = value
	case KindBigInt:
		text = value + "n"
	default:
		return false, nil
	}
	if err := l.tree.Replace(v, text); err != nil {
		return false, err
	}
	return true, nil
}

func escape(s string, quote byte) string {
	if !strings.ContainsAny(s, "\\\n\r"+string(quote)) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\', quote:
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// unquote decodes a JavaScript string literal. Malformed escapes decode to
// the escaped character, as engines do in sloppy mode.
func unquote(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	body := raw[1 : len(raw)-1]
	if !strings.Contains(body, `\`) {
		return body
	}

	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			b.WriteByte(c)
			continue
		}
		i++
		switch e := body[i]; e {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\n':
			// line continuation
		case '\r':
			if i+1 < len(body) && body[i+1] == '\n' {
				i++
			}
		case 'x':
			if r, ok := hexRune(body, i+1, 2); ok {
				b.WriteRune(r)
				i += 2
			} else {
				b.WriteByte(e)
			}
		case 'u':
			if i+1 < len(body) && body[i+1] == '{' {
				end := strings.IndexByte(body[i+1:], '}')
				if end > 1 {
					if r, ok := hexRune(body, i+2, end-1); ok {
						b.WriteRune(r)
						i += end + 1
						continue
					}
				}
				b.WriteByte(e)
			} else if r, ok := hexRune(body, i+1, 4); ok {
				b.WriteRune(r)
				i += 4
			} else {
				b.WriteByte(e)
			}
		default:
			r, size := utf8.DecodeRuneInString(body[i:])
			b.WriteRune(r)
			i += size - 1
		}
	}
	return b.String()
}

func hexRune(s string, at, n int) (rune, bool) {
	if at+n > len(s) {
		return 0, false
	}
	v, err := strconv.ParseUint(s[at:at+n], 16, 32)
	if err != nil || v > utf8.MaxRune {
		return 0, false
	}
	return rune(v), true
}
