// File: internal/search/parser.go
package search

import (
	"fmt"
	"strings"
	"unicode"
)

// ParseError reports a malformed boolean query. Offset is a byte offset into the input.
type ParseError struct {
	Offset  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at offset %d", e.Message, e.Offset)
}

type tokenKind int

const (
	tokTerm tokenKind = iota
	tokPhrase
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
	tokEOF
)

type token struct {
	kind  tokenKind
	value string
	pos   int
}

func (t token) startsOperand() bool {
	switch t.kind {
	case tokTerm, tokPhrase, tokNot, tokLParen:
		return true
	}
	return false
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// lex splits the input into tokens. A leading '-' on a word, phrase or group is NOT.
func lex(input string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(input) {
		c := input[i]
		switch {
		case isSpace(c):
			i++
		case c == '(':
			tokens = append(tokens, token{kind: tokLParen, pos: i})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokRParen, pos: i})
			i++
		case c == '"':
			end := strings.IndexByte(input[i+1:], '"')
			if end < 0 {
				return nil, &ParseError{Offset: i, Message: "unterminated quote"}
			}
			phrase := strings.Join(strings.Fields(input[i+1:i+1+end]), " ")
			if phrase == "" {
				return nil, &ParseError{Offset: i, Message: "empty phrase"}
			}
			tokens = append(tokens, token{kind: tokPhrase, value: phrase, pos: i})
			i += end + 2
		case c == '-' && i+1 < len(input) && !isSpace(input[i+1]) && input[i+1] != ')' && input[i+1] != '-':
			tokens = append(tokens, token{kind: tokNot, value: "-", pos: i})
			i++
		default:
			start := i
			for i < len(input) && !isSpace(input[i]) && input[i] != '(' && input[i] != ')' && input[i] != '"' {
				i++
			}
			word := input[start:i]
			switch word {
			case "AND":
				tokens = append(tokens, token{kind: tokAnd, value: word, pos: start})
			case "OR":
				tokens = append(tokens, token{kind: tokOr, value: word, pos: start})
			case "NOT":
				tokens = append(tokens, token{kind: tokNot, value: word, pos: start})
			default:
				tokens = append(tokens, token{kind: tokTerm, value: word, pos: start})
			}
		}
	}
	return append(tokens, token{kind: tokEOF, pos: len(input)}), nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

// expectOperand fails at the operator's position when nothing it can apply to follows.
func (p *parser) expectOperand(op token) error {
	if p.peek().startsOperand() {
		return nil
	}
	return &ParseError{Offset: op.pos, Message: fmt.Sprintf("operator %s without operand", op.value)}
}

// parseOr: and (OR and)*
func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	children := []node{left}
	for p.peek().kind == tokOr {
		if err := p.expectOperand(p.next()); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		children = append(children, right)
	}
	if len(children) == 1 {
		return left, nil
	}
	return newOr(children), nil
}

// parseAnd: unary ((AND)? unary)*
func (p *parser) parseAnd() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	children := []node{left}
	for {
		t := p.peek()
		if t.kind == tokAnd {
			if err := p.expectOperand(p.next()); err != nil {
				return nil, err
			}
		} else if !t.startsOperand() {
			break
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		children = append(children, right)
	}
	if len(children) == 1 {
		return left, nil
	}
	return newAnd(children), nil
}

func (p *parser) parseUnary() (node, error) {
	if p.peek().kind == tokNot {
		if err := p.expectOperand(p.next()); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notNode{child: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	t := p.next()
	switch t.kind {
	case tokTerm:
		return termNode{value: strings.ToLower(t.value)}, nil
	case tokPhrase:
		return termNode{value: strings.ToLower(t.value), phrase: true}, nil
	case tokLParen:
		if p.peek().kind == tokRParen {
			return nil, &ParseError{Offset: t.pos, Message: "empty group"}
		}
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, &ParseError{Offset: t.pos, Message: "unbalanced parenthesis"}
		}
		p.next()
		return inner, nil
	case tokRParen:
		return nil, &ParseError{Offset: t.pos, Message: "unbalanced parenthesis"}
	case tokEOF:
		return nil, &ParseError{Offset: t.pos, Message: "operator without operand"}
	default:
		return nil, &ParseError{Offset: t.pos, Message: fmt.Sprintf("operator %s without operand", t.value)}
	}
}

// Query is a parsed boolean search expression. The zero value matches everything.
type Query struct {
	root node
}

// Parse parses a boolean query. Operators AND, OR and NOT are recognised only in upper
// case; a leading '-' negates a term. Adjacent operands are joined with AND.
func Parse(input string) (*Query, error) {
	if strings.TrimSpace(input) == "" {
		return &Query{}, nil
	}
	tokens, err := lex(input)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		if t.kind == tokRParen {
			return nil, &ParseError{Offset: t.pos, Message: "unbalanced parenthesis"}
		}
		return nil, &ParseError{Offset: t.pos, Message: "unexpected token"}
	}
	return &Query{root: root}, nil
}

// IsEmpty reports whether the query matches everything.
func (q *Query) IsEmpty() bool { return q == nil || q.root == nil }

// Match reports whether text satisfies the query. Matching is case-insensitive
// substring containment per term or phrase.
func (q *Query) Match(text string) bool {
	if q.IsEmpty() {
		return true
	}
	return q.root.match(strings.ToLower(text))
}

// Terms lists the distinct terms and phrases that must or may be present,
// excluding anything under a negation.
func (q *Query) Terms() []string {
	if q.IsEmpty() {
		return nil
	}
	var out []string
	seen := map[string]bool{}
	q.root.collect(false, func(v string) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	})
	return out
}

// String renders the query in canonical form: explicit upper-case operators,
// quoted phrases and parentheses only where precedence requires them.
func (q *Query) String() string {
	if q.IsEmpty() {
		return ""
	}
	var b strings.Builder
	q.root.write(&b)
	return b.String()
}

type node interface {
	match(lower string) bool
	collect(negated bool, fn func(string))
	write(b *strings.Builder)
	precedence() int
}

type termNode struct {
	value  string
	phrase bool
}

func (n termNode) match(lower string) bool { return strings.Contains(lower, n.value) }

func (n termNode) collect(negated bool, fn func(string)) {
	if !negated {
		fn(n.value)
	}
}

func (n termNode) write(b *strings.Builder) {
	if n.phrase || needsQuoting(n.value) {
		b.WriteByte('"')
		b.WriteString(n.value)
		b.WriteByte('"')
		return
	}
	b.WriteString(n.value)
}

func (termNode) precedence() int { return 3 }

// needsQuoting reports whether a bare term would re-parse differently.
func needsQuoting(v string) bool {
	return strings.HasPrefix(v, "-") || strings.IndexFunc(v, unicode.IsSpace) >= 0
}

type notNode struct{ child node }

func (n notNode) match(lower string) bool { return !n.child.match(lower) }

func (n notNode) collect(negated bool, fn func(string)) { n.child.collect(!negated, fn) }

func (n notNode) write(b *strings.Builder) {
	b.WriteString("NOT ")
	writeChild(b, n.child, n.precedence())
}

func (notNode) precedence() int { return 2 }

type andNode struct{ children []node }

func newAnd(children []node) node {
	var flat []node
	for _, c := range children {
		if a, ok := c.(andNode); ok {
			flat = append(flat, a.children...)
			continue
		}
		flat = append(flat, c)
	}
	return andNode{children: flat}
}

func (n andNode) match(lower string) bool {
	for _, c := range n.children {
		if !c.match(lower) {
			return false
		}
	}
	return true
}

func (n andNode) collect(negated bool, fn func(string)) {
	for _, c := range n.children {
		c.collect(negated, fn)
	}
}

func (n andNode) write(b *strings.Builder) { writeJoined(b, n.children, " AND ", n.precedence()) }

func (andNode) precedence() int { return 1 }

type orNode struct{ children []node }

func newOr(children []node) node {
	var flat []node
	for _, c := range children {
		if o, ok := c.(orNode); ok {
			flat = append(flat, o.children...)
			continue
		}
		flat = append(flat, c)
	}
	return orNode{children: flat}
}

func (n orNode) match(lower string) bool {
	for _, c := range n.children {
		if c.match(lower) {
			return true
		}
	}
	return false
}

func (n orNode) collect(negated bool, fn func(string)) {
	for _, c := range n.children {
		c.collect(negated, fn)
	}
}

func (n orNode) write(b *strings.Builder) { writeJoined(b, n.children, " OR ", n.precedence()) }

func (orNode) precedence() int { return 0 }

func writeJoined(b *strings.Builder, children []node, sep string, parent int) {
	for i, c := range children {
		if i > 0 {
			b.WriteString(sep)
		}
		writeChild(b, c, parent)
	}
}

func writeChild(b *strings.Builder, child node, parent int) {
	if child.precedence() < parent {
		b.WriteByte('(')
		child.write(b)
		b.WriteByte(')')
		return
	}
	child.write(b)
}
