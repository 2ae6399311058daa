package downdrag

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FormulaMode selects how a formula refers to its inputs.
type FormulaMode int

// Formula modes.
const (
	// Positional formulas use "%s" slots filled in order.
	Positional FormulaMode = iota
	// Named formulas refer to previously computed details by name.
	Named
)

// ErrDivisionByZero is returned when a formula divides by zero.
var ErrDivisionByZero = errors.New("division by zero")

// Formula is a compiled arithmetic expression over numeric literals,
// + - * / and parentheses, with input slots. It never evaluates anything
// outside that grammar.
type Formula struct {
	src   string
	root  node
	slots int
	names []string
}

// CompileFormula parses src. In Named mode, names lists the bindings the
// formula may refer to; when names overlap at the same position the longest
// one wins. Syntax errors are EINVALID.
func CompileFormula(src string, mode FormulaMode, names []string) (*Formula, error) {
	lex := &lexer{src: src, mode: mode, names: longestFirst(names)}
	toks, err := lex.run()
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: toks}
	root, err := p.parse()
	if err != nil {
		return nil, err
	}
	f := &Formula{src: src, root: root}
	for _, t := range toks {
		switch t.kind {
		case tokSlot:
			f.slots++
		case tokName:
			f.names = appendUnique(f.names, t.text)
		}
	}
	return f, nil
}

// String returns the formula source.
func (f *Formula) String() string { return f.src }

// Slots returns the number of positional slots.
func (f *Formula) Slots() int { return f.slots }

// Names returns the distinct names the formula refers to, in order of first
// appearance.
func (f *Formula) Names() []string { return f.names }

// Eval evaluates a positional formula. The number of args must equal the
// number of slots; each arg must have a numeric reading.
func (f *Formula) Eval(args ...Value) (float64, error) {
	if len(args) != f.slots {
		return 0, fmt.Errorf("formula %q has %d slots, got %d values", f.src, f.slots, len(args))
	}
	env := &env{args: args}
	return f.root.eval(env)
}

// EvalNamed evaluates a named formula against bindings.
func (f *Formula) EvalNamed(bindings map[string]Value) (float64, error) {
	env := &env{bindings: bindings}
	return f.root.eval(env)
}

type env struct {
	args     []Value
	next     int
	bindings map[string]Value
}

func number(v Value, what string) (float64, error) {
	n, ok := v.Number()
	if !ok {
		return 0, fmt.Errorf("%s: %q is not a number", what, v.String())
	}
	return n, nil
}

type node interface {
	eval(e *env) (float64, error)
}

type literal float64

func (n literal) eval(*env) (float64, error) { return float64(n), nil }

type slot struct{}

func (slot) eval(e *env) (float64, error) {
	v := e.args[e.next]
	e.next++
	return number(v, fmt.Sprintf("slot %d", e.next))
}

type ref string

func (n ref) eval(e *env) (float64, error) {
	v, ok := e.bindings[string(n)]
	if !ok {
		return 0, fmt.Errorf("%q has no value", string(n))
	}
	return number(v, string(n))
}

type unary struct {
	op byte
	x  node
}

func (n unary) eval(e *env) (float64, error) {
	x, err := n.x.eval(e)
	if err != nil {
		return 0, err
	}
	if n.op == '-' {
		return -x, nil
	}
	return x, nil
}

type binary struct {
	op   byte
	x, y node
}

func (n binary) eval(e *env) (float64, error) {
	x, err := n.x.eval(e)
	if err != nil {
		return 0, err
	}
	y, err := n.y.eval(e)
	if err != nil {
		return 0, err
	}
	switch n.op {
	case '+':
		return x + y, nil
	case '-':
		return x - y, nil
	case '*':
		return x * y, nil
	default:
		if y == 0 {
			return 0, ErrDivisionByZero
		}
		return x / y, nil
	}
}

type tokKind int

const (
	tokNumber tokKind = iota
	tokSlot
	tokName
	tokOp
	tokEOF
)

type token struct {
	kind tokKind
	text string
	num  float64
	pos  int
}

type lexer struct {
	src   string
	mode  FormulaMode
	names []string
	pos   int
	toks  []token
}

func (l *lexer) run() ([]token, error) {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			l.pos++
			continue
		}
		if l.mode == Named {
			if name := l.matchName(); name != "" {
				l.emit(tokName, name)
				continue
			}
		}
		switch {
		case strings.IndexByte("+-*/()", c) >= 0:
			l.emit(tokOp, string(c))
		case l.mode == Positional && strings.HasPrefix(l.src[l.pos:], "%s"):
			l.emit(tokSlot, "%s")
		case isDigit(c) || c == '.':
			if err := l.number(); err != nil {
				return nil, err
			}
		default:
			return nil, Errorf(EINVALID, "formula %q: unexpected %q at offset %d", l.src, c, l.pos)
		}
	}
	l.toks = append(l.toks, token{kind: tokEOF, pos: l.pos})
	return l.toks, nil
}

func (l *lexer) emit(kind tokKind, text string) {
	l.toks = append(l.toks, token{kind: kind, text: text, pos: l.pos})
	l.pos += len(text)
}

func (l *lexer) matchName() string {
	for _, name := range l.names {
		if strings.HasPrefix(l.src[l.pos:], name) {
			return name
		}
	}
	return ""
}

func (l *lexer) number() error {
	start := l.pos
	for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || l.src[l.pos] == '.') {
		l.pos++
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		end := l.pos + 1
		if end < len(l.src) && (l.src[end] == '+' || l.src[end] == '-') {
			end++
		}
		if end < len(l.src) && isDigit(l.src[end]) {
			for end < len(l.src) && isDigit(l.src[end]) {
				end++
			}
			l.pos = end
		}
	}
	text := l.src[start:l.pos]
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Errorf(EINVALID, "formula %q: bad number %q", l.src, text)
	}
	l.toks = append(l.toks, token{kind: tokNumber, text: text, num: n, pos: start})
	return nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// parser implements:
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/") unary }
//	unary   = ("+" | "-") unary | primary
//	primary = number | slot | name | "(" expr ")"
type parser struct {
	src  string
	toks []token
	pos  int
}

func (p *parser) parse() (node, error) {
	n, err := p.expr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.errorf(t, "unexpected %q", t.text)
	}
	return n, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isOp(ops string) (byte, bool) {
	t := p.peek()
	if t.kind == tokOp && strings.Contains(ops, t.text) {
		return t.text[0], true
	}
	return 0, false
}

func (p *parser) expr() (node, error) {
	x, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.isOp("+-")
		if !ok {
			return x, nil
		}
		p.advance()
		y, err := p.term()
		if err != nil {
			return nil, err
		}
		x = binary{op: op, x: x, y: y}
	}
}

func (p *parser) term() (node, error) {
	x, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.isOp("*/")
		if !ok {
			return x, nil
		}
		p.advance()
		y, err := p.unary()
		if err != nil {
			return nil, err
		}
		x = binary{op: op, x: x, y: y}
	}
}

func (p *parser) unary() (node, error) {
	if op, ok := p.isOp("+-"); ok {
		p.advance()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return unary{op: op, x: x}, nil
	}
	return p.primary()
}

func (p *parser) primary() (node, error) {
	t := p.advance()
	switch t.kind {
	case tokNumber:
		return literal(t.num), nil
	case tokSlot:
		return slot{}, nil
	case tokName:
		return ref(t.text), nil
	case tokOp:
		if t.text == "(" {
			x, err := p.expr()
			if err != nil {
				return nil, err
			}
			if _, ok := p.isOp(")"); !ok {
				return nil, p.errorf(p.peek(), "missing )")
			}
			p.advance()
			return x, nil
		}
	case tokEOF:
		return nil, p.errorf(t, "unexpected end")
	}
	return nil, p.errorf(t, "unexpected %q", t.text)
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return Errorf(EINVALID, "formula %q: %s at offset %d", p.src, fmt.Sprintf(format, args...), t.pos)
}

func longestFirst(names []string) []string {
	sorted := make([]string, 0, len(names))
	for _, n := range names {
		if n != "" {
			sorted = append(sorted, n)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	return sorted
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
