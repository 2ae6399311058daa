// Package regexp2 implements downdrag.PatternCompiler with a backtracking
// regular expression engine that supports lookarounds and backreferences.
package regexp2

import (
	"time"

	"github.com/CodeBeast357/downdrag"
	"github.com/dlclark/regexp2"
)

// DefaultTimeout bounds a single search.
const DefaultTimeout = time.Second

// Ensure Compiler implements downdrag.PatternCompiler at compile time.
var _ downdrag.PatternCompiler = (*Compiler)(nil)

// Compiler compiles case-insensitive patterns in which the dot matches line
// breaks.
type Compiler struct {
	timeout time.Duration
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithTimeout sets the per-search timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Compiler) {
		c.timeout = d
	}
}

// NewCompiler creates a new Compiler.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile compiles expr.
func (c *Compiler) Compile(expr string) (downdrag.Pattern, error) {
	re, err := regexp2.Compile(expr, regexp2.IgnoreCase|regexp2.Singleline)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = c.timeout
	return &Pattern{re: re, groups: len(re.GetGroupNumbers()) - 1}, nil
}

// Quote escapes literal.
func (c *Compiler) Quote(literal string) string {
	return regexp2.Escape(literal)
}

// Ensure Pattern implements downdrag.Pattern at compile time.
var _ downdrag.Pattern = (*Pattern)(nil)

// Pattern is a compiled expression.
type Pattern struct {
	re     *regexp2.Regexp
	groups int
}

// Search returns the capture groups of the first match in text.
func (p *Pattern) Search(text string) ([]string, bool, error) {
	m, err := p.re.FindStringMatch(text)
	if err != nil {
		return nil, false, err
	}
	if m == nil {
		return nil, false, nil
	}
	groups := m.Groups()
	values := make([]string, 0, len(groups)-1)
	for _, g := range groups[1:] {
		if len(g.Captures) == 0 {
			values = append(values, "")
			continue
		}
		values = append(values, g.String())
	}
	return values, true, nil
}

// Groups returns the number of capture groups.
func (p *Pattern) Groups() int { return p.groups }

// String returns the source expression.
func (p *Pattern) String() string { return p.re.String() }
