package downdrag

import "time"

// Pattern is a compiled search pattern. Searches are case-insensitive and
// the dot matches line breaks.
type Pattern interface {
	// Search returns the capture groups of the first match in text, without
	// the whole match. A group that did not take part in the match is "".
	// ok is false when nothing matched.
	Search(text string) (groups []string, ok bool, err error)

	// Groups returns the number of capture groups.
	Groups() int

	// String returns the source expression.
	String() string
}

// PatternCompiler compiles search patterns.
type PatternCompiler interface {
	Compile(expr string) (Pattern, error)

	// Quote escapes literal so that it matches itself.
	Quote(literal string) string
}

// TimeFormatter renders a timestamp with a strftime-style pattern.
type TimeFormatter interface {
	Format(pattern string, t time.Time) (string, error)
}
