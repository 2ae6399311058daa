// Package strftime implements downdrag.TimeFormatter with C strftime
// conversion specifications.
package strftime

import (
	"sync"
	"time"

	"github.com/CodeBeast357/downdrag"
	"github.com/lestrrat-go/strftime"
)

// Ensure Formatter implements downdrag.TimeFormatter at compile time.
var _ downdrag.TimeFormatter = (*Formatter)(nil)

// Formatter renders timestamps and caches compiled patterns.
type Formatter struct {
	mu       sync.Mutex
	patterns map[string]*strftime.Strftime
}

// NewFormatter creates a new Formatter.
func NewFormatter() *Formatter {
	return &Formatter{patterns: make(map[string]*strftime.Strftime)}
}

// Format renders t with pattern, e.g. "%A %d %B".
func (f *Formatter) Format(pattern string, t time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.patterns[pattern]
	if !ok {
		var err error
		if p, err = strftime.New(pattern); err != nil {
			return "", err
		}
		f.patterns[pattern] = p
	}
	return p.FormatString(t), nil
}
