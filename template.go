package downdrag

import (
	"strings"
)

// Substitute fills the "%s" slots of tmpl with args in order. "%%" stands for
// a literal percent sign. Any other verb, or a slot count that differs from
// len(args), is EINVALID.
func Substitute(tmpl string, args ...string) (string, error) {
	var b strings.Builder
	next := 0
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+1 == len(tmpl) {
			return "", Errorf(EINVALID, "template %q ends with %%", tmpl)
		}
		i++
		switch tmpl[i] {
		case '%':
			b.WriteByte('%')
		case 's':
			if next == len(args) {
				return "", Errorf(EINVALID, "template %q has more slots than the %d values given", tmpl, len(args))
			}
			b.WriteString(args[next])
			next++
		default:
			return "", Errorf(EINVALID, "template %q: unsupported verb %%%c", tmpl, tmpl[i])
		}
	}
	if next != len(args) {
		return "", Errorf(EINVALID, "template %q has %d slots, got %d values", tmpl, next, len(args))
	}
	return b.String(), nil
}

// Slots returns the number of "%s" slots in tmpl.
func Slots(tmpl string) int {
	n := 0
	for i := 0; i < len(tmpl)-1; i++ {
		if tmpl[i] != '%' {
			continue
		}
		if tmpl[i+1] == 's' {
			n++
		}
		i++
	}
	return n
}
