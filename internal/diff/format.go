package diff

import (
	"fmt"
	"strings"
)

const (
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

// Unified renders the result as a listing with "+", "-" and " " prefixes.
// Character-granularity results are rendered hunk by hunk on their own lines.
func (r Result) Unified(color bool) string {
	var b strings.Builder
	for _, c := range r.Changes {
		prefix, start, end := " ", "", ""
		switch c.Kind {
		case Added:
			prefix = "+"
			if color {
				start, end = ansiGreen, ansiReset
			}
		case Removed:
			prefix = "-"
			if color {
				start, end = ansiRed, ansiReset
			}
		}
		for _, line := range splitLines(c.Text) {
			fmt.Fprintf(&b, "%s%s%s%s\n", start, prefix, line, end)
		}
	}
	return b.String()
}

// Summary returns a one-line count of the change, e.g. "+3 -1 lines".
func (r Result) Summary() string {
	unit := "lines"
	if r.Granularity == CharGranularity {
		unit = "chars"
	}
	return fmt.Sprintf("+%d -%d %s", r.Added, r.Removed, unit)
}

func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
