// Package diff computes deltas between two versions of a text.
//
// Results are ordered hunks tagged added, removed or unchanged. A single
// Result is computed at one granularity: lines for history browsing, or
// characters for fine-grained comparisons.
package diff

import (
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Kind tags a hunk.
type Kind int

const (
	Unchanged Kind = iota
	Added
	Removed
)

func (k Kind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "unchanged"
	}
}

// Granularity selects the unit a diff is computed and counted in.
type Granularity int

const (
	LineGranularity Granularity = iota
	CharGranularity
)

// Change is one hunk of a diff.
type Change struct {
	Kind  Kind
	Text  string
	Count int // lines or characters, depending on the granularity
}

// Result is the outcome of comparing two texts.
type Result struct {
	Added       int
	Removed     int
	Granularity Granularity
	Changes     []Change
}

// Lines diffs old and new line by line.
func Lines(oldText, newText string) Result {
	return Compute(oldText, newText, LineGranularity)
}

// Chars diffs old and new character by character.
func Chars(oldText, newText string) Result {
	return Compute(oldText, newText, CharGranularity)
}

// Compute diffs old and new at the given granularity.
func Compute(oldText, newText string, g Granularity) Result {
	dmp := diffmatchpatch.New()
	// No deadline: hunk boundaries must not depend on machine speed.
	dmp.DiffTimeout = 0

	var diffs []diffmatchpatch.Diff
	switch g {
	case CharGranularity:
		diffs = dmp.DiffMain(oldText, newText, false)
	default:
		g = LineGranularity
		diffs = diffLines(dmp, oldText, newText)
	}

	res := Result{Granularity: g, Changes: make([]Change, 0, len(diffs))}
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		c := Change{Text: d.Text, Count: count(d.Text, g)}
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			c.Kind = Added
			res.Added += c.Count
		case diffmatchpatch.DiffDelete:
			c.Kind = Removed
			res.Removed += c.Count
		default:
			c.Kind = Unchanged
		}
		res.Changes = append(res.Changes, c)
	}
	return res
}

// diffLines runs the Myers diff over whole lines. Each distinct line is
// encoded as one rune, the runes are diffed, and every hunk is expanded back
// to the lines it stands for.
func diffLines(dmp *diffmatchpatch.DiffMatchPatch, oldText, newText string) []diffmatchpatch.Diff {
	enc := newLineEncoder()
	a, okA := enc.encode(oldText)
	b, okB := enc.encode(newText)
	if !okA || !okB {
		return replaceAll(oldText, newText)
	}

	diffs := dmp.DiffMainRunes(a, b, false)
	for i := range diffs {
		diffs[i].Text = enc.decode(diffs[i].Text)
	}
	return diffs
}

// replaceAll is the diff of two texts with nothing in common.
func replaceAll(oldText, newText string) []diffmatchpatch.Diff {
	var diffs []diffmatchpatch.Diff
	if oldText != "" {
		diffs = append(diffs, diffmatchpatch.Diff{Type: diffmatchpatch.DiffDelete, Text: oldText})
	}
	if newText != "" {
		diffs = append(diffs, diffmatchpatch.Diff{Type: diffmatchpatch.DiffInsert, Text: newText})
	}
	return diffs
}

// Runes standing in for lines must survive a round trip through string, so
// the surrogate block is skipped.
const (
	surrogateMin = 0xD800
	surrogateMax = 0xDFFF
)

// lineEncoder maps distinct lines to distinct valid runes.
type lineEncoder struct {
	lines []string
	index map[string]rune
}

func newLineEncoder() *lineEncoder {
	return &lineEncoder{index: make(map[string]rune)}
}

// encode returns one rune per line of text. Lines keep their trailing
// newline. It reports false when text has more distinct lines than there
// are runes to encode them.
func (e *lineEncoder) encode(text string) ([]rune, bool) {
	if text == "" {
		return nil, true
	}
	parts := strings.SplitAfter(text, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}

	out := make([]rune, 0, len(parts))
	for _, line := range parts {
		r, ok := e.index[line]
		if !ok {
			r = runeFor(len(e.lines))
			if r > utf8.MaxRune {
				return nil, false
			}
			e.index[line] = r
			e.lines = append(e.lines, line)
		}
		out = append(out, r)
	}
	return out, true
}

// decode expands a hunk of encoded runes back to its lines.
func (e *lineEncoder) decode(encoded string) string {
	var sb strings.Builder
	for _, r := range encoded {
		sb.WriteString(e.lines[lineIndex(r)])
	}
	return sb.String()
}

func runeFor(i int) rune {
	r := rune(i)
	if r >= surrogateMin {
		r += surrogateMax - surrogateMin + 1
	}
	return r
}

func lineIndex(r rune) int {
	if r > surrogateMax {
		r -= surrogateMax - surrogateMin + 1
	}
	return int(r)
}

// Whole returns the degenerate diff of a text with no predecessor: the entire
// content as a single added hunk.
func Whole(text string) Result {
	return Lines("", text)
}

// IsEmpty reports whether the result carries no additions or removals.
func (r Result) IsEmpty() bool {
	return r.Added == 0 && r.Removed == 0
}

func count(text string, g Granularity) int {
	if g == CharGranularity {
		return utf8.RuneCountInString(text)
	}
	return CountLines(text)
}

// CountLines returns the number of lines in text. A trailing fragment without
// a newline counts as a line.
func CountLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
