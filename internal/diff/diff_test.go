package diff

import (
	"fmt"
	"strings"
	"testing"
)

func TestLines(t *testing.T) {
	tests := []struct {
		name        string
		oldText     string
		newText     string
		wantAdded   int
		wantRemoved int
	}{
		{name: "identical single line", oldText: "a", newText: "a"},
		{name: "both empty", oldText: "", newText: ""},
		{name: "from empty", oldText: "", newText: "one\ntwo\n", wantAdded: 2},
		{name: "to empty", oldText: "one\ntwo\nthree", newText: "", wantRemoved: 3},
		{name: "append line", oldText: "one\n", newText: "one\ntwo\n", wantAdded: 1},
		{name: "replace middle line", oldText: "one\ntwo\nthree\n", newText: "one\n2\nthree\n", wantAdded: 1, wantRemoved: 1},
		{name: "remove line", oldText: "one\ntwo\nthree\n", newText: "one\nthree\n", wantRemoved: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Lines(tt.oldText, tt.newText)
			if got.Added != tt.wantAdded {
				t.Errorf("Added = %d, want %d", got.Added, tt.wantAdded)
			}
			if got.Removed != tt.wantRemoved {
				t.Errorf("Removed = %d, want %d", got.Removed, tt.wantRemoved)
			}
			if got.Granularity != LineGranularity {
				t.Errorf("Granularity = %v, want LineGranularity", got.Granularity)
			}
		})
	}
}

func TestLines_CountsMatchHunks(t *testing.T) {
	oldText := "alpha\nbeta\ngamma\ndelta\n"
	newText := "alpha\nBETA\ngamma\nepsilon\nzeta\n"

	res := Lines(oldText, newText)

	var added, removed int
	var rebuiltOld, rebuiltNew strings.Builder
	for _, c := range res.Changes {
		switch c.Kind {
		case Added:
			added += c.Count
			rebuiltNew.WriteString(c.Text)
		case Removed:
			removed += c.Count
			rebuiltOld.WriteString(c.Text)
		default:
			rebuiltOld.WriteString(c.Text)
			rebuiltNew.WriteString(c.Text)
		}
	}

	if added != res.Added || removed != res.Removed {
		t.Errorf("hunk sums (%d, %d) differ from totals (%d, %d)", added, removed, res.Added, res.Removed)
	}
	if rebuiltOld.String() != oldText {
		t.Errorf("old text not reconstructible: %q", rebuiltOld.String())
	}
	if rebuiltNew.String() != newText {
		t.Errorf("new text not reconstructible: %q", rebuiltNew.String())
	}
}

func TestLines_Deterministic(t *testing.T) {
	oldText := strings.Repeat("line of prose\n", 50) + "ending\n"
	newText := strings.Repeat("line of prose\n", 25) + "inserted\n" + strings.Repeat("line of prose\n", 25)

	first := Lines(oldText, newText)
	for i := 0; i < 5; i++ {
		again := Lines(oldText, newText)
		if len(again.Changes) != len(first.Changes) {
			t.Fatalf("run %d: %d hunks, want %d", i, len(again.Changes), len(first.Changes))
		}
		for j := range first.Changes {
			if again.Changes[j] != first.Changes[j] {
				t.Fatalf("run %d: hunk %d differs", i, j)
			}
		}
	}
}

func TestChars(t *testing.T) {
	res := Chars("吾輩は猫", "吾輩は犬である")

	if res.Granularity != CharGranularity {
		t.Fatalf("Granularity = %v, want CharGranularity", res.Granularity)
	}
	if res.Removed != 1 {
		t.Errorf("Removed = %d, want 1", res.Removed)
	}
	if res.Added != 4 {
		t.Errorf("Added = %d, want 4", res.Added)
	}
}

func TestWhole(t *testing.T) {
	res := Whole("first\nsecond")

	if len(res.Changes) != 1 {
		t.Fatalf("got %d hunks, want 1", len(res.Changes))
	}
	if res.Changes[0].Kind != Added {
		t.Errorf("Kind = %v, want added", res.Changes[0].Kind)
	}
	if res.Added != 2 || res.Removed != 0 {
		t.Errorf("got +%d -%d, want +2 -0", res.Added, res.Removed)
	}
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"a\n", 1},
		{"a\nb", 2},
		{"\n\n", 2},
	}
	for _, tt := range tests {
		if got := CountLines(tt.text); got != tt.want {
			t.Errorf("CountLines(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestResult_Unified(t *testing.T) {
	res := Lines("keep\nold\n", "keep\nnew\n")

	got := res.Unified(false)
	want := " keep\n-old\n+new\n"
	if got != want {
		t.Errorf("Unified() =\n%q\nwant\n%q", got, want)
	}

	colored := res.Unified(true)
	if !strings.Contains(colored, ansiGreen+"+new"+ansiReset) {
		t.Errorf("colored output missing green addition: %q", colored)
	}
	if res.Summary() != "+1 -1 lines" {
		t.Errorf("Summary() = %q", res.Summary())
	}
}

// rebuild reassembles both sides of a diff from its hunks and sums the counts.
func rebuild(res Result) (oldText, newText string, added, removed int) {
	var o, n strings.Builder
	for _, c := range res.Changes {
		switch c.Kind {
		case Added:
			added += c.Count
			n.WriteString(c.Text)
		case Removed:
			removed += c.Count
			o.WriteString(c.Text)
		default:
			o.WriteString(c.Text)
			n.WriteString(c.Text)
		}
	}
	return o.String(), n.String(), added, removed
}

func numberedLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("Paragraph %d of the chapter, with its own wording.\n", i)
	}
	return lines
}

func TestLines_LongDocument(t *testing.T) {
	base := numberedLines(40)
	oldText := strings.Join(base, "")

	edited := append([]string(nil), base...)
	edited[12] = "A rewritten twelfth paragraph.\n"
	edited = append(edited[:30], append([]string{"An inserted aside.\n", "And a second one.\n"}, edited[30:]...)...)
	edited = append(edited[:35], edited[36:]...)
	newText := strings.Join(edited, "")

	res := Lines(oldText, newText)

	gotOld, gotNew, added, removed := rebuild(res)
	if gotOld != oldText {
		t.Errorf("old text not reconstructible from hunks")
	}
	if gotNew != newText {
		t.Errorf("new text not reconstructible from hunks")
	}
	if added != res.Added || removed != res.Removed {
		t.Errorf("hunk sums (%d, %d) differ from totals (%d, %d)", added, removed, res.Added, res.Removed)
	}
	if res.Added != 3 || res.Removed != 2 {
		t.Errorf("got +%d -%d, want +3 -2", res.Added, res.Removed)
	}

	var removedText []string
	for _, c := range res.Changes {
		if c.Kind == Removed {
			removedText = append(removedText, c.Text)
		}
	}
	want := []string{base[12], base[33]}
	if len(removedText) != len(want) {
		t.Fatalf("removed hunks = %q, want %q", removedText, want)
	}
	for i := range want {
		if removedText[i] != want[i] {
			t.Errorf("removed hunk %d = %q, want %q", i, removedText[i], want[i])
		}
	}
}

func TestLines_BeyondSurrogateBlock(t *testing.T) {
	base := numberedLines(surrogateMin + 2000)
	oldText := strings.Join(base, "")

	edited := append([]string(nil), base...)
	edited[surrogateMin+100] = "replaced\n"
	newText := strings.Join(edited, "")

	res := Lines(oldText, newText)

	if res.Added != 1 || res.Removed != 1 {
		t.Fatalf("got +%d -%d, want +1 -1", res.Added, res.Removed)
	}
	gotOld, gotNew, _, _ := rebuild(res)
	if gotOld != oldText || gotNew != newText {
		t.Error("texts not reconstructible from hunks")
	}
	for _, c := range res.Changes {
		if c.Kind == Removed && c.Text != base[surrogateMin+100] {
			t.Errorf("removed hunk = %q, want %q", c.Text, base[surrogateMin+100])
		}
	}
}

func TestLineEncoder_RuneMapping(t *testing.T) {
	for _, i := range []int{0, 1, surrogateMin - 1, surrogateMin, surrogateMin + 1, 100000} {
		r := runeFor(i)
		if r >= surrogateMin && r <= surrogateMax {
			t.Errorf("runeFor(%d) = %U, inside the surrogate block", i, r)
		}
		if got := lineIndex(r); got != i {
			t.Errorf("lineIndex(runeFor(%d)) = %d", i, got)
		}
	}

	enc := newLineEncoder()
	runes, ok := enc.encode("a\nb\na\nc")
	if !ok {
		t.Fatal("encode() reported overflow")
	}
	if len(runes) != 4 || runes[0] != runes[2] || runes[0] == runes[1] {
		t.Errorf("encode() = %v, want repeated lines to share a rune", runes)
	}
	if got := enc.decode(string(runes)); got != "a\nb\na\nc" {
		t.Errorf("decode() = %q", got)
	}
}
