package fh_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"fh-go/internal/diff"
	"fh-go/internal/fh"
)

func TestHistoryService_GetDiff(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100)

	s1 := f.save(t, "/a.txt", "alpha\nbeta\n")
	s2 := f.save(t, "/a.txt", "alpha\ngamma\ndelta\n")

	d := f.svc.GetDiff(ctx, s1.ID, s2.ID)
	if d.Added != 2 || d.Removed != 1 {
		t.Errorf("GetDiff() = +%d -%d, want +2 -1", d.Added, d.Removed)
	}

	reverse := f.svc.GetDiff(ctx, s2.ID, s1.ID)
	if reverse.Added != 1 || reverse.Removed != 2 {
		t.Errorf("reverse GetDiff() = +%d -%d, want +1 -2", reverse.Added, reverse.Removed)
	}

	t.Run("missing snapshot counts as empty", func(t *testing.T) {
		d := f.svc.GetDiff(ctx, 9999, s1.ID)
		if d.Added != 2 || d.Removed != 0 {
			t.Errorf("GetDiff(missing, s1) = +%d -%d, want +2 -0", d.Added, d.Removed)
		}
	})

	t.Run("missing blob counts as empty", func(t *testing.T) {
		if err := f.blobs.Delete(ctx, s2.Hash); err != nil {
			t.Fatal(err)
		}
		d := f.svc.GetDiff(ctx, s1.ID, s2.ID)
		if d.Added != 0 || d.Removed != 2 {
			t.Errorf("GetDiff(s1, blobless) = +%d -%d, want +0 -2", d.Added, d.Removed)
		}
	})
}

func TestHistoryService_GetSnapshotDiff(t *testing.T) {
	ctx := context.Background()

	t.Run("first snapshot diffs as whole content", func(t *testing.T) {
		f := newFixture(t, 100)
		s := f.save(t, "/a.txt", "one\ntwo\nthree\n")

		d, err := f.svc.GetSnapshotDiff(ctx, s.ID)
		if err != nil {
			t.Fatalf("GetSnapshotDiff() error = %v", err)
		}
		if d.Added != 3 || d.Removed != 0 {
			t.Errorf("GetSnapshotDiff() = +%d -%d, want +3 -0", d.Added, d.Removed)
		}
	})

	t.Run("later snapshot diffs against its parent", func(t *testing.T) {
		f := newFixture(t, 100)
		f.save(t, "/a.txt", "one\n")
		s := f.save(t, "/a.txt", "one\ntwo\n")

		d, err := f.svc.GetSnapshotDiff(ctx, s.ID)
		if err != nil {
			t.Fatalf("GetSnapshotDiff() error = %v", err)
		}
		if d.Added != 1 || d.Removed != 0 {
			t.Errorf("GetSnapshotDiff() = +%d -%d, want +1 -0", d.Added, d.Removed)
		}
	})

	t.Run("rotated parent diffs as whole content", func(t *testing.T) {
		f := newFixture(t, 2)
		for i := 1; i <= 3; i++ {
			f.save(t, "/a.txt", fmt.Sprintf("line %d\n", i))
		}
		history, _ := f.svc.GetHistory(ctx, "/a.txt")
		oldest := history[len(history)-1]

		d, err := f.svc.GetSnapshotDiff(ctx, oldest.ID)
		if err != nil {
			t.Fatalf("GetSnapshotDiff() error = %v", err)
		}
		if d.Added != 1 || d.Removed != 0 {
			t.Errorf("GetSnapshotDiff(oldest) = +%d -%d, want +1 -0", d.Added, d.Removed)
		}
	})

	t.Run("unknown snapshot", func(t *testing.T) {
		f := newFixture(t, 100)
		if _, err := f.svc.GetSnapshotDiff(ctx, 42); !errors.Is(err, fh.ErrSnapshotNotFound) {
			t.Errorf("GetSnapshotDiff() error = %v, want ErrSnapshotNotFound", err)
		}
	})
}

func TestHistoryService_GetDiff_LongDocument(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100)

	lines := make([]string, 30)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d\n", i)
	}
	oldText := strings.Join(lines, "")
	lines[12] = "changed twelve\n"
	newText := strings.Join(lines, "")

	s1 := f.save(t, "/essay.md", oldText)
	s2 := f.save(t, "/essay.md", newText)

	d := f.svc.GetDiff(ctx, s1.ID, s2.ID)
	if d.Added != 1 || d.Removed != 1 {
		t.Fatalf("GetDiff() = +%d -%d, want +1 -1", d.Added, d.Removed)
	}

	var rebuiltOld, rebuiltNew strings.Builder
	for _, c := range d.Changes {
		switch c.Kind {
		case diff.Added:
			if c.Text != "changed twelve\n" {
				t.Errorf("added hunk = %q, want %q", c.Text, "changed twelve\n")
			}
			rebuiltNew.WriteString(c.Text)
		case diff.Removed:
			if c.Text != "line 12\n" {
				t.Errorf("removed hunk = %q, want %q", c.Text, "line 12\n")
			}
			rebuiltOld.WriteString(c.Text)
		default:
			rebuiltOld.WriteString(c.Text)
			rebuiltNew.WriteString(c.Text)
		}
	}
	if rebuiltOld.String() != oldText || rebuiltNew.String() != newText {
		t.Error("snapshot texts not reconstructible from hunks")
	}
}
