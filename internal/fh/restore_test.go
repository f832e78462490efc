package fh_test

import (
	"context"
	"errors"
	"testing"

	"fh-go/internal/fh"
)

func TestHistoryService_Restore(t *testing.T) {
	ctx := context.Background()

	t.Run("restores over the tracked file keeping its encoding", func(t *testing.T) {
		f := newFixture(t, 100)
		f.fsmgr.AddEncodedFile("/jp.txt", "新しい", fh.EncodingShiftJIS)
		old := f.save(t, "/jp.txt", "古い")
		f.save(t, "/jp.txt", "新しい")

		dest, err := f.svc.Restore(ctx, old.ID, "")
		if err != nil {
			t.Fatalf("Restore() error = %v", err)
		}
		if dest != "/jp.txt" {
			t.Errorf("Restore() dest = %q, want /jp.txt", dest)
		}
		file := f.fsmgr.File("/jp.txt")
		if file.Text != "古い" || file.Encoding != fh.EncodingShiftJIS {
			t.Errorf("restored file = %q (%s), want 古い (shift_jis)", file.Text, file.Encoding)
		}

		history, _ := f.svc.GetHistory(ctx, "/jp.txt")
		if len(history) != 2 {
			t.Errorf("Restore() recorded a snapshot: len(history) = %d", len(history))
		}
	})

	t.Run("new destination is written as utf-8", func(t *testing.T) {
		f := newFixture(t, 100)
		s := f.save(t, "/a.txt", "content")

		dest, err := f.svc.Restore(ctx, s.ID, "/elsewhere/copy.txt")
		if err != nil {
			t.Fatalf("Restore() error = %v", err)
		}
		file := f.fsmgr.File(dest)
		if file == nil || file.Text != "content" || file.Encoding != fh.EncodingUTF8 {
			t.Errorf("restored file = %+v, want utf-8 content", file)
		}
	})

	t.Run("unknown snapshot", func(t *testing.T) {
		f := newFixture(t, 100)
		if _, err := f.svc.Restore(ctx, 77, "/x.txt"); !errors.Is(err, fh.ErrSnapshotNotFound) {
			t.Errorf("Restore() error = %v, want ErrSnapshotNotFound", err)
		}
	})

	t.Run("missing blob", func(t *testing.T) {
		f := newFixture(t, 100)
		s := f.save(t, "/a.txt", "gone")
		if err := f.blobs.Delete(ctx, s.Hash); err != nil {
			t.Fatal(err)
		}
		if _, err := f.svc.Restore(ctx, s.ID, ""); !errors.Is(err, fh.ErrBlobNotFound) {
			t.Errorf("Restore() error = %v, want ErrBlobNotFound", err)
		}
		if f.fsmgr.File("/a.txt") != nil {
			t.Error("Restore() wrote a file despite missing content")
		}
	})

	t.Run("write failure is returned", func(t *testing.T) {
		f := newFixture(t, 100)
		s := f.save(t, "/a.txt", "x")
		f.fsmgr.FailWrites(errors.New("read-only filesystem"))

		if _, err := f.svc.Restore(ctx, s.ID, "/a.txt"); err == nil {
			t.Error("Restore() expected error")
		}
	})
}
