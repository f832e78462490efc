package fh_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"fh-go/internal/database"
	"fh-go/internal/fh"
	"fh-go/internal/model"
	"fh-go/internal/testutil"
)

// fixture bundles a service with handles on all of its collaborators.
type fixture struct {
	svc    *fh.HistoryService
	db     *database.SQLiteDatabase
	blobs  *testutil.FaultyBlobStore
	fsmgr  *testutil.MockFilesystemManager
	clock  *testutil.StubClock
	logger *testutil.RecordingLogger
}

func newFixture(t *testing.T, maxSnapshots int) *fixture {
	t.Helper()
	f := &fixture{
		db:     testutil.NewTestDatabase(t),
		blobs:  testutil.NewFaultyBlobStore(),
		fsmgr:  testutil.NewMockFilesystemManager(),
		clock:  testutil.FixedClock(),
		logger: testutil.NewRecordingLogger(),
	}
	f.svc = fh.NewHistoryService(f.db, f.blobs, f.fsmgr, f.logger, f.clock, fh.RetentionPolicy{MaxSnapshots: maxSnapshots})
	return f
}

// save records text for path one second after the previous save.
func (f *fixture) save(t *testing.T, path, text string) *snapshotView {
	t.Helper()
	f.clock.Advance(time.Second)
	snap, err := f.svc.SaveSnapshot(context.Background(), path, text)
	if err != nil {
		t.Fatalf("SaveSnapshot(%q, %q) error = %v", path, text, err)
	}
	if snap == nil {
		return nil
	}
	return &snapshotView{ID: snap.ID, FileID: snap.FileID, Delta: snap.ChangeDelta, Hash: snap.ContentHash}
}

type snapshotView struct {
	ID     int64
	FileID int64
	Delta  int64
	Hash   model.ContentHash
}

func (f *fixture) hasBlob(t *testing.T, text string) bool {
	t.Helper()
	_, err := f.blobs.Get(context.Background(), model.HashText(text))
	if err != nil && !errors.Is(err, fh.ErrBlobNotFound) {
		t.Fatalf("Get() error = %v", err)
	}
	return err == nil
}

func TestHistoryService_SaveSnapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("first save creates a parentless snapshot", func(t *testing.T) {
		f := newFixture(t, 100)

		snap, err := f.svc.SaveSnapshot(ctx, "/notes/a.md", "hello")
		if err != nil {
			t.Fatalf("SaveSnapshot() error = %v", err)
		}
		if snap == nil {
			t.Fatal("SaveSnapshot() returned nil for new content")
		}
		if snap.ParentID.Valid {
			t.Errorf("ParentID = %d, want NULL", snap.ParentID.Int64)
		}
		if snap.ChangeDelta != 5 || snap.CharCount != 5 {
			t.Errorf("CharCount/ChangeDelta = %d/%d, want 5/5", snap.CharCount, snap.ChangeDelta)
		}
		if !snap.CreatedAt.Equal(f.clock.Now()) {
			t.Errorf("CreatedAt = %v, want %v", snap.CreatedAt, f.clock.Now())
		}
		if !f.hasBlob(t, "hello") {
			t.Error("blob not stored")
		}

		file, _ := f.db.FindTrackedFileByPath(ctx, "/notes/a.md")
		if file == nil || !file.IsAlive {
			t.Errorf("tracked file = %+v, want alive row", file)
		}
	})

	t.Run("characters are counted in UTF-16 units", func(t *testing.T) {
		f := newFixture(t, 100)

		f.save(t, "/notes/emoji.md", "ok")
		snap := f.save(t, "/notes/emoji.md", "ok 👍")
		if snap.Delta != 3 {
			t.Errorf("ChangeDelta = %d, want 3", snap.Delta)
		}
	})

	t.Run("unchanged content records nothing and skips the blob write", func(t *testing.T) {
		f := newFixture(t, 100)
		f.save(t, "/a.txt", "same")
		puts := f.blobs.Puts()

		if again := f.save(t, "/a.txt", "same"); again != nil {
			t.Errorf("SaveSnapshot() = %+v, want nil for unchanged content", again)
		}
		if f.blobs.Puts() != puts {
			t.Errorf("Put called %d extra times for unchanged content", f.blobs.Puts()-puts)
		}

		history, _ := f.svc.GetHistory(ctx, "/a.txt")
		if len(history) != 1 {
			t.Errorf("len(history) = %d, want 1", len(history))
		}
	})

	t.Run("edit and revert sequence", func(t *testing.T) {
		f := newFixture(t, 100)

		s1 := f.save(t, "/a.txt", "a")
		s2 := f.save(t, "/a.txt", "ab")
		if dup := f.save(t, "/a.txt", "ab"); dup != nil {
			t.Fatalf("duplicate save recorded snapshot %d", dup.ID)
		}
		s3 := f.save(t, "/a.txt", "a")

		if s1.Delta != 1 || s2.Delta != 1 || s3.Delta != -1 {
			t.Errorf("deltas = %d, %d, %d; want 1, 1, -1", s1.Delta, s2.Delta, s3.Delta)
		}
		if s1.Hash != s3.Hash {
			t.Error("identical content produced different hashes")
		}
		if f.blobs.Len() != 2 {
			t.Errorf("blob count = %d, want 2", f.blobs.Len())
		}

		history, err := f.svc.GetHistory(ctx, "/a.txt")
		if err != nil {
			t.Fatalf("GetHistory() error = %v", err)
		}
		if len(history) != 3 {
			t.Fatalf("len(history) = %d, want 3", len(history))
		}
		if history[0].ID != s3.ID || history[2].ID != s1.ID {
			t.Error("history not ordered newest first")
		}

		if d := f.svc.GetDiff(ctx, s1.ID, s3.ID); !d.IsEmpty() {
			t.Errorf("GetDiff(s1, s3) = +%d -%d, want empty", d.Added, d.Removed)
		}
	})

	t.Run("identical content across files shares one blob", func(t *testing.T) {
		f := newFixture(t, 100)

		a := f.save(t, "/a.txt", "shared text")
		b := f.save(t, "/b.txt", "shared text")

		if a.FileID == b.FileID {
			t.Fatal("different paths share a file row")
		}
		if f.blobs.Len() != 1 {
			t.Errorf("blob count = %d, want 1", f.blobs.Len())
		}
	})

	t.Run("delta counts characters", func(t *testing.T) {
		f := newFixture(t, 100)

		s1 := f.save(t, "/jp.txt", "日本")
		s2 := f.save(t, "/jp.txt", "日本語です")
		if s1.Delta != 2 || s2.Delta != 3 {
			t.Errorf("deltas = %d, %d; want 2, 3", s1.Delta, s2.Delta)
		}
	})

	t.Run("empty content is a valid snapshot", func(t *testing.T) {
		f := newFixture(t, 100)

		f.save(t, "/a.txt", "text")
		s := f.save(t, "/a.txt", "")
		if s == nil || s.Delta != -4 {
			t.Fatalf("empty save = %+v, want delta -4", s)
		}
		text, ok := f.svc.GetSnapshotContent(ctx, s.Hash)
		if !ok || text != "" {
			t.Errorf("GetSnapshotContent() = %q, %v; want empty, true", text, ok)
		}
	})

	t.Run("failed blob write records nothing", func(t *testing.T) {
		f := newFixture(t, 100)
		f.blobs.FailPuts(errors.New("disk full"))

		snap, err := f.svc.SaveSnapshot(ctx, "/a.txt", "lost")
		if err == nil {
			t.Fatalf("SaveSnapshot() = %+v, want error", snap)
		}

		files, _ := f.svc.ListTrackedFiles(ctx)
		if len(files) != 0 {
			t.Errorf("tracked files = %d, want 0", len(files))
		}
		history, _ := f.svc.GetHistory(ctx, "/a.txt")
		if len(history) != 0 {
			t.Errorf("len(history) = %d, want 0", len(history))
		}
	})

	t.Run("saving a lost file leaves it lost", func(t *testing.T) {
		f := newFixture(t, 100)
		s := f.save(t, "/a.txt", "v1")
		if err := f.db.MarkFileLost(ctx, s.FileID, f.clock.Now()); err != nil {
			t.Fatal(err)
		}

		f.save(t, "/a.txt", "v2")
		file, _ := f.db.FindTrackedFileByID(ctx, s.FileID)
		if file.IsAlive {
			t.Error("save revived a lost file")
		}
	})
}

func TestHistoryService_GetHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100)

	history, err := f.svc.GetHistory(ctx, "/never/seen.txt")
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if history == nil || len(history) != 0 {
		t.Errorf("GetHistory() = %v, want empty non-nil slice", history)
	}
}

func TestHistoryService_GetSnapshotContent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100)
	s := f.save(t, "/a.txt", "payload")

	text, ok := f.svc.GetSnapshotContent(ctx, s.Hash)
	if !ok || text != "payload" {
		t.Errorf("GetSnapshotContent() = %q, %v; want payload, true", text, ok)
	}

	text, ok = f.svc.GetSnapshotContent(ctx, model.HashText("missing"))
	if ok || text != "" {
		t.Errorf("GetSnapshotContent(missing) = %q, %v; want empty, false", text, ok)
	}
}

func TestHistoryService_FindSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100)
	s := f.save(t, "/a.txt", "x")

	got, err := f.svc.FindSnapshot(ctx, s.ID)
	if err != nil || got.ID != s.ID {
		t.Errorf("FindSnapshot() = %v, %v", got, err)
	}
	if _, err := f.svc.FindSnapshot(ctx, 9999); !errors.Is(err, fh.ErrSnapshotNotFound) {
		t.Errorf("FindSnapshot(unknown) error = %v, want ErrSnapshotNotFound", err)
	}
}

func TestHistoryService_ListTrackedFiles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100)
	f.save(t, "/z.txt", "z")
	f.save(t, "/a.txt", "a")

	files, err := f.svc.ListTrackedFiles(ctx)
	if err != nil {
		t.Fatalf("ListTrackedFiles() error = %v", err)
	}
	if len(files) != 2 || files[0].Path != "/a.txt" || files[1].Path != "/z.txt" {
		t.Errorf("ListTrackedFiles() = %v, want /a.txt, /z.txt", files)
	}
}
