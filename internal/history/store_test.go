package history

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestImportAndResolve(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	ops := []Op{
		{Timestamp: "2023-05-01 10:00:00", OldName: "IMG_20160815_120000.jpg", NewName: "IMG_9999.jpg", Directory: "/volume1/photo/2016", Action: ActionRenamed},
		{Timestamp: "2023-06-01 10:00:00", OldName: "IMG_20170101_080000.jpg", NewName: "IMG_9999.jpg", Directory: "/volume1/photo/2017", Action: ActionRenamed},
	}
	if err := store.ImportOps(ctx, "rename.log", ops); err != nil {
		t.Fatal(err)
	}

	resolved, err := store.ResolvedMap(ctx)
	if err != nil {
		t.Fatal(err)
	}
	entry, ok := resolved["IMG_9999.jpg"]
	if !ok {
		t.Fatal("IMG_9999.jpg not resolved")
	}
	if entry.OldName != "IMG_20170101_080000.jpg" {
		t.Fatalf("resolved old name = %q", entry.OldName)
	}
}

func TestImportReplacesPriorImport(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	ops := []Op{{Timestamp: "2023-05-01 10:00:00", OldName: "a.jpg", NewName: "b.jpg", Action: ActionRenamed}}
	if err := store.ImportOps(ctx, "rename.log", ops); err != nil {
		t.Fatal(err)
	}
	if err := store.ImportOps(ctx, "rename.log", ops); err != nil {
		t.Fatal(err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1 after re-import", count)
	}
}

func TestOpenExistingDatabase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.db")

	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	_ = reopened.Close()
}
