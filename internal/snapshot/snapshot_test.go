package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"chronofix/internal/config"
	"chronofix/internal/pathmap"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCaptureSkipsNonMediaAndThumbnails(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "2016", "IMG_001.jpg"))
	writeFile(t, filepath.Join(root, "2016", "notes.txt"))
	writeFile(t, filepath.Join(root, "2016", "SYNOPHOTO_THUMB_M.jpg"))
	writeFile(t, filepath.Join(root, "@eaDir", "IMG_001.jpg", "thumb.jpg"))

	capturer := NewCapturer(nil, Options{Recursive: true})
	records, err := capturer.Capture(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("captured %d records, want 1: %+v", len(records), records)
	}

	r := records[0]
	if r.Filename != "IMG_001.jpg" || r.Extension != ".jpg" {
		t.Fatalf("record = %+v", r)
	}
	if r.RelativeDirectory != "2016" {
		t.Fatalf("relative directory = %q", r.RelativeDirectory)
	}
	if r.FileModified == "" {
		t.Fatal("file modified not captured")
	}
}

func TestCaptureNonRecursive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "IMG_001.jpg"))
	writeFile(t, filepath.Join(root, "sub", "IMG_002.jpg"))

	capturer := NewCapturer(nil, Options{Recursive: false})
	records, err := capturer.Capture(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Filename != "IMG_001.jpg" {
		t.Fatalf("records = %+v", records)
	}
}

func TestCSVRoundTripWithTranslation(t *testing.T) {
	records := []Record{{
		Filename:          "IMG_001.jpg",
		FullPath:          "/Volumes/photo-1/2016/IMG_001.jpg",
		RelativePath:      "2016/IMG_001.jpg",
		Directory:         "/Volumes/photo-1/2016",
		RelativeDirectory: "2016",
		Extension:         ".jpg",
		SizeBytes:         12345,
		FileModified:      "2016-08-15T08:00:00",
		EXIFOriginal:      "2016:08:15 12:00:00",
		CapturedAt:        "2023-05-01T10:00:00",
	}}

	path := filepath.Join(t.TempDir(), "state.csv")
	if err := WriteCSV(path, records); err != nil {
		t.Fatal(err)
	}

	table := pathmap.New(config.Translation{From: "/Volumes/photo-1/", To: "/volume1/photo/"})
	loaded, err := ReadCSV(path, table)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 1 {
		t.Fatalf("loaded %d records", len(loaded))
	}
	got := loaded[0]
	if got.FullPath != "/volume1/photo/2016/IMG_001.jpg" {
		t.Fatalf("full path = %q, not translated", got.FullPath)
	}
	if got.SizeBytes != 12345 || got.EXIFOriginal != "2016:08:15 12:00:00" {
		t.Fatalf("record = %+v", got)
	}
}

func TestIndexLastWins(t *testing.T) {
	records := []Record{
		{Filename: "a.jpg", FullPath: "/x/a.jpg"},
		{Filename: "a.jpg", FullPath: "/y/a.jpg"},
	}
	index := Index(records)
	if index["a.jpg"].FullPath != "/y/a.jpg" {
		t.Fatalf("index = %+v", index)
	}
}

func TestMediaExtensions(t *testing.T) {
	if !IsMediaFile("/a/b.JPG") || !IsMediaFile("/a/b.mov") {
		t.Fatal("media extensions not recognized")
	}
	if IsMediaFile("/a/b.txt") {
		t.Fatal("txt treated as media")
	}
	if !IsVideoExtension(".MP4") || IsVideoExtension(".jpg") {
		t.Fatal("video extension check broken")
	}
}
