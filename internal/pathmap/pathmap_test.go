package pathmap

import (
	"testing"

	"chronofix/internal/config"
)

func TestTranslate(t *testing.T) {
	table := New(config.Translation{From: "/Volumes/photo-1/", To: "/volume1/photo/"})

	got := table.Translate("/Volumes/photo-1/2016/IMG_001.jpg")
	want := "/volume1/photo/2016/IMG_001.jpg"
	if got != want {
		t.Fatalf("Translate = %q, want %q", got, want)
	}
}

func TestTranslateIdempotent(t *testing.T) {
	table := New(config.Translation{From: "/Volumes/photo-1/", To: "/volume1/photo/"})

	once := table.Translate("/Volumes/photo-1/2016/IMG_001.jpg")
	twice := table.Translate(once)
	if once != twice {
		t.Fatalf("translation not idempotent: %q then %q", once, twice)
	}
}

func TestTranslateNoMatchPassesThrough(t *testing.T) {
	table := New(config.Translation{From: "/Volumes/photo-1/", To: "/volume1/photo/"})
	path := "/somewhere/else/IMG_001.jpg"
	if got := table.Translate(path); got != path {
		t.Fatalf("Translate = %q, want untouched", got)
	}
}

func TestEmptyTable(t *testing.T) {
	var table Table
	if got := table.Translate("/a/b"); got != "/a/b" {
		t.Fatalf("empty table changed path: %q", got)
	}
}
