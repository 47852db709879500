package evidence

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2016, 8, 15, 8, 0, 0, 0, time.Local)

	for _, value := range []string{
		"2016-08-15 08:00:00",
		"2016-08-15T08:00:00",
		"2016:08:15 08:00:00",
		"2016-08-15 08:00:00.123456",
	} {
		got, ok := ParseDate(value)
		if !ok {
			t.Fatalf("ParseDate(%q) failed", value)
		}
		if !got.Equal(want) {
			t.Fatalf("ParseDate(%q) = %v, want %v", value, got, want)
		}
	}

	if _, ok := ParseDate(""); ok {
		t.Fatal("empty string parsed")
	}
	if _, ok := ParseDate("not a date"); ok {
		t.Fatal("garbage parsed")
	}

	dateOnly, ok := ParseDate("2016-08-15")
	if !ok || dateOnly.Hour() != 0 {
		t.Fatalf("date-only parse = %v, %v", dateOnly, ok)
	}
}
