package evidence

import (
	"testing"
	"time"
)

func TestExtractFilenameDate(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     time.Time
		pattern  string
	}{
		{
			name:     "img prefix with time",
			filename: "IMG_20180605_143022.jpg",
			want:     time.Date(2018, 6, 5, 14, 30, 22, 0, time.Local),
			pattern:  "IMG/MOV_yyyyMMdd_HHmmss",
		},
		{
			name:     "mov prefix lowercase",
			filename: "mov_20190101_000001.mp4",
			want:     time.Date(2019, 1, 1, 0, 0, 1, 0, time.Local),
			pattern:  "IMG/MOV_yyyyMMdd_HHmmss",
		},
		{
			name:     "unprefixed datetime",
			filename: "20160815_120000.jpg",
			want:     time.Date(2016, 8, 15, 12, 0, 0, 0, time.Local),
			pattern:  "yyyyMMdd_HHmmss",
		},
		{
			name:     "punctuated datetime",
			filename: "photo 2017-03-04 10-20-30.jpg",
			want:     time.Date(2017, 3, 4, 10, 20, 30, 0, time.Local),
			pattern:  "yyyy-MM-dd HH-mm-ss",
		},
		{
			name:     "date only defaults to noon",
			filename: "scan20140202.png",
			want:     time.Date(2014, 2, 2, 12, 0, 0, 0, time.Local),
			pattern:  "yyyyMMdd",
		},
		{
			name:     "punctuated date only",
			filename: "holiday_2013-07-09.jpg",
			want:     time.Date(2013, 7, 9, 12, 0, 0, 0, time.Local),
			pattern:  "yyyy-MM-dd",
		},
		{
			// The punctuated date-only family sits ahead of the screenshot
			// family, so the date wins and time defaults to noon.
			name:     "screenshot name resolves via date-only family",
			filename: "Screenshot 2021-11-30 at 9.05.07.png",
			want:     time.Date(2021, 11, 30, 12, 0, 0, 0, time.Local),
			pattern:  "yyyy-MM-dd",
		},
		{
			name:     "bare year fallback",
			filename: "christmas2009 copy.jpg",
			want:     time.Date(2009, 1, 1, 12, 0, 0, 0, time.Local),
			pattern:  "Year only (approximate)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, pattern, ok := ExtractFilenameDate(tt.filename)
			if !ok {
				t.Fatalf("no date extracted from %q", tt.filename)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("date = %v, want %v", got, tt.want)
			}
			if pattern != tt.pattern {
				t.Fatalf("pattern = %q, want %q", pattern, tt.pattern)
			}
		})
	}
}

// A filename matching both the prefixed datetime family and the bare year
// fallback must resolve through the former.
func TestExtractFilenameDatePrecedence(t *testing.T) {
	got, pattern, ok := ExtractFilenameDate("IMG_20180605_143022_2019_extra.jpg")
	if !ok {
		t.Fatal("no date extracted")
	}
	want := time.Date(2018, 6, 5, 14, 30, 22, 0, time.Local)
	if !got.Equal(want) {
		t.Fatalf("date = %v, want %v", got, want)
	}
	if pattern != "IMG/MOV_yyyyMMdd_HHmmss" {
		t.Fatalf("pattern = %q", pattern)
	}
}

func TestExtractFilenameDateRejectsOutOfRange(t *testing.T) {
	// The datetime match has year 1999, so the family fails validation and
	// extraction falls through; the bare-year fallback cannot match 1999
	// either, leaving no signal.
	if _, _, ok := ExtractFilenameDate("IMG_19990605_143022.jpg"); ok {
		t.Fatal("accepted a year outside the valid range")
	}
	if _, _, ok := ExtractFilenameDate("nothing-here.jpg"); ok {
		t.Fatal("extracted a date from a name with no digits")
	}
}

func TestExtractFilenameDateInvalidCalendarFallsThrough(t *testing.T) {
	// 20181332 is not a real date, but the trailing year still satisfies
	// the fallback family.
	got, pattern, ok := ExtractFilenameDate("IMG_20181332_996022.jpg")
	if !ok {
		t.Fatal("expected bare year fallback")
	}
	if pattern != "Year only (approximate)" {
		t.Fatalf("pattern = %q", pattern)
	}
	if got.Year() != 2018 {
		t.Fatalf("year = %d", got.Year())
	}
}
