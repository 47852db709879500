package evidence

import (
	"testing"
	"time"
)

func TestIsValid(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"in range", time.Date(2016, 8, 15, 12, 0, 0, 0, time.Local), true},
		{"lower bound", time.Date(2001, 1, 1, 0, 0, 0, 0, time.Local), true},
		{"upper bound", time.Date(2025, 12, 31, 23, 59, 59, 0, time.Local), true},
		{"year 2000", time.Date(2000, 6, 1, 10, 0, 0, 0, time.Local), false},
		{"year 2026", time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local), false},
		{"camera placeholder", time.Date(2000, 1, 1, 0, 0, 0, 0, time.Local), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValid(tt.t); got != tt.want {
				t.Fatalf("IsValid(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}
