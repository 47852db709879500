package confidence

import (
	"fmt"
	"math"
	"strings"
	"time"

	"chronofix/internal/evidence"
)

// Inputs carries the signals compared by Score. Has* fields gate each
// comparison so an absent source simply contributes nothing.
type Inputs struct {
	PriorDate    time.Time
	HasPriorDate bool

	DirectoryYear    int
	HasDirectoryYear bool

	Modified    time.Time
	HasModified bool

	Embedded    time.Time
	HasEmbedded bool
}

// Score triangulates the evidence sources and returns a confidence level
// with a human-readable rationale. Agreement weights: prior-filename year
// matching the directory year counts 1; the prior date landing on the same
// calendar day as the filesystem date counts 1 (same year and month counts
// 0.5); the directory year matching the filesystem year counts 1. The
// current embedded date never adds agreement, it only annotates the
// rationale.
func Score(in Inputs) (Level, string) {
	var reasons []string
	agreements := 0.0

	if in.HasPriorDate && in.HasDirectoryYear {
		if in.PriorDate.Year() == in.DirectoryYear {
			agreements++
			reasons = append(reasons, fmt.Sprintf("Old filename year (%d) matches directory (%d)", in.PriorDate.Year(), in.DirectoryYear))
		} else {
			reasons = append(reasons, fmt.Sprintf("WARNING: Old filename year (%d) != directory (%d)", in.PriorDate.Year(), in.DirectoryYear))
		}
	}

	if in.HasPriorDate && in.HasModified {
		if sameDay(in.PriorDate, in.Modified) {
			agreements++
			reasons = append(reasons, "Old filename date matches File Modified date")
		} else if in.PriorDate.Year() == in.Modified.Year() && in.PriorDate.Month() == in.Modified.Month() {
			agreements += 0.5
			reasons = append(reasons, "Old filename year+month matches File Modified")
		}
	}

	if in.HasDirectoryYear && in.HasModified {
		if in.DirectoryYear == in.Modified.Year() {
			agreements++
			reasons = append(reasons, fmt.Sprintf("Directory year (%d) matches File Modified year", in.DirectoryYear))
		}
	}

	if in.HasEmbedded {
		if !evidence.ValidYear(in.Embedded.Year()) {
			reasons = append(reasons, fmt.Sprintf("Current EXIF date (%d) is invalid", in.Embedded.Year()))
		} else if in.HasPriorDate {
			if days := DaysApart(in.Embedded, in.PriorDate); days > 365 {
				reasons = append(reasons, fmt.Sprintf("Current EXIF differs from old filename by %d days", days))
			}
		}
	}

	return LevelFor(agreements), strings.Join(reasons, "; ")
}

// LevelFor maps an agreement score onto a label.
func LevelFor(agreements float64) Level {
	switch {
	case agreements >= 2.5:
		return High
	case agreements >= 1.5:
		return Medium
	case agreements >= 0.5:
		return Low
	default:
		return VeryLow
	}
}

// DaysApart returns the absolute whole-day distance between two timestamps.
func DaysApart(a, b time.Time) int {
	days := int(math.Floor(a.Sub(b).Hours() / 24))
	if days < 0 {
		days = -days
	}
	return days
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
