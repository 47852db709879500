// Package confidence grades how strongly independent evidence sources agree
// on a proposed timestamp. The weights and thresholds are hand-tuned
// heuristics carried over from previously generated plans; changing them
// would silently reclassify existing plan files, so they are preserved
// exactly rather than improved.
package confidence

import (
	"fmt"
	"strings"
)

// Level is the coarse trust label attached to a proposed timestamp.
type Level string

const (
	High    Level = "HIGH"
	Medium  Level = "MEDIUM"
	Low     Level = "LOW"
	VeryLow Level = "VERY_LOW"
)

var levelRank = map[Level]int{
	VeryLow: 0,
	Low:     1,
	Medium:  2,
	High:    3,
}

// ParseLevel validates a user-supplied confidence label.
func ParseLevel(value string) (Level, error) {
	level := Level(strings.ToUpper(strings.TrimSpace(value)))
	if _, ok := levelRank[level]; !ok {
		return "", fmt.Errorf("unknown confidence level %q (expected HIGH, MEDIUM, LOW, or VERY_LOW)", value)
	}
	return level, nil
}

// Meets reports whether the level satisfies a minimum floor.
func (l Level) Meets(floor Level) bool {
	return levelRank[l] >= levelRank[floor]
}

// Rank returns the sort rank for grouping plan entries, highest trust first.
func (l Level) Rank() int {
	if rank, ok := levelRank[l]; ok {
		return 3 - rank
	}
	return 99
}
