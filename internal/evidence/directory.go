package evidence

import (
	"regexp"
	"strconv"
)

var dirYearRe = regexp.MustCompile(`/(20(?:0[0-9]|1[0-9]|2[0-5]))(?:/|$)`)

// DirectoryYear extracts a year implied by the directory layout: a 4-digit
// year between 2000 and 2025 appearing as a whole path segment, the way
// photo libraries commonly shard by year.
func DirectoryYear(path string) (int, bool) {
	m := dirYearRe.FindStringSubmatch(path)
	if m == nil {
		return 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return year, true
}
