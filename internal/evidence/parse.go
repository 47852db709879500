package evidence

import (
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006:01:02 15:04:05",
	"2006-01-02",
	"2006:01:02",
}

// ParseDate parses the timestamp formats that appear in state snapshots,
// embedded metadata output, and rename logs. Sub-second precision and
// timezone suffixes are truncated rather than rejected.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if i := strings.IndexByte(value, '.'); i > 0 {
		value = value[:i]
	}
	if i := strings.IndexAny(value, "+Z"); i > 10 {
		value = strings.TrimSpace(value[:i])
	}
	for _, layout := range dateLayouts {
		if dt, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return dt, true
		}
	}
	return time.Time{}, false
}
