package evidence

import (
	"os"
	"time"
)

// StatTimes returns the modification time and, where the platform exposes
// one, the creation (birth) time for path. A zero created time means the
// platform has no birth time.
func StatTimes(path string) (modified, created time.Time, ok bool) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return info.ModTime(), birthTime(info), true
}
