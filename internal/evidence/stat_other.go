//go:build !darwin

package evidence

import (
	"io/fs"
	"time"
)

// Linux and the NAS targets do not expose a birth time through stat, so the
// modification time is the best filesystem signal available there.
func birthTime(info fs.FileInfo) time.Time {
	return time.Time{}
}
