package apply

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"chronofix/internal/snapshot"
	"chronofix/internal/textutil"
)

// CandidateName builds the canonical filename for a media file: prefix by
// media kind, timestamp, optional normalized artist, original extension.
// The result passes through the filename sanitizer; the extension is the
// only caller-supplied fragment and must never smuggle a path separator
// into the rename target.
func CandidateName(ext string, dt time.Time, artist string) string {
	prefix := "IMG"
	if snapshot.IsVideoExtension(ext) {
		prefix = "MOV"
	}
	datePart := dt.Format("20060102_150405")
	name := prefix + "_" + datePart + ext
	if formatted := textutil.NormalizeArtist(artist); formatted != "" {
		name = fmt.Sprintf("%s_%s(%s)%s", prefix, datePart, formatted, ext)
	}
	return textutil.SanitizeFileName(name)
}

// withCounter inserts a zero-padded 2-digit counter immediately before the
// artist parenthetical, or before the extension when there is none.
func withCounter(name string, counter int) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if i := strings.Index(base, "("); i >= 0 {
		return fmt.Sprintf("%s_%02d%s%s", base[:i], counter, base[i:], ext)
	}
	return fmt.Sprintf("%s_%02d%s", base, counter, ext)
}

// ResolveTarget returns a free filename in dir for the candidate,
// incrementing the counter until no existing file collides. The current
// name is always acceptable: reaching it means the file already carries
// its canonical name.
func ResolveTarget(dir, candidate, currentName string) (string, error) {
	name := candidate
	for counter := 1; ; counter++ {
		if name == currentName {
			return name, nil
		}
		_, err := os.Stat(filepath.Join(dir, name))
		if errors.Is(err, os.ErrNotExist) {
			return name, nil
		}
		if err != nil {
			return "", fmt.Errorf("check rename target: %w", err)
		}
		if counter > 99 {
			return "", fmt.Errorf("no free name for %s in %s", candidate, dir)
		}
		name = withCounter(candidate, counter)
	}
}
