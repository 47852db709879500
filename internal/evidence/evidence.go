// Package evidence extracts candidate timestamps for a media file from the
// sources available without trusting any single one: dates encoded in a
// filename, a year implied by the directory layout, filesystem timestamps,
// and the embedded metadata date when a prober is available. Absence of a
// signal is a value, never an error.
package evidence

import (
	"context"
	"time"
)

// Signal is one candidate timestamp together with where it came from.
type Signal struct {
	Time    time.Time
	Source  Source
	Pattern string
}

// Source identifies which evidence channel produced a signal.
type Source string

const (
	SourceFilename   Source = "filename"
	SourceDirectory  Source = "directory"
	SourceFilesystem Source = "filesystem"
	SourceEmbedded   Source = "embedded"
)

// FileRecord aggregates every signal found for one file. Zero-value fields
// mean the corresponding source produced nothing usable.
type FileRecord struct {
	Path string

	FilenameDate    time.Time
	FilenamePattern string
	HasFilenameDate bool

	DirectoryYear    int
	HasDirectoryYear bool

	Modified    time.Time
	HasModified bool
	Created     time.Time
	HasCreated  bool

	Embedded    time.Time
	HasEmbedded bool
}

// Signals lists the collected evidence in source order. The directory year
// is rendered as noon on January 1st, the same convention the year-only
// filename family uses.
func (r FileRecord) Signals() []Signal {
	var signals []Signal
	if r.HasFilenameDate {
		signals = append(signals, Signal{Time: r.FilenameDate, Source: SourceFilename, Pattern: r.FilenamePattern})
	}
	if r.HasDirectoryYear {
		signals = append(signals, Signal{
			Time:   time.Date(r.DirectoryYear, time.January, 1, 12, 0, 0, 0, time.Local),
			Source: SourceDirectory,
		})
	}
	if dt, ok := r.BestFilesystemDate(); ok {
		signals = append(signals, Signal{Time: dt, Source: SourceFilesystem})
	}
	if r.HasEmbedded {
		signals = append(signals, Signal{Time: r.Embedded, Source: SourceEmbedded})
	}
	return signals
}

// BestFilesystemDate prefers the creation time when the platform exposes one
// and it passes the validity filter, falling back to the modification time.
func (r FileRecord) BestFilesystemDate() (time.Time, bool) {
	if r.HasCreated && IsValid(r.Created) {
		return r.Created, true
	}
	if r.HasModified && IsValid(r.Modified) {
		return r.Modified, true
	}
	return time.Time{}, false
}

// Prober reads a date out of embedded metadata. Implementations shell out to
// an external tool, so the context carries the probe deadline.
type Prober interface {
	EmbeddedDate(ctx context.Context, path string) (time.Time, bool, error)
}

// Extractor gathers signals for files. A nil prober disables the embedded
// metadata channel.
type Extractor struct {
	prober Prober
}

// NewExtractor returns an extractor using the given prober, which may be nil.
func NewExtractor(prober Prober) *Extractor {
	return &Extractor{prober: prober}
}

// Extract collects every available signal for path. Probe failures and
// timeouts are absorbed as missing signals so a scan never aborts on one
// corrupt file.
func (e *Extractor) Extract(ctx context.Context, path string) FileRecord {
	record := FileRecord{Path: path}

	if dt, pattern, ok := ExtractFilenameDate(baseName(path)); ok {
		record.FilenameDate = dt
		record.FilenamePattern = pattern
		record.HasFilenameDate = true
	}

	if year, ok := DirectoryYear(path); ok {
		record.DirectoryYear = year
		record.HasDirectoryYear = true
	}

	if modified, created, ok := StatTimes(path); ok {
		if IsValid(modified) {
			record.Modified = modified
			record.HasModified = true
		}
		if !created.IsZero() && IsValid(created) {
			record.Created = created
			record.HasCreated = true
		}
	}

	if e.prober != nil {
		if dt, ok, err := e.prober.EmbeddedDate(ctx, path); err == nil && ok && IsValid(dt) {
			record.Embedded = dt
			record.HasEmbedded = true
		}
	}

	return record
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
