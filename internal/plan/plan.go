// Package plan builds recovery plans: for every current file whose prior
// name is known from rename history, it proposes the timestamp encoded in
// that prior name, grades the proposal by cross-source agreement, and emits
// an ordered, reviewable list. Building a plan is pure bookkeeping; nothing
// on disk is touched.
package plan

import (
	"fmt"
	"sort"
	"time"

	"chronofix/internal/confidence"
	"chronofix/internal/evidence"
	"chronofix/internal/history"
	"chronofix/internal/snapshot"
)

// Entry is one proposed timestamp recovery for one file.
type Entry struct {
	CurrentFilename string
	FullPath        string
	OldFilename     string
	ProposedDate    time.Time
	CurrentEXIFDate time.Time
	HasEXIFDate     bool
	Directory       string
	DirYear         int
	HasDirYear      bool
	FileModified    string
	Confidence      confidence.Level
	Reasoning       string
	NeedsUpdate     bool
	UpdateReason    string
	FileExtension   string
}

// Stats summarizes a build.
type Stats struct {
	Total               int
	NoHistoryMatch      int
	NoDateInOldFilename int
	SkippedNonJPEG      int
	ByConfidence        map[confidence.Level]int
	NeedUpdate          int
}

// Options controls which snapshot records participate in a build.
type Options struct {
	JPEGOnly bool
}

// Build joins the current state snapshot against resolved rename history
// and produces plan entries sorted by confidence group, then filename.
// Files with no history match or no extractable date in their prior name
// are counted but emit no entry.
func Build(resolved map[string]history.Op, records []snapshot.Record, opts Options) ([]Entry, Stats) {
	stats := Stats{ByConfidence: make(map[confidence.Level]int)}
	entries := make([]Entry, 0, len(records))

	for _, record := range records {
		stats.Total++

		op, ok := resolved[record.Filename]
		if !ok {
			stats.NoHistoryMatch++
			continue
		}
		if opts.JPEGOnly && record.Extension != ".jpg" && record.Extension != ".jpeg" {
			stats.SkippedNonJPEG++
			continue
		}

		oldDate, _, ok := evidence.ExtractFilenameDate(op.OldName)
		if !ok {
			stats.NoDateInOldFilename++
			continue
		}

		dirYear, hasDirYear := evidence.DirectoryYear(record.FullPath)
		modified, hasModified := evidence.ParseDate(record.FileModified)
		exifDate, hasEXIF := firstEXIFDate(record)

		level, reasoning := confidence.Score(confidence.Inputs{
			PriorDate:        oldDate,
			HasPriorDate:     true,
			DirectoryYear:    dirYear,
			HasDirectoryYear: hasDirYear,
			Modified:         modified,
			HasModified:      hasModified,
			Embedded:         exifDate,
			HasEmbedded:      hasEXIF,
		})
		stats.ByConfidence[level]++

		entry := Entry{
			CurrentFilename: record.Filename,
			FullPath:        record.FullPath,
			OldFilename:     op.OldName,
			ProposedDate:    oldDate,
			CurrentEXIFDate: exifDate,
			HasEXIFDate:     hasEXIF,
			Directory:       record.RelativeDirectory,
			DirYear:         dirYear,
			HasDirYear:      hasDirYear,
			FileModified:    record.FileModified,
			Confidence:      level,
			Reasoning:       reasoning,
			FileExtension:   record.Extension,
		}
		entry.NeedsUpdate, entry.UpdateReason = updateDecision(exifDate, hasEXIF, oldDate)
		stats.NeedUpdate += boolToInt(entry.NeedsUpdate)

		entries = append(entries, entry)
	}

	Sort(entries)
	return entries, stats
}

// Sort orders entries by confidence group (HIGH first), then by current
// filename. Consumers rely on this to review the safest entries first.
func Sort(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		ri, rj := entries[i].Confidence.Rank(), entries[j].Confidence.Rank()
		if ri != rj {
			return ri < rj
		}
		return entries[i].CurrentFilename < entries[j].CurrentFilename
	})
}

// updateDecision applies the needs-update policy: no embedded date means
// update; an embedded date more than a day away from the proposal means
// update; otherwise the file is already correct.
func updateDecision(exifDate time.Time, hasEXIF bool, proposed time.Time) (bool, string) {
	if !hasEXIF {
		return true, "No EXIF data"
	}
	if days := confidence.DaysApart(exifDate, proposed); days > 1 {
		return true, fmt.Sprintf("EXIF differs by %d days", days)
	}
	return false, "EXIF already correct"
}

func firstEXIFDate(record snapshot.Record) (time.Time, bool) {
	for _, value := range []string{record.EXIFOriginal, record.EXIFDigitized, record.EXIFDateTime} {
		if dt, ok := evidence.ParseDate(value); ok {
			return dt, true
		}
	}
	return time.Time{}, false
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
