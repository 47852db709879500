// Package snapshot captures the current state of a media library: one
// record per file holding its location, filesystem dates, and embedded
// metadata dates. A snapshot taken before a recovery run is both the input
// to plan building and the baseline the undo ledger refers back to.
package snapshot

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"chronofix/internal/evidence"
	"chronofix/internal/services/exiftool"
)

// Timestamp layout used throughout snapshot files.
const timeLayout = "2006-01-02T15:04:05"

// Record is the captured state of one media file.
type Record struct {
	Filename          string
	FullPath          string
	RelativePath      string
	Directory         string
	RelativeDirectory string
	Extension         string
	SizeBytes         int64
	FileCreated       string
	FileModified      string
	EXIFOriginal      string
	EXIFDigitized     string
	EXIFDateTime      string
	CapturedAt        string
}

// MetadataReader probes embedded date fields, normally the exiftool client.
type MetadataReader interface {
	Probe(ctx context.Context, path string) (*exiftool.Metadata, error)
}

// Options controls a capture run.
type Options struct {
	Recursive         bool
	IncludeThumbnails bool
}

// Capturer walks a library and records file state. A nil reader skips the
// embedded metadata columns, which keeps pure-filesystem captures fast.
type Capturer struct {
	reader MetadataReader
	opts   Options
}

// NewCapturer builds a capturer.
func NewCapturer(reader MetadataReader, opts Options) *Capturer {
	return &Capturer{reader: reader, opts: opts}
}

// Capture scans root and returns a record per media file, sorted by the
// walk order (lexicographic within each directory). Per-file probe failures
// are absorbed: the record is still emitted with empty metadata columns.
func (c *Capturer) Capture(ctx context.Context, root string) ([]Record, error) {
	capturedAt := time.Now().Format(timeLayout)
	var records []Record

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && !c.opts.Recursive {
				return fs.SkipDir
			}
			// Synology keeps generated thumbnails in @eaDir trees.
			if !c.opts.IncludeThumbnails && d.Name() == "@eaDir" {
				return fs.SkipDir
			}
			return nil
		}
		if !IsMediaFile(path) {
			return nil
		}
		if !c.opts.IncludeThumbnails && strings.Contains(d.Name(), "SYNOPHOTO") {
			return nil
		}

		record, err := c.captureFile(ctx, root, path, capturedAt)
		if err != nil {
			// Unreadable file: skip rather than abort the scan.
			return nil
		}
		records = append(records, record)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Capturer) captureFile(ctx context.Context, root, path, capturedAt string) (Record, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return Record{}, err
	}

	relPath, relErr := filepath.Rel(root, path)
	if relErr != nil {
		relPath = path
	}
	dir := filepath.Dir(path)
	relDir, relErr := filepath.Rel(root, dir)
	if relErr != nil {
		relDir = dir
	}

	record := Record{
		Filename:          filepath.Base(path),
		FullPath:          path,
		RelativePath:      relPath,
		Directory:         dir,
		RelativeDirectory: relDir,
		Extension:         strings.ToLower(filepath.Ext(path)),
		SizeBytes:         stat.Size(),
		FileModified:      stat.ModTime().Format(timeLayout),
		CapturedAt:        capturedAt,
	}

	if _, created, ok := evidence.StatTimes(path); ok && !created.IsZero() {
		record.FileCreated = created.Format(timeLayout)
	}

	if c.reader != nil && IsImageExtension(record.Extension) {
		if meta, err := c.reader.Probe(ctx, path); err == nil && meta != nil {
			record.EXIFOriginal = meta.Fields["DateTimeOriginal"]
			record.EXIFDigitized = meta.Fields["DateTimeDigitized"]
			record.EXIFDateTime = meta.Fields["DateTime"]
		}
	}
	return record, nil
}

// Index keys records by filename, the join key against rename history.
// Later records win on duplicate names, matching a last-write-wins load.
func Index(records []Record) map[string]Record {
	index := make(map[string]Record, len(records))
	for _, record := range records {
		index[record.Filename] = record
	}
	return index
}
