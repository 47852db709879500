package apply

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"chronofix/internal/checkpoint"
	"chronofix/internal/evidence"
	"chronofix/internal/logging"
	"chronofix/internal/services"
	"chronofix/internal/services/exiftool"
	"chronofix/internal/snapshot"
)

// RenameScan renames the media files under dir to their canonical names,
// deriving the timestamp from embedded metadata first and filesystem dates
// as a fallback. A file already carrying its canonical name is recorded as
// already correct and never touched again on resume.
func (a *Applier) RenameScan(ctx context.Context, dir string, recursive bool, opts Options) (Summary, error) {
	files, err := discoverMediaFiles(dir, recursive)
	if err != nil {
		return Summary{}, err
	}
	sort.Strings(files)

	pending := files[:0]
	for _, path := range files {
		if !a.cp.IsProcessed(path) {
			pending = append(pending, path)
		}
	}
	truncated := opts.Limit > 0 && len(pending) > opts.Limit
	if truncated {
		pending = pending[:opts.Limit]
	}
	a.cp.SetTotal(len(pending))

	summary := Summary{Total: len(pending)}
	a.logger.Info("renaming media files",
		logging.String("dir", dir),
		logging.Int("files", len(pending)),
		logging.Bool("dry_run", opts.DryRun))

	for _, path := range pending {
		if err := ctx.Err(); err != nil {
			return summary, a.interrupted(opts, summary, err)
		}
		a.renameFile(ctx, path, opts, &summary)
		if !opts.DryRun && a.cp.ShouldSave() {
			if err := a.cp.Save(); err != nil {
				return summary, err
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return summary, a.interrupted(opts, summary, err)
	}
	return summary, a.finish(opts, summary, truncated)
}

func (a *Applier) renameFile(ctx context.Context, path string, opts Options, summary *Summary) {
	ext := filepath.Ext(path)

	meta, err := a.probeWithRetry(ctx, path, ext)
	if errors.Is(err, context.Canceled) {
		return
	}
	if services.IsTimeout(err) {
		a.problematic(path, "metadata probe timed out twice", summary)
		return
	}

	dt, artist, ok := renameDate(meta, ext)
	if !ok {
		// Fall back to filesystem dates, creation time first.
		record := evidence.FileRecord{Path: path}
		if modified, created, statOK := evidence.StatTimes(path); statOK {
			record.Modified, record.HasModified = modified, true
			if !created.IsZero() {
				record.Created, record.HasCreated = created, true
			}
		}
		dt, ok = record.BestFilesystemDate()
	}
	if !ok {
		a.cp.MarkProcessed(path, checkpoint.ResultSkippedNoSignal, "")
		summary.SkippedNoSignal++
		return
	}

	currentName := filepath.Base(path)
	candidate := CandidateName(ext, dt, artist)
	if candidate == currentName {
		a.cp.MarkProcessed(path, checkpoint.ResultAlreadyCorrect, "")
		summary.AlreadyCorrect++
		return
	}

	target, err := ResolveTarget(filepath.Dir(path), candidate, currentName)
	if err != nil {
		a.logger.Error("rename target resolution failed",
			logging.String("file", path), logging.Error(err))
		a.cp.MarkProcessed(path, checkpoint.ResultError, "")
		summary.Errors++
		return
	}
	if target == currentName {
		a.cp.MarkProcessed(path, checkpoint.ResultAlreadyCorrect, "")
		summary.AlreadyCorrect++
		return
	}

	if opts.DryRun {
		a.logger.Info("would rename",
			logging.String("from", currentName), logging.String("to", target))
		a.cp.MarkProcessed(path, checkpoint.ResultRenamed, "")
		summary.Renamed++
		return
	}

	newPath := filepath.Join(filepath.Dir(path), target)
	if err := os.Rename(path, newPath); err != nil {
		a.logger.Error("rename failed",
			logging.String("file", path), logging.Error(err))
		a.cp.MarkProcessed(path, checkpoint.ResultError, "")
		summary.Errors++
		return
	}
	if err := a.undo.Record(path, map[string]string{"filename": currentName}, target); err != nil {
		a.logger.Error("undo ledger write failed",
			logging.String("file", path), logging.Error(err))
		a.cp.MarkProcessed(path, checkpoint.ResultError, "")
		summary.Errors++
		return
	}

	a.logger.Info("renamed",
		logging.String("from", currentName), logging.String("to", target))
	a.cp.MarkProcessed(path, checkpoint.ResultRenamed, "")
	summary.Renamed++
}

// renameDate picks the rename timestamp from probed metadata, plus the
// artist tag for images.
func renameDate(meta *exiftool.Metadata, ext string) (time.Time, string, bool) {
	if meta == nil {
		return time.Time{}, "", false
	}
	artist := ""
	var priority []string
	if snapshot.IsVideoExtension(ext) {
		priority = exiftool.VideoDateFields
	} else {
		priority = exiftool.ImageDateFields
		artist = strings.TrimSpace(meta.Fields["Artist"])
	}
	dt, ok := meta.Date(priority)
	if !ok || !evidence.IsValid(dt) {
		return time.Time{}, artist, false
	}
	return dt, artist, true
}

func discoverMediaFiles(dir string, recursive bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != dir && !recursive {
				return fs.SkipDir
			}
			if d.Name() == "@eaDir" {
				return fs.SkipDir
			}
			return nil
		}
		if strings.Contains(d.Name(), "SYNOPHOTO") {
			return nil
		}
		if snapshot.IsMediaFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
