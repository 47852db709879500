package apply

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"chronofix/internal/checkpoint"
	"chronofix/internal/evidence"
	"chronofix/internal/logging"
	"chronofix/internal/services"
	"chronofix/internal/snapshot"
)

var yearFolderRe = regexp.MustCompile(`^\d{4}$`)

// FixDates walks the year-named folders under root and sets each image's
// filesystem dates to its embedded DateTimeOriginal. Files without a
// DateTimeOriginal are skipped; embedded metadata is never modified.
func (a *Applier) FixDates(ctx context.Context, root string, opts Options) (Summary, error) {
	files, err := discoverYearFolderImages(root)
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
	a.logger.Info("fixing filesystem dates",
		logging.String("root", root),
		logging.Int("files", len(pending)),
		logging.Bool("dry_run", opts.DryRun))

	for _, path := range pending {
		if err := ctx.Err(); err != nil {
			return summary, a.interrupted(opts, summary, err)
		}
		a.fixFile(ctx, path, opts, &summary)
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

func (a *Applier) fixFile(ctx context.Context, path string, opts Options, summary *Summary) {
	meta, err := a.probeWithRetry(ctx, path, filepath.Ext(path))
	if errors.Is(err, context.Canceled) {
		return
	}
	if services.IsTimeout(err) {
		a.problematic(path, "metadata probe timed out twice", summary)
		return
	}

	var original string
	if meta != nil {
		original = meta.Fields["DateTimeOriginal"]
	}
	dt, ok := evidence.ParseDate(original)
	if !ok || !evidence.IsValid(dt) {
		a.cp.MarkProcessed(path, checkpoint.ResultSkippedNoSignal, "")
		summary.SkippedNoSignal++
		return
	}

	value := dt.Format(exifDateLayout)
	if opts.DryRun {
		a.cp.MarkProcessed(path, checkpoint.ResultUpdated, value)
		summary.Updated++
		return
	}

	modified, _, _ := evidence.StatTimes(path)
	if err := a.writeWithRetry(ctx, func() error {
		return a.tool.WriteFilesystemDate(ctx, path, dt)
	}); err != nil {
		a.recordWriteFailure(path, err, summary)
		return
	}

	oldMeta := map[string]string{"FileModifyDate": modified.Format(exifDateLayout)}
	if err := a.undo.Record(path, oldMeta, value); err != nil {
		a.logger.Error("undo ledger write failed",
			logging.String("file", path), logging.Error(err))
		a.cp.MarkProcessed(path, checkpoint.ResultError, value)
		summary.Errors++
		return
	}

	a.cp.MarkProcessed(path, checkpoint.ResultUpdated, value)
	summary.Updated++
}

// discoverYearFolderImages lists image files under the 4-digit year folders
// directly below root.
func discoverYearFolderImages(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() || !yearFolderRe.MatchString(entry.Name()) {
			continue
		}
		folder := filepath.Join(root, entry.Name())
		err := filepath.WalkDir(folder, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				if d.Name() == "@eaDir" {
					return fs.SkipDir
				}
				return nil
			}
			if strings.Contains(d.Name(), "SYNOPHOTO") {
				return nil
			}
			if snapshot.IsImageExtension(filepath.Ext(path)) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
