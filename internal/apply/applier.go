// Package apply executes recovery plans against the filesystem: one file
// at a time, checkpointed, undo-logged, and hard-timeout protected. It is
// the only package in the pipeline that mutates anything.
package apply

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"chronofix/internal/checkpoint"
	"chronofix/internal/confidence"
	"chronofix/internal/evidence"
	"chronofix/internal/fileutil"
	"chronofix/internal/logging"
	"chronofix/internal/pathmap"
	"chronofix/internal/plan"
	"chronofix/internal/services"
	"chronofix/internal/services/exiftool"
	"chronofix/internal/snapshot"
	"chronofix/internal/undo"
)

// Exiftool timestamp layout, recorded in checkpoints and undo entries.
const exifDateLayout = "2006:01:02 15:04:05"

// MetadataTool is the external metadata read/write boundary. Writes either
// complete durably or leave the file unchanged; the tool never does partial
// field writes.
type MetadataTool interface {
	Probe(ctx context.Context, path string) (*exiftool.Metadata, error)
	ProbeVideo(ctx context.Context, path string) (*exiftool.Metadata, error)
	WriteEmbeddedDate(ctx context.Context, path string, dt time.Time) error
	WriteFilesystemDate(ctx context.Context, path string, dt time.Time) error
}

// Options controls one applier run.
type Options struct {
	DryRun          bool
	ConfidenceFloor confidence.Level
	Limit           int
	// BackupDir, when set, receives a byte-level copy of every file before
	// its first mutation. Restoring from it does not need the undo ledger.
	BackupDir string
}

// Summary reports per-outcome counts for a run.
type Summary struct {
	Total              int
	Updated            int
	Renamed            int
	AlreadyCorrect     int
	SkippedNoSignal    int
	SkippedProblematic int
	Errors             int
}

// Applier owns the mutation loop for one run. Construction wires the
// checkpoint, undo ledger, and problem ledger explicitly; there is no
// ambient run state.
type Applier struct {
	tool     MetadataTool
	cp       *checkpoint.Manager
	undo     *undo.Ledger
	problems *ProblemLedger
	table    pathmap.Table
	logger   *slog.Logger
}

// New builds an applier.
func New(tool MetadataTool, cp *checkpoint.Manager, ledger *undo.Ledger, problems *ProblemLedger, table pathmap.Table, logger *slog.Logger) *Applier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Applier{tool: tool, cp: cp, undo: ledger, problems: problems, table: table, logger: logger}
}

// ApplyPlan processes the plan entries at or above the confidence floor
// that still need updating. Entries already recorded in the checkpoint are
// skipped, which is what makes an interrupted run resumable. The returned
// summary counts only this run's work.
func (a *Applier) ApplyPlan(ctx context.Context, entries []plan.Entry, opts Options) (Summary, error) {
	floor := opts.ConfidenceFloor
	if floor == "" {
		floor = confidence.High
	}
	filtered := plan.Filter(entries, plan.FilterOptions{MinConfidence: floor, NeedsUpdateOnly: true})

	for i := range filtered {
		filtered[i].FullPath = a.table.Translate(filtered[i].FullPath)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].FullPath < filtered[j].FullPath
	})

	pending := make([]plan.Entry, 0, len(filtered))
	for _, entry := range filtered {
		if !a.cp.IsProcessed(entry.FullPath) {
			pending = append(pending, entry)
		}
	}
	truncated := opts.Limit > 0 && len(pending) > opts.Limit
	if truncated {
		pending = pending[:opts.Limit]
	}
	a.cp.SetTotal(len(pending))

	summary := Summary{Total: len(pending)}
	a.logger.Info("applying plan",
		logging.Int("entries", len(pending)),
		logging.String("floor", string(floor)),
		logging.Bool("dry_run", opts.DryRun))

	for _, entry := range pending {
		if err := ctx.Err(); err != nil {
			return summary, a.interrupted(opts, summary, err)
		}
		a.applyEntry(ctx, entry, opts, &summary)
		if !opts.DryRun && a.cp.ShouldSave() {
			if err := a.cp.Save(); err != nil {
				return summary, err
			}
		}
	}
	// Cancellation during the last entry must not look like completion.
	if err := ctx.Err(); err != nil {
		return summary, a.interrupted(opts, summary, err)
	}
	return summary, a.finish(opts, summary, truncated)
}

func (a *Applier) applyEntry(ctx context.Context, entry plan.Entry, opts Options, summary *Summary) {
	path := entry.FullPath
	proposed := entry.ProposedDate

	if !evidence.IsValid(proposed) {
		a.logger.Warn("proposed date outside valid range",
			logging.String("file", path), logging.Time("proposed", proposed))
		a.cp.MarkProcessed(path, checkpoint.ResultSkippedNoSignal, "")
		summary.SkippedNoSignal++
		return
	}
	if _, err := os.Stat(path); err != nil {
		a.logger.Error("file missing since plan was built",
			logging.String("file", path), logging.Error(err))
		a.cp.MarkProcessed(path, checkpoint.ResultError, "")
		summary.Errors++
		return
	}

	// Snapshot the current metadata first so the undo ledger can restore
	// it. A file that cannot even be probed without hanging is problematic
	// by definition.
	meta, err := a.probeWithRetry(ctx, path, entry.FileExtension)
	if errors.Is(err, context.Canceled) {
		// No terminal result on interrupt; the next run reattempts this file.
		return
	}
	if services.IsTimeout(err) {
		a.problematic(path, "metadata probe timed out twice", summary)
		return
	}

	value := proposed.Format(exifDateLayout)
	if opts.DryRun {
		a.logger.Info("would update",
			logging.String("file", path), logging.String("new_date", value))
		a.cp.MarkProcessed(path, checkpoint.ResultUpdated, value)
		summary.Updated++
		return
	}

	if opts.BackupDir != "" {
		if err := a.backupOriginal(path, opts.BackupDir); err != nil {
			a.logger.Error("backup failed",
				logging.String("file", path), logging.Error(err))
			a.cp.MarkProcessed(path, checkpoint.ResultError, "")
			summary.Errors++
			return
		}
	}

	if snapshot.IsImageExtension(entry.FileExtension) {
		if err := a.writeWithRetry(ctx, func() error {
			return a.tool.WriteEmbeddedDate(ctx, path, proposed)
		}); err != nil {
			a.recordWriteFailure(path, err, summary)
			return
		}
	}
	if err := a.writeWithRetry(ctx, func() error {
		return a.tool.WriteFilesystemDate(ctx, path, proposed)
	}); err != nil {
		a.recordWriteFailure(path, err, summary)
		return
	}

	oldMeta := map[string]string{}
	if meta != nil {
		for field, v := range meta.Fields {
			oldMeta[field] = v
		}
	}
	if err := a.undo.Record(path, oldMeta, value); err != nil {
		// The mutation already happened; losing the undo entry is worse
		// than a noisy log, so fail the entry.
		a.logger.Error("undo ledger write failed",
			logging.String("file", path), logging.Error(err))
		a.cp.MarkProcessed(path, checkpoint.ResultError, value)
		summary.Errors++
		return
	}

	a.logger.Info("updated",
		logging.String("file", path), logging.String("new_date", value))
	a.cp.MarkProcessed(path, checkpoint.ResultUpdated, value)
	summary.Updated++
}

// probeWithRetry reads current metadata, retrying once on timeout. A
// second timeout is surfaced so the caller can classify the file as
// problematic; cancellation is surfaced so the caller can stop without
// recording an outcome. Other probe failures read as "no metadata".
func (a *Applier) probeWithRetry(ctx context.Context, path, ext string) (*exiftool.Metadata, error) {
	probe := a.tool.Probe
	if snapshot.IsVideoExtension(ext) {
		probe = a.tool.ProbeVideo
	}
	meta, err := probe(ctx, path)
	if services.IsTimeout(err) {
		meta, err = probe(ctx, path)
		if services.IsTimeout(err) {
			return nil, err
		}
	}
	if errors.Is(err, context.Canceled) {
		return nil, err
	}
	if err != nil {
		return nil, nil
	}
	return meta, nil
}

// writeWithRetry runs a mutation, retrying once on timeout.
func (a *Applier) writeWithRetry(ctx context.Context, write func() error) error {
	err := write()
	if services.IsTimeout(err) {
		err = write()
	}
	return err
}

// backupOriginal copies the file into dir before its first mutation. An
// existing backup is kept as-is: it holds the pre-run bytes, which a
// reattempted entry must not overwrite with already-mutated content.
func (a *Applier) backupOriginal(path, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	target := filepath.Join(dir, filepath.Base(path))
	if _, err := os.Stat(target); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return fileutil.CopyFile(path, target)
}

func (a *Applier) recordWriteFailure(path string, err error, summary *Summary) {
	if errors.Is(err, context.Canceled) {
		// The run was interrupted mid-entry. Leaving the file unrecorded
		// lets the loop head flush the checkpoint and the next run retry it.
		return
	}
	if services.IsTimeout(err) {
		a.problematic(path, "metadata write timed out twice", summary)
		return
	}
	a.logger.Error("metadata write failed",
		logging.String("file", path), logging.Error(err))
	a.cp.MarkProcessed(path, checkpoint.ResultError, "")
	summary.Errors++
}

func (a *Applier) problematic(path, reason string, summary *Summary) {
	a.logger.Warn("skipping problematic file",
		logging.String("file", path), logging.String("reason", reason))
	if err := a.problems.Record(path, reason); err != nil {
		a.logger.Error("problem ledger write failed",
			logging.String("file", path), logging.Error(err))
	}
	a.cp.MarkProcessed(path, checkpoint.ResultSkippedProblematic, "")
	summary.SkippedProblematic++
}

// interrupted flushes the checkpoint on operator abort so resume picks up
// exactly where this run stopped.
func (a *Applier) interrupted(opts Options, summary Summary, cause error) error {
	if opts.DryRun {
		return cause
	}
	if err := a.cp.Save(); err != nil {
		return errors.Join(cause, err)
	}
	a.logger.Info("checkpoint saved on interrupt",
		logging.Int("processed", a.cp.Count()))
	return cause
}

// finish saves final state and deletes the checkpoint only when the run
// covered everything with zero errors.
func (a *Applier) finish(opts Options, summary Summary, truncated bool) error {
	if opts.DryRun {
		return nil
	}
	if err := a.cp.Save(); err != nil {
		return err
	}
	// Errors recorded by earlier interrupted runs also block deletion.
	allErrors := a.cp.Stats()[string(checkpoint.ResultError)]
	if summary.Errors == 0 && allErrors == 0 && !truncated {
		if err := a.cp.Delete(); err != nil {
			return err
		}
		a.logger.Info("run complete, checkpoint removed")
	}
	return nil
}
