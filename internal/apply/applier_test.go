package apply

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"chronofix/internal/checkpoint"
	"chronofix/internal/confidence"
	"chronofix/internal/logging"
	"chronofix/internal/pathmap"
	"chronofix/internal/plan"
	"chronofix/internal/services"
	"chronofix/internal/services/exiftool"
	"chronofix/internal/undo"
)

type fakeTool struct {
	meta         map[string]*exiftool.Metadata
	probeTimeout map[string]int // remaining probe timeouts per path
	writeTimeout map[string]int // remaining write timeouts per path
	writeErr     map[string]error
	cancelWrite  map[string]context.CancelFunc // fires once, mid-write
	embedded     []string
	filesystem   []string
}

func timeoutErr() error {
	return services.Wrap(services.ErrTimeout, "exiftool", "run", "deadline", context.DeadlineExceeded)
}

func (f *fakeTool) Probe(ctx context.Context, path string) (*exiftool.Metadata, error) {
	if f.probeTimeout[path] > 0 {
		f.probeTimeout[path]--
		return nil, timeoutErr()
	}
	if meta, ok := f.meta[path]; ok {
		return meta, nil
	}
	return &exiftool.Metadata{Fields: map[string]string{}}, nil
}

func (f *fakeTool) ProbeVideo(ctx context.Context, path string) (*exiftool.Metadata, error) {
	return f.Probe(ctx, path)
}

func (f *fakeTool) WriteEmbeddedDate(ctx context.Context, path string, dt time.Time) error {
	if f.writeTimeout[path] > 0 {
		f.writeTimeout[path]--
		return timeoutErr()
	}
	if err := f.writeErr[path]; err != nil {
		return err
	}
	f.embedded = append(f.embedded, path)
	return nil
}

func (f *fakeTool) WriteFilesystemDate(ctx context.Context, path string, dt time.Time) error {
	if cancel, ok := f.cancelWrite[path]; ok {
		delete(f.cancelWrite, path)
		cancel()
		return context.Canceled
	}
	if err := f.writeErr[path]; err != nil {
		return err
	}
	f.filesystem = append(f.filesystem, path)
	return nil
}

type fixture struct {
	applier *Applier
	tool    *fakeTool
	cp      *checkpoint.Manager
	dir     string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	cp, err := checkpoint.Open(filepath.Join(dir, "checkpoint.json"), 100)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = cp.Close() })

	ledger, err := undo.Open(filepath.Join(dir, "undo.json"))
	if err != nil {
		t.Fatal(err)
	}

	tool := &fakeTool{
		meta:         make(map[string]*exiftool.Metadata),
		probeTimeout: make(map[string]int),
		writeTimeout: make(map[string]int),
		writeErr:     make(map[string]error),
		cancelWrite:  make(map[string]context.CancelFunc),
	}
	problems := NewProblemLedger(filepath.Join(dir, "problems.jsonl"))
	applier := New(tool, cp, ledger, problems, pathmap.Table{}, logging.NewNop())
	return &fixture{applier: applier, tool: tool, cp: cp, dir: dir}
}

func (fx *fixture) mediaFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(fx.dir, name)
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func planEntry(path string) plan.Entry {
	return plan.Entry{
		CurrentFilename: filepath.Base(path),
		FullPath:        path,
		ProposedDate:    time.Date(2016, 8, 15, 12, 0, 0, 0, time.Local),
		Confidence:      confidence.High,
		NeedsUpdate:     true,
		FileExtension:   ".jpg",
	}
}

func TestApplyPlanUpdatesAndRecordsUndo(t *testing.T) {
	fx := newFixture(t)
	path := fx.mediaFile(t, "a.jpg")
	fx.tool.meta[path] = &exiftool.Metadata{Fields: map[string]string{
		"DateTimeOriginal": "2019:01:01 00:00:00",
	}}

	summary, err := fx.applier.ApplyPlan(context.Background(), []plan.Entry{planEntry(path)}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Updated != 1 || summary.Errors != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if len(fx.tool.embedded) != 1 || len(fx.tool.filesystem) != 1 {
		t.Fatalf("writes = %v / %v", fx.tool.embedded, fx.tool.filesystem)
	}

	// Zero errors: the checkpoint must be gone.
	if _, err := os.Stat(filepath.Join(fx.dir, "checkpoint.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("checkpoint not deleted after clean run")
	}

	ledger, err := undo.Open(filepath.Join(fx.dir, "undo.json"))
	if err != nil {
		t.Fatal(err)
	}
	changes := ledger.Changes()
	if len(changes) != 1 || changes[0].OldMetadata["DateTimeOriginal"] != "2019:01:01 00:00:00" {
		t.Fatalf("undo changes = %+v", changes)
	}
}

func TestApplyPlanBacksUpOriginals(t *testing.T) {
	fx := newFixture(t)
	path := fx.mediaFile(t, "a.jpg")
	backupDir := filepath.Join(fx.dir, "backup")

	summary, err := fx.applier.ApplyPlan(context.Background(),
		[]plan.Entry{planEntry(path)}, Options{BackupDir: backupDir})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Updated != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	data, err := os.ReadFile(filepath.Join(backupDir, "a.jpg"))
	if err != nil {
		t.Fatalf("backup copy missing: %v", err)
	}
	if string(data) != "x" {
		t.Fatalf("backup content = %q, want the pre-write bytes", data)
	}

	// A later run over the already-written file must not clobber the backup.
	if err := os.WriteFile(path, []byte("mutated"), 0o644); err != nil {
		t.Fatal(err)
	}
	cp2, err := checkpoint.Open(filepath.Join(fx.dir, "checkpoint2.json"), 100)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = cp2.Close() })
	ledger2, err := undo.Open(filepath.Join(fx.dir, "undo2.json"))
	if err != nil {
		t.Fatal(err)
	}
	second := New(fx.tool, cp2, ledger2,
		NewProblemLedger(filepath.Join(fx.dir, "problems.jsonl")), pathmap.Table{}, logging.NewNop())
	if _, err := second.ApplyPlan(context.Background(),
		[]plan.Entry{planEntry(path)}, Options{BackupDir: backupDir}); err != nil {
		t.Fatal(err)
	}
	data, err = os.ReadFile(filepath.Join(backupDir, "a.jpg"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "x" {
		t.Fatalf("backup overwritten on reattempt: %q", data)
	}
}

func TestApplyPlanDryRunClassifiesWithoutMutation(t *testing.T) {
	fx := newFixture(t)
	good := fx.mediaFile(t, "a.jpg")
	hung := fx.mediaFile(t, "b.jpg")
	fx.tool.probeTimeout[hung] = 2

	entries := []plan.Entry{planEntry(good), planEntry(hung)}

	dry, err := fx.applier.ApplyPlan(context.Background(), entries, Options{DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	if dry.Updated != 1 || dry.SkippedProblematic != 1 {
		t.Fatalf("dry summary = %+v", dry)
	}
	if len(fx.tool.embedded) != 0 || len(fx.tool.filesystem) != 0 {
		t.Fatal("dry run mutated files")
	}
	if _, err := os.Stat(filepath.Join(fx.dir, "checkpoint.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("dry run flushed checkpoint state")
	}

	// A live run over the same plan classifies identically.
	live := newFixture(t)
	goodLive := live.mediaFile(t, "a.jpg")
	hungLive := live.mediaFile(t, "b.jpg")
	live.tool.probeTimeout[hungLive] = 2
	liveEntries := []plan.Entry{planEntry(goodLive), planEntry(hungLive)}

	liveSummary, err := live.applier.ApplyPlan(context.Background(), liveEntries, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if liveSummary.Updated != dry.Updated || liveSummary.SkippedProblematic != dry.SkippedProblematic {
		t.Fatalf("live %+v != dry %+v", liveSummary, dry)
	}
}

func TestApplyPlanTimeoutRetriesOnceThenProblematic(t *testing.T) {
	fx := newFixture(t)
	path := fx.mediaFile(t, "a.jpg")
	// First probe times out, the retry succeeds; one write timeout is also
	// absorbed by its retry.
	fx.tool.probeTimeout[path] = 1
	fx.tool.writeTimeout[path] = 1

	summary, err := fx.applier.ApplyPlan(context.Background(), []plan.Entry{planEntry(path)}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Updated != 1 || summary.SkippedProblematic != 0 {
		t.Fatalf("summary = %+v", summary)
	}

	fx2 := newFixture(t)
	bad := fx2.mediaFile(t, "b.jpg")
	fx2.tool.writeTimeout[bad] = 2

	summary2, err := fx2.applier.ApplyPlan(context.Background(), []plan.Entry{planEntry(bad)}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if summary2.SkippedProblematic != 1 || summary2.Updated != 0 {
		t.Fatalf("summary = %+v", summary2)
	}
	if _, err := os.Stat(filepath.Join(fx2.dir, "problems.jsonl")); err != nil {
		t.Fatal("problem ledger not written")
	}
}

func TestApplyPlanWriteFailureIsError(t *testing.T) {
	fx := newFixture(t)
	path := fx.mediaFile(t, "a.jpg")
	fx.tool.writeErr[path] = errors.New("exit status 1")

	summary, err := fx.applier.ApplyPlan(context.Background(), []plan.Entry{planEntry(path)}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Errors != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	// Errors keep the checkpoint for inspection and resume.
	if _, err := os.Stat(filepath.Join(fx.dir, "checkpoint.json")); err != nil {
		t.Fatal("checkpoint deleted despite errors")
	}
}

func TestApplyPlanMissingFileIsError(t *testing.T) {
	fx := newFixture(t)
	entry := planEntry(filepath.Join(fx.dir, "vanished.jpg"))

	summary, err := fx.applier.ApplyPlan(context.Background(), []plan.Entry{entry}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Errors != 1 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestApplyPlanFiltersByFloorAndNeedsUpdate(t *testing.T) {
	fx := newFixture(t)
	high := fx.mediaFile(t, "high.jpg")
	low := fx.mediaFile(t, "low.jpg")
	correct := fx.mediaFile(t, "correct.jpg")

	lowEntry := planEntry(low)
	lowEntry.Confidence = confidence.Low
	correctEntry := planEntry(correct)
	correctEntry.NeedsUpdate = false

	summary, err := fx.applier.ApplyPlan(context.Background(),
		[]plan.Entry{planEntry(high), lowEntry, correctEntry}, Options{ConfidenceFloor: confidence.High})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Total != 1 || summary.Updated != 1 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestApplyPlanInterruptLeavesFileUnrecorded(t *testing.T) {
	fx := newFixture(t)
	a := fx.mediaFile(t, "a.jpg")
	b := fx.mediaFile(t, "b.jpg")
	entries := []plan.Entry{planEntry(a), planEntry(b)}

	// Operator abort lands in the middle of a's filesystem write.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fx.tool.cancelWrite[a] = cancel

	summary, err := fx.applier.ApplyPlan(ctx, entries, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	// An interrupt is not an outcome: no skip, no problem entry, no error.
	if summary.SkippedProblematic != 0 || summary.Errors != 0 || summary.Updated != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if fx.cp.IsProcessed(a) || fx.cp.IsProcessed(b) {
		t.Fatal("interrupted run recorded a terminal result")
	}
	if _, err := os.Stat(filepath.Join(fx.dir, "problems.jsonl")); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("interrupt classified a file as problematic")
	}
	// The checkpoint survives so the next run resumes where this one stopped.
	if _, err := os.Stat(filepath.Join(fx.dir, "checkpoint.json")); err != nil {
		t.Fatal("checkpoint not flushed on interrupt")
	}

	resumed, err := fx.applier.ApplyPlan(context.Background(), entries, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if resumed.Updated != 2 {
		t.Fatalf("resumed summary = %+v, want both files reattempted", resumed)
	}
}

func TestApplyPlanResumeSkipsProcessed(t *testing.T) {
	fx := newFixture(t)
	a := fx.mediaFile(t, "a.jpg")
	b := fx.mediaFile(t, "b.jpg")
	entries := []plan.Entry{planEntry(a), planEntry(b)}

	// Limit the first run to one file so the checkpoint survives.
	first, err := fx.applier.ApplyPlan(context.Background(), entries, Options{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if first.Updated != 1 {
		t.Fatalf("first summary = %+v", first)
	}

	second, err := fx.applier.ApplyPlan(context.Background(), entries, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if second.Total != 1 || second.Updated != 1 {
		t.Fatalf("second summary = %+v", second)
	}
	if len(fx.tool.filesystem) != 2 {
		t.Fatalf("filesystem writes = %v, want each file written once", fx.tool.filesystem)
	}
}
