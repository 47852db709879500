// Package checkpoint persists batch progress so an interrupted run resumes
// where it stopped instead of reprocessing thousands of files. The state
// file is written atomically, guarded by an advisory lock so two appliers
// can never share one checkpoint, and deleted only after a clean run.
package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"chronofix/internal/fileutil"
	"chronofix/internal/services"
)

// Result classifies the terminal outcome of one processed file.
type Result string

const (
	ResultUpdated            Result = "updated"
	ResultRenamed            Result = "renamed"
	ResultAlreadyCorrect     Result = "already_correct"
	ResultSkippedNoSignal    Result = "skipped_no_exif"
	ResultSkippedProblematic Result = "skipped_problematic"
	ResultError              Result = "error"
)

// ProcessedFile is one completed entry in the checkpoint.
type ProcessedFile struct {
	Path      string `json:"path"`
	Result    Result `json:"result"`
	Timestamp string `json:"timestamp"`
	EXIFDate  string `json:"exif_date,omitempty"`
}

const stateVersion = 1

const timeLayout = "2006-01-02T15:04:05"

// state is the on-disk document. Unknown fields in an existing file are
// ignored on load so a checkpoint written by a newer build still resumes.
type state struct {
	Version        int             `json:"version"`
	CreatedAt      string          `json:"created_at"`
	LastUpdate     string          `json:"last_update"`
	ProcessedFiles []ProcessedFile `json:"processed_files"`
	CurrentIndex   int             `json:"current_index"`
	TotalFiles     int             `json:"total_files"`
	Stats          map[string]int  `json:"stats"`
}

// Manager owns one checkpoint file for the duration of a run.
type Manager struct {
	path      string
	interval  int
	lock      *flock.Flock
	state     state
	processed map[string]struct{}
	sinceSave int
}

// Open loads or creates the checkpoint at path and takes an exclusive
// advisory lock beside it. A second applier against the same path fails
// here instead of corrupting the bookkeeping. interval is the number of
// completed entries between periodic flushes; zero means 100.
func Open(path string, interval int) (*Manager, error) {
	if interval <= 0 {
		interval = 100
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure checkpoint directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire checkpoint lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("checkpoint %s is in use by another run", path)
	}

	m := &Manager{
		path:      path,
		interval:  interval,
		lock:      lock,
		processed: make(map[string]struct{}),
	}
	if err := m.load(); err != nil {
		_ = lock.Unlock()
		return nil, err
	}
	return m, nil
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		now := time.Now().Format(timeLayout)
		m.state = state{
			Version:   stateVersion,
			CreatedAt: now,
			Stats:     make(map[string]int),
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read checkpoint: %w", err)
	}

	if err := json.Unmarshal(data, &m.state); err != nil {
		// A half-written or mangled checkpoint must stop the run: silently
		// starting from zero would reprocess files and double-count stats.
		return services.Wrap(services.ErrCheckpointCorrupt, "checkpoint", "load",
			fmt.Sprintf("cannot decode %s", m.path), err)
	}
	if m.state.Stats == nil {
		m.state.Stats = make(map[string]int)
	}
	for _, pf := range m.state.ProcessedFiles {
		m.processed[pf.Path] = struct{}{}
	}
	return nil
}

// IsProcessed reports whether path already has a terminal result recorded.
func (m *Manager) IsProcessed(path string) bool {
	_, ok := m.processed[path]
	return ok
}

// SetTotal records how many entries this run will process.
func (m *Manager) SetTotal(total int) {
	m.state.TotalFiles = total
}

// MarkProcessed records a terminal result for path. Recording before
// advancing to the next file is what makes resume safe. Persistence is the
// caller's decision via ShouldSave and Save, so dry runs can classify
// without flushing state.
func (m *Manager) MarkProcessed(path string, result Result, exifDate string) {
	if m.IsProcessed(path) {
		return
	}
	m.state.ProcessedFiles = append(m.state.ProcessedFiles, ProcessedFile{
		Path:      path,
		Result:    result,
		Timestamp: time.Now().Format(timeLayout),
		EXIFDate:  exifDate,
	})
	m.processed[path] = struct{}{}
	m.state.CurrentIndex++
	m.state.Stats[string(result)]++
	m.sinceSave++
}

// ShouldSave reports whether enough entries completed since the last flush
// to warrant a periodic save.
func (m *Manager) ShouldSave() bool {
	return m.sinceSave >= m.interval
}

// Save flushes the state atomically.
func (m *Manager) Save() error {
	m.state.LastUpdate = time.Now().Format(timeLayout)
	data, err := json.MarshalIndent(m.state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	if err := fileutil.WriteFileAtomic(m.path, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	m.sinceSave = 0
	return nil
}

// Stats returns a copy of the per-result counters.
func (m *Manager) Stats() map[string]int {
	stats := make(map[string]int, len(m.state.Stats))
	for k, v := range m.state.Stats {
		stats[k] = v
	}
	return stats
}

// Processed returns the recorded entries in completion order.
func (m *Manager) Processed() []ProcessedFile {
	out := make([]ProcessedFile, len(m.state.ProcessedFiles))
	copy(out, m.state.ProcessedFiles)
	return out
}

// Count reports how many entries have terminal results.
func (m *Manager) Count() int {
	return len(m.state.ProcessedFiles)
}

// Total reports the planned entry count for this run.
func (m *Manager) Total() int {
	return m.state.TotalFiles
}

// CreatedAt reports when the checkpoint was first created.
func (m *Manager) CreatedAt() string {
	return m.state.CreatedAt
}

// Delete removes the checkpoint file. Call only after a run finishes with
// zero errors; a deleted checkpoint means the batch is complete.
func (m *Manager) Delete() error {
	if err := os.Remove(m.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete checkpoint: %w", err)
	}
	return nil
}

// Close releases the advisory lock. The state is not implicitly saved;
// callers flush explicitly so interrupt handling stays visible at the
// call site.
func (m *Manager) Close() error {
	if m.lock == nil {
		return nil
	}
	err := m.lock.Unlock()
	_ = os.Remove(m.lock.Path())
	m.lock = nil
	return err
}
