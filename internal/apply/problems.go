package apply

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ProblemLedger appends one JSON line per file the pipeline gave up on, so
// systemic bad files (truncated JPEGs, dead symlinks, hostile containers)
// can be triaged later without re-scanning the whole library.
type ProblemLedger struct {
	path string
}

type problemRecord struct {
	File      string `json:"file"`
	Reason    string `json:"reason"`
	Timestamp string `json:"timestamp"`
}

// NewProblemLedger creates a ledger writing to path.
func NewProblemLedger(path string) *ProblemLedger {
	return &ProblemLedger{path: path}
}

// Record appends one problem entry, flushed immediately.
func (l *ProblemLedger) Record(file, reason string) error {
	if l == nil || l.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("ensure problem log directory: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open problem log: %w", err)
	}

	line, err := json.Marshal(problemRecord{
		File:      file,
		Reason:    reason,
		Timestamp: time.Now().Format("2006-01-02T15:04:05"),
	})
	if err != nil {
		f.Close()
		return err
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("append problem record: %w", err)
	}
	return f.Close()
}

// Path returns the ledger location.
func (l *ProblemLedger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}
