// Package undo keeps a durable record of every metadata mutation so a run
// can be reversed by hand. Each change is flushed to disk the moment it is
// recorded; a crash mid-run still leaves a usable partial ledger. No
// automated reversal exists, only the faithful record.
package undo

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"chronofix/internal/fileutil"
)

const timeLayout = "2006-01-02T15:04:05"

// Change records one applied mutation.
type Change struct {
	File        string            `json:"file"`
	OldMetadata map[string]string `json:"old_metadata"`
	NewValue    string            `json:"new_value"`
	Timestamp   string            `json:"timestamp"`
}

type document struct {
	Created string   `json:"created"`
	Changes []Change `json:"changes"`
}

// Ledger is an append-only undo log backed by one JSON document.
type Ledger struct {
	path string
	doc  document
}

// Open loads the ledger at path, creating an empty one if absent so an
// interrupted run keeps appending to its existing ledger on resume.
func Open(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure undo directory: %w", err)
	}

	ledger := &Ledger{path: path}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		ledger.doc = document{Created: time.Now().Format(timeLayout)}
		return ledger, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read undo ledger: %w", err)
	}
	if err := json.Unmarshal(data, &ledger.doc); err != nil {
		return nil, fmt.Errorf("decode undo ledger %s: %w", path, err)
	}
	return ledger, nil
}

// Record appends a change and flushes the whole document atomically before
// returning. The ledger must always be at least as current as the
// checkpoint, so this is never batched.
func (l *Ledger) Record(file string, oldMetadata map[string]string, newValue string) error {
	l.doc.Changes = append(l.doc.Changes, Change{
		File:        file,
		OldMetadata: oldMetadata,
		NewValue:    newValue,
		Timestamp:   time.Now().Format(timeLayout),
	})
	return l.flush()
}

func (l *Ledger) flush() error {
	data, err := json.MarshalIndent(l.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode undo ledger: %w", err)
	}
	if err := fileutil.WriteFileAtomic(l.path, data, 0o644); err != nil {
		return fmt.Errorf("write undo ledger: %w", err)
	}
	return nil
}

// Changes returns the recorded changes in order.
func (l *Ledger) Changes() []Change {
	out := make([]Change, len(l.doc.Changes))
	copy(out, l.doc.Changes)
	return out
}

// Created reports when this ledger was started.
func (l *Ledger) Created() string {
	return l.doc.Created
}

// Path returns the ledger file location.
func (l *Ledger) Path() string {
	return l.path
}
