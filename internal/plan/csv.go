package plan

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"chronofix/internal/confidence"
	"chronofix/internal/evidence"
	"chronofix/internal/pathmap"
)

// Plan timestamp layout, shared with the review spreadsheets.
const dateLayout = "2006-01-02 15:04:05"

// Column order is a contract: previously generated plans must keep loading,
// and operators review these files in spreadsheets.
var csvHeader = []string{
	"current_filename", "full_path", "old_filename", "proposed_date",
	"current_exif_date", "directory", "dir_year", "file_modified",
	"confidence", "reasoning", "date_differs", "update_reason",
	"file_extension",
}

// WriteCSV saves a plan.
func WriteCSV(path string, entries []Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create plan file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range entries {
		exifDate := "NONE"
		if e.HasEXIFDate {
			exifDate = e.CurrentEXIFDate.Format(dateLayout)
		}
		dirYear := "N/A"
		if e.HasDirYear {
			dirYear = strconv.Itoa(e.DirYear)
		}
		differs := "NO"
		if e.NeedsUpdate {
			differs = "YES"
		}
		row := []string{
			e.CurrentFilename, e.FullPath, e.OldFilename,
			e.ProposedDate.Format(dateLayout), exifDate,
			e.Directory, dirYear, e.FileModified,
			string(e.Confidence), e.Reasoning, differs,
			e.UpdateReason, e.FileExtension,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// ReadCSV loads a plan, translating the full_path column through the table.
// Columns are resolved by header name so reordered or extended plan files
// still load.
func ReadCSV(path string, table pathmap.Table) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open plan file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read plan file: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("plan file %s is empty", path)
	}

	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[name] = i
	}
	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	entries := make([]Entry, 0, len(rows)-1)
	for n, row := range rows[1:] {
		proposed, ok := evidence.ParseDate(field(row, "proposed_date"))
		if !ok {
			return nil, fmt.Errorf("plan row %d: bad proposed_date %q", n+2, field(row, "proposed_date"))
		}
		level, err := confidence.ParseLevel(field(row, "confidence"))
		if err != nil {
			return nil, fmt.Errorf("plan row %d: %w", n+2, err)
		}

		entry := Entry{
			CurrentFilename: field(row, "current_filename"),
			FullPath:        table.Translate(field(row, "full_path")),
			OldFilename:     field(row, "old_filename"),
			ProposedDate:    proposed,
			Directory:       field(row, "directory"),
			FileModified:    field(row, "file_modified"),
			Confidence:      level,
			Reasoning:       field(row, "reasoning"),
			NeedsUpdate:     field(row, "date_differs") == "YES",
			UpdateReason:    field(row, "update_reason"),
			FileExtension:   field(row, "file_extension"),
		}
		if raw := field(row, "current_exif_date"); raw != "" && raw != "NONE" {
			if dt, ok := evidence.ParseDate(raw); ok {
				entry.CurrentEXIFDate = dt
				entry.HasEXIFDate = true
			}
		}
		if raw := field(row, "dir_year"); raw != "" && raw != "N/A" {
			if year, err := strconv.Atoi(raw); err == nil {
				entry.DirYear = year
				entry.HasDirYear = true
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
