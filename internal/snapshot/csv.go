package snapshot

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"chronofix/internal/pathmap"
)

var csvHeader = []string{
	"Filename", "Full Path", "Relative Path", "Directory",
	"Relative Directory", "Extension", "Size (bytes)",
	"File Created", "File Modified", "EXIF DateTimeOriginal",
	"EXIF DateTimeDigitized", "EXIF DateTime", "Captured At",
}

// WriteCSV saves records in the state capture format.
func WriteCSV(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Filename, r.FullPath, r.RelativePath, r.Directory,
			r.RelativeDirectory, r.Extension, strconv.FormatInt(r.SizeBytes, 10),
			r.FileCreated, r.FileModified, r.EXIFOriginal,
			r.EXIFDigitized, r.EXIFDateTime, r.CapturedAt,
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

// ReadCSV loads a state capture, translating path columns through the
// table so a snapshot taken on one host applies on another. Columns are
// resolved by header name, not position, so extra columns are tolerated.
func ReadCSV(path string, table pathmap.Table) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("snapshot file %s is empty", path)
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

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		size, _ := strconv.ParseInt(field(row, "Size (bytes)"), 10, 64)
		records = append(records, Record{
			Filename:          field(row, "Filename"),
			FullPath:          table.Translate(field(row, "Full Path")),
			RelativePath:      field(row, "Relative Path"),
			Directory:         table.Translate(field(row, "Directory")),
			RelativeDirectory: field(row, "Relative Directory"),
			Extension:         field(row, "Extension"),
			SizeBytes:         size,
			FileCreated:       field(row, "File Created"),
			FileModified:      field(row, "File Modified"),
			EXIFOriginal:      field(row, "EXIF DateTimeOriginal"),
			EXIFDigitized:     field(row, "EXIF DateTimeDigitized"),
			EXIFDateTime:      field(row, "EXIF DateTime"),
			CapturedAt:        field(row, "Captured At"),
		})
	}
	return records, nil
}
