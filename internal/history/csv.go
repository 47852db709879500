package history

import (
	"encoding/csv"
	"fmt"
	"os"
)

var csvHeader = []string{"timestamp", "action", "old_name", "new_name", "directory", "destination"}

// ExportCSV writes operations to a review CSV in import order.
func ExportCSV(path string, ops []Op) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create history export: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write history export header: %w", err)
	}
	for _, op := range ops {
		row := []string{op.Timestamp, op.Action, op.OldName, op.NewName, op.Directory, op.Destination}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write history export row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush history export: %w", err)
	}
	return file.Close()
}
