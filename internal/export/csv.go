// Package export serializes report rows into downloadable artifacts.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CSVExporter writes reports as CSV files under a fixed directory.
type CSVExporter struct {
	dir string
}

// NewCSVExporter creates the artifact directory if needed.
func NewCSVExporter(dir string) (*CSVExporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	return &CSVExporter{dir: dir}, nil
}

// Export writes columns and rows to a timestamped CSV file and
// returns its path.
func (e *CSVExporter) Export(name string, columns []string, rows [][]string) (string, error) {
	safe := strings.NewReplacer(" ", "_", "/", "_").Replace(name)
	filename := fmt.Sprintf("%s_%s.csv", safe, time.Now().Format("20060102_150405"))
	path := filepath.Join(e.dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create artifact: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush artifact: %w", err)
	}

	return path, nil
}
