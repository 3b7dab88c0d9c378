package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestExport_WritesHeaderAndRows(t *testing.T) {
	exporter, err := NewCSVExporter(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	columns := []string{"Device Name", "Distance (km)"}
	rows := [][]string{
		{"Truck 1", "12.40"},
		{"Truck 2", "0.00"},
	}
	path, err := exporter.Export("Fleet Summary Report", columns, rows)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("artifact not readable: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("artifact is not valid CSV: %v", err)
	}
	want := append([][]string{columns}, rows...)
	if !reflect.DeepEqual(records, want) {
		t.Errorf("artifact = %v, want %v", records, want)
	}
}

func TestExport_SanitizesName(t *testing.T) {
	dir := t.TempDir()
	exporter, err := NewCSVExporter(dir)
	if err != nil {
		t.Fatal(err)
	}

	path, err := exporter.Export("Trip / Idle Report", []string{"a"}, nil)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	base := filepath.Base(path)
	if strings.ContainsAny(base, " /") {
		t.Errorf("filename %q still contains unsafe characters", base)
	}
	if !strings.HasPrefix(base, "Trip___Idle_Report_") {
		t.Errorf("filename %q does not carry the report name", base)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("artifact written to %q, want %q", filepath.Dir(path), dir)
	}
}

func TestNewCSVExporter_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "exports")
	if _, err := NewCSVExporter(dir); err != nil {
		t.Fatalf("NewCSVExporter failed: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("export directory was not created: %v", err)
	}
}
