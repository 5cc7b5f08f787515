package recorder

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"StockScope/internal/model"
)

// JSONRecorder writes each report to {Dir}/{symbol}_data.json, replacing any
// earlier export of the same symbol.
type JSONRecorder struct {
	Dir string
}

func NewJSONRecorder(dir string) *JSONRecorder { return &JSONRecorder{Dir: dir} }

// Path returns the export file for symbol.
func (r *JSONRecorder) Path(symbol string) string {
	return filepath.Join(r.Dir, symbol+"_data.json")
}

func (r *JSONRecorder) RecordReport(_ context.Context, report *model.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", report.Symbol, err)
	}
	return writeFile(r.Path(report.Symbol), data)
}

func (r *JSONRecorder) Close() error { return nil }

// writeFile writes through a temp file so readers never see a partial export.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
