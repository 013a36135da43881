package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/feedhaul/feedhaul/pkg/domain"
)

// JSONFile writes the batch to a JSON file, replacing the previous run's
// output
type JSONFile struct {
	path string
}

// NewJSONFile creates a JSON file sink writing to the given path
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Name returns the sink name
func (j *JSONFile) Name() string { return "json" }

// Write marshals the items and writes them out
func (j *JSONFile) Write(_ context.Context, items []domain.Item) (int, error) {
	if items == nil {
		items = []domain.Item{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshal items: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(j.path, data, 0o644); err != nil { //nolint:gosec // feed output, not sensitive
		return 0, fmt.Errorf("write json file: %w", err)
	}
	return len(items), nil
}
