package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/feedhaul/feedhaul/pkg/domain"
)

// csvHeader lists columns in canonical record order
var csvHeader = []string{"guid", "title", "link", "description", "image_url", "category", "published", "source"}

// CSVFile writes the batch to a CSV file with a fixed header row
type CSVFile struct {
	path string
}

// NewCSVFile creates a CSV file sink writing to the given path
func NewCSVFile(path string) *CSVFile {
	return &CSVFile{path: path}
}

// Name returns the sink name
func (c *CSVFile) Name() string { return "csv" }

// Write renders the items as CSV, one row per item
func (c *CSVFile) Write(_ context.Context, items []domain.Item) (int, error) {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}

	f, err := os.Create(c.path) //nolint:gosec // output path comes from config
	if err != nil {
		return 0, fmt.Errorf("create csv file: %w", err)
	}

	if err := writeRecords(f, items); err != nil {
		_ = f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close csv file: %w", err)
	}
	return len(items), nil
}

// writeRecords streams the header and item rows through a csv writer
func writeRecords(f *os.File, items []domain.Item) error {
	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, item := range items {
		published := ""
		if item.Published != nil {
			published = item.Published.Format(time.RFC3339)
		}
		record := []string{
			item.GUID,
			item.Title,
			item.Link,
			item.Description,
			item.ImageURL,
			item.Category,
			published,
			item.Source,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
