package sink

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/feedhaul/feedhaul/pkg/domain"
)

//go:embed digest.tmpl.html
var digestTmpl string

var digestTemplate = template.Must(template.New("digest").Parse(digestTmpl))

// HTMLDigest renders the batch as a standalone HTML page, newest items
// first as handed in
type HTMLDigest struct {
	path  string
	title string
}

// NewHTMLDigest creates an HTML digest sink writing to the given path
func NewHTMLDigest(path, title string) *HTMLDigest {
	return &HTMLDigest{path: path, title: title}
}

// Name returns the sink name
func (h *HTMLDigest) Name() string { return "html" }

// digestData feeds the digest template
type digestData struct {
	Title     string
	Generated string
	Items     []domain.Item
}

// Write renders the digest page and writes it out
func (h *HTMLDigest) Write(_ context.Context, items []domain.Item) (int, error) {
	data := digestData{
		Title:     h.title,
		Generated: time.Now().Format("Jan 2, 2006 15:04 MST"),
		Items:     items,
	}

	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, data); err != nil {
		return 0, fmt.Errorf("render digest: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(h.path, buf.Bytes(), 0o644); err != nil { //nolint:gosec // feed output, not sensitive
		return 0, fmt.Errorf("write html file: %w", err)
	}
	return len(items), nil
}
