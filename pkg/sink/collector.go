package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/feedhaul/feedhaul/pkg/domain"
)

// Collector submits items to a remote collection API, one POST per item.
// A failed submission is logged and skipped, the rest of the batch still
// goes out.
type Collector struct {
	client    *http.Client
	endpoint  string
	authKey   string
	accountID string
	siteID    string
}

// CollectorConfig represents remote collection API configuration
type CollectorConfig struct {
	Endpoint  string
	AuthKey   string
	AccountID string
	SiteID    string
	Timeout   time.Duration
}

// collectorPayload is the request body shape expected by the collection
// API, all fields present even when empty
type collectorPayload struct {
	Title         string `json:"title"`
	Summary       string `json:"summary"`
	Image         string `json:"image"`
	Link          string `json:"link"`
	Category      string `json:"category"`
	PublishedDate string `json:"publishedDate"`
	Featured      bool   `json:"featured"`
}

// NewCollector creates a collector sink for the given API endpoint
func NewCollector(cfg CollectorConfig) *Collector {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Collector{
		client:    &http.Client{Timeout: timeout},
		endpoint:  cfg.Endpoint,
		authKey:   cfg.AuthKey,
		accountID: cfg.AccountID,
		siteID:    cfg.SiteID,
	}
}

// Name returns the sink name
func (c *Collector) Name() string { return "collector" }

// Write submits each item individually and returns how many were accepted.
// An error comes back only when every submission failed.
func (c *Collector) Write(ctx context.Context, items []domain.Item) (int, error) {
	sent := 0
	for _, item := range items {
		if err := c.send(ctx, item); err != nil {
			lgr.Printf("[WARN] collector: failed to send %q: %v", item.Title, err)
			continue
		}
		lgr.Printf("[DEBUG] collector: sent %q", item.Title)
		sent++
	}
	if sent == 0 && len(items) > 0 {
		return 0, fmt.Errorf("all %d submissions failed", len(items))
	}
	return sent, nil
}

// send posts a single item to the collection endpoint
func (c *Collector) send(ctx context.Context, item domain.Item) error {
	publishedDate := ""
	if item.Published != nil {
		publishedDate = item.Published.Format(time.RFC3339)
	}

	body, err := json.Marshal(collectorPayload{
		Title:         item.Title,
		Summary:       item.Description,
		Image:         item.ImageURL,
		Link:          item.Link,
		Category:      item.Category,
		PublishedDate: publishedDate,
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.authKey)
	if c.accountID != "" {
		req.Header.Set("X-Account-Id", c.accountID)
	}
	if c.siteID != "" {
		req.Header.Set("X-Site-Id", c.siteID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("post item: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// keep a bit of the response for diagnostics, these APIs tend to
		// explain rejections in the body
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(snippet))
	}

	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
