package domain

import "time"

// Item represents a single normalized feed entry ready for delivery
type Item struct {
	GUID        string     `json:"guid"`
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Description string     `json:"description"`
	ImageURL    string     `json:"image_url,omitempty"`
	Category    string     `json:"category,omitempty"`
	Published   *time.Time `json:"published,omitempty"`
	Source      string     `json:"source"`
}

// PublishedOr returns the published time or the fallback when unknown
func (i Item) PublishedOr(fallback time.Time) time.Time {
	if i.Published == nil {
		return fallback
	}
	return *i.Published
}
