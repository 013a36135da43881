package domain

// Feed represents a subscribed feed source
type Feed struct {
	Name     string
	URL      string
	Category string
}
