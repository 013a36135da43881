// Package pipeline runs a single batch pass over the configured feeds:
// fetch, extract, normalize, filter against run state, dispatch to sinks
// and persist the updated state.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/feedhaul/feedhaul/pkg/domain"
	"github.com/feedhaul/feedhaul/pkg/feed"
	"github.com/feedhaul/feedhaul/pkg/state"
)

//go:generate moq -out mocks/fetcher.go -pkg mocks -skip-ensure -fmt goimports . Fetcher
//go:generate moq -out mocks/state_store.go -pkg mocks -skip-ensure -fmt goimports . StateStore
//go:generate moq -out mocks/sink.go -pkg mocks -skip-ensure -fmt goimports . Sink

// Fetcher retrieves raw feed documents
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// StateStore loads and persists run state between invocations
type StateStore interface {
	Load() state.RunState
	Save(st state.RunState) error
}

// Sink delivers a batch of new items to one output
type Sink interface {
	Name() string
	Write(ctx context.Context, items []domain.Item) (int, error)
}

// Processor coordinates one batch run. Feeds are fetched concurrently and
// in isolation, a failing feed or sink never takes the run down with it.
type Processor struct {
	fetcher     Fetcher
	store       StateStore
	sinks       []Sink
	scanner     *feed.Scanner
	normalizer  *feed.Normalizer
	feeds       []domain.Feed
	concurrency int
}

// ProcessorConfig holds dependencies and settings for Processor
type ProcessorConfig struct {
	Fetcher     Fetcher
	Store       StateStore
	Sinks       []Sink
	Scanner     *feed.Scanner
	Normalizer  *feed.Normalizer
	Feeds       []domain.Feed
	Concurrency int
}

// NewProcessor creates a processor with the provided configuration
func NewProcessor(cfg ProcessorConfig) *Processor {
	if cfg.Concurrency == 0 {
		cfg.Concurrency = 4
	}
	return &Processor{
		fetcher:     cfg.Fetcher,
		store:       cfg.Store,
		sinks:       cfg.Sinks,
		scanner:     cfg.Scanner,
		normalizer:  cfg.Normalizer,
		feeds:       cfg.Feeds,
		concurrency: cfg.Concurrency,
	}
}

// Report summarizes a completed run
type Report struct {
	Found int // items extracted across all feeds
	New   int // items that passed the dedup filter
	Feeds []FeedStatus
	Sinks []SinkStatus
}

// FeedStatus describes the outcome for a single feed
type FeedStatus struct {
	Name  string
	URL   string
	Items int
	Err   error
}

// SinkStatus describes the outcome for a single sink
type SinkStatus struct {
	Name string
	Sent int
	Err  error
}

// Run executes one batch pass and reports what happened. State is saved
// after dispatch, so a crash mid-run redelivers rather than drops items.
func (p *Processor) Run(ctx context.Context) (*Report, error) {
	if len(p.feeds) == 0 {
		return nil, fmt.Errorf("no feeds configured")
	}

	st := p.store.Load()
	if st.Fresh {
		lgr.Printf("[INFO] no usable run state, treating items since %s as candidates", st.LastRun.Format(time.RFC3339))
	}

	report := &Report{}
	items := p.collect(ctx, report)
	report.Found = len(items)

	SortItems(items)
	newItems := SelectNew(items, st)
	report.New = len(newItems)
	lgr.Printf("[INFO] found %d items, %d new", report.Found, report.New)

	if len(newItems) > 0 {
		p.dispatch(ctx, report, newItems)
	} else {
		lgr.Printf("[INFO] no new items, skipping sinks")
	}

	// remember everything observed this run, not only what went out, so a
	// fresh-state run can't resurface its window-excluded items later
	for _, item := range items {
		st.Add(item.GUID)
	}
	st.LastRun = time.Now()
	if err := p.store.Save(st); err != nil {
		lgr.Printf("[ERROR] failed to save run state: %v", err)
	}

	return report, nil
}

// collect fetches and extracts all feeds concurrently, keeping results in
// feed order. A failed feed contributes nothing but doesn't stop the rest.
func (p *Processor) collect(ctx context.Context, report *Report) []domain.Item {
	lgr.Printf("[INFO] processing %d feeds", len(p.feeds))

	results := make([][]domain.Item, len(p.feeds))
	statuses := make([]FeedStatus, len(p.feeds))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, f := range p.feeds {
		g.Go(func() error {
			statuses[i] = FeedStatus{Name: f.Name, URL: f.URL}

			lgr.Printf("[DEBUG] fetching feed %s (%s)", f.Name, f.URL)
			body, err := p.fetcher.Fetch(ctx, f.URL)
			if err != nil {
				lgr.Printf("[WARN] failed to fetch feed %s: %v", f.Name, err)
				statuses[i].Err = err
				return nil
			}

			entries := p.scanner.Scan(body)
			items := make([]domain.Item, 0, len(entries))
			for _, entry := range entries {
				items = append(items, p.normalizer.Normalize(entry, f))
			}

			lgr.Printf("[DEBUG] extracted %d items from feed %s", len(items), f.Name)
			results[i] = items
			statuses[i].Items = len(items)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors, failures are recorded per feed

	report.Feeds = statuses

	var all []domain.Item
	for _, items := range results {
		all = append(all, items...)
	}
	return all
}

// dispatch hands the new items to every sink in turn
func (p *Processor) dispatch(ctx context.Context, report *Report, items []domain.Item) {
	for _, s := range p.sinks {
		sent, err := s.Write(ctx, items)
		if err != nil {
			lgr.Printf("[WARN] sink %s failed: %v", s.Name(), err)
		} else {
			lgr.Printf("[INFO] sink %s delivered %d items", s.Name(), sent)
		}
		report.Sinks = append(report.Sinks, SinkStatus{Name: s.Name(), Sent: sent, Err: err})
	}
}
