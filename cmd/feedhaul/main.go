package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/feedhaul/feedhaul/pkg/config"
	"github.com/feedhaul/feedhaul/pkg/domain"
	"github.com/feedhaul/feedhaul/pkg/feed"
	"github.com/feedhaul/feedhaul/pkg/pipeline"
	"github.com/feedhaul/feedhaul/pkg/sink"
	"github.com/feedhaul/feedhaul/pkg/state"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"c" long:"config" env:"CONFIG" default:"feedhaul.yml" description:"config file path"`
	DryRun bool   `long:"dry-run" description:"fetch and filter but skip sinks and state updates"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	setupLog(opts.Debug)

	log.Printf("[INFO] starting feedhaul %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()

	if err != nil {
		log.Printf("[ERROR] run failed: %v", err)
		os.Exit(1)
	}
}

// run executes a single batch pass with the given options
func run(ctx context.Context, opts Opts) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// reconfigure logging so the collector key never shows up in logs
	if cfg.Sinks.Collector.AuthKey != "" {
		setupLog(opts.Debug, cfg.Sinks.Collector.AuthKey)
	}

	feeds := make([]domain.Feed, 0, len(cfg.Feeds))
	for _, f := range cfg.Feeds {
		feeds = append(feeds, domain.Feed{Name: f.Name, URL: f.URL, Category: f.Category})
	}

	var sinks []pipeline.Sink
	var closers []io.Closer
	var store pipeline.StateStore = state.NewStore(cfg.State.Path, cfg.State.Window)

	if opts.DryRun {
		log.Printf("[INFO] dry run, sinks and state updates disabled")
		store = noSaveStore{state.NewStore(cfg.State.Path, cfg.State.Window)}
	} else {
		sinks, closers, err = makeSinks(cfg)
		if err != nil {
			return fmt.Errorf("failed to set up sinks: %w", err)
		}
	}
	defer func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				log.Printf("[WARN] failed to close sink: %v", err)
			}
		}
	}()

	processor := pipeline.NewProcessor(pipeline.ProcessorConfig{
		Fetcher:     feed.NewHTTPFetcher(cfg.Fetch.Timeout, cfg.Fetch.UserAgent, cfg.Fetch.Retries),
		Store:       store,
		Sinks:       sinks,
		Scanner:     feed.NewScanner(cfg.Fetch.MaxItems),
		Normalizer:  feed.NewNormalizer(cfg.Identity),
		Feeds:       feeds,
		Concurrency: cfg.Fetch.Concurrency,
	})

	report, err := processor.Run(ctx)
	if err != nil {
		return err
	}

	printSummary(report)
	return nil
}

// makeSinks builds the enabled sinks from config. Sinks holding resources
// come back as closers too.
func makeSinks(cfg *config.Config) (sinks []pipeline.Sink, closers []io.Closer, err error) {
	if cfg.Sinks.JSON.Enabled {
		sinks = append(sinks, sink.NewJSONFile(cfg.Sinks.JSON.Path))
	}
	if cfg.Sinks.CSV.Enabled {
		sinks = append(sinks, sink.NewCSVFile(cfg.Sinks.CSV.Path))
	}
	if cfg.Sinks.HTML.Enabled {
		sinks = append(sinks, sink.NewHTMLDigest(cfg.Sinks.HTML.Path, cfg.Sinks.HTML.Title))
	}
	if cfg.Sinks.Collector.Enabled {
		sinks = append(sinks, sink.NewCollector(sink.CollectorConfig{
			Endpoint:  cfg.Sinks.Collector.Endpoint,
			AuthKey:   cfg.Sinks.Collector.AuthKey,
			AccountID: cfg.Sinks.Collector.AccountID,
			SiteID:    cfg.Sinks.Collector.SiteID,
			Timeout:   cfg.Sinks.Collector.Timeout,
		}))
	}
	if cfg.Sinks.Archive.Enabled {
		archive, err := sink.NewArchive(sink.ArchiveConfig{
			DSN:             cfg.Sinks.Archive.DSN,
			MaxOpenConns:    cfg.Sinks.Archive.MaxOpenConns,
			MaxIdleConns:    cfg.Sinks.Archive.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.Sinks.Archive.ConnMaxLifetime) * time.Second,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("open archive: %w", err)
		}
		sinks = append(sinks, archive)
		closers = append(closers, archive)
	}
	return sinks, closers, nil
}

// noSaveStore reads real state but drops updates, used for dry runs
type noSaveStore struct {
	*state.Store
}

func (s noSaveStore) Save(state.RunState) error { return nil }

// printSummary logs the run outcome in a short human-readable form
func printSummary(report *pipeline.Report) {
	failed := 0
	for _, f := range report.Feeds {
		if f.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		log.Printf("[WARN] %d of %d feeds failed", failed, len(report.Feeds))
	}

	if len(report.Sinks) > 0 {
		parts := make([]string, 0, len(report.Sinks))
		for _, s := range report.Sinks {
			if s.Err != nil {
				parts = append(parts, fmt.Sprintf("%s: failed", s.Name))
				continue
			}
			parts = append(parts, fmt.Sprintf("%s: %d", s.Name, s.Sent))
		}
		log.Printf("[INFO] delivered to sinks: %s", strings.Join(parts, ", "))
	}

	log.Printf("[INFO] run completed: %d items found, %d new", report.Found, report.New)
}

func setupLog(dbg bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))
	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
