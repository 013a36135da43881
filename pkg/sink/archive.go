// Package sink delivers new items to the configured outputs. Every sink
// takes the same batch and reports how many items it managed to deliver,
// a failing sink never affects the others.
package sink

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/repeater/v2"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure Go SQLite driver

	"github.com/feedhaul/feedhaul/pkg/domain"
)

//go:embed schema.sql
var schema string

// Archive keeps a permanent record of delivered items in a local SQLite
// database. Items are keyed by identity, replays from earlier runs are
// skipped at the database level.
type Archive struct {
	db *sqlx.DB
}

// ArchiveConfig represents archive database configuration
type ArchiveConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// itemSQL represents an item for SQL operations
type itemSQL struct {
	GUID        string     `db:"guid"`
	Title       string     `db:"title"`
	Link        string     `db:"link"`
	Description string     `db:"description"`
	ImageURL    string     `db:"image_url"`
	Category    string     `db:"category"`
	Published   *time.Time `db:"published"`
	Source      string     `db:"source"`
}

// NewArchive opens the archive database and initializes its schema
func NewArchive(cfg ArchiveConfig) (*Archive, error) {
	if cfg.DSN == "" {
		cfg.DSN = "file:feedhaul.db?cache=shared&mode=rwc"
	}

	db, err := sqlx.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// configure connection pool
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	// optimize SQLite settings
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Archive{db: db}, nil
}

// Name returns the sink name
func (a *Archive) Name() string { return "archive" }

// Write inserts items into the archive. Rows already present are skipped,
// the returned count covers newly stored items only. A single bad item
// doesn't abort the batch.
func (a *Archive) Write(ctx context.Context, items []domain.Item) (int, error) {
	stored, failed := 0, 0
	for _, item := range items {
		inserted, err := a.insert(ctx, item)
		if err != nil {
			lgr.Printf("[WARN] archive: failed to store %q (%s): %v", item.Title, item.GUID, err)
			failed++
			continue
		}
		if inserted {
			stored++
		}
	}
	if failed > 0 && failed == len(items) {
		return 0, fmt.Errorf("all %d items failed to store", failed)
	}
	return stored, nil
}

// Close closes the archive database
func (a *Archive) Close() error {
	return a.db.Close()
}

// insert stores a single item, retrying transient lock errors
func (a *Archive) insert(ctx context.Context, item domain.Item) (bool, error) {
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))

	var inserted bool
	err := retrier.Do(ctx, func() error {
		query := `
			INSERT INTO items (guid, title, link, description, image_url, category, published, source)
			VALUES (:guid, :title, :link, :description, :image_url, :category, :published, :source)
			ON CONFLICT(guid) DO NOTHING
		`
		result, err := a.db.NamedExecContext(ctx, query, itemSQL{
			GUID:        item.GUID,
			Title:       item.Title,
			Link:        item.Link,
			Description: item.Description,
			ImageURL:    item.ImageURL,
			Category:    item.Category,
			Published:   item.Published,
			Source:      item.Source,
		})
		if err != nil {
			if isLockError(err) {
				return err // retry
			}
			return &criticalError{err: fmt.Errorf("insert item: %w", err)}
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return &criticalError{err: fmt.Errorf("get rows affected: %w", err)}
		}
		inserted = rows > 0
		return nil
	})
	return inserted, err
}
