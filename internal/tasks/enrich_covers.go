package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/eitchtee/Kindle2Markdown/internal/covers"
	"github.com/eitchtee/Kindle2Markdown/internal/database"
)

// EnrichCoverTask fetches and caches the cover for one stored book.
type EnrichCoverTask struct {
	BookID uint `json:"book_id"`
}

// Config returns the queue configuration for cover enrichment tasks.
func (t EnrichCoverTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "enrich_cover",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// EnrichCoverProcessor creates a processor function for EnrichCoverTask.
func EnrichCoverProcessor(db *database.Database, cache *covers.Cache) backlite.QueueProcessor[EnrichCoverTask] {
	return func(ctx context.Context, task EnrichCoverTask) error {
		if cache == nil {
			return fmt.Errorf("cover cache not configured")
		}

		book, err := db.GetBookByID(task.BookID)
		if err != nil {
			return fmt.Errorf("load book %d: %w", task.BookID, err)
		}

		path, err := cache.GetCover(ctx, book.Key, book.Title, book.Author)
		if err != nil {
			return fmt.Errorf("fetch cover for %q: %w", book.Title, err)
		}

		if err := db.SetCoverPath(book.ID, path); err != nil {
			return fmt.Errorf("store cover path for %q: %w", book.Title, err)
		}

		log.Printf("[TASK] Cached cover for book %d (%s) at %s", book.ID, book.Title, path)
		return nil
	}
}

// NewEnrichCoverQueue creates a backlite queue for cover enrichment tasks.
// A non-zero retention overrides the default completed-task retention.
func NewEnrichCoverQueue(db *database.Database, cache *covers.Cache, retention time.Duration) backlite.Queue {
	q := backlite.NewQueue(EnrichCoverProcessor(db, cache))
	if retention > 0 {
		q.Config().Retention.Duration = retention
	}
	return q
}
