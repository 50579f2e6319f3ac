package covers

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/eitchtee/Kindle2Markdown/internal/clippings"
)

// FetchAll prefetches covers for a list of books with up to limit
// concurrent lookups. Covers are best effort: failures are logged and the
// book is simply absent from the returned map, which is keyed by book ID.
func FetchAll(ctx context.Context, cache *Cache, books []clippings.Book, limit int) map[string]string {
	if limit < 1 {
		limit = 1
	}

	var mu sync.Mutex
	paths := make(map[string]string, len(books))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, book := range books {
		book := book
		g.Go(func() error {
			path, err := cache.GetCover(ctx, book.ID(), book.Title, book.PrimaryAuthor())
			if err != nil {
				log.Printf("No cover for %q: %v", book.Title, err)
				return nil
			}
			mu.Lock()
			paths[book.ID()] = path
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; Wait only joins them.
	_ = g.Wait()

	return paths
}
