package covers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Finder resolves a book's title and primary author to a cover image URL.
type Finder interface {
	FindCoverURL(ctx context.Context, title, author string) (string, error)
}

// Cache handles local caching of book cover images. Covers are keyed by the
// book's stable ID, so repeated conversions hit the disk, not the network.
type Cache struct {
	cacheDir   string
	finder     Finder
	httpClient *http.Client
}

// NewCache creates a cover cache at the given directory.
func NewCache(cacheDir string, finder Finder) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	return &Cache{
		cacheDir: cacheDir,
		finder:   finder,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// GetCover returns the local path of the cover for a book, fetching and
// caching it on first use. key is the book's stable ID.
func (c *Cache) GetCover(ctx context.Context, key, title, author string) (string, error) {
	if key == "" || title == "" {
		return "", fmt.Errorf("book key and title are required")
	}

	cachePath := filepath.Join(c.cacheDir, coverFilename(key))
	if _, err := os.Stat(cachePath); err == nil {
		return cachePath, nil
	}

	coverURL, err := c.finder.FindCoverURL(ctx, title, author)
	if err != nil {
		return "", err
	}

	if err := c.fetchAndCache(ctx, coverURL, cachePath); err != nil {
		return "", err
	}

	return cachePath, nil
}

// CacheDir returns the cache directory path.
func (c *Cache) CacheDir() string {
	return c.cacheDir
}

func coverFilename(key string) string {
	return fmt.Sprintf("cover_%s.jpg", key)
}

// fetchAndCache downloads a cover image and saves it atomically.
func (c *Cache) fetchAndCache(ctx context.Context, url, cachePath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch cover: status %d", resp.StatusCode)
	}

	// Temp file in the same directory so the rename is atomic.
	tmpFile, err := os.CreateTemp(c.cacheDir, "cover_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath) // Clean up if we didn't rename
	}()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		return err
	}
	tmpFile.Close()

	return os.Rename(tmpPath, cachePath)
}
