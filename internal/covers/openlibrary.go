// Package covers resolves and caches book cover images from OpenLibrary.
package covers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const userAgent = "Kindle2Markdown/1.0 (https://github.com/eitchtee/Kindle2Markdown)"

// OpenLibraryClient looks up cover image URLs via the OpenLibrary search
// API, rate limited to one request per second.
type OpenLibraryClient struct {
	httpClient  *http.Client
	baseURL     string
	coversURL   string
	rateLimiter *rateLimiter
}

type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

func (r *rateLimiter) wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	since := time.Since(r.lastCall)
	if since < r.interval {
		time.Sleep(r.interval - since)
	}
	r.lastCall = time.Now()
}

// NewOpenLibraryClient creates a rate-limited OpenLibrary client.
func NewOpenLibraryClient() *OpenLibraryClient {
	return &OpenLibraryClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:     "https://openlibrary.org",
		coversURL:   "https://covers.openlibrary.org",
		rateLimiter: newRateLimiter(time.Second),
	}
}

// FindCoverURL resolves (title, author) to a cover image URL, or an error
// when no plausible cover exists. The author may be empty.
func (c *OpenLibraryClient) FindCoverURL(ctx context.Context, title, author string) (string, error) {
	if title == "" {
		return "", fmt.Errorf("title is required")
	}

	c.rateLimiter.wait()

	q := title
	if author != "" {
		q = fmt.Sprintf("%s %s", title, author)
	}

	searchURL := fmt.Sprintf("%s/search.json?q=%s&limit=5", c.baseURL, url.QueryEscape(q))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("search books: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var searchResult openLibrarySearchResult
	if err := json.NewDecoder(resp.Body).Decode(&searchResult); err != nil {
		return "", fmt.Errorf("decode search response: %w", err)
	}

	if len(searchResult.Docs) == 0 {
		return "", fmt.Errorf("no results found for: %s", title)
	}

	best := c.findBestMatch(searchResult.Docs, title, author)

	switch {
	case len(best.ISBN) > 0:
		return fmt.Sprintf("%s/b/isbn/%s-L.jpg", c.coversURL, best.ISBN[0]), nil
	case best.CoverI != 0:
		return fmt.Sprintf("%s/b/id/%d-L.jpg", c.coversURL, best.CoverI), nil
	default:
		return "", fmt.Errorf("no cover available for: %s", title)
	}
}

// findBestMatch scores search results: exact title and author matches win,
// covers and ISBNs break ties.
func (c *OpenLibraryClient) findBestMatch(docs []openLibrarySearchDoc, title, author string) *openLibrarySearchDoc {
	titleLower := strings.ToLower(title)
	authorLower := strings.ToLower(author)

	var bestMatch *openLibrarySearchDoc
	bestScore := -1

	for i := range docs {
		doc := &docs[i]
		score := 0

		if strings.ToLower(doc.Title) == titleLower {
			score += 10
		} else if strings.Contains(strings.ToLower(doc.Title), titleLower) {
			score += 5
		}

		if author != "" && len(doc.AuthorName) > 0 {
			for _, docAuthor := range doc.AuthorName {
				if strings.ToLower(docAuthor) == authorLower {
					score += 10
					break
				} else if strings.Contains(strings.ToLower(docAuthor), authorLower) {
					score += 5
					break
				}
			}
		}

		if len(doc.ISBN) > 0 {
			score += 2
		}
		if doc.CoverI != 0 {
			score += 1
		}

		if score > bestScore {
			bestScore = score
			bestMatch = doc
		}
	}

	if bestMatch == nil {
		bestMatch = &docs[0]
	}

	return bestMatch
}

// OpenLibrary API response types (internal)

type openLibrarySearchResult struct {
	NumFound int                    `json:"numFound"`
	Docs     []openLibrarySearchDoc `json:"docs"`
}

type openLibrarySearchDoc struct {
	Key        string   `json:"key"`
	Title      string   `json:"title"`
	AuthorName []string `json:"author_name"`
	ISBN       []string `json:"isbn"`
	CoverI     int      `json:"cover_i"`
}
