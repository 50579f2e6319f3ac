package covers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubFinder counts lookups and returns a fixed URL or error.
type stubFinder struct {
	url   string
	err   error
	calls int
}

func (s *stubFinder) FindCoverURL(ctx context.Context, title, author string) (string, error) {
	s.calls++
	return s.url, s.err
}

func imageServer(t *testing.T, body []byte, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write(body)
	}))
}

func TestCache_GetCover(t *testing.T) {
	t.Run("downloads and caches the cover", func(t *testing.T) {
		server := imageServer(t, []byte("jpeg-bytes"), http.StatusOK)
		defer server.Close()

		dir := t.TempDir()
		finder := &stubFinder{url: server.URL + "/cover.jpg"}
		cache, err := NewCache(dir, finder)
		require.NoError(t, err)

		path, err := cache.GetCover(context.Background(), "abc123", "Dune", "Frank Herbert")
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(dir, "cover_abc123.jpg"), path)
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, []byte("jpeg-bytes"), content)
	})

	t.Run("second lookup hits the disk, not the finder", func(t *testing.T) {
		server := imageServer(t, []byte("jpeg-bytes"), http.StatusOK)
		defer server.Close()

		finder := &stubFinder{url: server.URL + "/cover.jpg"}
		cache, err := NewCache(t.TempDir(), finder)
		require.NoError(t, err)

		_, err = cache.GetCover(context.Background(), "abc123", "Dune", "")
		require.NoError(t, err)
		_, err = cache.GetCover(context.Background(), "abc123", "Dune", "")
		require.NoError(t, err)

		assert.Equal(t, 1, finder.calls)
	})

	t.Run("requires key and title", func(t *testing.T) {
		cache, err := NewCache(t.TempDir(), &stubFinder{})
		require.NoError(t, err)

		_, err = cache.GetCover(context.Background(), "", "Dune", "")
		assert.Error(t, err)

		_, err = cache.GetCover(context.Background(), "abc", "", "")
		assert.Error(t, err)
	})

	t.Run("propagates finder errors", func(t *testing.T) {
		finder := &stubFinder{err: fmt.Errorf("no results")}
		cache, err := NewCache(t.TempDir(), finder)
		require.NoError(t, err)

		_, err = cache.GetCover(context.Background(), "abc", "Dune", "")
		assert.ErrorContains(t, err, "no results")
	})

	t.Run("does not cache failed downloads", func(t *testing.T) {
		server := imageServer(t, nil, http.StatusNotFound)
		defer server.Close()

		dir := t.TempDir()
		finder := &stubFinder{url: server.URL + "/missing.jpg"}
		cache, err := NewCache(dir, finder)
		require.NoError(t, err)

		_, err = cache.GetCover(context.Background(), "abc", "Dune", "")
		assert.Error(t, err)

		_, statErr := os.Stat(filepath.Join(dir, "cover_abc.jpg"))
		assert.True(t, os.IsNotExist(statErr))

		// The failed attempt must leave no temp files behind either.
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestNewCache(t *testing.T) {
	t.Run("creates the cache directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "covers")
		cache, err := NewCache(dir, &stubFinder{})
		require.NoError(t, err)

		assert.Equal(t, dir, cache.CacheDir())
		_, err = os.Stat(dir)
		assert.NoError(t, err)
	})
}
