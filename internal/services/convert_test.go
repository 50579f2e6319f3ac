package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eitchtee/Kindle2Markdown/internal/clippings"
	"github.com/eitchtee/Kindle2Markdown/internal/database"
)

const sampleClippings = `The Go Programming Language (Alan Donovan)
- Your Highlight on page 12 | location 100-105 | Added on Monday, 1 January 2024 10:00:00

Channels orchestrate; mutexes serialize.
==========
The Go Programming Language (Alan Donovan)
- Your Highlight on page 12 | location 102-110 | Added on Tuesday, 2 January 2024 11:00:00

Channels orchestrate; mutexes serialize. Extended version.
==========
Dune (Herbert, Frank)
- Your Note on page 50 | location 700 | Added on Wednesday, 3 January 2024 09:15:00

Fear is the mind-killer.
==========
`

func writeClippingsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "My Clippings.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestConvertService_Convert(t *testing.T) {
	t.Run("parses, deduplicates and exports", func(t *testing.T) {
		outputDir := t.TempDir()
		service := &ConvertService{
			Parser:      clippings.NewParser(),
			OutputDir:   outputDir,
			Deduplicate: true,
		}

		summary, err := service.Convert(context.Background(), writeClippingsFile(t, sampleClippings))
		require.NoError(t, err)

		assert.Equal(t, 2, summary.Books)
		assert.Equal(t, 2, summary.Clippings)
		assert.Equal(t, 1, summary.Duplicates)
		assert.Equal(t, 2, summary.Export.BooksProcessed)

		content, err := os.ReadFile(filepath.Join(outputDir, "The Go Programming Language - Alan Donovan.md"))
		require.NoError(t, err)
		// The later, extended highlight survives deduplication.
		assert.Contains(t, string(content), "Extended version.")
		assert.NotContains(t, string(content), "(100-105)")

		_, err = os.Stat(filepath.Join(outputDir, "Dune - Frank Herbert.md"))
		assert.NoError(t, err)
	})

	t.Run("keeps overlapping highlights when dedup is off", func(t *testing.T) {
		service := &ConvertService{
			Parser:    clippings.NewParser(),
			OutputDir: t.TempDir(),
		}

		summary, err := service.Convert(context.Background(), writeClippingsFile(t, sampleClippings))
		require.NoError(t, err)

		assert.Equal(t, 3, summary.Clippings)
		assert.Equal(t, 0, summary.Duplicates)
	})

	t.Run("persists books when a database is attached", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "library.db")
		db, err := database.NewDatabase(dbPath)
		require.NoError(t, err)
		defer db.Close()

		service := &ConvertService{
			Parser:      clippings.NewParser(),
			OutputDir:   t.TempDir(),
			Deduplicate: true,
			DB:          db,
		}

		path := writeClippingsFile(t, sampleClippings)

		summary, err := service.Convert(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, 2, summary.HighlightsSaved)

		// Re-running the same file saves nothing new.
		summary, err = service.Convert(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, 0, summary.HighlightsSaved)

		books, err := db.GetAllBooks()
		require.NoError(t, err)
		assert.Len(t, books, 2)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		service := &ConvertService{
			Parser:    clippings.NewParser(),
			OutputDir: t.TempDir(),
		}

		_, err := service.Convert(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
		assert.Error(t, err)
	})
}
