// Package services wires the parsing core to its collaborators: cover
// enrichment, markdown export and the library database.
package services

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/eitchtee/Kindle2Markdown/internal/clippings"
	"github.com/eitchtee/Kindle2Markdown/internal/covers"
	"github.com/eitchtee/Kindle2Markdown/internal/database"
	"github.com/eitchtee/Kindle2Markdown/internal/exporters"
)

// ConvertService runs the whole pipeline: read the clippings file, parse,
// optionally deduplicate, optionally fetch covers, export markdown and
// optionally persist into the library database.
type ConvertService struct {
	Parser      *clippings.Parser
	OutputDir   string
	Deduplicate bool

	// Optional collaborators; nil disables the corresponding step.
	CoverCache   *covers.Cache
	CoverWorkers int
	DB           *database.Database
}

// Summary reports what a single conversion run did.
type Summary struct {
	Books           int
	Clippings       int
	Duplicates      int
	CoversFetched   int
	HighlightsSaved int
	Export          exporters.ExportResult
}

// Convert runs the pipeline for one clippings file.
func (s *ConvertService) Convert(ctx context.Context, clippingsPath string) (Summary, error) {
	file, err := os.Open(clippingsPath)
	if err != nil {
		return Summary{}, fmt.Errorf("open clippings file: %w", err)
	}
	defer file.Close()

	books, err := s.Parser.Parse(file)
	if err != nil {
		return Summary{}, fmt.Errorf("parse clippings: %w", err)
	}

	var summary Summary
	summary.Books = len(books)

	for i := range books {
		before := len(books[i].Clippings)
		if s.Deduplicate {
			books[i].Clippings = clippings.Deduplicate(books[i].Clippings)
		}
		summary.Duplicates += before - len(books[i].Clippings)
		summary.Clippings += len(books[i].Clippings)
	}

	var coverPaths map[string]string
	if s.CoverCache != nil {
		coverPaths = covers.FetchAll(ctx, s.CoverCache, books, s.CoverWorkers)
		summary.CoversFetched = len(coverPaths)
	}

	exporter := &exporters.MarkdownExporter{
		OutputDir:  s.OutputDir,
		CoverPaths: coverPaths,
	}
	result, err := exporter.Export(books)
	if err != nil {
		return summary, fmt.Errorf("export markdown: %w", err)
	}
	summary.Export = result

	if s.DB != nil {
		for _, book := range books {
			inserted, err := s.DB.SaveBook(book)
			if err != nil {
				log.Printf("Failed to save %q: %v", book.Title, err)
				continue
			}
			summary.HighlightsSaved += inserted
		}
	}

	return summary, nil
}
