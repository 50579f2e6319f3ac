// Package exporters renders parsed books into markdown notes.
package exporters

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/eitchtee/Kindle2Markdown/internal/clippings"
)

// MarkdownExporter writes one Obsidian-flavoured markdown note per book
// into OutputDir. CoverPaths maps book IDs to local cover files and may be
// nil when cover enrichment is disabled.
type MarkdownExporter struct {
	OutputDir  string
	CoverPaths map[string]string
}

func NewMarkdownExporter(outputDir string) *MarkdownExporter {
	return &MarkdownExporter{OutputDir: outputDir}
}

var invalidFilenameChars = regexp.MustCompile(`[\\/*?:"<>|]`)

// frontmatter is the YAML header of a book note.
type frontmatter struct {
	Cover        string   `yaml:"cover,omitempty"`
	Book         string   `yaml:"book"`
	Authors      []string `yaml:"authors,omitempty"`
	Clippings    int      `yaml:"clippings"`
	LastClipping string   `yaml:"last_clipping,omitempty"`
}

// Export writes every book to its own markdown file. A failing book is
// counted and skipped, never fatal.
func (e *MarkdownExporter) Export(books []clippings.Book) (ExportResult, error) {
	if err := os.MkdirAll(e.OutputDir, 0755); err != nil {
		return ExportResult{}, fmt.Errorf("create output dir: %w", err)
	}

	var result ExportResult
	for _, book := range books {
		content, err := GenerateMarkdown(book, e.coverFor(book))
		if err != nil {
			result.BooksFailed++
			continue
		}

		path := filepath.Join(e.OutputDir, Filename(book))
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			result.BooksFailed++
			continue
		}

		result.BooksProcessed++
		result.ClippingsProcessed += len(book.Clippings)
	}

	return result, nil
}

func (e *MarkdownExporter) coverFor(book clippings.Book) string {
	if e.CoverPaths == nil {
		return ""
	}
	return e.CoverPaths[book.ID()]
}

// Filename returns the note filename for a book, stripped of characters
// that are invalid on common filesystems.
func Filename(book clippings.Book) string {
	name := book.Title
	if author := book.PrimaryAuthor(); author != "" {
		name = fmt.Sprintf("%s - %s", book.Title, author)
	}
	return invalidFilenameChars.ReplaceAllString(name, "") + ".md"
}

// GenerateMarkdown renders a single book note: YAML frontmatter followed by
// one quote callout per clipping, in chronological order.
func GenerateMarkdown(book clippings.Book, coverPath string) (string, error) {
	entries := make([]clippings.Clipping, len(book.Clippings))
	copy(entries, book.Clippings)

	// Chronological body; untimestamped entries keep their file order at
	// the front.
	sort.SliceStable(entries, func(i, j int) bool {
		ti, tj := entries[i].AddedAt, entries[j].AddedAt
		if ti == nil || tj == nil {
			return tj != nil
		}
		return ti.Before(*tj)
	})

	fm := frontmatter{
		Cover:     coverPath,
		Book:      book.Title,
		Authors:   book.Authors,
		Clippings: len(entries),
	}
	if len(entries) > 0 {
		if last := entries[len(entries)-1].AddedAt; last != nil {
			fm.LastClipping = last.Format("2006-01-02")
		}
	}

	header, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}

	var builder strings.Builder
	builder.WriteString("---\n")
	builder.Write(header)
	builder.WriteString("---\n")

	for _, entry := range entries {
		builder.WriteString("\n")
		builder.WriteString(renderClipping(entry))
	}

	return builder.String(), nil
}

// renderClipping renders one clipping as an Obsidian quote callout headed
// by its page, position and timestamp.
func renderClipping(entry clippings.Clipping) string {
	var titleParts []string
	if entry.Page != nil {
		titleParts = append(titleParts, fmt.Sprintf("Page %d", *entry.Page))
	}
	if entry.Position != nil {
		if entry.Position.Start == entry.Position.End {
			titleParts = append(titleParts, fmt.Sprintf("(%d)", entry.Position.Start))
		} else {
			titleParts = append(titleParts, fmt.Sprintf("(%d-%d)", entry.Position.Start, entry.Position.End))
		}
	}
	if entry.AddedAt != nil {
		titleParts = append(titleParts, "@ "+entry.AddedAt.Format("2006-01-02 15:04"))
	}
	if entry.Kind == clippings.KindNote {
		titleParts = append(titleParts, "(note)")
	}
	if entry.Kind == clippings.KindBookmark {
		titleParts = append(titleParts, "(bookmark)")
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "> [!quote]+ %s\n", strings.Join(titleParts, " "))
	if entry.Content != "" {
		fmt.Fprintf(&builder, "> %s\n", entry.Content)
	}
	return builder.String()
}
