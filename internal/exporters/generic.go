package exporters

import "github.com/eitchtee/Kindle2Markdown/internal/clippings"

// BookExporter writes a set of parsed books to some destination.
type BookExporter interface {
	Export(books []clippings.Book) (ExportResult, error)
}

type ExportResult struct {
	BooksProcessed     int `json:"books_processed"`
	ClippingsProcessed int `json:"clippings_processed"`
	BooksFailed        int `json:"books_failed"`
}
