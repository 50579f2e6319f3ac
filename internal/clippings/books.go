package clippings

import (
	"sort"
	"strings"
)

// GroupIntoBooks groups entries by title and author set, preserving the
// source-file order of both books and the clippings within each book.
// Matching is case-insensitive; the first-seen spelling of the title and
// author list is kept for display.
func GroupIntoBooks(entries []Clipping) []Book {
	bookMap := make(map[string]*Book)
	var bookOrder []string

	for _, entry := range entries {
		key := bookKey(entry.BookTitle, entry.Authors)

		book, exists := bookMap[key]
		if !exists {
			book = &Book{
				Title:   entry.BookTitle,
				Authors: entry.Authors,
			}
			bookMap[key] = book
			bookOrder = append(bookOrder, key)
		}

		book.Clippings = append(book.Clippings, entry)
	}

	books := make([]Book, 0, len(bookOrder))
	for _, key := range bookOrder {
		books = append(books, *bookMap[key])
	}
	return books
}

// bookKey builds the grouping key: lowercased trimmed title plus the
// author names as an unordered, case-insensitive set.
func bookKey(title string, authors []string) string {
	normalized := make([]string, len(authors))
	for i, a := range authors {
		normalized[i] = strings.ToLower(strings.TrimSpace(a))
	}
	sort.Strings(normalized)

	return strings.ToLower(strings.TrimSpace(title)) + "|" + strings.Join(normalized, ";")
}
