package clippings

import (
	"strings"
	"testing"
)

func clip(title string, authors []string, start, end int) Clipping {
	return Clipping{
		BookTitle: title,
		Authors:   authors,
		Kind:      KindHighlight,
		Position:  &PositionRange{Start: start, End: end},
		Content:   "text",
	}
}

func TestGroupIntoBooks_FirstSeenOrder(t *testing.T) {
	entries := []Clipping{
		clip("Book A", []string{"Jane Doe"}, 1, 2),
		clip("Book B", []string{"John Smith"}, 3, 4),
		clip("Book A", []string{"Jane Doe"}, 5, 6),
	}

	books := GroupIntoBooks(entries)
	if len(books) != 2 {
		t.Fatalf("expected 2 books, got %d", len(books))
	}
	if books[0].Title != "Book A" || books[1].Title != "Book B" {
		t.Errorf("book order not preserved: %s, %s", books[0].Title, books[1].Title)
	}
	if len(books[0].Clippings) != 2 {
		t.Errorf("expected 2 clippings for Book A, got %d", len(books[0].Clippings))
	}
	if books[0].Clippings[0].Position.Start != 1 || books[0].Clippings[1].Position.Start != 5 {
		t.Errorf("clipping order not preserved within book")
	}
}

func TestGroupIntoBooks_CaseInsensitiveMatching(t *testing.T) {
	entries := []Clipping{
		clip("Book A", []string{"Jane Doe"}, 1, 2),
		clip("book a", []string{"jane doe"}, 3, 4),
	}

	books := GroupIntoBooks(entries)
	if len(books) != 1 {
		t.Fatalf("expected 1 book despite casing differences, got %d", len(books))
	}
	// First-seen spelling wins for display.
	if books[0].Title != "Book A" {
		t.Errorf("expected first-seen title 'Book A', got '%s'", books[0].Title)
	}
	if books[0].Authors[0] != "Jane Doe" {
		t.Errorf("expected first-seen author 'Jane Doe', got '%s'", books[0].Authors[0])
	}
}

func TestGroupIntoBooks_AuthorSetUnordered(t *testing.T) {
	entries := []Clipping{
		clip("Book A", []string{"Jane Doe", "John Smith"}, 1, 2),
		clip("Book A", []string{"John Smith", "Jane Doe"}, 3, 4),
	}

	books := GroupIntoBooks(entries)
	if len(books) != 1 {
		t.Fatalf("expected 1 book for reordered author list, got %d", len(books))
	}
}

func TestGroupIntoBooks_DifferentAuthorsSplitBooks(t *testing.T) {
	entries := []Clipping{
		clip("Book A", []string{"Jane Doe"}, 1, 2),
		clip("Book A", []string{"John Smith"}, 3, 4),
	}

	books := GroupIntoBooks(entries)
	if len(books) != 2 {
		t.Fatalf("expected 2 books for same title with different authors, got %d", len(books))
	}
}

func TestBook_PrimaryAuthor(t *testing.T) {
	b := Book{Title: "X", Authors: []string{"Jane Doe", "John Smith"}}
	if b.PrimaryAuthor() != "Jane Doe" {
		t.Errorf("expected 'Jane Doe', got '%s'", b.PrimaryAuthor())
	}

	empty := Book{Title: "X"}
	if empty.PrimaryAuthor() != "" {
		t.Errorf("expected empty primary author, got '%s'", empty.PrimaryAuthor())
	}
}

func TestBook_ID_StableAndAuthorOrderIndependent(t *testing.T) {
	a := Book{Title: "Book A", Authors: []string{"Jane Doe", "John Smith"}}
	b := Book{Title: "book a", Authors: []string{"John Smith", "Jane Doe"}}

	if a.ID() != b.ID() {
		t.Errorf("expected identical IDs for the same book, got %s and %s", a.ID(), b.ID())
	}
	if len(a.ID()) != 40 || strings.ToLower(a.ID()) != a.ID() {
		t.Errorf("expected lowercase hex sha1, got %s", a.ID())
	}

	other := Book{Title: "Book B", Authors: []string{"Jane Doe"}}
	if a.ID() == other.ID() {
		t.Errorf("different books must not share an ID")
	}
}
