// Package clippings parses Kindle "My Clippings.txt" exports into
// per-book collections of highlights, notes and bookmarks.
package clippings

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"sort"
	"strings"
	"time"
)

// Kind of a single clipping entry.
type Kind string

const (
	KindHighlight Kind = "highlight"
	KindNote      Kind = "note"
	KindBookmark  Kind = "bookmark"
)

var (
	// ErrMalformedEntry marks a block with fewer than two non-empty lines.
	// Such entries are dropped; callers may log them.
	ErrMalformedEntry = errors.New("malformed clipping entry")

	// ErrInputDecode is returned when the input is not valid UTF-8 text.
	ErrInputDecode = errors.New("input is not valid UTF-8")
)

// PositionRange is a device character-offset range. Start == End when the
// source gave a single position. End is always >= Start.
type PositionRange struct {
	Start int
	End   int
}

// Overlaps reports whether two inclusive ranges intersect.
func (r PositionRange) Overlaps(other PositionRange) bool {
	return r.Start <= other.End && other.Start <= r.End
}

// Clipping is one parsed entry. All fields are derived from a single source
// block; a Clipping is never mutated after parsing. Page, Position and
// AddedAt are nil when the source did not carry them.
type Clipping struct {
	BookTitle string
	Authors   []string
	Kind      Kind
	Page      *int
	Position  *PositionRange
	AddedAt   *time.Time
	Content   string
}

// Book groups the clippings of a single title/author combination in
// source-file order.
type Book struct {
	Title     string
	Authors   []string
	Clippings []Clipping
}

// PrimaryAuthor returns the first author, or an empty string. This is the
// lookup key handed to cover fetchers.
func (b Book) PrimaryAuthor() string {
	if len(b.Authors) == 0 {
		return ""
	}
	return b.Authors[0]
}

// ID returns a stable hex identifier derived from the normalized title and
// author set, used for cover cache filenames and library keys.
func (b Book) ID() string {
	authors := make([]string, len(b.Authors))
	for i, a := range b.Authors {
		authors[i] = strings.ToLower(strings.TrimSpace(a))
	}
	sort.Strings(authors)

	identifier := strings.ToLower(strings.TrimSpace(b.Title)) + "-" + strings.Join(authors, ";")
	sum := sha1.Sum([]byte(identifier))
	return hex.EncodeToString(sum[:])
}
