package clippings

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Title with author: "Book Title (Author Name)". The author group is
// anchored to the end of the line, so for nested parentheses the last
// group wins. Some books carry no author at all.
var titleAuthorPattern = regexp.MustCompile(`^(.+?)\s*\(([^)]+)\)\s*$`)

// Parser parses the Kindle My Clippings.txt format for a single locale.
// A Parser is stateless across calls and safe to reuse.
type Parser struct {
	locale   Locale
	matchers matchers
}

// NewParser returns a parser for the default English locale.
func NewParser() *Parser {
	return NewParserWithLocale(English())
}

// NewParserWithLocale returns a parser whose phrase tables and date formats
// come from the given locale.
func NewParserWithLocale(loc Locale) *Parser {
	return &Parser{locale: loc, matchers: compileLocale(loc)}
}

// Parse reads a whole clippings file and returns its books in first-seen
// order. Malformed entries are skipped; an empty file yields no books.
func (p *Parser) Parse(r io.Reader) ([]Book, error) {
	entries, err := p.ParseEntries(r)
	if err != nil {
		return nil, err
	}
	return GroupIntoBooks(entries), nil
}

// ParseEntries reads a whole clippings file and returns the individual
// entries in source order. Blocks with fewer than two non-empty lines are
// dropped; entries with unrecognizable metadata are retained with absent
// fields rather than lost.
func (p *Parser) ParseEntries(r io.Reader) ([]Clipping, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read clippings: %w", err)
	}

	blocks, err := SplitBlocks(string(raw))
	if err != nil {
		return nil, err
	}

	var entries []Clipping
	for _, block := range blocks {
		entry, err := p.parseBlock(block)
		if err != nil {
			continue
		}
		entries = append(entries, *entry)
	}

	return entries, nil
}

// parseBlock parses a single entry block: title line, metadata line, blank
// line, content lines.
func (p *Parser) parseBlock(block string) (*Clipping, error) {
	lines := strings.Split(block, "\n")

	nonEmpty := 0
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			nonEmpty++
		}
	}
	if len(lines) < 2 || nonEmpty < 2 {
		return nil, ErrMalformedEntry
	}

	titleLine := strings.TrimSpace(lines[0])
	if titleLine == "" {
		return nil, ErrMalformedEntry
	}
	title, authors := p.parseTitleAuthors(titleLine)

	meta := p.extractMetadata(strings.TrimSpace(lines[1]))

	// Content: every non-blank line after the metadata line, joined with a
	// single space. Bookmarks legitimately have none.
	var contentParts []string
	for _, line := range lines[2:] {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			contentParts = append(contentParts, trimmed)
		}
	}
	content := strings.Join(contentParts, " ")

	kind := meta.kind
	if !meta.kindFound {
		if content == "" {
			kind = KindBookmark
		} else {
			kind = KindHighlight
		}
	}

	return &Clipping{
		BookTitle: title,
		Authors:   authors,
		Kind:      kind,
		Page:      meta.page,
		Position:  meta.position,
		AddedAt:   meta.addedAt,
		Content:   content,
	}, nil
}

func (p *Parser) parseTitleAuthors(line string) (string, []string) {
	matches := titleAuthorPattern.FindStringSubmatch(line)
	if len(matches) != 3 {
		// No author in parentheses: the whole line is the title.
		return strings.TrimSpace(line), nil
	}

	title := strings.TrimSpace(matches[1])
	authorsRaw := strings.TrimSpace(matches[2])

	// Some exports repeat the author: "Book Title - Author (Author)".
	if strings.HasSuffix(title, " - "+authorsRaw) {
		title = strings.TrimSpace(strings.TrimSuffix(title, " - "+authorsRaw))
	}

	return title, p.NormalizeAuthors(authorsRaw)
}

type metadataFields struct {
	kind      Kind
	kindFound bool
	page      *int
	position  *PositionRange
	addedAt   *time.Time
}

// extractMetadata pulls kind, page, position range and timestamp out of the
// metadata line using the locale tables. Missing fields stay nil; an
// entirely unrecognizable line yields empty fields, never an error.
func (p *Parser) extractMetadata(line string) metadataFields {
	var meta metadataFields
	meta.kind, meta.kindFound = p.matchKind(line)
	meta.page = p.matchPage(line)
	meta.position = p.matchPosition(line)
	meta.addedAt = p.matchAddedAt(line)
	return meta
}

// matchKind returns the kind whose phrase appears earliest in the line.
func (p *Parser) matchKind(line string) (Kind, bool) {
	lower := strings.ToLower(line)

	bestIdx := -1
	var bestKind Kind
	for _, kind := range []Kind{KindHighlight, KindNote, KindBookmark} {
		for _, phrase := range p.locale.KindPhrases[kind] {
			idx := strings.Index(lower, strings.ToLower(phrase))
			if idx >= 0 && (bestIdx == -1 || idx < bestIdx) {
				bestIdx = idx
				bestKind = kind
			}
		}
	}
	if bestIdx == -1 {
		return "", false
	}
	return bestKind, true
}

func (p *Parser) matchPage(line string) *int {
	matches := p.matchers.page.FindStringSubmatch(line)
	if len(matches) < 2 {
		return nil
	}
	page, err := strconv.Atoi(matches[1])
	if err != nil {
		return nil
	}
	return &page
}

func (p *Parser) matchPosition(line string) *PositionRange {
	matches := p.matchers.position.FindStringSubmatch(line)
	if len(matches) < 2 {
		return nil
	}

	start, err := strconv.Atoi(matches[1])
	if err != nil {
		return nil
	}

	end := start
	if len(matches) >= 3 && matches[2] != "" {
		if parsed, err := strconv.Atoi(matches[2]); err == nil {
			end = parsed
		}
	}
	if end < start {
		start, end = end, start
	}

	return &PositionRange{Start: start, End: end}
}

func (p *Parser) matchAddedAt(line string) *time.Time {
	matches := p.matchers.added.FindStringSubmatch(line)
	if len(matches) < 2 {
		return nil
	}

	dateStr := strings.TrimSpace(matches[1])
	for _, layout := range p.locale.DateFormats {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return &t
		}
	}
	return nil
}
