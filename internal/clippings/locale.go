package clippings

import (
	"fmt"
	"regexp"
	"strings"
)

// Locale maps the human-language phrases a Kindle firmware writes into the
// metadata line to their semantic markers. Extraction logic is entirely
// table-driven: adding a locale means adding a table, not code.
type Locale struct {
	Name string

	// KindPhrases are matched case-insensitively anywhere in the metadata
	// line; the earliest match in the line decides the entry kind.
	KindPhrases map[Kind][]string

	// Markers preceding the page number, the position range and the
	// timestamp, e.g. "page", "location", "added on".
	PageMarkers     []string
	PositionMarkers []string
	AddedMarkers    []string

	// DateFormats are time.Parse reference layouts tried in order against
	// the text following an added marker. The first successful parse wins.
	DateFormats []string

	// AuthorJoinWords are language-specific words that join author names
	// in the title line, in addition to ";" and "&".
	AuthorJoinWords []string
}

// English is the locale shipped by default. Phrase and date variants are the
// ones observed across Kindle firmware generations.
func English() Locale {
	return Locale{
		Name: "en",
		KindPhrases: map[Kind][]string{
			KindHighlight: {"your highlight"},
			KindNote:      {"your note"},
			KindBookmark:  {"your bookmark"},
		},
		PageMarkers:     []string{"page"},
		PositionMarkers: []string{"location", "position"},
		AddedMarkers:    []string{"added on"},
		DateFormats: []string{
			"Monday, January 2, 2006 3:04:05 PM",
			"Monday, January 2, 2006 15:04:05",
			"Monday, 2 January 2006 3:04:05 PM",
			"Monday, 2 January 2006 15:04:05",
		},
		AuthorJoinWords: []string{"and"},
	}
}

// builtinLocales maps a locale name to its constructor.
var builtinLocales = map[string]func() Locale{
	"en": English,
}

// LocaleByName returns the locale registered under the given name,
// falling back to English for unknown names.
func LocaleByName(name string) Locale {
	if build, ok := builtinLocales[strings.ToLower(strings.TrimSpace(name))]; ok {
		return build()
	}
	return English()
}

// matchers holds the regular expressions compiled once from a Locale.
type matchers struct {
	page      *regexp.Regexp
	position  *regexp.Regexp
	added     *regexp.Regexp
	authorSep *regexp.Regexp
}

func compileLocale(loc Locale) matchers {
	return matchers{
		page:      markerNumberPattern(loc.PageMarkers),
		position:  markerRangePattern(loc.PositionMarkers),
		added:     addedPattern(loc.AddedMarkers),
		authorSep: authorSeparatorPattern(loc.AuthorJoinWords),
	}
}

func quoteAlternatives(markers []string) string {
	quoted := make([]string, len(markers))
	for i, m := range markers {
		quoted[i] = regexp.QuoteMeta(strings.ToLower(m))
	}
	return strings.Join(quoted, "|")
}

// "page 12", "página 234"
func markerNumberPattern(markers []string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`(?i)(?:%s)\s+(\d+)`, quoteAlternatives(markers)))
}

// "location 64-64", "position 100", "posição 3631-3632"
func markerRangePattern(markers []string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`(?i)(?:%s)\s+(\d+)(?:\s*-\s*(\d+))?`, quoteAlternatives(markers)))
}

// Everything after the added marker (and optional punctuation) is the date.
func addedPattern(markers []string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`(?i)(?:%s)\s*[:,]?\s*(.+)$`, quoteAlternatives(markers)))
}

// ";", "&" and the locale's join words separate author names.
func authorSeparatorPattern(joinWords []string) *regexp.Regexp {
	pattern := `\s*;\s*|\s*&\s*`
	for _, w := range joinWords {
		pattern += fmt.Sprintf(`|\s+(?i:%s)\s+`, regexp.QuoteMeta(w))
	}
	return regexp.MustCompile(pattern)
}
