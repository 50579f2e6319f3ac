package clippings

import "strings"

// NormalizeAuthors splits a raw author string into canonical "First Last"
// names. Separators are ";", "&" and the locale's join words; a
// comma-containing "Last, First" part is reordered. Empty input yields an
// empty list, never an error, and normalization is idempotent.
func (p *Parser) NormalizeAuthors(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var authors []string
	for _, part := range p.matchers.authorSep.Split(raw, -1) {
		name := normalizeName(part)
		if name == "" {
			continue
		}
		authors = append(authors, name)
	}
	return authors
}

// normalizeName reorders "Last, First" to "First Last". Names with more or
// fewer comma parts are kept verbatim.
func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	if !strings.Contains(name, ",") {
		return name
	}

	parts := strings.Split(name, ",")
	if len(parts) != 2 {
		return name
	}

	first := strings.TrimSpace(parts[1])
	last := strings.TrimSpace(parts[0])
	if first == "" || last == "" {
		return strings.TrimSpace(strings.Trim(name, ","))
	}
	return first + " " + last
}
