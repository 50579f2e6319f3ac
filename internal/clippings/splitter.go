package clippings

import (
	"strings"
	"unicode/utf8"
)

// blockSeparator delimits entries in My Clippings.txt. Devices write it on
// its own line, sometimes with a trailing \r.
const blockSeparator = "=========="

// SplitBlocks splits raw file content into entry blocks. Blocks are trimmed
// of surrounding whitespace and blank segments are skipped, so a trailing
// separator produces no empty final block. Malformed but non-empty segments
// are passed through for the entry parser to judge. Empty input yields no
// blocks. Returns ErrInputDecode if the content is not valid UTF-8.
func SplitBlocks(content string) ([]string, error) {
	if !utf8.ValidString(content) {
		return nil, ErrInputDecode
	}
	content = strings.TrimPrefix(content, "\ufeff")

	var blocks []string
	var current []string

	flush := func() {
		block := strings.TrimSpace(strings.Join(current, "\n"))
		current = nil
		if block != "" {
			blocks = append(blocks, block)
		}
	}

	for _, line := range strings.Split(content, "\n") {
		if strings.TrimRight(line, " \t\r") == blockSeparator {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()

	return blocks, nil
}
