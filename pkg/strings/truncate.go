package strings

import (
	"strings"
)

// DefaultMaxLen is the default cell width for free text in tables.
const DefaultMaxLen = 60

// minMaxLen leaves room for one character plus "...".
const minMaxLen = 4

// OneLine collapses all whitespace in s to single spaces and cuts the result
// to maxLen runes, ending in "..." when cut. maxLen below 4 is treated as 4.
func OneLine(s string, maxLen int) string {
	if maxLen < minMaxLen {
		maxLen = minMaxLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
